// Package web serves the landing page, the catalog view, the quiz and the
// JSON API over a chi router.
package web

import (
	"context"
	"time"

	"github.com/aluiziolira/go-equipment-catalog/catalog"
	"github.com/aluiziolira/go-equipment-catalog/config"
	"github.com/aluiziolira/go-equipment-catalog/loader"
	"github.com/aluiziolira/go-equipment-catalog/metrics"
	"github.com/aluiziolira/go-equipment-catalog/models"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	receiptCapacity = 4096
	receiptTTL      = time.Hour
)

// CatalogLoader is the part of loader.Loader the catalog view needs.
type CatalogLoader interface {
	Snapshot() loader.Snapshot
	Wait(ctx context.Context) loader.Snapshot
	Retry(ctx context.Context) bool
}

// LeadSink accepts leads for persistence.
type LeadSink interface {
	Process(ctx context.Context, leads ...*models.Lead) error
}

// App holds the dependencies of the HTTP handlers.
type App struct {
	cfg     *config.Config
	base    context.Context
	loader  CatalogLoader
	source  catalog.Source
	leads   LeadSink
	metrics *metrics.Metrics

	// receipts maps accepted catalog lead ids to their item id.
	receipts *expirable.LRU[string, string]

	newID func() string
	now   func() time.Time
}

// NewApp wires the handlers. base outlives single requests and bounds the
// catalog reloads they trigger.
func NewApp(base context.Context, cfg *config.Config, ld CatalogLoader, src catalog.Source, leads LeadSink, m *metrics.Metrics) *App {
	return &App{
		cfg:      cfg,
		base:     base,
		loader:   ld,
		source:   src,
		leads:    leads,
		metrics:  m,
		receipts: expirable.NewLRU[string, string](receiptCapacity, nil, receiptTTL),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}
