// Package catalog builds the two-bucket equipment catalog from the supplier
// feed and keeps it in a TTL cache.
package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aluiziolira/go-equipment-catalog/config"
	"github.com/aluiziolira/go-equipment-catalog/feed"
	"github.com/aluiziolira/go-equipment-catalog/metrics"
	"github.com/aluiziolira/go-equipment-catalog/models"
	"github.com/aluiziolira/go-equipment-catalog/parser"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const cacheKey = "catalog"

// Source yields the current catalog.
type Source interface {
	Catalog(ctx context.Context) (*models.Catalog, error)
}

// Fetcher retrieves an upstream document.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (*feed.Response, error)
}

// Service serves the feed-backed catalog.
type Service struct {
	fetcher Fetcher
	feedURL string
	opts    parser.FeedOptions
	metrics *metrics.Metrics
	now     func() time.Time

	cache *expirable.LRU[string, *models.Catalog]
	// backoff holds the stale catalog after a failed rebuild so callers
	// skip upstream until StaleRetry passes.
	backoff *expirable.LRU[string, *models.Catalog]

	sem   chan struct{} // one upstream rebuild at a time
	stale atomic.Pointer[models.Catalog]
}

// NewService builds a catalog service reading cfg.FeedURL.
func NewService(cfg *config.Config, fetcher Fetcher, m *metrics.Metrics) *Service {
	return &Service{
		fetcher: fetcher,
		feedURL: cfg.FeedURL,
		opts: parser.FeedOptions{
			MassagersCategory: cfg.MassagersCategory,
			InjectorsCategory: cfg.InjectorsCategory,
		},
		metrics: m,
		now:     time.Now,
		cache:   expirable.NewLRU[string, *models.Catalog](1, nil, cfg.CacheTTL),
		backoff: expirable.NewLRU[string, *models.Catalog](1, nil, cfg.StaleRetry),
		sem:     make(chan struct{}, 1),
	}
}

// Catalog returns the cached catalog or rebuilds it from the feed. When the
// rebuild fails and an older catalog exists, the older one is served and
// upstream is left alone for StaleRetry. A caller whose ctx ends while
// another rebuild runs gets the older catalog or ctx's error.
func (s *Service) Catalog(ctx context.Context) (*models.Catalog, error) {
	if cat, ok := s.lookup(); ok {
		return cat, nil
	}

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		if stale := s.stale.Load(); stale != nil {
			s.metrics.IncCache("stale")
			return stale, nil
		}
		return nil, ctx.Err()
	}
	defer func() { <-s.sem }()

	if cat, ok := s.lookup(); ok {
		return cat, nil
	}
	s.metrics.IncCache("miss")

	built, err := s.build(ctx)
	if err != nil {
		if stale := s.stale.Load(); stale != nil {
			s.backoff.Add(cacheKey, stale)
			s.metrics.IncCache("stale")
			slog.Warn("serving stale catalog",
				slog.Time("built_at", stale.BuiltAt),
				slog.String("category", feed.ErrorLabel(err)),
				slog.Any("error", err),
			)
			return stale, nil
		}
		return nil, err
	}

	s.cache.Add(cacheKey, built)
	s.backoff.Purge()
	s.stale.Store(built)
	return built, nil
}

func (s *Service) lookup() (*models.Catalog, bool) {
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.metrics.IncCache("hit")
		return cached, true
	}
	if stale, ok := s.backoff.Get(cacheKey); ok {
		s.metrics.IncCache("stale")
		return stale, true
	}
	return nil, false
}

// Invalidate drops the cached catalog so the next call refetches.
func (s *Service) Invalidate() {
	s.cache.Purge()
	s.backoff.Purge()
}

func (s *Service) build(ctx context.Context) (*models.Catalog, error) {
	resp, err := s.fetcher.Fetch(ctx, s.feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	opts := s.opts
	var body io.Reader = bytes.NewReader(resp.Body)
	if resp.Transcoded() {
		opts.AssumeUTF8 = true
	}

	built, stats, err := parser.ParseFeed(body, opts)
	if err != nil {
		return nil, feed.ErrMalformed{Err: fmt.Errorf("parse feed: %w", err)}
	}
	built.BuiltAt = s.now()

	s.metrics.SetItems(string(models.BucketMassagers), len(built.Massagers))
	s.metrics.SetItems(string(models.BucketInjectors), len(built.Injectors))
	slog.Info("catalog rebuilt",
		slog.Int("offers", stats.Offers),
		slog.Int("massagers", len(built.Massagers)),
		slog.Int("injectors", len(built.Injectors)),
		slog.Int("skipped_no_picture", stats.NoPicture),
		slog.Int("skipped_duplicates", stats.Duplicates),
	)
	return built, nil
}
