package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/aluiziolira/go-equipment-catalog/catalog"
	"github.com/aluiziolira/go-equipment-catalog/feed"
	"github.com/aluiziolira/go-equipment-catalog/models"
	"github.com/aluiziolira/go-equipment-catalog/parser"
)

var errNilCatalog = errors.New("source returned no catalog")

// RemoteSource reads an already partitioned catalog from a JSON endpoint.
type RemoteSource struct {
	fetcher catalog.Fetcher
	url     string
}

// NewRemoteSource builds a source for the catalog endpoint at url.
func NewRemoteSource(fetcher catalog.Fetcher, url string) *RemoteSource {
	return &RemoteSource{fetcher: fetcher, url: url}
}

// Catalog fetches and decodes the endpoint. Any non-2xx status, non-JSON
// body or missing bucket is an error.
func (s *RemoteSource) Catalog(ctx context.Context) (*models.Catalog, error) {
	resp, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	decoded, err := parser.DecodeCatalogJSON(resp.Body)
	if err != nil {
		return nil, feed.ErrMalformed{Err: err}
	}
	return decoded, nil
}
