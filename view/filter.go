// Package view holds the request-independent state of the catalog page:
// filtering, carousel positions, the open overlay, the quiz wizard and the
// one-shot reveal latch used by the landing sections.
package view

import (
	"strings"

	"github.com/aluiziolira/go-equipment-catalog/models"
	"golang.org/x/text/cases"
)

// Filter returns the items whose name or brand contains query, ignoring case.
// A blank query returns items unchanged. Order is preserved.
func Filter(items []models.CatalogItem, query string) []models.CatalogItem {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}

	// A Caser keeps state between calls and must not be shared.
	fold := cases.Fold()
	needle := fold.String(query)

	out := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(fold.String(item.Name), needle) ||
			(item.Brand != "" && strings.Contains(fold.String(item.Brand), needle)) {
			out = append(out, item)
		}
	}
	return out
}
