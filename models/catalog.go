// Package models defines data structures shared by the catalog service.
package models

import "time"

// Bucket names one of the two equipment categories.
type Bucket string

const (
	BucketMassagers Bucket = "massagers"
	BucketInjectors Bucket = "injectors"
)

// Buckets lists the buckets in display order.
var Buckets = []Bucket{BucketMassagers, BucketInjectors}

// ParseBucket maps a query value to a bucket.
func ParseBucket(s string) (Bucket, bool) {
	switch Bucket(s) {
	case BucketMassagers:
		return BucketMassagers, true
	case BucketInjectors:
		return BucketInjectors, true
	default:
		return "", false
	}
}

// Label is the human readable tab title.
func (b Bucket) Label() string {
	switch b {
	case BucketMassagers:
		return "Вакуумные массажеры"
	case BucketInjectors:
		return "Инъекторы"
	default:
		return string(b)
	}
}

// Param is a single name/value characteristic of an item.
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CatalogItem is one offer from the supplier feed.
type CatalogItem struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        *float64 `json:"price"`
	PriceDisplay string   `json:"price_display,omitempty"`
	URL          string   `json:"url,omitempty"`
	Description  string   `json:"description,omitempty"`
	Pictures     []string `json:"pictures"`
	Brand        string   `json:"brand,omitempty"`
	Productivity *Param   `json:"productivity"`
	ExtraParams  []Param  `json:"extra_params"`
	AllParams    []Param  `json:"all_params"`
	CategoryID   string   `json:"category_id,omitempty"`
}

// Catalog holds the two buckets. Items are immutable once built.
type Catalog struct {
	Massagers []CatalogItem `json:"massagers"`
	Injectors []CatalogItem `json:"injectors"`
	BuiltAt   time.Time     `json:"-"`
}

// Items returns the items of bucket b.
func (c *Catalog) Items(b Bucket) []CatalogItem {
	if c == nil {
		return nil
	}
	switch b {
	case BucketMassagers:
		return c.Massagers
	case BucketInjectors:
		return c.Injectors
	default:
		return nil
	}
}

// Find looks an item up by id inside bucket b.
func (c *Catalog) Find(b Bucket, id string) (CatalogItem, bool) {
	for _, item := range c.Items(b) {
		if item.ID == id {
			return item, true
		}
	}
	return CatalogItem{}, false
}

// Len returns the total number of items.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Massagers) + len(c.Injectors)
}
