// Package parser turns supplier feeds and catalog payloads into models.
package parser

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-equipment-catalog/models"
	"golang.org/x/net/html/charset"
)

var (
	// ErrUnexpectedShape is returned when a catalog payload lacks a bucket.
	ErrUnexpectedShape = errors.New("catalog payload has unexpected shape")
	// ErrNoOffers is returned when a feed document contains no offer at all.
	ErrNoOffers = errors.New("feed contains no offers")
)

// FeedOptions selects which feed categories map to which bucket.
type FeedOptions struct {
	MassagersCategory string
	InjectorsCategory string
	// AssumeUTF8 ignores the encoding declared in the XML prolog because the
	// body was already transcoded upstream.
	AssumeUTF8 bool
}

// FeedStats counts what happened to the offers of one feed.
type FeedStats struct {
	Offers        int
	OtherCategory int
	NoPicture     int
	NoID          int
	Duplicates    int
}

type xmlOffer struct {
	ID          string     `xml:"id,attr"`
	Name        string     `xml:"name"`
	Price       string     `xml:"price"`
	URL         string     `xml:"url"`
	Description string     `xml:"description"`
	CategoryID  string     `xml:"categoryId"`
	Pictures    []string   `xml:"picture"`
	Params      []xmlParam `xml:"param"`
}

type xmlParam struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// ParseFeed streams a YML offers feed and partitions the offers into buckets.
// Offers are decoded wherever they appear in the document.
func ParseFeed(r io.Reader, opts FeedOptions) (*models.Catalog, FeedStats, error) {
	var stats FeedStats
	catalog := &models.Catalog{
		Massagers: []models.CatalogItem{},
		Injectors: []models.CatalogItem{},
	}

	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	if opts.AssumeUTF8 {
		decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
			return input, nil
		}
	}

	seen := map[models.Bucket]map[string]struct{}{
		models.BucketMassagers: {},
		models.BucketInjectors: {},
	}

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("decode feed: %w", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "offer" {
			continue
		}

		var offer xmlOffer
		if err := decoder.DecodeElement(&offer, &start); err != nil {
			return nil, stats, fmt.Errorf("decode offer: %w", err)
		}
		stats.Offers++

		var bucket models.Bucket
		switch strings.TrimSpace(offer.CategoryID) {
		case opts.MassagersCategory:
			bucket = models.BucketMassagers
		case opts.InjectorsCategory:
			bucket = models.BucketInjectors
		default:
			stats.OtherCategory++
			continue
		}

		item, ok := buildItem(offer)
		if !ok {
			stats.NoPicture++
			continue
		}
		if item.ID == "" {
			stats.NoID++
			continue
		}
		if _, dup := seen[bucket][item.ID]; dup {
			stats.Duplicates++
			continue
		}
		seen[bucket][item.ID] = struct{}{}

		switch bucket {
		case models.BucketMassagers:
			catalog.Massagers = append(catalog.Massagers, item)
		case models.BucketInjectors:
			catalog.Injectors = append(catalog.Injectors, item)
		}
	}

	if stats.Offers == 0 {
		return nil, stats, ErrNoOffers
	}

	SortByPrice(catalog.Massagers)
	SortByPrice(catalog.Injectors)
	return catalog, stats, nil
}

func buildItem(offer xmlOffer) (models.CatalogItem, bool) {
	pictures := make([]string, 0, len(offer.Pictures))
	for _, p := range offer.Pictures {
		if p = strings.TrimSpace(p); p != "" {
			pictures = append(pictures, p)
		}
	}
	if len(pictures) == 0 {
		return models.CatalogItem{}, false
	}

	params := collectParams(offer.Params)
	brand, productivity, extra := splitParams(params)

	item := models.CatalogItem{
		ID:           strings.TrimSpace(offer.ID),
		Name:         strings.TrimSpace(offer.Name),
		URL:          strings.TrimSpace(offer.URL),
		Description:  strings.TrimSpace(offer.Description),
		Pictures:     pictures,
		Brand:        brand,
		Productivity: productivity,
		ExtraParams:  extra,
		AllParams:    params,
		CategoryID:   strings.TrimSpace(offer.CategoryID),
	}
	if price, ok := ParsePrice(offer.Price); ok {
		item.Price = &price
		item.PriceDisplay = FormatPrice(price)
	}
	return item, true
}

// collectParams keeps non-empty params in first-seen order; a repeated name
// overwrites the earlier value in place.
func collectParams(raw []xmlParam) []models.Param {
	params := make([]models.Param, 0, len(raw))
	index := make(map[string]int, len(raw))
	for _, p := range raw {
		name := strings.TrimSpace(p.Name)
		value := strings.TrimSpace(p.Value)
		if name == "" || value == "" {
			continue
		}
		if i, ok := index[name]; ok {
			params[i].Value = value
			continue
		}
		index[name] = len(params)
		params = append(params, models.Param{Name: name, Value: value})
	}
	return params
}

// DecodeCatalogJSON decodes a {massagers, injectors} payload. Both keys must
// be present and hold arrays.
func DecodeCatalogJSON(data []byte) (*models.Catalog, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	catalog := &models.Catalog{}
	for _, bucket := range models.Buckets {
		payload, ok := raw[string(bucket)]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrUnexpectedShape, bucket)
		}
		var items []models.CatalogItem
		if err := json.Unmarshal(payload, &items); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrUnexpectedShape, bucket, err)
		}
		if items == nil {
			return nil, fmt.Errorf("%w: %q is null", ErrUnexpectedShape, bucket)
		}
		items = DedupeItems(items)
		switch bucket {
		case models.BucketMassagers:
			catalog.Massagers = items
		case models.BucketInjectors:
			catalog.Injectors = items
		}
	}
	return catalog, nil
}

// DedupeItems drops items whose id was already seen, keeping order.
func DedupeItems(items []models.CatalogItem) []models.CatalogItem {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}

// SortByPrice orders items by ascending price with priceless items last.
func SortByPrice(items []models.CatalogItem) {
	slices.SortStableFunc(items, func(a, b models.CatalogItem) int {
		switch {
		case a.Price == nil && b.Price == nil:
			return 0
		case a.Price == nil:
			return 1
		case b.Price == nil:
			return -1
		case *a.Price < *b.Price:
			return -1
		case *a.Price > *b.Price:
			return 1
		default:
			return 0
		}
	})
}

// ParsePrice parses a feed price.
func ParsePrice(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}
