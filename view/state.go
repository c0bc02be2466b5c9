package view

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-equipment-catalog/models"
)

// URL query keys carrying the page state.
const (
	KeyTab        = "tab"
	KeyQuery      = "q"
	KeyItem       = "item"
	KeyImage      = "img"
	KeyLead       = "lead"
	KeySent       = "sent"
	keyCardPrefix = "c."
)

// OverlayKind tells which overlay, if any, is open.
type OverlayKind int

const (
	OverlayNone OverlayKind = iota
	OverlayDetail
	OverlayLead
)

// Overlay is the single modal layer above the grid. Only the fields of the
// active kind are meaningful.
type Overlay struct {
	Kind   OverlayKind
	ItemID string
	Image  int      // detail only
	Form   LeadForm // lead only
}

// State is the full catalog page state. Transitions return a new State and
// never mutate the receiver.
type State struct {
	Bucket  models.Bucket
	Query   string
	Cards   Carousel
	Overlay Overlay
}

// NewState returns the initial state: first bucket, empty query, no overlay.
func NewState() State {
	return State{Bucket: models.BucketMassagers, Cards: Carousel{}}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.Cards = s.Cards.Clone()
	return s
}

// Visible returns the filtered items of the active bucket.
func (s State) Visible(cat *models.Catalog) []models.CatalogItem {
	return Filter(cat.Items(s.Bucket), s.Query)
}

// SelectBucket switches the active bucket. The query is kept and any
// overlay is closed.
func (s State) SelectBucket(b models.Bucket) State {
	next := s.Clone()
	next.Bucket = b
	next.Overlay = Overlay{}
	return next
}

// SetQuery replaces the search text.
func (s State) SetQuery(q string) State {
	next := s.Clone()
	next.Query = q
	return next
}

// NextImage advances the card carousel of item.
func (s State) NextImage(item models.CatalogItem) State {
	next := s.Clone()
	next.Cards = s.Cards.Step(item.ID, len(item.Pictures), 1)
	return next
}

// PrevImage moves the card carousel of item back.
func (s State) PrevImage(item models.CatalogItem) State {
	next := s.Clone()
	next.Cards = s.Cards.Step(item.ID, len(item.Pictures), -1)
	return next
}

// OpenDetail opens the detail overlay on the image the card currently shows.
func (s State) OpenDetail(item models.CatalogItem) State {
	next := s.Clone()
	next.Overlay = Overlay{
		Kind:   OverlayDetail,
		ItemID: item.ID,
		Image:  s.Cards.Index(item.ID, len(item.Pictures)),
	}
	return next
}

// StepDetail moves the detail image by delta. It is a no-op unless the
// detail overlay is open.
func (s State) StepDetail(count, delta int) State {
	if s.Overlay.Kind != OverlayDetail {
		return s
	}
	next := s.Clone()
	next.Overlay.Image = Wrap(s.Overlay.Image+delta, count)
	return next
}

// OpenLead opens an empty lead dialog for item, replacing any overlay.
func (s State) OpenLead(item models.CatalogItem) State {
	next := s.Clone()
	next.Overlay = Overlay{Kind: OverlayLead, ItemID: item.ID}
	return next
}

// SubmitLead submits the open lead form. ok is false when no lead dialog is
// open or the form is incomplete.
func (s State) SubmitLead(form LeadForm) (State, bool) {
	if s.Overlay.Kind != OverlayLead {
		return s, false
	}
	submitted, ok := form.Submit()
	if !ok {
		next := s.Clone()
		next.Overlay.Form = form
		return next, false
	}
	next := s.Clone()
	next.Overlay.Form = submitted
	return next, true
}

// Close dismisses the overlay. Detail image positions are discarded.
func (s State) Close() State {
	next := s.Clone()
	next.Overlay = Overlay{}
	return next
}

// Resolve drops an overlay whose item is not in the active bucket and wraps
// every position against the loaded catalog.
func (s State) Resolve(cat *models.Catalog) (State, models.CatalogItem) {
	next := s.Clone()
	for id, pos := range s.Cards {
		item, ok := cat.Find(s.Bucket, id)
		if !ok {
			continue
		}
		if w := Wrap(pos, len(item.Pictures)); w == 0 {
			delete(next.Cards, id)
		} else {
			next.Cards[id] = w
		}
	}
	if next.Overlay.Kind == OverlayNone {
		return next, models.CatalogItem{}
	}
	item, ok := cat.Find(s.Bucket, s.Overlay.ItemID)
	if !ok {
		next.Overlay = Overlay{}
		return next, models.CatalogItem{}
	}
	if next.Overlay.Kind == OverlayDetail {
		next.Overlay.Image = Wrap(next.Overlay.Image, len(item.Pictures))
	}
	return next, item
}

// Encode renders s as URL query values. Default values are omitted.
func (s State) Encode() url.Values {
	v := url.Values{}
	if s.Bucket != "" && s.Bucket != models.BucketMassagers {
		v.Set(KeyTab, string(s.Bucket))
	}
	if q := strings.TrimSpace(s.Query); q != "" {
		v.Set(KeyQuery, s.Query)
	}
	ids := make([]string, 0, len(s.Cards))
	for id, pos := range s.Cards {
		if pos != 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		v.Set(keyCardPrefix+id, strconv.Itoa(s.Cards[id]))
	}
	switch s.Overlay.Kind {
	case OverlayDetail:
		v.Set(KeyItem, s.Overlay.ItemID)
		if s.Overlay.Image != 0 {
			v.Set(KeyImage, strconv.Itoa(s.Overlay.Image))
		}
	case OverlayLead:
		v.Set(KeyLead, s.Overlay.ItemID)
		if f := s.Overlay.Form; f.Submitted {
			sent := f.Receipt
			if sent == "" {
				sent = "1"
			}
			v.Set(KeySent, sent)
		}
	}
	return v
}

// URL returns path with the encoded state as its query string.
func (s State) URL(path string) string {
	q := s.Encode().Encode()
	if q == "" {
		return path
	}
	return path + "?" + q
}

// DecodeState reads a State from URL query values. Unknown or malformed
// values fall back to their defaults. When both a detail and a lead overlay
// are named, the lead dialog wins.
func DecodeState(v url.Values) State {
	s := NewState()
	if b, ok := models.ParseBucket(v.Get(KeyTab)); ok {
		s.Bucket = b
	}
	s.Query = v.Get(KeyQuery)
	for key, vals := range v {
		id, ok := strings.CutPrefix(key, keyCardPrefix)
		if !ok || id == "" || len(vals) == 0 {
			continue
		}
		if pos, err := strconv.Atoi(vals[0]); err == nil && pos != 0 {
			s.Cards[id] = pos
		}
	}
	switch {
	case v.Get(KeyLead) != "":
		s.Overlay = Overlay{
			Kind:   OverlayLead,
			ItemID: v.Get(KeyLead),
		}
		if sent := v.Get(KeySent); sent != "" {
			s.Overlay.Form = LeadForm{Submitted: true}
			if sent != "1" {
				s.Overlay.Form.Receipt = sent
			}
		}
	case v.Get(KeyItem) != "":
		img, _ := strconv.Atoi(v.Get(KeyImage))
		s.Overlay = Overlay{Kind: OverlayDetail, ItemID: v.Get(KeyItem), Image: img}
	}
	return s
}
