package view

import "maps"

// Wrap maps index onto [0, count) modulo count. It returns 0 when count is
// not positive.
func Wrap(index, count int) int {
	if count <= 0 {
		return 0
	}
	index %= count
	if index < 0 {
		index += count
	}
	return index
}

// HasControls reports whether an image strip of count pictures gets
// previous/next controls.
func HasControls(count int) bool {
	return count > 1
}

// Carousel holds the current image index per item id. A missing entry
// means the first image.
type Carousel map[string]int

// Index returns the wrapped position of item id for count images.
func (c Carousel) Index(id string, count int) int {
	return Wrap(c[id], count)
}

// Step returns a copy of c with item id moved by delta.
func (c Carousel) Step(id string, count, delta int) Carousel {
	next := c.Clone()
	if count <= 1 {
		return next
	}
	pos := Wrap(c[id]+delta, count)
	if pos == 0 {
		delete(next, id)
	} else {
		next[id] = pos
	}
	return next
}

// Clone returns an independent copy of c.
func (c Carousel) Clone() Carousel {
	if c == nil {
		return Carousel{}
	}
	return maps.Clone(c)
}
