package netmeter

import (
	"math"
	"strings"

	"github.com/Dicklesworthstone/swaystatus/internal/model"
)

// MaxLevel is the level of a full block.
const MaxLevel = 8

// glyphs maps a level to its character, blank first.
var glyphs = [MaxLevel + 1]rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Level quantizes value against limit into 0..MaxLevel. Values at or above
// limit are a full block; a non-positive limit yields 0.
func Level(value, limit float64) int {
	if limit <= 0 || value <= 0 {
		return 0
	}
	if value >= limit {
		return MaxLevel
	}
	level := int(math.Round(value / limit * MaxLevel))
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// Glyph returns the character for level, clamped to the valid range.
func Glyph(level int) rune {
	if level < 0 {
		level = 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return glyphs[level]
}

// GraphItem is one position of the sparkline.
type GraphItem struct {
	Glyph rune
	Value float64
	Tint  model.Tint
}

// Plain returns the glyphs of items without markup.
func Plain(items []GraphItem) string {
	var b strings.Builder
	b.Grow(len(items) * 3)
	for _, it := range items {
		b.WriteRune(it.Glyph)
	}
	return b.String()
}

// Markup renders items as Pango spans colored by each item's tint.
func Markup(items []GraphItem) string {
	var b strings.Builder
	b.Grow(len(items) * 32)
	for _, it := range items {
		b.WriteString(`<span color="`)
		b.WriteString(it.Tint.Color())
		b.WriteString(`">`)
		b.WriteRune(it.Glyph)
		b.WriteString(`</span>`)
	}
	return b.String()
}

// ring is a fixed-capacity circular buffer of graph items; head is the
// oldest position.
type ring struct {
	items []GraphItem
	head  int
}

func newRing(size int) *ring {
	items := make([]GraphItem, size)
	for i := range items {
		items[i] = GraphItem{Glyph: glyphs[0], Tint: model.TintBoth}
	}
	return &ring{items: items}
}

// push overwrites the oldest item.
func (r *ring) push(it GraphItem) {
	r.items[r.head] = it
	r.head = (r.head + 1) % len(r.items)
}

// ordered returns a copy of the items, oldest first.
func (r *ring) ordered() []GraphItem {
	out := make([]GraphItem, 0, len(r.items))
	out = append(out, r.items[r.head:]...)
	return append(out, r.items[:r.head]...)
}

// requantize rescales every item against the largest value in the buffer and
// returns that value with the index, in oldest-first order, where it first
// occurs.
func (r *ring) requantize() (peak float64, idx int) {
	n := len(r.items)
	for i := 0; i < n; i++ {
		v := r.items[(r.head+i)%n].Value
		if v > peak {
			peak = v
			idx = i
		}
	}
	for i := range r.items {
		r.items[i].Glyph = Glyph(Level(r.items[i].Value, peak))
	}
	return peak, idx
}
