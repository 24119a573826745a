package netmeter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dicklesworthstone/swaystatus/internal/model"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1024 B"},
		{1025, "1.00 KiB"},
		{1536, "1.50 KiB"},
		{1024 * 1024, "1024.00 KiB"},
		{1024*1024 + 1, "1.00 MiB"},
		{5.5 * 1024 * 1024, "5.50 MiB"},
	}

	for _, tt := range tests {
		result := FormatBytes(tt.input)
		if result != tt.expected {
			t.Errorf("FormatBytes(%v) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestLevelBounds(t *testing.T) {
	assert.Equal(t, 0, Level(0, 1000), "zero rate is blank")
	assert.Equal(t, MaxLevel, Level(1000, 1000), "rate at threshold is a full block")
	assert.Equal(t, MaxLevel, Level(5000, 1000), "rate above threshold saturates")
	assert.Equal(t, 0, Level(10, 0), "no threshold means blank")
	assert.Equal(t, 4, Level(500, 1000))
}

func TestLevelIsMonotonic(t *testing.T) {
	const limit = 10_000.0
	prev := 0
	for v := 0.0; v <= 2*limit; v += 37 {
		l := Level(v, limit)
		assert.GreaterOrEqual(t, l, prev, "level dropped at %v", v)
		assert.LessOrEqual(t, l, MaxLevel)
		prev = l
	}
}

func TestGlyph(t *testing.T) {
	assert.Equal(t, ' ', Glyph(0))
	assert.Equal(t, '▁', Glyph(1))
	assert.Equal(t, '▄', Glyph(4))
	assert.Equal(t, '█', Glyph(MaxLevel))
	assert.Equal(t, '█', Glyph(42), "clamped high")
	assert.Equal(t, ' ', Glyph(-3), "clamped low")
}

func TestMarkup(t *testing.T) {
	items := []GraphItem{
		{Glyph: '▂', Tint: model.TintDownload},
		{Glyph: '█', Tint: model.TintUpload},
		{Glyph: ' ', Tint: model.TintBoth},
	}
	want := `<span color="#ff8888ff">▂</span>` +
		`<span color="#88ff88ff">█</span>` +
		`<span color="#ffff88ff"> </span>`
	assert.Equal(t, want, Markup(items))
	assert.Equal(t, "▂█ ", Plain(items))
	assert.Empty(t, Markup(nil))
}

func TestRingOrder(t *testing.T) {
	r := newRing(3)
	for _, v := range []float64{1, 2, 3, 4} {
		r.push(GraphItem{Value: v})
	}
	got := r.ordered()
	assert.Equal(t, []float64{2, 3, 4}, []float64{got[0].Value, got[1].Value, got[2].Value})

	peak, idx := r.requantize()
	assert.Equal(t, 4.0, peak)
	assert.Equal(t, 2, idx)
	assert.Equal(t, "▄▆█", Plain(r.ordered()))
}
