package model

import (
	"encoding/json"
	"strconv"
)

// Colors shared by the status line.
const (
	BorderColor   = "#ffffffff"
	ErrorColor    = "#ff0000ff"
	DownloadColor = "#ff8888ff"
	UploadColor   = "#88ff88ff"
	BothColor     = "#ffff88ff"
)

// Align is the text alignment inside a block that is wider than its text.
type Align string

const (
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
	AlignCenter Align = "center"
)

// MarkupPango tells the bar to interpret full_text as Pango markup.
const MarkupPango = "pango"

// MinWidth is either a pixel count or a sample string whose rendered width
// the bar reserves.
type MinWidth struct {
	Pixels int
	Text   string
}

// MinWidthText returns a MinWidth sized to the rendering of s.
func MinWidthText(s string) *MinWidth { return &MinWidth{Text: s} }

// MinWidthPixels returns a MinWidth of n pixels.
func MinWidthPixels(n int) *MinWidth { return &MinWidth{Pixels: n} }

func (m MinWidth) MarshalJSON() ([]byte, error) {
	if m.Text != "" {
		return json.Marshal(m.Text)
	}
	return []byte(strconv.Itoa(m.Pixels)), nil
}

func (m *MinWidth) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		m.Pixels = 0
		return json.Unmarshal(data, &m.Text)
	}
	m.Text = ""
	return json.Unmarshal(data, &m.Pixels)
}

// Block is one segment of the status line as swaybar-protocol(7) describes it.
// Optional numeric and boolean fields are pointers so an explicit zero is
// still emitted.
type Block struct {
	FullText            string    `json:"full_text"`
	ShortText           string    `json:"short_text,omitempty"`
	Color               string    `json:"color,omitempty"`
	Background          string    `json:"background,omitempty"`
	Border              string    `json:"border,omitempty"`
	BorderTop           *int      `json:"border_top,omitempty"`
	BorderBottom        *int      `json:"border_bottom,omitempty"`
	BorderLeft          *int      `json:"border_left,omitempty"`
	BorderRight         *int      `json:"border_right,omitempty"`
	MinWidth            *MinWidth `json:"min_width,omitempty"`
	Align               Align     `json:"align,omitempty"`
	Name                string    `json:"name,omitempty"`
	Instance            string    `json:"instance,omitempty"`
	Urgent              *bool     `json:"urgent,omitempty"`
	Separator           *bool     `json:"separator,omitempty"`
	SeparatorBlockWidth *int      `json:"separator_block_width,omitempty"`
	Markup              string    `json:"markup,omitempty"`
}

// NewBlock returns a named block with the default white border.
func NewBlock(name, text string) Block {
	return Block{
		FullText: text,
		Border:   BorderColor,
		Name:     name,
	}
}

// ErrorBlock returns a named block already in the error state.
func ErrorBlock(name, text string) Block {
	b := NewBlock(name, text)
	b.SetError(text)
	return b
}

// SetText replaces the text and color. An empty color clears it.
func (b *Block) SetText(text, color string) {
	b.FullText = text
	b.Color = color
}

// SetError shows text in the error color.
func (b *Block) SetError(text string) {
	b.FullText = text
	b.Color = ErrorColor
}

// Header is the first line of the protocol stream.
type Header struct {
	Version     int   `json:"version"`
	ClickEvents *bool `json:"click_events,omitempty"`
	ContSignal  *int  `json:"cont_signal,omitempty"`
	StopSignal  *int  `json:"stop_signal,omitempty"`
}

// DefaultHeader is {"version":1}.
func DefaultHeader() Header { return Header{Version: 1} }
