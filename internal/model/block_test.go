package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockOmitsUnsetFields(t *testing.T) {
	b := Block{FullText: "hello"}
	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"full_text":"hello"}`, string(data))
}

func TestBlockEmitsExplicitZeros(t *testing.T) {
	zero := 0
	no := false
	b := Block{FullText: "x", BorderTop: &zero, Separator: &no}
	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"full_text":"x","border_top":0,"separator":false}`, string(data))
}

func TestNewBlock(t *testing.T) {
	b := NewBlock("meminfo", "1 KiB / 2 KiB")
	assert.Equal(t, "meminfo", b.Name)
	assert.Equal(t, "1 KiB / 2 KiB", b.FullText)
	assert.Equal(t, BorderColor, b.Border)
	assert.Empty(t, b.Color)
}

func TestSetTextAndError(t *testing.T) {
	b := NewBlock("loadavg", "")
	b.SetError("LOADAVG ERROR")
	assert.Equal(t, "LOADAVG ERROR", b.FullText)
	assert.Equal(t, ErrorColor, b.Color)

	b.SetText("0.10 0.20 0.30", "")
	assert.Equal(t, "0.10 0.20 0.30", b.FullText)
	assert.Empty(t, b.Color, "recovery clears the error color")

	e := ErrorBlock("net_up", "Net ERROR")
	assert.Equal(t, ErrorColor, e.Color)
	assert.Equal(t, "net_up", e.Name)
}

func TestMinWidthJSON(t *testing.T) {
	tests := []struct {
		name string
		in   *MinWidth
		want string
	}{
		{"text", MinWidthText("00000000000"), `"00000000000"`},
		{"pixels", MinWidthPixels(120), `120`},
		{"zero pixels", MinWidthPixels(0), `0`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var back MinWidth
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, *tt.in, back)
		})
	}
}

func TestDefaultHeader(t *testing.T) {
	data, err := json.Marshal(DefaultHeader())
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(data))
}

func TestTintOf(t *testing.T) {
	assert.Equal(t, TintDownload, TintOf(10, 5))
	assert.Equal(t, TintUpload, TintOf(5, 10))
	assert.Equal(t, TintBoth, TintOf(7, 7))
	assert.Equal(t, TintBoth, TintOf(0, 0))

	assert.Equal(t, DownloadColor, TintDownload.Color())
	assert.Equal(t, UploadColor, TintUpload.Color())
	assert.Equal(t, BothColor, TintBoth.Color())
}

func TestErrorTaxonomy(t *testing.T) {
	assert.True(t, errors.Is(ErrDeviceNotFound, ErrSourceUnavailable))
	assert.True(t, errors.Is(ErrMalformedCounters, ErrMalformedData))
	assert.False(t, errors.Is(ErrDeviceNotFound, ErrMalformedData))
	assert.False(t, errors.Is(ErrMalformedCounters, ErrPermanentFailure))
}
