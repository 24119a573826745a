// Package netmeter turns cumulative network device counters into per-interval
// rates and a short sparkline history.
package netmeter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Dicklesworthstone/swaystatus/internal/model"
)

// DefaultGraphSize is the sparkline length when none is configured.
const DefaultGraphSize = 10

// Scale selects how the sparkline is quantized.
type Scale int

const (
	// ScaleNone disables the sparkline.
	ScaleNone Scale = iota
	// ScaleStatic quantizes each new rate against a fixed byte threshold.
	ScaleStatic
	// ScaleDynamic quantizes the whole history against its own maximum.
	ScaleDynamic
)

func (s Scale) String() string {
	switch s {
	case ScaleNone:
		return "none"
	case ScaleStatic:
		return "static"
	case ScaleDynamic:
		return "dynamic"
	}
	return "unknown"
}

// CounterReader reads cumulative counters for one device. Implementations
// return errors wrapping model.ErrDeviceNotFound or model.ErrMalformedCounters.
type CounterReader interface {
	ReadCounters(ctx context.Context, device string) (model.Counters, error)
}

// Config describes one meter.
type Config struct {
	Device    string
	Scale     Scale
	Threshold float64 // bytes per interval that fill a block; ScaleStatic only
	GraphSize int
}

// Meter tracks one device. It is not safe for concurrent use; the tick loop
// owns it.
type Meter struct {
	device    string
	reader    CounterReader
	scale     Scale
	threshold float64
	logger    *slog.Logger

	prev    model.Counters
	cur     model.Counters
	primed  bool
	retired error

	graph *ring
}

// New creates a meter. A non-positive graph size falls back to
// DefaultGraphSize. If logger is nil, a no-op logger is used.
func New(cfg Config, reader CounterReader, logger *slog.Logger) *Meter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	size := cfg.GraphSize
	if size <= 0 {
		size = DefaultGraphSize
	}
	m := &Meter{
		device:    cfg.Device,
		reader:    reader,
		scale:     cfg.Scale,
		threshold: cfg.Threshold,
		logger:    logger,
	}
	if m.scale != ScaleNone {
		m.graph = newRing(size)
	}
	return m
}

// Device returns the device name the meter reads.
func (m *Meter) Device() string { return m.device }

// Scale returns the sparkline mode.
func (m *Meter) Scale() Scale { return m.scale }

// Retired reports whether the meter has failed and stopped reading.
func (m *Meter) Retired() bool { return m.retired != nil }

// Sample reads the device counters. The first successful sample only sets
// the baseline. Any failure retires the meter: this and every later call
// return an error wrapping both model.ErrPermanentFailure and the cause, and
// the reader is never consulted again.
func (m *Meter) Sample(ctx context.Context) error {
	if m.retired != nil {
		return m.retired
	}
	c, err := m.reader.ReadCounters(ctx, m.device)
	if err != nil {
		m.retired = fmt.Errorf("netmeter %q: %w: %w", m.device, model.ErrPermanentFailure, err)
		m.logger.Debug("net meter retired", "device", m.device, "error", err)
		return m.retired
	}
	if !m.primed {
		m.prev, m.cur = c, c
		m.primed = true
		return nil
	}
	m.cur = c
	return nil
}

// Rates derives the rates since the previous call, advances the baseline and
// updates the sparkline.
func (m *Meter) Rates() (Reading, error) {
	if m.retired != nil {
		return Reading{}, m.retired
	}
	down := delta(m.cur.RxBytes, m.prev.RxBytes)
	up := delta(m.cur.TxBytes, m.prev.TxBytes)
	m.prev = m.cur

	r := Reading{
		Down:   down,
		Up:     up,
		Tint:   model.TintOf(down, up),
		Totals: m.cur,
	}
	peak := float64(down)
	if up > down {
		peak = float64(up)
	}

	switch m.scale {
	case ScaleStatic:
		m.graph.push(GraphItem{
			Glyph: Glyph(Level(peak, m.threshold)),
			Value: peak,
			Tint:  r.Tint,
		})
		r.Graph = m.graph.ordered()
	case ScaleDynamic:
		m.graph.push(GraphItem{Value: peak, Tint: r.Tint})
		r.Max, r.MaxIndex = m.graph.requantize()
		r.Graph = m.graph.ordered()
		r.MaxTint = r.Graph[r.MaxIndex].Tint
	case ScaleNone:
	}
	return r, nil
}

// Update is Sample followed by Rates.
func (m *Meter) Update(ctx context.Context) (Reading, error) {
	if err := m.Sample(ctx); err != nil {
		return Reading{}, err
	}
	return m.Rates()
}

// delta is cur-prev, or zero when the counter went backwards.
func delta(cur, prev uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}

// Reading is the result of one Rates call.
type Reading struct {
	Down uint64
	Up   uint64
	Tint model.Tint

	// Graph is the sparkline, oldest first; nil when the sparkline is off.
	Graph []GraphItem

	// Dynamic scale only: the history maximum and where it sits in Graph.
	Max      float64
	MaxIndex int
	MaxTint  model.Tint

	Totals model.Counters
}

// DownText is the formatted download rate.
func (r Reading) DownText() string { return FormatBytes(float64(r.Down)) }

// UpText is the formatted upload rate.
func (r Reading) UpText() string { return FormatBytes(float64(r.Up)) }

// Text is "<down> <up>".
func (r Reading) Text() string { return r.DownText() + " " + r.UpText() }

// MaxText is the formatted history maximum.
func (r Reading) MaxText() string { return FormatBytes(r.Max) }
