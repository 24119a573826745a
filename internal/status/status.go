// Package status runs the tick loop: it asks every source for a value, builds
// the block registry on the first tick and mutates it in place afterwards.
package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Dicklesworthstone/swaystatus/internal/bar"
	"github.com/Dicklesworthstone/swaystatus/internal/model"
	"github.com/Dicklesworthstone/swaystatus/internal/netmeter"
	"github.com/Dicklesworthstone/swaystatus/internal/sampler"
)

// DefaultInterval is the pause between ticks.
const DefaultInterval = 5 * time.Second

// DefaultNetWidth is the number of characters reserved for each rate.
const DefaultNetWidth = 11

// Block names, left to right.
const (
	NameNetMax   = "net_graph_dyn_max"
	NameNetGraph = "net_graph"
	NameNetDown  = "net_down"
	NameNetUp    = "net_up"
	NameMemory   = "meminfo"
	NameBattery  = "battinfo"
	NameLoad     = "loadavg"
	NameTime     = "current_time"
)

// Error texts shown in place of a failed source.
const (
	NetErrorText     = "Net ERROR"
	MemoryErrorText  = "MEMINFO ERROR"
	CommandErrorText = "REGEX_CMD ERROR"
	BatteryErrorText = "BATTINFO ERROR"
	LoadErrorText    = "LOADAVG ERROR"
)

// ErrMissingBlock means a block inserted on the first tick could not be found
// later. It indicates a bug in the tick loop, not a source failure.
var ErrMissingBlock = errors.New("block missing from registry")

// CommandName is the block name of the i-th regex command.
func CommandName(i int) string { return fmt.Sprintf("regex_cmd_%d", i) }

type MemoryReader interface {
	ReadMemory(ctx context.Context) (model.Memory, error)
}

type LoadReader interface {
	ReadLoad(ctx context.Context) (model.LoadAvg, error)
}

type BatteryReader interface {
	ReadBattery(ctx context.Context) (model.Battery, error)
}

type CommandRunner interface {
	Run(ctx context.Context) (model.CommandMatch, error)
}

// Clock renders the current time.
type Clock interface {
	String() string
}

// Emitter receives the registry after every tick.
type Emitter interface {
	Emit(r *bar.Registry) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(r *bar.Registry) error

func (f EmitterFunc) Emit(r *bar.Registry) error { return f(r) }

// Options wires the sources. A nil source has no block.
type Options struct {
	Interval time.Duration

	Net      *netmeter.Meter
	ShowMax  bool // dynamic scale only: label with the history maximum
	NetWidth int
	Memory   MemoryReader
	Commands []CommandRunner
	Battery  BatteryReader
	Load     LoadReader
	Clock    Clock
	Logger   *slog.Logger
	Now      func() time.Time
}

// Orchestrator owns the registry and every source's state. It is driven by a
// single goroutine.
type Orchestrator struct {
	interval time.Duration
	net      *netmeter.Meter
	showMax  bool
	netWidth int
	memory   MemoryReader
	commands []CommandRunner
	battery  BatteryReader
	load     LoadReader
	clock    Clock
	logger   *slog.Logger
	now      func() time.Time

	reg       *bar.Registry
	netTotals model.Counters
	netOK     bool
}

func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		interval: opts.Interval,
		net:      opts.Net,
		showMax:  opts.ShowMax,
		netWidth: opts.NetWidth,
		memory:   opts.Memory,
		commands: opts.Commands,
		battery:  opts.Battery,
		load:     opts.Load,
		clock:    opts.Clock,
		logger:   opts.Logger,
		now:      opts.Now,
		reg:      bar.NewRegistry(),
	}
	if o.interval <= 0 {
		o.interval = DefaultInterval
	}
	if o.netWidth <= 0 {
		o.netWidth = DefaultNetWidth
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Registry exposes the blocks for emitting.
func (o *Orchestrator) Registry() *bar.Registry { return o.reg }

// Interval is the pause between ticks.
func (o *Orchestrator) Interval() time.Duration { return o.interval }

// Tick reads every source once, in bar order. The first tick inserts the
// blocks; later ticks find them by name and overwrite text and color. Source
// failures are shown on the bar and never returned.
func (o *Orchestrator) Tick(ctx context.Context) error {
	bootstrap := o.reg.IsEmpty()

	if err := o.tickNet(ctx, bootstrap); err != nil {
		return err
	}
	if o.memory != nil {
		m, err := o.memory.ReadMemory(ctx)
		update := func(b *model.Block) { b.SetText(sampler.FormatMemory(m), "") }
		if err != nil {
			update = o.failed(MemoryErrorText, err)
		}
		if err := o.set(bootstrap, model.NewBlock(NameMemory, ""), update); err != nil {
			return err
		}
	}
	for i, c := range o.commands {
		match, err := c.Run(ctx)
		update := func(b *model.Block) { b.SetText(match.Text, match.Color) }
		if err != nil {
			update = o.failed(CommandErrorText, err)
		}
		if err := o.set(bootstrap, model.NewBlock(CommandName(i), ""), update); err != nil {
			return err
		}
	}
	if o.battery != nil {
		batt, err := o.battery.ReadBattery(ctx)
		update := func(b *model.Block) { b.SetText(batt.Text, sampler.BatteryColor(batt.Percent)) }
		if err != nil {
			update = o.failed(BatteryErrorText, err)
		}
		if err := o.set(bootstrap, model.NewBlock(NameBattery, ""), update); err != nil {
			return err
		}
	}
	if o.load != nil {
		l, err := o.load.ReadLoad(ctx)
		update := func(b *model.Block) { b.SetText(sampler.FormatLoad(l), "") }
		if err != nil {
			update = o.failed(LoadErrorText, err)
		}
		if err := o.set(bootstrap, model.NewBlock(NameLoad, ""), update); err != nil {
			return err
		}
	}
	if o.clock != nil {
		now := o.clock.String()
		if err := o.set(bootstrap, model.NewBlock(NameTime, ""), func(b *model.Block) { b.SetText(now, "") }); err != nil {
			return err
		}
	}
	return nil
}

// tickNet updates the network blocks. A failed meter paints its blocks with
// the error text once and is then dropped; the blocks keep that text.
func (o *Orchestrator) tickNet(ctx context.Context, bootstrap bool) error {
	if o.net == nil {
		return nil
	}
	reading, err := o.net.Update(ctx)
	if err != nil {
		o.logger.Warn("network meter disabled", "device", o.net.Device(), "error", err)
		blocks := o.netBlocks()
		o.net = nil
		o.netOK = false
		for _, proto := range blocks {
			if err := o.set(bootstrap, proto, func(b *model.Block) { b.SetError(NetErrorText) }); err != nil {
				return err
			}
		}
		return nil
	}
	o.netTotals = reading.Totals
	o.netOK = true

	blocks := o.netBlocks()
	for _, proto := range blocks {
		var update func(b *model.Block)
		switch proto.Name {
		case NameNetMax:
			update = func(b *model.Block) { b.SetText(reading.MaxText(), reading.MaxTint.Color()) }
		case NameNetGraph:
			update = func(b *model.Block) { b.SetText(netmeter.Markup(reading.Graph), "") }
		case NameNetDown:
			update = func(b *model.Block) { b.SetText(reading.DownText(), model.DownloadColor) }
		case NameNetUp:
			update = func(b *model.Block) { b.SetText(reading.UpText(), model.UploadColor) }
		}
		if err := o.set(bootstrap, proto, update); err != nil {
			return err
		}
	}
	return nil
}

// netBlocks returns the network block prototypes in bar order.
func (o *Orchestrator) netBlocks() []model.Block {
	var blocks []model.Block
	scale := o.net.Scale()
	if scale == netmeter.ScaleDynamic && o.showMax {
		blocks = append(blocks, model.NewBlock(NameNetMax, ""))
	}
	if scale != netmeter.ScaleNone {
		g := model.NewBlock(NameNetGraph, "")
		g.Markup = model.MarkupPango
		blocks = append(blocks, g)
	}
	width := model.MinWidthText(strings.Repeat("0", o.netWidth))
	down := model.NewBlock(NameNetDown, "")
	down.Align = model.AlignRight
	down.MinWidth = width
	up := model.NewBlock(NameNetUp, "")
	up.Align = model.AlignRight
	up.MinWidth = width
	return append(blocks, down, up)
}

// set inserts proto on the first tick, then applies update to the stored
// block.
func (o *Orchestrator) set(bootstrap bool, proto model.Block, update func(b *model.Block)) error {
	if bootstrap {
		if err := o.reg.Insert(proto); err != nil {
			return err
		}
	}
	b := o.reg.Find(proto.Name)
	if b == nil {
		return fmt.Errorf("%w: %q", ErrMissingBlock, proto.Name)
	}
	update(b)
	return nil
}

// failed returns an update that logs err and shows text in red.
func (o *Orchestrator) failed(text string, err error) func(b *model.Block) {
	return func(b *model.Block) {
		o.logger.Warn("source failed", "block", b.Name, "error", err)
		b.SetError(text)
	}
}

// Snapshot copies the current state for consumers outside the loop.
func (o *Orchestrator) Snapshot() model.Snapshot {
	return model.Snapshot{
		Timestamp: o.now(),
		Blocks:    o.reg.Blocks(),
		Net:       o.netTotals,
		NetOK:     o.netOK,
	}
}

// Run ticks, emits and sleeps until ctx is cancelled or emitting fails. It
// returns ctx.Err() on cancellation.
func (o *Orchestrator) Run(ctx context.Context, em Emitter) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.Tick(ctx); err != nil {
			return err
		}
		if err := em.Emit(o.reg); err != nil {
			return fmt.Errorf("emit: %w", err)
		}
		if err := sleep(ctx, o.interval); err != nil {
			return err
		}
	}
}

// Stream runs the loop in a goroutine and returns a channel that receives a
// snapshot after every tick until ctx is done.
func (o *Orchestrator) Stream(ctx context.Context) <-chan model.Snapshot {
	ch := make(chan model.Snapshot)
	go func() {
		defer close(ch)
		err := o.Run(ctx, EmitterFunc(func(*bar.Registry) error {
			select {
			case ch <- o.Snapshot():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}))
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			o.logger.Error("status loop stopped", "error", err)
		}
	}()
	return ch
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
