package sampler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	gnet "github.com/shirou/gopsutil/v3/net"

	"github.com/Dicklesworthstone/swaystatus/internal/model"
	"github.com/Dicklesworthstone/swaystatus/internal/netmeter"
)

// ProcNetDevPath is the kernel's per-interface counter table.
const ProcNetDevPath = "/proc/net/dev"

// /proc/net/dev carries 8 receive then 8 transmit columns after the colon;
// tx bytes is the first transmit column.
const (
	rxBytesField   = 0
	txBytesField   = 8
	minNetDevField = 9
)

// Counter source names accepted by NewCounterReader.
const (
	SourceAuto     = "auto"
	SourceProcfs   = "procfs"
	SourceGopsutil = "gopsutil"
)

// ProcNetDev reads interface counters straight from /proc/net/dev.
type ProcNetDev struct {
	Path string
	open func(path string) (io.ReadCloser, error)
}

func NewProcNetDev() *ProcNetDev {
	return &ProcNetDev{
		Path: ProcNetDevPath,
		open: func(path string) (io.ReadCloser, error) { return os.Open(path) },
	}
}

// ReadCounters returns the cumulative byte counters for device. The device
// name must match the interface column exactly.
func (p *ProcNetDev) ReadCounters(_ context.Context, device string) (model.Counters, error) {
	f, err := p.open(p.Path)
	if err != nil {
		return model.Counters{}, fmt.Errorf("%s: %w: %w", p.Path, model.ErrSourceUnavailable, err)
	}
	defer f.Close()
	return parseNetDev(f, device)
}

func parseNetDev(r io.Reader, device string) (model.Counters, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		name, rest, ok := strings.Cut(sc.Text(), ":")
		if !ok || strings.TrimSpace(name) != device {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) < minNetDevField {
			return model.Counters{}, fmt.Errorf("netdev %q: %d columns: %w", device, len(fields), model.ErrMalformedCounters)
		}
		rx, err := strconv.ParseUint(fields[rxBytesField], 10, 64)
		if err != nil {
			return model.Counters{}, fmt.Errorf("netdev %q rx: %w: %w", device, model.ErrMalformedCounters, err)
		}
		tx, err := strconv.ParseUint(fields[txBytesField], 10, 64)
		if err != nil {
			return model.Counters{}, fmt.Errorf("netdev %q tx: %w: %w", device, model.ErrMalformedCounters, err)
		}
		return model.Counters{RxBytes: rx, TxBytes: tx}, nil
	}
	if err := sc.Err(); err != nil {
		return model.Counters{}, fmt.Errorf("netdev: %w: %w", model.ErrSourceUnavailable, err)
	}
	return model.Counters{}, fmt.Errorf("netdev %q: %w", device, model.ErrDeviceNotFound)
}

// GopsutilCounters reads interface counters through gopsutil, for hosts
// without procfs.
type GopsutilCounters struct {
	ioCounters func(ctx context.Context, pernic bool) ([]gnet.IOCountersStat, error)
}

func NewGopsutilCounters() *GopsutilCounters {
	return &GopsutilCounters{ioCounters: gnet.IOCountersWithContext}
}

func (g *GopsutilCounters) ReadCounters(ctx context.Context, device string) (model.Counters, error) {
	stats, err := g.ioCounters(ctx, true)
	if err != nil {
		return model.Counters{}, fmt.Errorf("netdev: %w: %w", model.ErrSourceUnavailable, err)
	}
	for _, st := range stats {
		if st.Name == device {
			return model.Counters{RxBytes: st.BytesRecv, TxBytes: st.BytesSent}, nil
		}
	}
	return model.Counters{}, fmt.Errorf("netdev %q: %w", device, model.ErrDeviceNotFound)
}

// NewCounterReader picks a counter backend by name. "auto" prefers procfs
// when it is mounted.
func NewCounterReader(source string) (netmeter.CounterReader, error) {
	switch source {
	case SourceProcfs:
		return NewProcNetDev(), nil
	case SourceGopsutil:
		return NewGopsutilCounters(), nil
	case SourceAuto, "":
		if _, err := os.Stat(ProcNetDevPath); err == nil {
			return NewProcNetDev(), nil
		}
		return NewGopsutilCounters(), nil
	default:
		return nil, fmt.Errorf("unknown net source %q (want %s, %s or %s)", source, SourceAuto, SourceProcfs, SourceGopsutil)
	}
}
