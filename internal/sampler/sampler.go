// Package sampler reads the metric sources shown on the status line:
// network counters, memory, load average, battery, external commands and
// the clock. Every reader is a small type with an overridable backend so the
// tick loop can be tested without touching the host.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Dicklesworthstone/swaystatus/internal/model"
)

// DefaultCommandTimeout bounds every external command.
const DefaultCommandTimeout = 5 * time.Second

// Memory reads RAM totals through gopsutil.
type Memory struct {
	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

func NewMemory() *Memory {
	return &Memory{virtualMemory: mem.VirtualMemoryWithContext}
}

// ReadMemory returns total and available memory in KiB.
func (m *Memory) ReadMemory(ctx context.Context) (model.Memory, error) {
	vm, err := m.virtualMemory(ctx)
	if err != nil {
		return model.Memory{}, fmt.Errorf("meminfo: %w: %w", model.ErrSourceUnavailable, err)
	}
	if vm == nil {
		return model.Memory{}, fmt.Errorf("meminfo: %w: empty reading", model.ErrMalformedData)
	}
	return model.Memory{
		TotalKiB:     vm.Total / 1024,
		AvailableKiB: vm.Available / 1024,
	}, nil
}

// FormatMemory renders "<used> / <total>", each in MiB with two decimals when
// above 1024 KiB and in whole KiB otherwise. A zero total renders as "0".
func FormatMemory(m model.Memory) string {
	if m.TotalKiB == 0 {
		return "0"
	}
	var used uint64
	if m.AvailableKiB < m.TotalKiB {
		used = m.TotalKiB - m.AvailableKiB
	}
	return formatKiB(float64(used)) + " / " + formatKiB(float64(m.TotalKiB))
}

func formatKiB(v float64) string {
	if v > 1024 {
		return fmt.Sprintf("%.2f MiB", v/1024)
	}
	return fmt.Sprintf("%.0f KiB", v)
}

// Load reads the load averages through gopsutil.
type Load struct {
	avg func(ctx context.Context) (*load.AvgStat, error)
}

func NewLoad() *Load {
	return &Load{avg: load.AvgWithContext}
}

// ReadLoad returns the 1, 5 and 15 minute load averages.
func (l *Load) ReadLoad(ctx context.Context) (model.LoadAvg, error) {
	st, err := l.avg(ctx)
	if err != nil {
		return model.LoadAvg{}, fmt.Errorf("loadavg: %w: %w", model.ErrSourceUnavailable, err)
	}
	if st == nil {
		return model.LoadAvg{}, fmt.Errorf("loadavg: %w: empty reading", model.ErrMalformedData)
	}
	return model.LoadAvg{Load1: st.Load1, Load5: st.Load5, Load15: st.Load15}, nil
}

// FormatLoad renders the three averages with two decimals each.
func FormatLoad(l model.LoadAvg) string {
	return fmt.Sprintf("%.2f %.2f %.2f", l.Load1, l.Load5, l.Load15)
}

// runFunc runs a command and returns its standard output.
type runFunc func(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error)

// runCmd runs name with args, bounded by timeout when it is positive. A
// non-zero exit status is not an error: whatever the command printed is
// still returned for matching.
func runCmd(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%s: timed out after %s", name, timeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(out), nil
	}
	return string(out), err
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")))
}
