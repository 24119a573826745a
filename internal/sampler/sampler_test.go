package sampler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/swaystatus/internal/model"
)

const procNetDev = `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
    lo:  123456     100    0    0    0     0          0         0   123456     100    0    0    0     0       0          0
 wlan0: 9876543   54321    0    0    0     0          0         0  1234567   12345    0    0    0     0       0          0
wlan0x: 1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 16
  eth0:1000 2 0 0 0 0 0 0 2000 3 0 0 0 0 0 0
`

func TestParseNetDev(t *testing.T) {
	c, err := parseNetDev(strings.NewReader(procNetDev), "wlan0")
	require.NoError(t, err)
	assert.Equal(t, model.Counters{RxBytes: 9876543, TxBytes: 1234567}, c)

	c, err = parseNetDev(strings.NewReader(procNetDev), "eth0")
	require.NoError(t, err, "no space after the colon")
	assert.Equal(t, model.Counters{RxBytes: 1000, TxBytes: 2000}, c)

	c, err = parseNetDev(strings.NewReader(procNetDev), "wlan0x")
	require.NoError(t, err, "exact name, not prefix")
	assert.Equal(t, model.Counters{RxBytes: 1, TxBytes: 9}, c)
}

func TestParseNetDevErrors(t *testing.T) {
	_, err := parseNetDev(strings.NewReader(procNetDev), "wlan")
	assert.True(t, errors.Is(err, model.ErrDeviceNotFound), "prefix must not match: %v", err)
	assert.True(t, errors.Is(err, model.ErrSourceUnavailable))

	_, err = parseNetDev(strings.NewReader("  eth0: 1 2 3\n"), "eth0")
	assert.True(t, errors.Is(err, model.ErrMalformedCounters), "short line: %v", err)
	assert.True(t, errors.Is(err, model.ErrMalformedData))

	_, err = parseNetDev(strings.NewReader("  eth0: x 2 3 4 5 6 7 8 9\n"), "eth0")
	assert.True(t, errors.Is(err, model.ErrMalformedCounters), "non-numeric rx: %v", err)

	_, err = parseNetDev(strings.NewReader(""), "eth0")
	assert.True(t, errors.Is(err, model.ErrDeviceNotFound))
}

func TestProcNetDevOpen(t *testing.T) {
	p := NewProcNetDev()
	p.open = func(path string) (io.ReadCloser, error) {
		assert.Equal(t, ProcNetDevPath, path)
		return io.NopCloser(strings.NewReader(procNetDev)), nil
	}
	c, err := p.ReadCounters(context.Background(), "lo")
	require.NoError(t, err)
	assert.Equal(t, uint64(123456), c.RxBytes)

	p.open = func(string) (io.ReadCloser, error) { return nil, os.ErrNotExist }
	_, err = p.ReadCounters(context.Background(), "lo")
	assert.True(t, errors.Is(err, model.ErrSourceUnavailable))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestGopsutilCounters(t *testing.T) {
	g := NewGopsutilCounters()
	g.ioCounters = func(_ context.Context, pernic bool) ([]gnet.IOCountersStat, error) {
		assert.True(t, pernic)
		return []gnet.IOCountersStat{
			{Name: "lo", BytesRecv: 1, BytesSent: 2},
			{Name: "eth0", BytesRecv: 300, BytesSent: 400},
		}, nil
	}
	c, err := g.ReadCounters(context.Background(), "eth0")
	require.NoError(t, err)
	assert.Equal(t, model.Counters{RxBytes: 300, TxBytes: 400}, c)

	_, err = g.ReadCounters(context.Background(), "wlan0")
	assert.True(t, errors.Is(err, model.ErrDeviceNotFound))

	g.ioCounters = func(context.Context, bool) ([]gnet.IOCountersStat, error) {
		return nil, errors.New("boom")
	}
	_, err = g.ReadCounters(context.Background(), "eth0")
	assert.True(t, errors.Is(err, model.ErrSourceUnavailable))
}

func TestNewCounterReader(t *testing.T) {
	r, err := NewCounterReader(SourceProcfs)
	require.NoError(t, err)
	assert.IsType(t, &ProcNetDev{}, r)

	r, err = NewCounterReader(SourceGopsutil)
	require.NoError(t, err)
	assert.IsType(t, &GopsutilCounters{}, r)

	r, err = NewCounterReader(SourceAuto)
	require.NoError(t, err)
	assert.NotNil(t, r)

	_, err = NewCounterReader("sysctl")
	assert.Error(t, err)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	m.virtualMemory = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 16 * 1024 * 1024 * 1024, Available: 4 * 1024 * 1024 * 1024}, nil
	}
	got, err := m.ReadMemory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Memory{TotalKiB: 16 * 1024 * 1024, AvailableKiB: 4 * 1024 * 1024}, got)
	assert.Equal(t, "12288.00 MiB / 16384.00 MiB", FormatMemory(got))

	m.virtualMemory = func(context.Context) (*mem.VirtualMemoryStat, error) { return nil, errors.New("no meminfo") }
	_, err = m.ReadMemory(context.Background())
	assert.True(t, errors.Is(err, model.ErrSourceUnavailable))
}

func TestFormatMemory(t *testing.T) {
	tests := []struct {
		input    model.Memory
		expected string
	}{
		{model.Memory{TotalKiB: 1048576, AvailableKiB: 524288}, "512.00 MiB / 1024.00 MiB"},
		{model.Memory{TotalKiB: 8000000, AvailableKiB: 4000000}, "3906.25 MiB / 7812.50 MiB"},
		{model.Memory{TotalKiB: 2048, AvailableKiB: 1536}, "512 KiB / 2.00 MiB"},
		{model.Memory{TotalKiB: 1024, AvailableKiB: 0}, "1024 KiB / 1024 KiB"},
		{model.Memory{TotalKiB: 0, AvailableKiB: 0}, "0"},
		{model.Memory{TotalKiB: 100, AvailableKiB: 200}, "0 KiB / 100 KiB"},
	}
	for _, tt := range tests {
		result := FormatMemory(tt.input)
		if result != tt.expected {
			t.Errorf("FormatMemory(%+v) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestLoad(t *testing.T) {
	l := NewLoad()
	l.avg = func(context.Context) (*load.AvgStat, error) {
		return &load.AvgStat{Load1: 0.5, Load5: 1.25, Load15: 2}, nil
	}
	got, err := l.ReadLoad(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.50 1.25 2.00", FormatLoad(got))

	l.avg = func(context.Context) (*load.AvgStat, error) { return nil, errors.New("no loadavg") }
	_, err = l.ReadLoad(context.Background())
	assert.True(t, errors.Is(err, model.ErrSourceUnavailable))
}

func fakeRun(out string, err error) runFunc {
	return func(context.Context, time.Duration, string, ...string) (string, error) {
		return out, err
	}
}

func TestRegexCommandGroups(t *testing.T) {
	tests := []struct {
		expr     string
		output   string
		expected model.CommandMatch
	}{
		{`[0-9]+%`, "  volume 42%\n", model.CommandMatch{Text: "42%"}},
		{`vol ([0-9]+)`, "vol 42\n", model.CommandMatch{Text: "42"}},
		{`(\w+) (#[0-9a-f]+)`, "ok #00ff00ff\n", model.CommandMatch{Text: "ok", Color: "#00ff00ff"}},
		{`^(\S+)$`, "  trimmed  \n", model.CommandMatch{Text: "trimmed"}},
	}
	for _, tt := range tests {
		c, err := NewRegexCommand("cmd", nil, tt.expr, time.Second)
		require.NoError(t, err, tt.expr)
		c.run = fakeRun(tt.output, nil)
		got, err := c.Run(context.Background())
		require.NoError(t, err, tt.expr)
		assert.Equal(t, tt.expected, got, tt.expr)
	}
}

func TestRegexCommandErrors(t *testing.T) {
	_, err := NewRegexCommand("cmd", nil, `(a)(b)(c)`, time.Second)
	assert.True(t, errors.Is(err, ErrTooManyGroups))

	_, err = NewRegexCommand("cmd", nil, `(unclosed`, time.Second)
	assert.Error(t, err)

	_, err = NewRegexCommand("", nil, `.*`, time.Second)
	assert.Error(t, err)

	c, err := NewRegexCommand("cmd", []string{"-x"}, `^[0-9]+$`, time.Second)
	require.NoError(t, err)
	c.run = fakeRun("no digits", nil)
	_, err = c.Run(context.Background())
	assert.True(t, errors.Is(err, model.ErrMalformedData))

	c.run = fakeRun("", fmt.Errorf("exec: %w", os.ErrNotExist))
	_, err = c.Run(context.Background())
	assert.True(t, errors.Is(err, model.ErrSourceUnavailable))
}

func TestRegexCommandPassesArgs(t *testing.T) {
	c, err := NewRegexCommand("amixer", []string{"get", "Master"}, `\[([0-9]+%)\]`, 2*time.Second)
	require.NoError(t, err)
	c.run = func(_ context.Context, timeout time.Duration, name string, args ...string) (string, error) {
		assert.Equal(t, 2*time.Second, timeout)
		assert.Equal(t, "amixer", name)
		assert.Equal(t, []string{"get", "Master"}, args)
		return "Front Left: Playback 65536 [100%] [on]", nil
	}
	got, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "100%", got.Text)
}

func TestRunCmdMissingBinary(t *testing.T) {
	_, err := runCmd(context.Background(), time.Second, "swaystatus-no-such-binary")
	assert.Error(t, err)
}

func TestACPI(t *testing.T) {
	a := NewACPI(time.Second)
	a.run = fakeRun("Battery 0: Discharging, 73%, 02:11:04 remaining\n", nil)
	b, err := a.ReadBattery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 73, b.Percent)
	assert.Equal(t, "73%, 02:11:04 remaining", b.Text)

	a.run = fakeRun("No support for device type: power_supply\n", nil)
	_, err = a.ReadBattery(context.Background())
	assert.True(t, errors.Is(err, model.ErrMalformedData))

	a.run = fakeRun("", os.ErrNotExist)
	_, err = a.ReadBattery(context.Background())
	assert.True(t, errors.Is(err, model.ErrSourceUnavailable))
}

func TestSysfs(t *testing.T) {
	files := map[string]string{
		"/sys/class/power_supply/BAT0/capacity": "88\n",
		"/sys/class/power_supply/BAT0/status":   "Charging\n",
	}
	s := NewSysfs()
	s.glob = func(string) ([]string, error) { return []string{"/sys/class/power_supply/BAT0/capacity"}, nil }
	s.readFile = func(name string) ([]byte, error) {
		v, ok := files[name]
		if !ok {
			return nil, os.ErrNotExist
		}
		return []byte(v), nil
	}
	b, err := s.ReadBattery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Battery{Percent: 88, Text: "88%, Charging"}, b)

	delete(files, "/sys/class/power_supply/BAT0/status")
	b, err = s.ReadBattery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "88%", b.Text)

	files["/sys/class/power_supply/BAT0/capacity"] = "full"
	_, err = s.ReadBattery(context.Background())
	assert.True(t, errors.Is(err, model.ErrMalformedData))

	s.glob = func(string) ([]string, error) { return nil, nil }
	_, err = s.ReadBattery(context.Background())
	assert.True(t, errors.Is(err, model.ErrSourceUnavailable))
}

func TestBatteryColor(t *testing.T) {
	tests := []struct {
		input    int
		expected string
	}{
		{100, "#00ff00ff"},
		{75, "#7fff00ff"},
		{50, "#ffff00ff"},
		{25, "#ff7f00ff"},
		{0, "#ff0000ff"},
		{-5, "#ff0000ff"},
		{150, "#00ff00ff"},
	}
	for _, tt := range tests {
		result := BatteryColor(tt.input)
		if result != tt.expected {
			t.Errorf("BatteryColor(%d) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestBatteryRampIsMonotonic(t *testing.T) {
	prevR, prevG := BatteryRGB(0)
	for pct := 1; pct <= 100; pct++ {
		r, g := BatteryRGB(pct)
		assert.LessOrEqual(t, r, prevR, "red rose at %d", pct)
		assert.GreaterOrEqual(t, g, prevG, "green fell at %d", pct)
		prevR, prevG = r, g
	}
}

func TestClock(t *testing.T) {
	c := NewClock("")
	c.Now = func() time.Time { return time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC) }
	assert.Equal(t, "2024-03-09 03:04:05 PM", c.String())

	c.Format = "%H:%M"
	assert.Equal(t, "15:04", c.String())
}
