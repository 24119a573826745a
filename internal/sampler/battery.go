package sampler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Dicklesworthstone/swaystatus/internal/model"
)

// Battery source names.
const (
	BatteryACPI  = "acpi"
	BatterySysfs = "sysfs"
)

var acpiPercent = regexp.MustCompile(`([0-9]+)%.*`)

// ACPI reads the charge level from the output of `acpi -b`.
type ACPI struct {
	Timeout time.Duration
	run     runFunc
}

func NewACPI(timeout time.Duration) *ACPI {
	return &ACPI{Timeout: timeout, run: runCmd}
}

// ReadBattery returns the first percentage reported by acpi. The block text
// is the percentage and whatever follows it on the line.
func (a *ACPI) ReadBattery(ctx context.Context) (model.Battery, error) {
	out, err := a.run(ctx, a.Timeout, "acpi", "-b")
	if err != nil {
		return model.Battery{}, fmt.Errorf("acpi: %w: %w", model.ErrSourceUnavailable, err)
	}
	m := acpiPercent.FindStringSubmatch(out)
	if m == nil {
		return model.Battery{}, fmt.Errorf("acpi: %w: no percentage in %q", model.ErrMalformedData, strings.TrimSpace(out))
	}
	pct, err := strconv.Atoi(m[1])
	if err != nil {
		return model.Battery{}, fmt.Errorf("acpi: %w: %w", model.ErrMalformedData, err)
	}
	return model.Battery{Percent: pct, Text: strings.TrimSpace(m[0])}, nil
}

// Sysfs reads the charge level from /sys/class/power_supply.
type Sysfs struct {
	Pattern  string
	glob     func(pattern string) ([]string, error)
	readFile func(name string) ([]byte, error)
}

func NewSysfs() *Sysfs {
	return &Sysfs{
		Pattern:  "/sys/class/power_supply/BAT*/capacity",
		glob:     filepath.Glob,
		readFile: os.ReadFile,
	}
}

// ReadBattery returns the first readable battery, formatted as
// "<pct>%, <status>".
func (s *Sysfs) ReadBattery(_ context.Context) (model.Battery, error) {
	paths, _ := s.glob(s.Pattern)
	var lastErr error
	for _, capPath := range paths {
		capBytes, err := s.readFile(capPath)
		if err != nil {
			lastErr = err
			continue
		}
		pct, err := parseInt(string(capBytes))
		if err != nil {
			return model.Battery{}, fmt.Errorf("%s: %w: %w", capPath, model.ErrMalformedData, err)
		}
		text := fmt.Sprintf("%d%%", pct)
		stateBytes, _ := s.readFile(filepath.Join(filepath.Dir(capPath), "status"))
		if state := strings.TrimSpace(string(stateBytes)); state != "" {
			text += ", " + state
		}
		return model.Battery{Percent: pct, Text: text}, nil
	}
	if lastErr != nil {
		return model.Battery{}, fmt.Errorf("sysfs battery: %w: %w", model.ErrSourceUnavailable, lastErr)
	}
	return model.Battery{}, fmt.Errorf("sysfs battery: %w: no battery under %s", model.ErrSourceUnavailable, s.Pattern)
}

// BatteryRGB maps a charge percentage onto a red to green ramp: full red at
// 0%, red and green at 50%, full green at 100%.
func BatteryRGB(pct int) (red, green uint8) {
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}
	p := float32(pct) / 100
	if p > 0.5 {
		return uint8(255 * (1 - (p-0.5)*2)), 255
	}
	return 255, uint8(255 * p * 2)
}

// BatteryColor renders BatteryRGB as "#RRGG00ff".
func BatteryColor(pct int) string {
	r, g := BatteryRGB(pct)
	return fmt.Sprintf("#%02x%02x00ff", r, g)
}
