// Package config resolves swaystatus options from defaults, an optional
// TOML or YAML file, environment variables and command-line flags, in that
// order of precedence (flags win).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Dicklesworthstone/swaystatus/internal/netmeter"
	"github.com/Dicklesworthstone/swaystatus/internal/sampler"
)

// GraphDynamic is the netgraph value that selects a self-scaling sparkline.
const GraphDynamic = "dynamic"

// CommandSplit separates command, arguments and regex in a --regex-cmd value.
const CommandSplit = "[SPLIT]"

// ErrBadCommandSpec is returned for a --regex-cmd value without a regex.
var ErrBadCommandSpec = errors.New("regex-cmd must be cmd[SPLIT]arg...[SPLIT]regex")

// Duration is a time.Duration that decodes from strings such as "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// CommandSpec describes one regex command block.
type CommandSpec struct {
	Cmd   string   `toml:"cmd" yaml:"cmd"`
	Args  []string `toml:"args" yaml:"args"`
	Regex string   `toml:"regex" yaml:"regex"`
}

// Config carries runtime options for swaystatus.
type Config struct {
	NetDev             string   `toml:"netdev" yaml:"netdev"`
	NetDevWidth        int      `toml:"netdev_width" yaml:"netdev_width"`
	NetGraph           string   `toml:"netgraph" yaml:"netgraph"`
	NetGraphSize       int      `toml:"netgraph_size" yaml:"netgraph_size"`
	NetGraphDynDisplay bool     `toml:"netgraph_dyndisplay" yaml:"netgraph_dyndisplay"`
	NetSource          string   `toml:"net_source" yaml:"net_source"`
	Interval           Duration `toml:"interval" yaml:"interval"`
	Battery            bool     `toml:"acpi_builtin" yaml:"acpi_builtin"`
	BatterySource      string   `toml:"battery_source" yaml:"battery_source"`
	TimeFormat         string   `toml:"time_format" yaml:"time_format"`
	CmdTimeout         Duration `toml:"cmd_timeout" yaml:"cmd_timeout"`
	LogLevel           string   `toml:"log_level" yaml:"log_level"`

	// RegexCmds are raw cmd[SPLIT]arg...[SPLIT]regex values; Commands are
	// the structured form a config file can use. Both are shown, RegexCmds
	// first.
	RegexCmds []string      `toml:"regex_cmd" yaml:"regex_cmd"`
	Commands  []CommandSpec `toml:"command" yaml:"commands"`
}

func Default() Config {
	return Config{
		NetDevWidth:   11,
		NetGraphSize:  netmeter.DefaultGraphSize,
		NetSource:     sampler.SourceAuto,
		Interval:      Duration{5 * time.Second},
		BatterySource: sampler.BatteryACPI,
		TimeFormat:    sampler.DefaultTimeFormat,
		CmdTimeout:    Duration{sampler.DefaultCommandTimeout},
		LogLevel:      "warn",
	}
}

// SearchPaths returns the config files tried when none is named, in order.
func SearchPaths() []string {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths,
			filepath.Join(dir, "swaystatus", "config.toml"),
			filepath.Join(dir, "swaystatus", "config.yaml"),
		)
	}
	return append(paths, "swaystatus.toml")
}

// FindFile returns the first existing file of SearchPaths, or "".
func FindFile() string {
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadFile decodes path over cfg. Files ending in .yaml or .yml are YAML,
// everything else is TOML.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv applies SWAYSTATUS_* overrides. Unusable values are reported as
// warnings and ignored.
func (c *Config) ApplyEnv(getenv func(string) string) []string {
	var warnings []string
	if v := getenv("SWAYSTATUS_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Interval.Duration = d
		} else if d, err := time.ParseDuration(v + "s"); err == nil && d > 0 {
			c.Interval.Duration = d
		} else {
			warnings = append(warnings, fmt.Sprintf("invalid SWAYSTATUS_INTERVAL=%q, ignoring", v))
		}
	}
	if v := getenv("SWAYSTATUS_NETDEV"); v != "" {
		c.NetDev = v
	}
	switch getenv("SWAYSTATUS_BATT") {
	case "0":
		c.Battery = false
	case "1":
		c.Battery = true
	}
	if v := getenv("SWAYSTATUS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return warnings
}

// Sanitize resets out-of-range optional values to their defaults and
// reports each as a warning.
func (c *Config) Sanitize() []string {
	def := Default()
	var warnings []string
	if c.NetDevWidth <= 0 {
		warnings = append(warnings, fmt.Sprintf("invalid netdev width %d, using %d", c.NetDevWidth, def.NetDevWidth))
		c.NetDevWidth = def.NetDevWidth
	}
	if c.NetGraphSize <= 0 {
		warnings = append(warnings, fmt.Sprintf("invalid netgraph size %d, using %d", c.NetGraphSize, def.NetGraphSize))
		c.NetGraphSize = def.NetGraphSize
	}
	if c.NetGraph != "" && c.NetGraph != GraphDynamic {
		if v, err := strconv.ParseFloat(c.NetGraph, 64); err != nil || v <= 0 {
			warnings = append(warnings, fmt.Sprintf("invalid netgraph %q, ignoring", c.NetGraph))
			c.NetGraph = ""
		}
	}
	if c.Interval.Duration <= 0 {
		warnings = append(warnings, fmt.Sprintf("invalid interval %s, using %s", c.Interval.Duration, def.Interval.Duration))
		c.Interval = def.Interval
	}
	if c.CmdTimeout.Duration <= 0 {
		warnings = append(warnings, fmt.Sprintf("invalid command timeout %s, using %s", c.CmdTimeout.Duration, def.CmdTimeout.Duration))
		c.CmdTimeout = def.CmdTimeout
	}
	if c.TimeFormat == "" {
		c.TimeFormat = def.TimeFormat
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		warnings = append(warnings, fmt.Sprintf("invalid log level %q, using %s", c.LogLevel, def.LogLevel))
		c.LogLevel = def.LogLevel
	}
	return warnings
}

// Validate reports settings that cannot be run at all.
func (c Config) Validate() error {
	switch c.NetSource {
	case sampler.SourceAuto, sampler.SourceProcfs, sampler.SourceGopsutil:
	default:
		return fmt.Errorf("net source must be %s, %s or %s, got %q",
			sampler.SourceAuto, sampler.SourceProcfs, sampler.SourceGopsutil, c.NetSource)
	}
	switch c.BatterySource {
	case sampler.BatteryACPI, sampler.BatterySysfs:
	default:
		return fmt.Errorf("battery source must be %s or %s, got %q",
			sampler.BatteryACPI, sampler.BatterySysfs, c.BatterySource)
	}
	specs, err := c.CommandSpecs()
	if err != nil {
		return err
	}
	for i, s := range specs {
		if s.Cmd == "" {
			return fmt.Errorf("command %d: empty cmd", i)
		}
	}
	return nil
}

// CommandSpecs returns every regex command in display order.
func (c Config) CommandSpecs() ([]CommandSpec, error) {
	specs := make([]CommandSpec, 0, len(c.RegexCmds)+len(c.Commands))
	for _, raw := range c.RegexCmds {
		s, err := ParseCommandSpec(raw)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return append(specs, c.Commands...), nil
}

// ParseCommandSpec splits "cmd[SPLIT]arg...[SPLIT]regex". The last part is
// the regex; a trailing separator is ignored.
func ParseCommandSpec(raw string) (CommandSpec, error) {
	parts := strings.Split(raw, CommandSplit)
	if len(parts) > 1 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) < 2 || parts[0] == "" {
		return CommandSpec{}, fmt.Errorf("%w: %q", ErrBadCommandSpec, raw)
	}
	spec := CommandSpec{
		Cmd:   parts[0],
		Regex: parts[len(parts)-1],
	}
	if args := parts[1 : len(parts)-1]; len(args) > 0 {
		spec.Args = args
	}
	return spec, nil
}

// NetMeter returns the meter settings, or false when no device is set.
func (c Config) NetMeter() (netmeter.Config, bool) {
	if c.NetDev == "" {
		return netmeter.Config{}, false
	}
	mc := netmeter.Config{Device: c.NetDev, GraphSize: c.NetGraphSize}
	switch c.NetGraph {
	case "":
		mc.Scale = netmeter.ScaleNone
	case GraphDynamic:
		mc.Scale = netmeter.ScaleDynamic
	default:
		v, err := strconv.ParseFloat(c.NetGraph, 64)
		if err != nil || v <= 0 {
			mc.Scale = netmeter.ScaleNone
			break
		}
		mc.Scale = netmeter.ScaleStatic
		mc.Threshold = v
	}
	return mc, true
}

// ParseLevel maps debug, info, warn or error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn, err
	}
	return l, nil
}
