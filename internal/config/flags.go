package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// Flags holds the raw command-line values. Numeric options are taken as
// strings so a bad value can be warned about and skipped instead of
// aborting the bar.
type Flags struct {
	ConfigPath string

	netDev        string
	netDevWidth   string
	netGraph      string
	netGraphSize  string
	dynDisplay    bool
	netSource     string
	intervalSec   string
	acpi          bool
	batterySource string
	timeFormat    string
	cmdTimeout    time.Duration
	regexCmds     []string
	logLevel      string
}

// BindFlags registers every option on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}
	def := Default()
	fs.StringVar(&f.ConfigPath, "config", "", "config file (toml or yaml); default searches $XDG_CONFIG_HOME/swaystatus")
	fs.StringVar(&f.netDev, "netdev", "", "network device to meter, e.g. wlan0")
	fs.StringVar(&f.netDevWidth, "netdevwidth", strconv.Itoa(def.NetDevWidth), "characters reserved for each rate")
	fs.StringVar(&f.netGraph, "netgraph", "", `sparkline scale: bytes per interval for a full block, or "dynamic"`)
	fs.StringVar(&f.netGraphSize, "netgraph-size", strconv.Itoa(def.NetGraphSize), "sparkline length")
	fs.BoolVar(&f.dynDisplay, "netgraph-dyndisplay", false, "show the dynamic sparkline maximum")
	fs.StringVar(&f.netSource, "net-source", def.NetSource, "counter source: auto|procfs|gopsutil")
	fs.StringVar(&f.intervalSec, "interval-sec", "5", "seconds between updates")
	fs.BoolVar(&f.acpi, "acpi-builtin", false, "show battery charge")
	fs.StringVar(&f.batterySource, "battery-source", def.BatterySource, "battery source: acpi|sysfs")
	fs.StringVar(&f.timeFormat, "time-format", def.TimeFormat, "strftime format of the clock")
	fs.DurationVar(&f.cmdTimeout, "cmd-timeout", def.CmdTimeout.Duration, "timeout for each external command")
	fs.StringArrayVar(&f.regexCmds, "regex-cmd", nil, "command block: cmd[SPLIT]arg...[SPLIT]regex (repeatable)")
	fs.StringVar(&f.logLevel, "log-level", def.LogLevel, "stderr log level: debug|info|warn|error")
	return f
}

// Apply copies the flags the user actually set onto cfg.
func (f *Flags) Apply(fs *pflag.FlagSet, cfg *Config) []string {
	var warnings []string
	set := func(name string) bool { return fs.Changed(name) }

	if set("netdev") {
		cfg.NetDev = f.netDev
	}
	if set("netdevwidth") {
		if v, err := strconv.Atoi(f.netDevWidth); err == nil && v > 0 {
			cfg.NetDevWidth = v
		} else {
			warnings = append(warnings, fmt.Sprintf("invalid --netdevwidth=%q, ignoring", f.netDevWidth))
		}
	}
	if set("netgraph") {
		if f.netGraph == GraphDynamic {
			cfg.NetGraph = GraphDynamic
		} else if v, err := strconv.ParseFloat(f.netGraph, 64); err == nil && v > 0 {
			cfg.NetGraph = f.netGraph
		} else {
			warnings = append(warnings, fmt.Sprintf("invalid --netgraph=%q, ignoring", f.netGraph))
		}
	}
	if set("netgraph-size") {
		if v, err := strconv.Atoi(f.netGraphSize); err == nil && v > 0 {
			cfg.NetGraphSize = v
		} else {
			warnings = append(warnings, fmt.Sprintf("invalid --netgraph-size=%q, ignoring", f.netGraphSize))
		}
	}
	if set("netgraph-dyndisplay") {
		cfg.NetGraphDynDisplay = f.dynDisplay
	}
	if set("net-source") {
		cfg.NetSource = f.netSource
	}
	if set("interval-sec") {
		if v, err := strconv.Atoi(f.intervalSec); err == nil && v > 0 {
			cfg.Interval.Duration = time.Duration(v) * time.Second
		} else {
			warnings = append(warnings, fmt.Sprintf("invalid --interval-sec=%q, ignoring", f.intervalSec))
		}
	}
	if set("acpi-builtin") {
		cfg.Battery = f.acpi
	}
	if set("battery-source") {
		cfg.BatterySource = f.batterySource
	}
	if set("time-format") {
		cfg.TimeFormat = f.timeFormat
	}
	if set("cmd-timeout") {
		cfg.CmdTimeout.Duration = f.cmdTimeout
	}
	if set("regex-cmd") {
		cfg.RegexCmds = append(cfg.RegexCmds, f.regexCmds...)
	}
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	return warnings
}

// Resolve builds the final configuration: defaults, then the config file,
// then the environment, then the flags set on fs. Warnings describe ignored
// values; the error is fatal.
func Resolve(fs *pflag.FlagSet, f *Flags, getenv func(string) string) (Config, []string, error) {
	cfg := Default()

	path := f.ConfigPath
	if path == "" {
		path = getenv("SWAYSTATUS_CONFIG")
	}
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, nil, fmt.Errorf("config: %w", err)
		}
	} else if found := FindFile(); found != "" {
		if err := LoadFile(found, &cfg); err != nil {
			return Config{}, nil, fmt.Errorf("config: %w", err)
		}
	}

	warnings := cfg.ApplyEnv(getenv)
	warnings = append(warnings, f.Apply(fs, &cfg)...)
	warnings = append(warnings, cfg.Sanitize()...)
	if err := cfg.Validate(); err != nil {
		return Config{}, warnings, err
	}
	return cfg, warnings, nil
}

// FromFlags parses args and resolves them against the file and the process
// environment.
func FromFlags(args []string) (Config, []string, error) {
	fs := pflag.NewFlagSet("swaystatus", pflag.ContinueOnError)
	f := BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}
	return Resolve(fs, f, os.Getenv)
}
