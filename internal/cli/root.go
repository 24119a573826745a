// Package cli implements the swaystatus command line.
//
//	swaystatus [flags]          - stream the status line to stdout for swaybar
//	swaystatus preview [flags]  - show the same status line in a terminal UI
//	swaystatus version          - print build information
//
// Every option may also come from a TOML or YAML config file or from
// SWAYSTATUS_* environment variables; see internal/config.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/swaystatus/internal/bar"
	"github.com/Dicklesworthstone/swaystatus/internal/config"
	"github.com/Dicklesworthstone/swaystatus/internal/model"
	"github.com/Dicklesworthstone/swaystatus/internal/netmeter"
	"github.com/Dicklesworthstone/swaystatus/internal/sampler"
	"github.com/Dicklesworthstone/swaystatus/internal/status"
	"github.com/Dicklesworthstone/swaystatus/internal/ui"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var flags *config.Flags
	root := &cobra.Command{
		Use:   "swaystatus",
		Short: "Status line generator for swaybar and i3bar",
		Long: `swaystatus samples network throughput, memory, load, battery, the clock
and arbitrary commands every interval and writes them to stdout in the
swaybar protocol.

Examples:
  swaystatus --netdev=wlan0 --netgraph=dynamic --netgraph-dyndisplay
  swaystatus --acpi-builtin --interval-sec=2
  swaystatus --regex-cmd='amixer[SPLIT]get[SPLIT]Master[SPLIT]\[([0-9]+%)\]'`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStream(cmd, flags)
		},
	}
	flags = config.BindFlags(root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "preview",
		Short: "Show the status line in the terminal",
		Long: `Run the same tick loop as the bar and render the blocks in a terminal UI.
Press q to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreview(cmd, flags)
		},
	})
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func runStream(cmd *cobra.Command, flags *config.Flags) error {
	cfg, warnings, err := config.Resolve(cmd.Flags(), flags, os.Getenv)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	for _, w := range warnings {
		logger.Warn(w)
	}

	out := cmd.OutOrStdout()
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		logger.Info("stdout is a terminal; run `swaystatus preview` for a readable view")
	}

	o, err := Build(cfg, logger)
	if err != nil {
		return err
	}
	enc := bar.NewEncoder(out)
	if err := enc.WriteHeader(model.DefaultHeader()); err != nil {
		return err
	}
	logger.Debug("streaming", "interval", o.Interval(), "netdev", cfg.NetDev)
	if err := o.Run(cmd.Context(), enc); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runPreview(cmd *cobra.Command, flags *config.Flags) error {
	cfg, _, err := config.Resolve(cmd.Flags(), flags, os.Getenv)
	if err != nil {
		return err
	}
	// The alternate screen owns the terminal; failures show in the blocks.
	o, err := Build(cfg, newLogger(io.Discard, cfg.LogLevel))
	if err != nil {
		return err
	}
	return ui.RunTUI(cmd.Context(), o)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	l, err := config.ParseLevel(level)
	if err != nil {
		l = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

// Build wires the sources named by cfg into an orchestrator.
func Build(c config.Config, logger *slog.Logger) (*status.Orchestrator, error) {
	opts := status.Options{
		Interval: c.Interval.Duration,
		ShowMax:  c.NetGraphDynDisplay,
		NetWidth: c.NetDevWidth,
		Memory:   sampler.NewMemory(),
		Load:     sampler.NewLoad(),
		Clock:    sampler.NewClock(c.TimeFormat),
		Logger:   logger,
	}
	if mc, ok := c.NetMeter(); ok {
		reader, err := sampler.NewCounterReader(c.NetSource)
		if err != nil {
			return nil, err
		}
		opts.Net = netmeter.New(mc, reader, logger)
	}

	specs, err := c.CommandSpecs()
	if err != nil {
		return nil, err
	}
	for i, s := range specs {
		rc, err := sampler.NewRegexCommand(s.Cmd, s.Args, s.Regex, c.CmdTimeout.Duration)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		opts.Commands = append(opts.Commands, rc)
	}

	if c.Battery {
		switch c.BatterySource {
		case sampler.BatterySysfs:
			opts.Battery = sampler.NewSysfs()
		default:
			opts.Battery = sampler.NewACPI(c.CmdTimeout.Duration)
		}
	}
	return status.New(opts), nil
}
