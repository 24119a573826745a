package sampler

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Dicklesworthstone/swaystatus/internal/model"
)

// ErrTooManyGroups rejects patterns that capture more than text and color.
var ErrTooManyGroups = errors.New("regex must have at most 2 capture groups")

// RegexCommand runs an external command on every tick and extracts the
// block text, and optionally its color, from its trimmed output.
//
// Capture groups: none uses the whole match as text, one uses group 1 as
// text, two use group 1 as text and group 2 as color.
type RegexCommand struct {
	Name    string
	Args    []string
	Regex   *regexp.Regexp
	Timeout time.Duration

	run runFunc
}

func NewRegexCommand(name string, args []string, expr string, timeout time.Duration) (*RegexCommand, error) {
	if name == "" {
		return nil, errors.New("regex cmd: empty command")
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("regex cmd %q: %w", name, err)
	}
	if re.NumSubexp() > 2 {
		return nil, fmt.Errorf("regex cmd %q: %w, got %d", name, ErrTooManyGroups, re.NumSubexp())
	}
	return &RegexCommand{
		Name:    name,
		Args:    args,
		Regex:   re,
		Timeout: timeout,
		run:     runCmd,
	}, nil
}

// Run executes the command once and matches its output.
func (c *RegexCommand) Run(ctx context.Context) (model.CommandMatch, error) {
	out, err := c.run(ctx, c.Timeout, c.Name, c.Args...)
	if err != nil {
		return model.CommandMatch{}, fmt.Errorf("regex cmd %q: %w: %w", c.Name, model.ErrSourceUnavailable, err)
	}
	m := c.Regex.FindStringSubmatch(strings.TrimSpace(out))
	if m == nil {
		return model.CommandMatch{}, fmt.Errorf("regex cmd %q: %w: no match for %s", c.Name, model.ErrMalformedData, c.Regex)
	}
	switch len(m) {
	case 1:
		return model.CommandMatch{Text: m[0]}, nil
	case 2:
		return model.CommandMatch{Text: m[1]}, nil
	default:
		return model.CommandMatch{Text: m[1], Color: m[2]}, nil
	}
}
