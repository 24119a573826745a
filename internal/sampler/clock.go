package sampler

import (
	"time"

	"github.com/ncruces/go-strftime"
)

// DefaultTimeFormat is an ISO date followed by a 12-hour clock.
const DefaultTimeFormat = "%F %r"

// Clock formats the local time with a strftime pattern.
type Clock struct {
	Format string
	Now    func() time.Time
}

func NewClock(format string) *Clock {
	if format == "" {
		format = DefaultTimeFormat
	}
	return &Clock{Format: format, Now: time.Now}
}

func (c *Clock) String() string {
	return strftime.Format(c.Format, c.Now())
}
