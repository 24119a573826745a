package model

import "time"

// Counters are the cumulative byte totals a network device has moved since boot.
type Counters struct {
	RxBytes uint64
	TxBytes uint64
}

// Memory captures RAM size in KiB, the unit /proc/meminfo reports.
type Memory struct {
	TotalKiB     uint64
	AvailableKiB uint64
}

// LoadAvg holds the 1, 5 and 15 minute load averages.
type LoadAvg struct {
	Load1  float64
	Load5  float64
	Load15 float64
}

// Battery is one reading of the battery source; Text is what gets displayed.
type Battery struct {
	Percent int
	Text    string
}

// CommandMatch is the outcome of a regex command: display text and an
// optional color captured by the expression.
type CommandMatch struct {
	Text  string
	Color string
}

// Snapshot is an immutable copy of the status line after one tick, handed to
// consumers that live outside the tick loop.
type Snapshot struct {
	Timestamp time.Time
	Blocks    []Block
	Net       Counters
	NetOK     bool
}
