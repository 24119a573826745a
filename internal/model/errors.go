package model

import (
	"errors"
	"fmt"
)

// Failure classes shared by every metric source. Callers match them with
// errors.Is; readers wrap them with context.
var (
	// ErrSourceUnavailable means the file, device or command is missing.
	// Retried on the next tick.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedData means the source answered but could not be parsed.
	// Retried on the next tick.
	ErrMalformedData = errors.New("malformed data")

	// ErrPermanentFailure means the source is retired for the rest of the run.
	ErrPermanentFailure = errors.New("permanent source failure")
)

var (
	ErrDeviceNotFound    = fmt.Errorf("%w: network device not found", ErrSourceUnavailable)
	ErrMalformedCounters = fmt.Errorf("%w: malformed network counters", ErrMalformedData)
)
