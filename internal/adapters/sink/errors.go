package sink

import "errors"

var (
	// ErrUnknownFormat is returned for an output format with no writer.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrInvalidTable is returned when a table cannot be written as given.
	ErrInvalidTable = errors.New("invalid matchup table")
)
