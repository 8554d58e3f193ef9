package source

import "errors"

// Sentinel kinds for source loading errors.
var (
	// ErrNoSourceData means no team-game file exists for any configured season.
	ErrNoSourceData = errors.New("no team-game source data")
	// ErrMalformedSource means a file lacks a required column or holds an unreadable row.
	ErrMalformedSource = errors.New("malformed source file")
)
