package app

import (
	"errors"

	"github.com/okian/pregame/internal/domain/pivot"
)

var (
	// ErrEmptyResult is returned when the run produced no matchup rows; nothing is written.
	ErrEmptyResult = pivot.ErrEmptyResult
	// ErrNilConfig is returned by Run when the pipeline was built without configuration.
	ErrNilConfig = errors.New("pipeline configuration is nil")
)
