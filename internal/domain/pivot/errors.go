package pivot

import "errors"

// ErrEmptyResult is returned when no game has both a home and a visitor record.
var ErrEmptyResult = errors.New("no matchup rows produced")
