package synth

import "errors"

// ErrInvalidConfig is returned when a generation config fails validation.
var ErrInvalidConfig = errors.New("invalid synth config")
