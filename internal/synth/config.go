// Package synth writes deterministic fake season files in the source layout.
package synth

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds configuration for a generation run.
type Config struct {
	Dir          string `validate:"required"`          // Output directory
	StartSeason  int    `validate:"gte=1871"`          // First season written
	Seasons      int    `validate:"gte=1,lte=200"`     // Number of consecutive seasons
	Teams        int    `validate:"gte=2,lte=30,even"` // League size
	GamesPerTeam int    `validate:"gte=1,lte=200"`     // Schedule length per team and season
	Seed         int64  // Random seed; equal seeds give byte-identical files
	Workers      int    `validate:"gte=1"` // Seasons written concurrently
}

// Stats holds generation statistics.
type Stats struct {
	Files        int
	TeamRows     int
	PitchingRows int
	Duration     time.Duration
}

var validate = newValidator() //nolint:gochecknoglobals // validators are safe for reuse

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("even", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 0
	})
	return v
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
