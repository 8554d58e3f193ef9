// Package config defines the pipeline configuration and its loading hooks.
//
// Conventions:
//   - Every value the pipeline needs (input locations, season range, window
//     size, default constants, sink) lives on Config; nothing is read from
//     process-wide state after Load returns.
//   - External errors are wrapped with this package's sentinel errors.
package config

import (
	"runtime"

	"github.com/okian/pregame/internal/domain/model"
)

// Output formats.
const (
	FormatCSV      = "csv"
	FormatXLSX     = "xlsx"
	FormatPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// DataDir holds the per-season source files.
	DataDir string `koanf:"data_dir" validate:"required"`

	// TeamFilePattern and PitchingFilePattern name a season's files; %d is the season.
	TeamFilePattern     string `koanf:"team_file_pattern" validate:"required,contains=%d"`
	PitchingFilePattern string `koanf:"pitching_file_pattern" validate:"required,contains=%d"`

	// SeasonStart and SeasonEnd bound the inclusive season range.
	SeasonStart int `koanf:"season_start" validate:"gte=1871"`
	SeasonEnd   int `koanf:"season_end" validate:"gtefield=SeasonStart"`

	// RollingWindow is the number of preceding games averaged for rolling form.
	RollingWindow int `koanf:"rolling_window" validate:"gte=1"`

	// RollStats lists the counting stat columns to roll.
	RollStats []string `koanf:"roll_stats" validate:"required,min=1,dive,required"`

	// DefaultERA and DefaultWHIP replace undefined starter rates.
	DefaultERA  float64 `koanf:"default_era" validate:"gte=0"`
	DefaultWHIP float64 `koanf:"default_whip" validate:"gte=0"`

	// DefaultWinRate is the pre-game win rate before a team's first game of a season.
	DefaultWinRate float64 `koanf:"default_win_rate" validate:"gte=0,lte=1"`

	// WorkerCount bounds per-file and per-group parallelism.
	WorkerCount int `koanf:"worker_count" validate:"gte=1"`

	// OutputFormat selects the sink: csv, xlsx or postgres.
	OutputFormat string `koanf:"output_format" validate:"oneof=csv xlsx postgres"`

	// OutputPath is the file written by the csv and xlsx sinks.
	OutputPath string `koanf:"output_path" validate:"required_unless=OutputFormat postgres"`

	// PostgresDSN and PostgresTable configure the postgres sink.
	PostgresDSN   string `koanf:"postgres_dsn" validate:"required_if=OutputFormat postgres"`
	PostgresTable string `koanf:"postgres_table" validate:"required_if=OutputFormat postgres"`

	// MetricsPath, when set, receives a Prometheus textfile after each run.
	MetricsPath string `koanf:"metrics_path"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		DataDir:             "data",
		TeamFilePattern:     "%dteamstats.csv",
		PitchingFilePattern: "%dpitching.csv",
		SeasonStart:         2013,
		SeasonEnd:           2024,
		RollingWindow:       10,
		RollStats:           model.DefaultRollStats(),
		DefaultERA:          4.50,
		DefaultWHIP:         1.35,
		DefaultWinRate:      0.5,
		WorkerCount:         runtime.NumCPU(),
		OutputFormat:        FormatCSV,
		OutputPath:          "data/processed_data.csv",
		PostgresTable:       "matchups",
	}
}
