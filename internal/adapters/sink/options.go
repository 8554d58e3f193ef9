package sink

import "github.com/okian/pregame/pkg/logger"

// Option applies a configuration option to a writer built by New.
type Option func(*settings)

type settings struct {
	path  string
	dsn   string
	table string
	log   logger.Logger
}

// WithPath sets the output file for the csv and xlsx formats.
func WithPath(path string) Option {
	return func(s *settings) { s.path = path }
}

// WithPostgres sets the connection string and target table for the postgres format.
func WithPostgres(dsn, table string) Option {
	return func(s *settings) {
		s.dsn = dsn
		s.table = table
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) { s.log = l }
}
