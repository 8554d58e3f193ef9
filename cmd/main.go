package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/pregame/internal/app"
	"github.com/okian/pregame/internal/config"
	"github.com/okian/pregame/pkg/logger"
)

// Process exit codes.
const (
	exitOK     = 0
	exitFailed = 1
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run loads configuration, executes the pipeline once and returns the exit code.
func run(ctx context.Context, stdout, stderr io.Writer) int {
	// Initialize logging
	if err := logger.InitWithWriter(stdout, logger.FormatText); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		io.WriteString(stderr, "failed to initialize logging: "+err.Error()+"\n") //nolint:errcheck // best effort
		return exitFailed
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		io.WriteString(stderr, "failed to load config: "+err.Error()+"\n") //nolint:errcheck // best effort
		return exitFailed
	}

	// Re-create the handler in the configured format, then apply the level.
	if err := logger.InitWithWriter(stdout, cfg.LogFormat); err != nil {
		io.WriteString(stderr, "failed to initialize logging: "+err.Error()+"\n") //nolint:errcheck // best effort
		return exitFailed
	}
	loggerInstance := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	rep, err := app.New(cfg, app.WithLogger(loggerInstance.Named("pipeline"))).Run(ctx)
	if err != nil {
		loggerInstance.Error(ctx, "run failed", logger.Error(err))
		return exitFailed
	}
	loggerInstance.Info(ctx, "dataset ready",
		logger.String("run_id", rep.RunID),
		logger.Int("matchups", rep.Matchups),
		logger.String("output", cfg.OutputFormat))
	return exitOK
}
