package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/okian/pregame/internal/synth"
	"github.com/okian/pregame/pkg/logger"
)

// Default generation constants.
const (
	defaultStartSeason = 2013
	defaultSeasons     = 3
	defaultTeams       = 30
	defaultGames       = 162
	defaultSeed        = 1
)

func main() {
	var (
		dir     = flag.String("dir", "data", "Directory the season files are written to")
		seasons = flag.Int("seasons", defaultSeasons, "Number of consecutive seasons")
		start   = flag.Int("start", defaultStartSeason, "First season")
		teams   = flag.Int("teams", defaultTeams, "League size (even, at most 30)")
		games   = flag.Int("games", defaultGames, "Games per team and season")
		seed    = flag.Int64("seed", defaultSeed, "Random seed")
		workers = flag.Int("workers", runtime.NumCPU(), "Seasons generated concurrently")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &synth.Config{
		Dir:          *dir,
		StartSeason:  *start,
		Seasons:      *seasons,
		Teams:        *teams,
		GamesPerTeam: *games,
		Seed:         *seed,
		Workers:      *workers,
	}
	if _, err := synth.Generate(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "generation failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}
