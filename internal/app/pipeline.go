// Package app wires the pipeline stages into a single batch run.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pregame/internal/adapters/sink"
	"github.com/okian/pregame/internal/adapters/source"
	"github.com/okian/pregame/internal/config"
	"github.com/okian/pregame/internal/domain/merge"
	"github.com/okian/pregame/internal/domain/model"
	"github.com/okian/pregame/internal/domain/pivot"
	"github.com/okian/pregame/internal/domain/starter"
	"github.com/okian/pregame/internal/domain/teamform"
	"github.com/okian/pregame/pkg/logger"
	"github.com/okian/pregame/pkg/metrics"
)

// Report summarizes one run.
type Report struct {
	RunID             string
	Seasons           []int
	TeamGames         int
	Appearances       int
	Starters          int
	DuplicateStarters int
	MissingStarters   int
	UnmatchedGames    int
	Matchups          int
	Duration          time.Duration
}

// Pipeline runs Loader, both aggregators, Merger, Pivot and Writer in order.
type Pipeline struct {
	cfg     *config.Config
	logger  logger.Logger
	metrics *metrics.Manager
	writer  sink.Writer
}

// New constructs a Pipeline for cfg.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Named("pipeline")
	}
	if p.metrics == nil {
		p.metrics = metrics.Default()
	}
	return p
}

// Run executes the pipeline once. On any error nothing is written.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	if p.cfg == nil {
		return nil, ErrNilConfig
	}
	start := time.Now()
	rep := &Report{RunID: uuid.NewString()}
	log := p.logger.With(logger.String("run_id", rep.RunID))

	stats, _, ok := model.ResolveStats(p.cfg.RollStats)
	if !ok {
		return nil, fmt.Errorf("%w: roll_stats", config.ErrInvalidConfig)
	}
	writer, err := p.sink(log)
	if err != nil {
		return nil, err
	}

	log.Info(ctx, "pipeline starting",
		logger.Int("seasonStart", p.cfg.SeasonStart),
		logger.Int("seasonEnd", p.cfg.SeasonEnd),
		logger.Int("workers", p.cfg.WorkerCount),
		logger.String("output", p.cfg.OutputFormat))

	// load
	var ds *source.Dataset
	if err := p.stage(ctx, log, metrics.StageLoad, func() (err error) {
		ds, err = source.NewLoader(
			source.WithDataDir(p.cfg.DataDir),
			source.WithFilePatterns(p.cfg.TeamFilePattern, p.cfg.PitchingFilePattern),
			source.WithSeasons(p.cfg.SeasonStart, p.cfg.SeasonEnd),
			source.WithWorkerCount(p.cfg.WorkerCount),
			source.WithLogger(log.Named("source")),
			source.WithMetrics(p.metrics),
		).Load(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	rep.Seasons, rep.TeamGames, rep.Appearances = ds.Seasons, len(ds.Games), len(ds.Appearances)

	// aggregate
	var starters []model.StarterForm
	if err := p.stage(ctx, log, metrics.StageStarter, func() (err error) {
		starters, err = starter.NewAggregator(
			starter.WithDefaults(p.cfg.DefaultERA, p.cfg.DefaultWHIP),
			starter.WithWorkerCount(p.cfg.WorkerCount),
		).Aggregate(ctx, ds.Appearances)
		return err
	}); err != nil {
		return nil, err
	}
	rep.Starters = len(starters)
	p.metrics.AddStartersAggregated(len(starters))

	var forms []model.TeamForm
	if err := p.stage(ctx, log, metrics.StageTeamForm, func() (err error) {
		forms, err = teamform.NewAggregator(
			teamform.WithWindow(p.cfg.RollingWindow),
			teamform.WithStats(stats),
			teamform.WithNeutralWinRate(p.cfg.DefaultWinRate),
			teamform.WithWorkerCount(p.cfg.WorkerCount),
		).Aggregate(ctx, ds.Games)
		return err
	}); err != nil {
		return nil, err
	}
	p.metrics.AddTeamGamesRolled(len(forms))

	// merge and pivot
	var merged *model.MergedTable
	if err := p.stage(ctx, log, metrics.StageMerge, func() error {
		var st merge.Stats
		var err error
		merged, st, err = merge.NewMerger(
			merge.WithStarterDefaults(p.cfg.DefaultERA, p.cfg.DefaultWHIP),
			merge.WithStats(stats),
		).Merge(ctx, ds.TeamColumns, ds.Games, starters, forms)
		rep.DuplicateStarters, rep.MissingStarters = st.DuplicateStarters, st.MissingStarters
		return err
	}); err != nil {
		return nil, err
	}
	p.metrics.AddDuplicateStarters(rep.DuplicateStarters)
	p.metrics.AddMissingStarters(rep.MissingStarters)
	if rep.DuplicateStarters > 0 {
		log.Warn(ctx, "duplicate starter records ignored", logger.Int("count", rep.DuplicateStarters))
	}

	var table *model.MatchupTable
	if err := p.stage(ctx, log, metrics.StagePivot, func() error {
		var st pivot.Stats
		var err error
		table, st, err = pivot.Pivot(ctx, merged)
		rep.UnmatchedGames = st.UnmatchedGIDs
		p.metrics.AddUnmatchedGames(st.UnmatchedGIDs)
		if st.UnmatchedGIDs > 0 {
			log.Info(ctx, "games without both sides dropped", logger.Int("count", st.UnmatchedGIDs))
		}
		return err
	}); err != nil {
		return nil, err
	}
	rep.Matchups = len(table.Rows)

	// write
	if err := p.stage(ctx, log, metrics.StageWrite, func() error {
		return writer.Write(ctx, table)
	}); err != nil {
		return nil, err
	}
	p.metrics.SetMatchupsWritten(rep.Matchups)

	rep.Duration = time.Since(start)
	p.metrics.MarkSuccess(time.Now())
	p.flushMetrics(ctx, log)

	log.Info(ctx, "pipeline finished",
		logger.Int("matchups", rep.Matchups),
		logger.Int("teamGames", rep.TeamGames),
		logger.Int("starters", rep.Starters),
		logger.Int("unmatched", rep.UnmatchedGames),
		logger.Duration("duration", rep.Duration))
	return rep, nil
}

// stage times fn and records a failure against the stage name.
func (p *Pipeline) stage(ctx context.Context, log logger.Logger, name string, fn func() error) error {
	begin := time.Now()
	err := fn()
	p.metrics.ObserveStage(name, time.Since(begin))
	if err != nil {
		p.metrics.RecordRunFailure(name)
		p.flushMetrics(ctx, log)
		log.Error(ctx, "pipeline stage failed", logger.String("stage", name), logger.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Debug(ctx, "pipeline stage done", logger.String("stage", name), logger.Duration("took", time.Since(begin)))
	return nil
}

func (p *Pipeline) sink(log logger.Logger) (sink.Writer, error) {
	if p.writer != nil {
		return p.writer, nil
	}
	return sink.New(p.cfg.OutputFormat,
		sink.WithPath(p.cfg.OutputPath),
		sink.WithPostgres(p.cfg.PostgresDSN, p.cfg.PostgresTable),
		sink.WithLogger(log.Named("sink")),
	)
}

// flushMetrics writes the textfile when configured; failures only warn.
func (p *Pipeline) flushMetrics(ctx context.Context, log logger.Logger) {
	if p.cfg.MetricsPath == "" {
		return
	}
	if err := p.metrics.WriteTextfile(p.cfg.MetricsPath); err != nil {
		log.Warn(ctx, "metrics textfile not written", logger.String("path", p.cfg.MetricsPath), logger.Error(err))
	}
}
