package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/sync/errgroup"

	"github.com/okian/pregame/internal/domain/model"
	"github.com/okian/pregame/pkg/logger"
	"github.com/okian/pregame/pkg/metrics"
)

// Source column names.
const (
	ColGameID       = "gid"
	ColTeam         = "team"
	ColDate         = "date"
	ColSite         = "vishome"
	ColWin          = "win"
	ColDoubleHeader = "number"
	ColPitcherID    = "id"
	ColSequence     = "p_seq"
	ColEarnedRuns   = "p_er"
	ColOuts         = "p_ipouts"
	ColHitsAllowed  = "p_h"
	ColWalks        = "p_w"
)

// Default loader configuration constants.
const (
	defaultDataDir         = "data"
	defaultTeamPattern     = "%dteamstats.csv"
	defaultPitchingPattern = "%dpitching.csv"
	defaultSeasonStart     = 2013
	defaultSeasonEnd       = 2024
	utf8BOM                = "\ufeff"
)

var (
	requiredTeamColumns     = []string{ColGameID, ColTeam, ColDate, ColSite}                   //nolint:gochecknoglobals // fixed schema
	requiredPitchingColumns = []string{ColGameID, ColTeam, ColPitcherID, ColSequence, ColDate} //nolint:gochecknoglobals // fixed schema
)

// dateLayouts are tried in order; only the calendar date is kept.
var dateLayouts = []string{ //nolint:gochecknoglobals // accepted date formats
	"20060102",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Dataset is everything read for one run.
type Dataset struct {
	// Seasons that had a team-game file, ascending.
	Seasons []int
	// TeamColumns is the union of team file headers in first-seen order.
	TeamColumns []string
	Games       []model.GameTeamRecord
	Appearances []model.PitcherGameRecord
}

// Loader reads season files from a directory.
type Loader struct {
	dataDir         string
	teamPattern     string
	pitchingPattern string
	seasonStart     int
	seasonEnd       int
	workers         int

	logger  logger.Logger
	metrics *metrics.Manager
}

// NewLoader creates a Loader with configuration options.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		dataDir:         defaultDataDir,
		teamPattern:     defaultTeamPattern,
		pitchingPattern: defaultPitchingPattern,
		seasonStart:     defaultSeasonStart,
		seasonEnd:       defaultSeasonEnd,
		workers:         runtime.NumCPU(),
		metrics:         metrics.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.logger == nil {
		l.logger = logger.Named("source")
	}
	return l
}

// rawTable is one parsed CSV file held column-major.
type rawTable struct {
	path    string
	season  int
	columns []string
	cells   [][]string
	rows    int
}

func (t *rawTable) index() map[string]int {
	idx := make(map[string]int, len(t.columns))
	for i, c := range t.columns {
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}
	return idx
}

type seasonFiles struct {
	team     *rawTable
	pitching *rawTable
}

// Load reads every configured season. Missing files are skipped; the run fails
// with ErrNoSourceData when no season has a team-game file.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	n := l.seasonEnd - l.seasonStart + 1
	slots := make([]seasonFiles, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i := 0; i < n; i++ {
		i := i
		season := l.seasonStart + i
		g.Go(func() error {
			team, err := l.readIfExists(gctx, metrics.KindTeam, l.teamPattern, season)
			if err != nil {
				return err
			}
			pitching, err := l.readIfExists(gctx, metrics.KindPitching, l.pitchingPattern, season)
			if err != nil {
				return err
			}
			slots[i] = seasonFiles{team: team, pitching: pitching}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &Dataset{}
	var teams, pitching []*rawTable
	for i, s := range slots {
		if s.team != nil {
			teams = append(teams, s.team)
			ds.Seasons = append(ds.Seasons, l.seasonStart+i)
		}
		if s.pitching != nil {
			pitching = append(pitching, s.pitching)
		}
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: seasons %d-%d in %s", ErrNoSourceData, l.seasonStart, l.seasonEnd, l.dataDir)
	}

	union := make(map[string]int)
	for _, t := range teams {
		for _, c := range t.columns {
			if _, ok := union[c]; !ok {
				union[c] = len(ds.TeamColumns)
				ds.TeamColumns = append(ds.TeamColumns, c)
			}
		}
	}

	for _, t := range teams {
		games, err := buildGames(t, union, len(ds.TeamColumns), len(ds.Games))
		if err != nil {
			return nil, err
		}
		ds.Games = append(ds.Games, games...)
	}
	for _, t := range pitching {
		apps, err := buildAppearances(t, len(ds.Appearances))
		if err != nil {
			return nil, err
		}
		ds.Appearances = append(ds.Appearances, apps...)
	}

	l.logger.Info(ctx, "source data loaded",
		logger.Int("seasons", len(ds.Seasons)),
		logger.Int("teamGames", len(ds.Games)),
		logger.Int("appearances", len(ds.Appearances)),
		logger.Int("columns", len(ds.TeamColumns)),
	)
	return ds, nil
}

// readIfExists parses a season file, returning nil when it is absent.
func (l *Loader) readIfExists(ctx context.Context, kind, pattern string, season int) (*rawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(l.dataDir, fmt.Sprintf(pattern, season))
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug(ctx, "season file missing, skipping",
				logger.String("kind", kind), logger.Int("season", season), logger.String("path", path))
			l.metrics.RecordFileSkipped(kind)
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	t, err := readTable(path, season)
	if err != nil {
		return nil, err
	}
	l.metrics.RecordFileLoaded(kind)
	l.metrics.AddRowsLoaded(kind, t.rows)
	l.logger.Debug(ctx, "season file read",
		logger.String("kind", kind), logger.Int("season", season), logger.Int("rows", t.rows))
	return t, nil
}

// readTable parses a CSV file with every column kept as text. A file with a
// header and no rows is an empty table.
func readTable(path string, season int) (*rawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	header, hasRows, err := sniff(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedSource, path, err)
	}
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
		if seen[header[i]] {
			return nil, fmt.Errorf("%w: %s: duplicate column %q", ErrMalformedSource, path, header[i])
		}
		seen[header[i]] = true
	}
	t := &rawTable{
		path:    path,
		season:  season,
		columns: header,
		cells:   make([][]string, len(header)),
	}
	if !hasRows {
		return t, nil
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedSource, path, df.Err)
	}

	// gota renames columns; the header read above keeps the file's names.
	names := df.Names()
	if len(names) != len(header) {
		return nil, fmt.Errorf("%w: %s: %d columns parsed, header has %d", ErrMalformedSource, path, len(names), len(header))
	}
	t.rows = df.Nrow()
	for i, name := range names {
		col := df.Col(name)
		if col.Err != nil {
			return nil, fmt.Errorf("%w: %s: column %q: %w", ErrMalformedSource, path, header[i], col.Err)
		}
		t.cells[i] = col.Records()
	}
	return t, nil
}

// sniff reads the header and reports whether any data row follows it.
func sniff(data []byte) ([]string, bool, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	_, err = r.Read()
	if errors.Is(err, io.EOF) {
		return header, false, nil
	}
	return header, true, err
}

func requireColumns(t *rawTable, idx map[string]int, required []string) error {
	for _, c := range required {
		if _, ok := idx[c]; !ok {
			return fmt.Errorf("%w: %s: missing column %q", ErrMalformedSource, t.path, c)
		}
	}
	return nil
}

// buildGames converts a team file into records whose Raw cells follow the union layout.
func buildGames(t *rawTable, union map[string]int, width, firstOrder int) ([]model.GameTeamRecord, error) {
	if t.rows == 0 {
		return nil, nil
	}
	idx := t.index()
	if err := requireColumns(t, idx, requiredTeamColumns); err != nil {
		return nil, err
	}
	cell := func(name string, row int) string {
		if j, ok := idx[name]; ok {
			return t.cells[j][row]
		}
		return ""
	}

	out := make([]model.GameTeamRecord, t.rows)
	for r := 0; r < t.rows; r++ {
		date, err := ParseDate(cell(ColDate, r))
		if err != nil {
			// +2: header line and 1-based numbering
			return nil, fmt.Errorf("%w: %s line %d: %w", ErrMalformedSource, t.path, r+2, err)
		}
		rec := model.GameTeamRecord{
			GameID:       NormalizeGameID(cell(ColGameID, r)),
			Team:         strings.TrimSpace(cell(ColTeam, r)),
			Date:         date,
			Season:       t.season,
			Site:         NormalizeSite(cell(ColSite, r)),
			Win:          ParseWin(cell(ColWin, r)),
			DoubleHeader: parseInt(cell(ColDoubleHeader, r)),
			Order:        firstOrder + r,
			RunsScored:   ParseStat(cell("b_r", r)),
			Hits:         ParseStat(cell("b_h", r)),
			HomeRuns:     ParseStat(cell("b_hr", r)),
			RunsAllowed:  ParseStat(cell("p_r", r)),
			HitsAllowed:  ParseStat(cell("p_h", r)),
			Errors:       ParseStat(cell("d_e", r)),
		}

		raw := make([]string, width)
		for j, name := range t.columns {
			raw[union[name]] = t.cells[j][r]
		}
		raw[union[ColGameID]] = rec.GameID
		raw[union[ColDate]] = FormatDate(rec.Date)
		raw[union[ColSite]] = rec.Site
		rec.Raw = raw

		out[r] = rec
	}
	return out, nil
}

// buildAppearances converts a pitching file into appearance records.
func buildAppearances(t *rawTable, firstOrder int) ([]model.PitcherGameRecord, error) {
	if t.rows == 0 {
		return nil, nil
	}
	idx := t.index()
	if err := requireColumns(t, idx, requiredPitchingColumns); err != nil {
		return nil, err
	}
	cell := func(name string, row int) string {
		if j, ok := idx[name]; ok {
			return t.cells[j][row]
		}
		return ""
	}

	out := make([]model.PitcherGameRecord, t.rows)
	for r := 0; r < t.rows; r++ {
		date, err := ParseDate(cell(ColDate, r))
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %w", ErrMalformedSource, t.path, r+2, err)
		}
		out[r] = model.PitcherGameRecord{
			GameID:       NormalizeGameID(cell(ColGameID, r)),
			Team:         strings.TrimSpace(cell(ColTeam, r)),
			PitcherID:    strings.TrimSpace(cell(ColPitcherID, r)),
			Sequence:     parseInt(cell(ColSequence, r)),
			Date:         date,
			DoubleHeader: parseInt(cell(ColDoubleHeader, r)),
			Order:        firstOrder + r,
			EarnedRuns:   parseCount(cell(ColEarnedRuns, r)),
			Outs:         parseCount(cell(ColOuts, r)),
			HitsAllowed:  parseCount(cell(ColHitsAllowed, r)),
			Walks:        parseCount(cell(ColWalks, r)),
		}
	}
	return out, nil
}
