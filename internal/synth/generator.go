package synth

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/pregame/pkg/logger"
)

// Roster and game shape constants.
const (
	rotationSize     = 5
	bullpenSize      = 4
	outsPerGame      = 27
	doubleHeaderOdds = 20 // one day in N has a doubleheader
	openerOdds       = 60 // one start in N records no outs
	dateLayout       = "20060102"
)

// File patterns written by Generate; they match the loader's defaults.
const (
	TeamFilePattern     = "%dteamstats.csv"
	PitchingFilePattern = "%dpitching.csv"
)

var teamCodes = []string{ //nolint:gochecknoglobals // fixed league pool
	"ANA", "ARI", "ATL", "BAL", "BOS", "CHA", "CHN", "CIN", "CLE", "COL",
	"DET", "HOU", "KCA", "LAN", "MIA", "MIL", "MIN", "NYA", "NYN", "OAK",
	"PHI", "PIT", "SDN", "SEA", "SFN", "SLN", "TBA", "TEX", "TOR", "WAS",
}

var (
	teamHeader     = []string{"gid", "team", "date", "number", "vishome", "opp", "win", "b_r", "b_h", "b_hr", "b_w", "p_r", "p_h", "d_e"} //nolint:gochecknoglobals // file layout
	pitchingHeader = []string{"gid", "id", "team", "p_seq", "date", "number", "p_ipouts", "p_h", "p_w", "p_er"}                           //nolint:gochecknoglobals // file layout
)

type roster struct {
	starters []string
	bullpen  []string
}

// side is one team's half of a simulated game.
type side struct {
	team  string
	site  string
	runs  int
	hits  int
	hr    int
	walks int
	errs  int
}

type season struct {
	team     [][]string
	pitching [][]string
}

// Generate writes one team file and one pitching file per season.
func Generate(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	log := logger.Named("synth")
	log.Info(ctx, "generating synthetic seasons",
		logger.Int("seasons", cfg.Seasons), logger.Int("teams", cfg.Teams), logger.Int("games", cfg.GamesPerTeam))

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	teams := teamCodes[:cfg.Teams]
	rosters, err := buildRosters(rand.New(rand.NewSource(cfg.Seed)), teams) //nolint:gosec // reproducible fake data
	if err != nil {
		return nil, err
	}

	results := make([]season, cfg.Seasons)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := 0; i < cfg.Seasons; i++ {
		i := i
		year := cfg.StartSeason + i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(cfg.Seed + int64(year))) //nolint:gosec // reproducible fake data
			results[i] = simulateSeason(rng, year, teams, rosters, cfg.GamesPerTeam)
			if err := writeCSV(filepath.Join(cfg.Dir, fmt.Sprintf(TeamFilePattern, year)), teamHeader, results[i].team); err != nil {
				return err
			}
			return writeCSV(filepath.Join(cfg.Dir, fmt.Sprintf(PitchingFilePattern, year)), pitchingHeader, results[i].pitching)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &Stats{Files: 2 * cfg.Seasons, Duration: time.Since(start)}
	for _, s := range results {
		stats.TeamRows += len(s.team)
		stats.PitchingRows += len(s.pitching)
	}
	log.Info(ctx, "synthetic seasons written",
		logger.String("dir", cfg.Dir),
		logger.Int("teamRows", stats.TeamRows),
		logger.Int("pitchingRows", stats.PitchingRows),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

// buildRosters assigns stable pitcher ids drawn from rng so every season
// shares the same staff.
func buildRosters(rng *rand.Rand, teams []string) (map[string]roster, error) {
	out := make(map[string]roster, len(teams))
	for _, t := range teams {
		var r roster
		for i := 0; i < rotationSize+bullpenSize; i++ {
			id, err := uuid.NewRandomFromReader(rng)
			if err != nil {
				return nil, fmt.Errorf("pitcher id: %w", err)
			}
			if i < rotationSize {
				r.starters = append(r.starters, id.String())
			} else {
				r.bullpen = append(r.bullpen, id.String())
			}
		}
		out[t] = r
	}
	return out, nil
}

// simulateSeason pairs every team once per day. The first pairing of a day
// occasionally plays a doubleheader.
func simulateSeason(rng *rand.Rand, year int, teams []string, rosters map[string]roster, days int) season {
	var s season
	opening := time.Date(year, time.April, 1, 0, 0, 0, 0, time.UTC)
	order := make([]string, len(teams))
	copy(order, teams)
	starts := make(map[string]int, len(teams))

	for d := 0; d < days; d++ {
		date := opening.AddDate(0, 0, d)
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for p := 0; p+1 < len(order); p += 2 {
			home, vis := order[p], order[p+1]
			games := []int{0}
			if p == 0 && rng.Intn(doubleHeaderOdds) == 0 {
				games = []int{1, 2}
			}
			for _, number := range games {
				gid := home + date.Format(dateLayout) + strconv.Itoa(number)
				h, v := playGame(rng, home, vis)
				s.team = append(s.team,
					teamRow(gid, date, number, h, v),
					teamRow(gid, date, number, v, h))
				for _, pair := range [][2]side{{h, v}, {v, h}} {
					pitcher := rosters[pair[0].team]
					ace := pitcher.starters[starts[pair[0].team]%rotationSize]
					starts[pair[0].team]++
					s.pitching = append(s.pitching, pitchingRows(rng, gid, date, number, pair[0].team, ace, pitcher.bullpen, pair[1])...)
				}
			}
		}
	}
	return s
}

func playGame(rng *rand.Rand, home, vis string) (side, side) {
	h := batting(rng, home, "h")
	v := batting(rng, vis, "v")
	if h.runs == v.runs {
		h.runs++
		h.hits++
	}
	return h, v
}

func batting(rng *rand.Rand, team, site string) side {
	runs := 0
	for i := 0; i < 9; i++ {
		if rng.Intn(3) == 0 {
			runs += 1 + rng.Intn(2)
		}
	}
	return side{
		team:  team,
		site:  site,
		runs:  runs,
		hits:  runs + 3 + rng.Intn(6),
		hr:    rng.Intn(min(runs, 3) + 1),
		walks: rng.Intn(6),
		errs:  rng.Intn(3),
	}
}

func teamRow(gid string, date time.Time, number int, self, opp side) []string {
	win := "0"
	if self.runs > opp.runs {
		win = "1"
	}
	return []string{
		gid, self.team, date.Format(dateLayout), strconv.Itoa(number), self.site, opp.team, win,
		strconv.Itoa(self.runs), strconv.Itoa(self.hits), strconv.Itoa(self.hr), strconv.Itoa(self.walks),
		strconv.Itoa(opp.runs), strconv.Itoa(opp.hits), strconv.Itoa(self.errs),
	}
}

// pitchingRows splits the opponent's offense between the starter and one or
// two relievers.
func pitchingRows(rng *rand.Rand, gid string, date time.Time, number int, team, ace string, bullpen []string, opp side) [][]string {
	outs := 9 + rng.Intn(13)
	if rng.Intn(openerOdds) == 0 {
		outs = 0
	}
	er := 0
	if opp.runs > 0 {
		er = rng.Intn(opp.runs + 1)
	}
	hits := min(opp.hits, er+rng.Intn(opp.hits-er+1))
	walks := rng.Intn(opp.walks + 1)

	rows := [][]string{pitchingRow(gid, ace, team, 1, date, number, outs, hits, walks, er)}
	relievers := 1 + rng.Intn(2)
	left := outsPerGame - outs
	for i := 0; i < relievers; i++ {
		o := left
		if i < relievers-1 {
			o = left / 2
		}
		left -= o
		var rER, rHits, rWalks int
		if i == relievers-1 {
			rER, rHits, rWalks = opp.runs-er, opp.hits-hits, opp.walks-walks
		}
		id := bullpen[rng.Intn(len(bullpen))]
		rows = append(rows, pitchingRow(gid, id, team, i+2, date, number, o, rHits, rWalks, rER))
	}
	return rows
}

func pitchingRow(gid, id, team string, seq int, date time.Time, number, outs, hits, walks, er int) []string {
	return []string{
		gid, id, team, strconv.Itoa(seq), date.Format(dateLayout), strconv.Itoa(number),
		strconv.Itoa(outs), strconv.Itoa(hits), strconv.Itoa(walks), strconv.Itoa(er),
	}
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
