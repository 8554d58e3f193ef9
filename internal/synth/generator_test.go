package synth_test

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pregame/internal/synth"
	"github.com/okian/pregame/pkg/logger"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestGenerate(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	Convey("Given a small league", t, func() {
		cfg := &synth.Config{
			Dir:          t.TempDir(),
			StartSeason:  2022,
			Seasons:      2,
			Teams:        6,
			GamesPerTeam: 20,
			Seed:         7,
			Workers:      2,
		}

		Convey("When seasons are generated", func() {
			stats, err := synth.Generate(ctx, cfg)
			So(err, ShouldBeNil)

			Convey("Then both files exist for every season", func() {
				So(stats.Files, ShouldEqual, 4)
				for _, name := range []string{"2022teamstats.csv", "2022pitching.csv", "2023teamstats.csv", "2023pitching.csv"} {
					_, err := os.Stat(filepath.Join(cfg.Dir, name))
					So(err, ShouldBeNil)
				}
			})

			Convey("Then every game has one home and one visitor row with one winner", func() {
				rows := readCSV(t, filepath.Join(cfg.Dir, "2022teamstats.csv"))[1:]
				So(len(rows)%2, ShouldEqual, 0)
				So(len(rows), ShouldBeGreaterThanOrEqualTo, 6*20)
				for i := 0; i < len(rows); i += 2 {
					So(rows[i][0], ShouldEqual, rows[i+1][0])
					So(rows[i][4], ShouldEqual, "h")
					So(rows[i+1][4], ShouldEqual, "v")
					So(rows[i][6] != rows[i+1][6], ShouldBeTrue)
				}
			})

			Convey("Then each team-game has exactly one starter", func() {
				rows := readCSV(t, filepath.Join(cfg.Dir, "2023pitching.csv"))[1:]
				starters := map[string]int{}
				for _, r := range rows {
					if r[3] == "1" {
						starters[r[0]+"/"+r[2]]++
					}
				}
				teamRows := readCSV(t, filepath.Join(cfg.Dir, "2023teamstats.csv"))[1:]
				So(len(starters), ShouldEqual, len(teamRows))
				for _, n := range starters {
					So(n, ShouldEqual, 1)
				}
			})

			Convey("Then a second run with the same seed is byte-identical", func() {
				again := *cfg
				again.Dir = t.TempDir()
				again.Workers = 1
				_, err := synth.Generate(ctx, &again)
				So(err, ShouldBeNil)
				for _, name := range []string{"2022teamstats.csv", "2023pitching.csv"} {
					a, _ := os.ReadFile(filepath.Join(cfg.Dir, name))
					b, _ := os.ReadFile(filepath.Join(again.Dir, name))
					So(string(b), ShouldEqual, string(a))
				}
			})
		})

		Convey("When the league size is odd", func() {
			cfg.Teams = 5
			_, err := synth.Generate(ctx, cfg)

			Convey("Then the config is rejected", func() {
				So(errors.Is(err, synth.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}
