package source_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pregame/internal/adapters/source"
	"github.com/okian/pregame/pkg/logger"
	"github.com/okian/pregame/pkg/metrics"
)

const teamCSV2019 = `gid,team,date,number,vishome,win,b_r,b_h,b_hr,p_r,p_h,d_e,mgr
 NYA201904010 ,NYA,20190401,0,H,Y,5,9,2,3,7,0,boone
NYA201904010,BOS,20190401,0, v ,n,3,7,1,5,9,1,cora
NYA201904020,NYA,20190402,0,h,w,,8,1,2,6,0,boone
`

const teamCSV2021 = `gid,team,date,vishome,win,b_r,b_h,b_hr,p_r,p_h,d_e,site
BOS202104010,BOS,2021-04-01,h,TRUE,4,8,0,1,5,0,BOS07
BOS202104010,NYA,2021-04-01,v,false,1,5,0,4,8,2,BOS07
`

const pitchingCSV2019 = `gid,id,team,p_seq,p_ipouts,p_h,p_w,p_er,date,number
NYA201904010,tanam001,NYA,1,18,5,1,2,20190401,0
NYA201904010,brita001,NYA,2,3,0,0,0,20190401,0
NYA201904010,salec001,BOS,1.0,15,6,2,3,20190401,0
`

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func newLoader(dir string, start, end int) *source.Loader {
	return source.NewLoader(
		source.WithDataDir(dir),
		source.WithSeasons(start, end),
		source.WithWorkerCount(2),
		source.WithMetrics(metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))),
	)
}

func TestLoader_Load(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	Convey("Given a data directory with a sparse season range", t, func() {
		dir := t.TempDir()
		writeFile(t, dir, "2019teamstats.csv", teamCSV2019)
		writeFile(t, dir, "2019pitching.csv", pitchingCSV2019)
		writeFile(t, dir, "2021teamstats.csv", teamCSV2021)
		ctx := context.Background()

		Convey("When loading 2019 through 2021", func() {
			ds, err := newLoader(dir, 2019, 2021).Load(ctx)

			Convey("Then the missing 2020 files are skipped", func() {
				So(err, ShouldBeNil)
				So(ds.Seasons, ShouldResemble, []int{2019, 2021})
				So(len(ds.Games), ShouldEqual, 5)
				So(len(ds.Appearances), ShouldEqual, 3)
			})

			Convey("And every record is stamped with its season in ingestion order", func() {
				So(ds.Games[0].Season, ShouldEqual, 2019)
				So(ds.Games[3].Season, ShouldEqual, 2021)
				for i, g := range ds.Games {
					So(g.Order, ShouldEqual, i)
				}
			})

			Convey("And key fields are normalized", func() {
				first := ds.Games[0]
				So(first.GameID, ShouldEqual, "NYA201904010")
				So(first.Site, ShouldEqual, "h")
				So(first.Win, ShouldBeTrue)
				So(first.Date, ShouldEqual, time.Date(2019, 4, 1, 0, 0, 0, 0, time.UTC))
				So(ds.Games[1].Site, ShouldEqual, "v")
				So(ds.Games[1].Win, ShouldBeFalse)
				So(ds.Games[2].Win, ShouldBeTrue)
				So(ds.Games[3].Date, ShouldEqual, time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC))
				So(ds.Games[3].Win, ShouldBeTrue)
			})

			Convey("And counting stats are typed, with blanks undefined", func() {
				So(ds.Games[0].RunsScored, ShouldEqual, 5)
				So(ds.Games[0].HitsAllowed, ShouldEqual, 7)
				So(math.IsNaN(ds.Games[2].RunsScored), ShouldBeTrue)
			})

			Convey("And raw cells follow the union of columns", func() {
				So(ds.TeamColumns, ShouldResemble, []string{
					"gid", "team", "date", "number", "vishome", "win",
					"b_r", "b_h", "b_hr", "p_r", "p_h", "d_e", "mgr", "site",
				})
				So(ds.Games[0].Raw[0], ShouldEqual, "NYA201904010")
				So(ds.Games[0].Raw[2], ShouldEqual, "2019-04-01")
				So(ds.Games[0].Raw[4], ShouldEqual, "h")
				So(ds.Games[0].Raw[12], ShouldEqual, "boone")
				So(ds.Games[0].Raw[13], ShouldEqual, "")
				So(ds.Games[3].Raw[12], ShouldEqual, "")
				So(ds.Games[3].Raw[13], ShouldEqual, "BOS07")
			})

			Convey("And pitcher appearances keep sequence and counts", func() {
				So(ds.Appearances[0].PitcherID, ShouldEqual, "tanam001")
				So(ds.Appearances[0].IsStarter(), ShouldBeTrue)
				So(ds.Appearances[1].IsStarter(), ShouldBeFalse)
				So(ds.Appearances[2].IsStarter(), ShouldBeTrue)
				So(ds.Appearances[2].Outs, ShouldEqual, 15)
				So(ds.Appearances[2].EarnedRuns, ShouldEqual, 3)
			})
		})

		Convey("When no season in range has a team file", func() {
			_, err := newLoader(dir, 2000, 2005).Load(ctx)

			Convey("Then loading fails with ErrNoSourceData", func() {
				So(errors.Is(err, source.ErrNoSourceData), ShouldBeTrue)
			})
		})

		Convey("When a team file lacks a required column", func() {
			writeFile(t, dir, "2022teamstats.csv", "gid,team,win\nX,NYA,1\n")
			_, err := newLoader(dir, 2022, 2022).Load(ctx)

			Convey("Then loading fails with ErrMalformedSource", func() {
				So(errors.Is(err, source.ErrMalformedSource), ShouldBeTrue)
			})
		})

		Convey("When a row has an unreadable date", func() {
			writeFile(t, dir, "2023teamstats.csv", "gid,team,date,vishome,win\nX,NYA,someday,h,1\n")
			_, err := newLoader(dir, 2023, 2023).Load(ctx)

			Convey("Then loading fails with ErrMalformedSource", func() {
				So(errors.Is(err, source.ErrMalformedSource), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "line 2")
			})
		})

		Convey("When a season's pitching file has only a header", func() {
			writeFile(t, dir, "2023teamstats.csv", teamCSV2021)
			writeFile(t, dir, "2023pitching.csv", "gid,id,team,p_seq,p_ipouts,p_h,p_w,p_er,date\n")
			ds, err := newLoader(dir, 2023, 2023).Load(ctx)

			Convey("Then the season loads with no appearances", func() {
				So(err, ShouldBeNil)
				So(len(ds.Games), ShouldEqual, 2)
				So(len(ds.Appearances), ShouldEqual, 0)
			})
		})

		Convey("When a season's team file is header-only or blank", func() {
			writeFile(t, dir, "2022teamstats.csv", "gid,team,date,vishome,win,b_r\n")
			writeFile(t, dir, "2020teamstats.csv", "")
			ds, err := newLoader(dir, 2019, 2022).Load(ctx)

			Convey("Then the other seasons still load", func() {
				So(err, ShouldBeNil)
				So(len(ds.Games), ShouldEqual, 5)
				So(ds.Games[4].Season, ShouldEqual, 2021)
			})
		})

		Convey("When a team file repeats a column name", func() {
			writeFile(t, dir, "2024teamstats.csv", "gid,team,date,vishome,win,b_r,b_r\nX,NYA,20240401,h,1,3,4\n")
			_, err := newLoader(dir, 2024, 2024).Load(ctx)

			Convey("Then loading fails instead of renaming it", func() {
				So(errors.Is(err, source.ErrMalformedSource), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, `duplicate column "b_r"`)
			})
		})

		Convey("When dates are ISO timestamps", func() {
			writeFile(t, dir, "2025teamstats.csv",
				"gid,team,date,vishome,win\nX,NYA,2025-04-01T00:00:00,h,1\nX,BOS,2025-04-01T19:05:00-04:00,v,0\n")
			ds, err := newLoader(dir, 2025, 2025).Load(ctx)

			Convey("Then they are read as calendar dates", func() {
				So(err, ShouldBeNil)
				So(ds.Games[0].Date, ShouldEqual, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
				So(ds.Games[1].Date, ShouldEqual, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := newLoader(dir, 2019, 2021).Load(cctx)

			Convey("Then loading stops with the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestNormalization(t *testing.T) {
	Convey("Given raw win encodings", t, func() {
		for _, in := range []string{"Y", "y", "W", "w", "1", "TRUE", "true", " True "} {
			So(source.ParseWin(in), ShouldBeTrue)
		}
		for _, in := range []string{"N", "L", "0", "FALSE", "", "yes", "T"} {
			So(source.ParseWin(in), ShouldBeFalse)
		}
	})

	Convey("Given raw dates in several layouts", t, func() {
		want := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
		for _, in := range []string{"20240630", "2024-06-30", "2024/06/30", "06/30/2024", "2024-06-30 19:05:00", "2024-06-30T00:00:00", "2024-06-30T19:05:00-04:00"} {
			got, err := source.ParseDate(in)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}
		_, err := source.ParseDate("30.06.2024")
		So(err, ShouldNotBeNil)
		So(source.FormatDate(want), ShouldEqual, "2024-06-30")
	})

	Convey("Given site indicators and game ids", t, func() {
		So(source.NormalizeSite(" H "), ShouldEqual, "h")
		So(source.NormalizeSite("V"), ShouldEqual, "v")
		So(source.NormalizeGameID("\tSEA202404010 "), ShouldEqual, "SEA202404010")
	})

	Convey("Given counting stat cells", t, func() {
		So(source.ParseStat("4"), ShouldEqual, 4)
		So(source.ParseStat(" 2.5 "), ShouldEqual, 2.5)
		So(math.IsNaN(source.ParseStat("")), ShouldBeTrue)
		So(math.IsNaN(source.ParseStat("n/a")), ShouldBeTrue)
		So(math.IsNaN(source.ParseStat("+Inf")), ShouldBeTrue)
	})
}
