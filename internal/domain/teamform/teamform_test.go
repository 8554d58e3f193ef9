package teamform_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pregame/internal/domain/model"
	"github.com/okian/pregame/internal/domain/teamform"
)

// season builds n consecutive games for one team with runs 1..n and every
// third game won.
func season(team string, year, n, firstOrder int) []model.GameTeamRecord {
	games := make([]model.GameTeamRecord, n)
	for i := range games {
		games[i] = model.GameTeamRecord{
			GameID:      fmt.Sprintf("%s%d%03d", team, year, i),
			Team:        team,
			Date:        time.Date(year, 4, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Season:      year,
			Win:         i%3 == 0,
			Order:       firstOrder + i,
			RunsScored:  float64(i + 1),
			Hits:        float64(2 * (i + 1)),
			HomeRuns:    1,
			RunsAllowed: float64(i % 4),
			HitsAllowed: 5,
			Errors:      0,
		}
	}
	return games
}

func TestAggregator_Aggregate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fifteen-game team season", t, func() {
		games := season("BOS", 2023, 15, 0)
		agg := teamform.NewAggregator()
		forms, err := agg.Aggregate(ctx, games)
		So(err, ShouldBeNil)
		So(len(forms), ShouldEqual, 15)

		Convey("Then the first game has no form and a neutral win rate", func() {
			So(forms[0].PriorGames, ShouldEqual, 0)
			So(forms[0].PriorWins, ShouldEqual, 0)
			So(forms[0].PreWinRate, ShouldEqual, 0.5)
			for _, v := range forms[0].Rolling {
				So(math.IsNaN(v), ShouldBeTrue)
			}
		})

		Convey("Then rolling means match a direct recomputation over the preceding window", func() {
			for i, f := range forms {
				if i == 0 {
					continue
				}
				lo := max(0, i-10)
				var sum float64
				for _, g := range games[lo:i] {
					sum += g.RunsScored
				}
				So(f.Rolling[0], ShouldAlmostEqual, sum/float64(i-lo), 1e-9)
			}
		})

		Convey("Then win counts include every prior game of the season", func() {
			So(forms[14].PriorGames, ShouldEqual, 14)
			So(forms[14].PriorWins, ShouldEqual, 5)
			So(forms[14].PreWinRate, ShouldAlmostEqual, 5.0/14, 1e-9)
		})

		Convey("Then the tracked stats follow the default order", func() {
			cols := make([]string, 0, len(agg.Stats()))
			for _, s := range agg.Stats() {
				cols = append(cols, s.Column)
			}
			So(cols, ShouldResemble, []string{"b_r", "b_h", "b_hr", "p_r", "p_h", "d_e"})
		})
	})

	Convey("Given games with undefined stat values", t, func() {
		games := season("NYA", 2023, 4, 0)
		games[1].RunsScored = math.NaN()

		forms, err := teamform.NewAggregator().Aggregate(ctx, games)

		Convey("Then undefined values are skipped rather than counted", func() {
			So(err, ShouldBeNil)
			So(forms[2].Rolling[0], ShouldEqual, 1)
			So(forms[3].Rolling[0], ShouldEqual, 2)
		})
	})

	Convey("Given two seasons for the same team delivered out of order", t, func() {
		games := append(season("SEA", 2024, 3, 10), season("SEA", 2023, 3, 0)...)

		forms, err := teamform.NewAggregator(teamform.WithWindow(2)).Aggregate(ctx, games)

		Convey("Then form resets at the season boundary", func() {
			So(err, ShouldBeNil)
			So(forms[0].Season, ShouldEqual, 2023)
			So(forms[3].Season, ShouldEqual, 2024)
			So(forms[3].PriorGames, ShouldEqual, 0)
			So(math.IsNaN(forms[3].Rolling[0]), ShouldBeTrue)
		})

		Convey("Then the window option bounds the rolling mean", func() {
			So(forms[2].Rolling[0], ShouldEqual, 1.5)
		})
	})

	Convey("Given a doubleheader", t, func() {
		games := season("CHA", 2023, 3, 0)
		games[2].Date = games[1].Date
		games[1].DoubleHeader, games[2].DoubleHeader = 2, 1

		forms, err := teamform.NewAggregator().Aggregate(ctx, games)

		Convey("Then the doubleheader number breaks the date tie", func() {
			So(err, ShouldBeNil)
			So(forms[1].GameID, ShouldEqual, games[2].GameID)
			So(forms[2].GameID, ShouldEqual, games[1].GameID)
		})
	})

	Convey("Given a league of team seasons", t, func() {
		var games []model.GameTeamRecord
		for i, team := range []string{"ANA", "BAL", "CLE", "DET", "HOU", "KCA", "MIN", "OAK"} {
			games = append(games, season(team, 2022, 30, len(games)+i)...)
			games = append(games, season(team, 2023, 30, len(games)+i)...)
		}

		Convey("Then the result does not depend on the worker count", func() {
			one, err := teamform.NewAggregator(teamform.WithWorkerCount(1)).Aggregate(ctx, games)
			So(err, ShouldBeNil)
			many, err := teamform.NewAggregator(teamform.WithWorkerCount(6)).Aggregate(ctx, games)
			So(err, ShouldBeNil)
			So(len(many), ShouldEqual, len(one))
			for i := range one {
				So(many[i].Key(), ShouldResemble, one[i].Key())
				So(many[i].PreWinRate, ShouldEqual, one[i].PreWinRate)
				So(fmt.Sprint(many[i].Rolling), ShouldEqual, fmt.Sprint(one[i].Rolling))
			}
		})
	})
}
