package pivot_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pregame/internal/domain/model"
	"github.com/okian/pregame/internal/domain/pivot"
)

func row(gid, team, site string) model.MergedRow {
	return model.MergedRow{GameID: gid, Site: site, Cells: []string{gid, team, "0.5"}}
}

func table(rows ...model.MergedRow) *model.MergedTable {
	return &model.MergedTable{
		Columns: []string{"gid", "team", "pre_win_rate"},
		Kinds:   []model.ColumnKind{model.KindText, model.KindText, model.KindNumber},
		Rows:    rows,
	}
}

func TestPivot(t *testing.T) {
	ctx := context.Background()

	Convey("Given merged rows for two full games and two half games", t, func() {
		merged := table(
			row("G2", "BOS", "h"),
			row("G1", "NYA", "h"),
			row("G9", "SEA", "h"),
			row("G1", "BOS", "v"),
			row("G2", "NYA", "v"),
			row("G7", "TEX", "v"),
			row("GX", "OAK", "x"),
		)

		out, st, err := pivot.Pivot(ctx, merged)

		Convey("Then every column appears once per side, home first", func() {
			So(err, ShouldBeNil)
			So(out.Columns, ShouldResemble, []string{
				"home_gid", "home_team", "home_pre_win_rate",
				"vis_gid", "vis_team", "vis_pre_win_rate",
			})
			So(out.Kinds[2], ShouldEqual, model.KindNumber)
			So(out.Kinds[5], ShouldEqual, model.KindNumber)
		})

		Convey("Then one row per matched game is emitted in home order", func() {
			So(len(out.Rows), ShouldEqual, 2)
			So(out.Value(0, "home_gid"), ShouldEqual, "G2")
			So(out.Value(1, "home_gid"), ShouldEqual, "G1")
			for i := range out.Rows {
				So(out.Value(i, "home_gid"), ShouldEqual, out.Value(i, "vis_gid"))
			}
			So(out.Value(1, "vis_team"), ShouldEqual, "BOS")
		})

		Convey("Then half games are counted as unmatched", func() {
			So(st.HomeRows, ShouldEqual, 3)
			So(st.VisitorRows, ShouldEqual, 3)
			So(st.UnmatchedGIDs, ShouldEqual, 2)
		})
	})

	Convey("Given only home rows", t, func() {
		_, st, err := pivot.Pivot(ctx, table(row("G1", "NYA", "h")))

		Convey("Then the result is empty", func() {
			So(errors.Is(err, pivot.ErrEmptyResult), ShouldBeTrue)
			So(st.UnmatchedGIDs, ShouldEqual, 1)
		})
	})
}
