package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/pregame/internal/synth"
	"github.com/okian/pregame/pkg/logger"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestRun(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	convey.Convey("Given synthetic season files", t, func() {
		data := t.TempDir()
		_, err := synth.Generate(ctx, &synth.Config{
			Dir: data, StartSeason: 2019, Seasons: 1, Teams: 4, GamesPerTeam: 12, Seed: 3, Workers: 1,
		})
		convey.So(err, convey.ShouldBeNil)
		out := filepath.Join(t.TempDir(), "processed_data.csv")

		convey.Convey("When the CLI runs with env configuration", func() {
			setEnv(t, map[string]string{
				"PREGAME_DATA_DIR":     data,
				"PREGAME_SEASON_START": "2019",
				"PREGAME_SEASON_END":   "2020",
				"PREGAME_OUTPUT_PATH":  out,
				"PREGAME_LOG_FORMAT":   "json",
			})
			var stdout, stderr bytes.Buffer
			code := run(ctx, &stdout, &stderr)

			convey.Convey("Then it exits cleanly and writes the dataset", func() {
				convey.So(code, convey.ShouldEqual, exitOK)
				convey.So(stderr.String(), convey.ShouldBeEmpty)
				_, err := os.Stat(out)
				convey.So(err, convey.ShouldBeNil)
				convey.So(stdout.String(), convey.ShouldContainSubstring, `"msg":"dataset ready"`)
			})
		})

		convey.Convey("When no season in range has data", func() {
			setEnv(t, map[string]string{
				"PREGAME_DATA_DIR":     data,
				"PREGAME_SEASON_START": "2001",
				"PREGAME_SEASON_END":   "2002",
				"PREGAME_OUTPUT_PATH":  out,
			})
			var stdout, stderr bytes.Buffer

			convey.Convey("Then it exits non-zero", func() {
				convey.So(run(ctx, &stdout, &stderr), convey.ShouldEqual, exitFailed)
				convey.So(stdout.String(), convey.ShouldContainSubstring, "run failed")
			})
		})

		convey.Convey("When the configuration is invalid", func() {
			setEnv(t, map[string]string{"PREGAME_ROLLING_WINDOW": "0"})
			var stdout, stderr bytes.Buffer

			convey.Convey("Then it reports the config error on stderr", func() {
				convey.So(run(ctx, &stdout, &stderr), convey.ShouldEqual, exitFailed)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "failed to load config")
			})
		})
	})
}
