package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with a nil writer", func() {
			err := InitWithWriter(nil)

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging at info with fields", func() {
			Get().Info(ctx, "dataset loaded",
				String("source", "embedded"),
				Int("points", 3),
				Bool("ok", true),
				Duration("took", 5*time.Millisecond),
				Error(errors.New("boom")),
			)

			Convey("Then the record carries message, fields and caller", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "dataset loaded")
				So(out, ShouldContainSubstring, "points=3")
				So(out, ShouldContainSubstring, "ok=true")
				So(out, ShouldContainSubstring, "error=boom")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When debug is disabled", func() {
			SetLevel(slog.LevelInfo)
			Get().Debug(ctx, "hidden")

			Convey("Then nothing is written", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
			})
		})

		Convey("When using a named logger", func() {
			Named("loader").Warn(ctx, "slow fetch")

			Convey("Then the component is recorded", func() {
				So(buf.String(), ShouldContainSubstring, "component=loader")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		So(Init(), ShouldBeNil)

		for _, lvl := range []string{"debug", "INFO", "", "warn", "warning", "error"} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
		So(SetLevelString("info"), ShouldBeNil)
	})
}
