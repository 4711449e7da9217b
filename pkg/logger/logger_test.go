package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

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

		Convey("When initialized with json output", func() {
			var buf bytes.Buffer
			So(Init(WithFormat(FormatJSON), WithOutput(&buf)), ShouldBeNil)
			Get().Info(context.Background(), "pipeline finished", String("entity", "42"), Int("snapshots", 3))

			Convey("Then each line is a json object carrying the fields", func() {
				line := strings.TrimSpace(buf.String())
				var decoded map[string]any
				So(json.Unmarshal([]byte(line), &decoded), ShouldBeNil)
				So(decoded["msg"], ShouldEqual, "pipeline finished")
				So(decoded["entity"], ShouldEqual, "42")
				So(decoded["snapshots"], ShouldEqual, float64(3))
				So(decoded["source"], ShouldContainSubstring, "logger_test.go")
			})
		})
	})
}

func TestLoggerLevels(t *testing.T) {
	Convey("Given a text logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("Debug is suppressed at the default level", func() {
			Get().Debug(ctx, "hidden")
			So(buf.String(), ShouldBeEmpty)
		})

		Convey("Debug is emitted after lowering the level", func() {
			So(SetLevelString("debug"), ShouldBeNil)
			Named("reconstruct").Debug(ctx, "visible", Bool("clamped", true))
			So(buf.String(), ShouldContainSubstring, "visible")
			So(buf.String(), ShouldContainSubstring, "reconstruct.clamped=true")
		})

		Convey("Unknown levels are rejected", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}

func TestDiscard(t *testing.T) {
	Convey("Discard never panics and writes nothing", t, func() {
		So(func() { Discard().Error(context.Background(), "x", Error(nil)) }, ShouldNotPanic)
	})
}
