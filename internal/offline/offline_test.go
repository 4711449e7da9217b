package offline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/trainhist/internal/app"
	"github.com/okian/trainhist/internal/domain/skill"
	"github.com/okian/trainhist/internal/domain/transfer"
	"github.com/okian/trainhist/internal/offline"
)

const bundlePath = "testdata/bundle.yaml"

func TestLoadBundle(t *testing.T) {
	Convey("Given the YAML bundle", t, func() {
		b, err := offline.LoadBundle(bundlePath)
		So(err, ShouldBeNil)
		So(b.EntityID, ShouldEqual, "1234")
		So(b.Anchor.Season, ShouldEqual, 101)
		So(b.Skills, ShouldHaveLength, skill.Count)
		So(b.Scout.High.Skills, ShouldResemble, []string{"Speed", "Passing"})

		Convey("A JSON copy decodes to the same bundle", func() {
			data, err := json.Marshal(b)
			So(err, ShouldBeNil)
			path := filepath.Join(t.TempDir(), "bundle.json")
			So(os.WriteFile(path, data, 0o600), ShouldBeNil)

			again, err := offline.LoadBundle(path)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, b)
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := offline.LoadBundle(filepath.Join(t.TempDir(), "nope.yaml"))
		So(errors.Is(err, offline.ErrBundle), ShouldBeTrue)
	})
}

func TestRun(t *testing.T) {
	Convey("Given an offline run over the bundle", t, func() {
		So(offline.SetupLogging(io.Discard, false), ShouldBeNil)

		var out bytes.Buffer

		Convey("The text report shows snapshots, gains and transfers", func() {
			stats, err := offline.Run(context.Background(), &offline.Config{BundlePath: bundlePath}, &out)
			So(err, ShouldBeNil)
			So(stats.Snapshots, ShouldEqual, 2)
			So(stats.Gains, ShouldEqual, 1)
			So(stats.Transfers, ShouldEqual, 1)

			text := out.String()
			So(text, ShouldContainSubstring, "Test Player (1234)")
			So(text, ShouldContainSubstring, "Season 100 (Age 21)")
			So(text, ShouldContainSubstring, "Transfers (EUR)")
			So(text, ShouldContainSubstring, transfer.YouthAcademy)
			So(text, ShouldContainSubstring, "Efficiency")
			So(text, ShouldContainSubstring, "img/training/chip/efficiency.png")
			So(text, ShouldContainSubstring, "HP4")
		})

		Convey("The JSON report can be saved and uses the currency override", func() {
			path := filepath.Join(t.TempDir(), "out", "report.json")
			cfg := &offline.Config{BundlePath: bundlePath, Format: offline.FormatJSON, Currency: "USD", OutputFile: path}
			_, err := offline.Run(context.Background(), cfg, &out)
			So(err, ShouldBeNil)

			var r app.Report
			So(json.Unmarshal(out.Bytes(), &r), ShouldBeNil)
			So(r.Currency, ShouldEqual, "USD")
			So(r.Snapshots[0].Distribution.Get(skill.Speed), ShouldEqual, 5)

			saved, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(len(saved), ShouldBeGreaterThan, 0)
		})

		Convey("An unknown format is rejected", func() {
			_, err := offline.Run(context.Background(), &offline.Config{BundlePath: bundlePath, Format: "xml"}, &out)
			So(errors.Is(err, offline.ErrFormat), ShouldBeTrue)
		})
	})
}
