package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeasonCommand(t *testing.T) {
	convey.Convey("Given an anchor on the first day of season 101", t, func() {
		out, err := execute("season", "--anchor-date", "2024-08-01", "--anchor-season", "101", "--timezone", "UTC",
			"2024-07-31", "2024-08-01", "2024-10-31")
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldEqual,
			"2024-07-31\t100\t2024-05-02\n"+
				"2024-08-01\t101\t2024-08-01\n"+
				"2024-10-31\t102\t2024-10-31\n")
	})

	convey.Convey("Given an anchor day outside the season", t, func() {
		_, err := execute("season", "--anchor-date", "2024-08-01", "--anchor-season", "101", "--anchor-day", "91", "2024-08-01")
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestConvertCommand(t *testing.T) {
	convey.Convey("Given price text", t, func() {
		out, err := execute("convert", "--to", "SEK", "1 000 000 SEK")
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldEqual, "1,000,000 SEK\n")

		out, err = execute("convert", "-")
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldEqual, "N/A\n")

		_, err = execute("convert", "--to", "XYZ", "10 EUR")
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestReportCommand(t *testing.T) {
	convey.Convey("Given the sample bundle", t, func() {
		out, err := execute("report", "--bundle", "../../internal/offline/testdata/bundle.yaml", "--format", "json")
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldContainSubstring, `"entity_id": "1234"`)
	})

	convey.Convey("Given no bundle flag", t, func() {
		_, err := execute("report")
		convey.So(err, convey.ShouldNotBeNil)
	})
}
