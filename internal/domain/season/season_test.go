package season_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/trainhist/internal/domain/season"
	. "github.com/smartystreets/goconvey/convey"
)

func mustClock(loc *time.Location) *season.Clock {
	a, err := season.NewAnchor(time.Date(2024, time.June, 1, 0, 0, 0, 0, loc), 100, 30)
	if err != nil {
		panic(err)
	}
	return season.NewClock(a, loc)
}

func TestClockScenario(t *testing.T) {
	Convey("Given anchor 2024-06-01 as day 30 of season 100", t, func() {
		clock := mustClock(time.UTC)

		Convey("2024-05-02 is day 0 of season 100", func() {
			So(clock.Of(time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)), ShouldEqual, 100)
			So(clock.StartOf(100).Equal(time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("2024-05-01 belongs to season 99", func() {
			So(clock.Of(time.Date(2024, time.May, 1, 23, 59, 59, 0, time.UTC)), ShouldEqual, 99)
		})

		Convey("The anchor date itself is in the anchor season", func() {
			So(clock.Of(time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)), ShouldEqual, 100)
			So(clock.Current(), ShouldEqual, 100)
		})
	})
}

func TestClockBoundaries(t *testing.T) {
	stockholm, err := time.LoadLocation("Europe/Stockholm")
	if err != nil {
		t.Skip("no zoneinfo available")
	}

	for _, loc := range []*time.Location{time.UTC, stockholm} {
		Convey("Given a clock in "+loc.String(), t, func() {
			clock := mustClock(loc)
			start := clock.StartOf(100)

			Convey("Offsets from the season start land on exact boundaries", func() {
				cases := []struct {
					offset int
					want   int
				}{
					{0, 100},
					{90, 100},
					{91, 101},
					{-1, 99},
					{-91, 99},
					{-92, 98},
					{182, 102},
					{-182, 98},
					{-183, 97},
				}
				for _, tc := range cases {
					d := start.AddDate(0, 0, tc.offset)
					So(clock.Of(d), ShouldEqual, tc.want)
					y, m, day := d.Date()
					So(clock.Of(time.Date(y, m, day, 23, 59, 59, 0, loc)), ShouldEqual, tc.want)
				}
			})

			Convey("StartOf inverts Of for twenty seasons either side", func() {
				for s := 80; s <= 120; s++ {
					boundary := clock.StartOf(s)
					So(clock.Of(boundary), ShouldEqual, s)
					So(clock.Of(boundary.AddDate(0, 0, -1)), ShouldEqual, s-1)
					So(clock.Of(boundary.AddDate(0, 0, season.Length-1)), ShouldEqual, s)
					So(boundary.Hour(), ShouldEqual, 0)
				}
			})

			Convey("Seasons never decrease as dates advance", func() {
				prev := clock.Of(start.AddDate(0, 0, -400))
				for i := -399; i <= 400; i++ {
					cur := clock.Of(start.AddDate(0, 0, i))
					So(cur-prev, ShouldBeBetweenOrEqual, 0, 1)
					prev = cur
				}
			})
		})
	}
}

func TestParseAnchor(t *testing.T) {
	Convey("Given header texts", t, func() {
		Convey("A D/M/YYYY date and season line parse", func() {
			a, err := season.ParseAnchor("Date: 1/6/2024", "Season 100 Week 5 Day 30", time.UTC)
			So(err, ShouldBeNil)
			So(a.Season, ShouldEqual, 100)
			So(a.Day, ShouldEqual, 30)
			So(a.Date.Equal(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("Dashes are accepted too", func() {
			a, err := season.ParseAnchor("01-06-2024", "100 · 5 · 30", nil)
			So(err, ShouldBeNil)
			So(a.Date.Month(), ShouldEqual, time.June)
		})

		Convey("Missing pieces make the anchor unavailable", func() {
			_, err := season.ParseAnchor("no date here", "Season 100 Week 5 Day 30", time.UTC)
			So(errors.Is(err, season.ErrAnchorUnavailable), ShouldBeTrue)

			_, err = season.ParseAnchor("1/6/2024", "Season 100 Day 30", time.UTC)
			So(errors.Is(err, season.ErrAnchorUnavailable), ShouldBeTrue)

			_, err = season.ParseAnchor("31/2/2024", "100 5 30", time.UTC)
			So(errors.Is(err, season.ErrAnchorUnavailable), ShouldBeTrue)

			_, err = season.ParseAnchor("1/6/2024", "100 5 91", time.UTC)
			So(errors.Is(err, season.ErrAnchorUnavailable), ShouldBeTrue)
		})
	})
}

func TestHistoricalAge(t *testing.T) {
	Convey("Given a current age and season", t, func() {
		age, ok := season.HistoricalAge(21, 100, 97)
		So(ok, ShouldBeTrue)
		So(age, ShouldEqual, 18)

		_, ok = season.HistoricalAge(0, 100, 97)
		So(ok, ShouldBeFalse)
	})
}

func TestClockAt(t *testing.T) {
	Convey("Given a clock moved to later dates", t, func() {
		clock := mustClock(time.UTC)

		next := clock.At(time.Date(2024, time.August, 1, 12, 0, 0, 0, time.UTC))
		So(next.Current(), ShouldEqual, 101)
		So(next.Anchor().Day, ShouldEqual, 0)

		last := clock.At(time.Date(2024, time.July, 31, 0, 0, 0, 0, time.UTC))
		So(last.Current(), ShouldEqual, 100)
		So(last.Anchor().Day, ShouldEqual, 90)

		Convey("Season mapping is unchanged", func() {
			for _, d := range []time.Time{
				time.Date(2023, time.January, 5, 0, 0, 0, 0, time.UTC),
				time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC),
			} {
				So(next.Of(d), ShouldEqual, clock.Of(d))
			}
		})
	})
}
