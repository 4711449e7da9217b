package transfer_test

import (
	"testing"
	"time"

	"github.com/okian/trainhist/internal/domain/currency"
	"github.com/okian/trainhist/internal/domain/model"
	"github.com/okian/trainhist/internal/domain/season"
	"github.com/okian/trainhist/internal/domain/transfer"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseDate(t *testing.T) {
	Convey("Given transfer date cells", t, func() {
		Convey("Day-first and year-first forms agree", func() {
			a, ok := transfer.ParseDate("05-03-2024", time.UTC)
			So(ok, ShouldBeTrue)
			b, ok := transfer.ParseDate("2024-03-05", time.UTC)
			So(ok, ShouldBeTrue)
			So(a.Equal(b), ShouldBeTrue)
			So(a.Month(), ShouldEqual, time.March)
			So(a.Day(), ShouldEqual, 5)
		})

		Convey("Surrounding text is ignored", func() {
			d, ok := transfer.ParseDate(" Date: 31-12-2023 ", nil)
			So(ok, ShouldBeTrue)
			So(d.Year(), ShouldEqual, 2023)
		})

		Convey("Impossible or missing dates fail", func() {
			for _, text := range []string{"", "yesterday", "31-02-2024", "2024-13-01", "1-2-2024"} {
				_, ok := transfer.ParseDate(text, time.UTC)
				So(ok, ShouldBeFalse)
			}
		})
	})
}

func TestBuild(t *testing.T) {
	Convey("Given transfer rows", t, func() {
		a, _ := season.NewAnchor(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), 100, 30)
		clock := season.NewClock(a, time.UTC)

		rows := []transfer.Row{
			{Date: "20-05-2024", From: "", To: "FC Home", Price: "-"},
			{Date: "2024-05-10", From: "Old Club", To: "FC Home", Price: "1 234 EUR"},
			{Date: "2024-04-01", From: "-", To: "Old Club", Price: "lots"},
			{Date: "sometime", From: "x", To: "y", Price: "1 EUR"},
		}
		p := transfer.Build(rows, clock, time.UTC)

		Convey("Rows are grouped by season and sorted by date", func() {
			So(p.Seasons(), ShouldResemble, []int{99, 100})
			So(len(p.BySeason[100]), ShouldEqual, 2)
			So(p.BySeason[100][0].From, ShouldEqual, "Old Club")
			So(p.BySeason[100][1].From, ShouldEqual, transfer.YouthAcademy)
			So(len(p.All()), ShouldEqual, 3)
		})

		Convey("Prices are parsed and markers normalized", func() {
			So(p.BySeason[100][0].Price, ShouldResemble, model.Price{Amount: 1234, Currency: "EUR"})
			So(p.BySeason[100][1].RawPrice, ShouldEqual, currency.NotApplicable)
			So(p.BySeason[100][1].Price.IsZero(), ShouldBeTrue)
		})

		Convey("Malformed rows and prices are counted, not fatal", func() {
			So(p.Skipped, ShouldEqual, 1)
			So(p.BadPrices, ShouldEqual, 1)
			So(p.BySeason[99][0].From, ShouldEqual, transfer.YouthAcademy)
		})
	})

	Convey("Given a price too large for an amount", t, func() {
		a, _ := season.NewAnchor(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), 100, 30)
		rows := []transfer.Row{{Date: "2024-05-10", From: "Old Club", To: "FC Home", Price: "99 999 999 999 999 999 999 EUR"}}
		p := transfer.Build(rows, season.NewClock(a, time.UTC), time.UTC)

		So(p.BadPrices, ShouldEqual, 1)
		So(len(p.All()), ShouldEqual, 1)
		So(p.All()[0].Price.IsZero(), ShouldBeTrue)
	})
}
