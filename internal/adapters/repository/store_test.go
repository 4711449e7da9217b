package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/trainhist/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func exerciseStore(ctx context.Context, s repository.Store) {
	_, err := s.PreferredCurrency(ctx)
	So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

	So(s.SetPreferredCurrency(ctx, "EUR"), ShouldBeNil)
	code, err := s.PreferredCurrency(ctx)
	So(err, ShouldBeNil)
	So(code, ShouldEqual, "EUR")

	So(s.SetPreferredCurrency(ctx, " SEK "), ShouldBeNil)
	code, err = s.PreferredCurrency(ctx)
	So(err, ShouldBeNil)
	So(code, ShouldEqual, "SEK")

	So(errors.Is(s.SetPreferredCurrency(ctx, "  "), repository.ErrInvalidValue), ShouldBeTrue)
}

func TestInMemoryStore(t *testing.T) {
	Convey("Given an in-memory store", t, func() {
		s := repository.NewInMemoryStore()
		exerciseStore(context.Background(), s)
		So(s.Close(), ShouldBeNil)

		Convey("A cancelled context is refused", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := s.PreferredCurrency(ctx)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given a SQLite store in a temp dir", t, func() {
		path := filepath.Join(t.TempDir(), "prefs.db")
		s, err := repository.OpenSQLite(path)
		So(err, ShouldBeNil)
		exerciseStore(context.Background(), s)
		So(s.Close(), ShouldBeNil)

		Convey("The value survives a reopen and migrations run once", func() {
			again, err := repository.OpenSQLite(path)
			So(err, ShouldBeNil)
			defer again.Close()
			code, err := again.PreferredCurrency(context.Background())
			So(err, ShouldBeNil)
			So(code, ShouldEqual, "SEK")
		})
	})

	Convey("Given no path", t, func() {
		_, err := repository.OpenSQLite(" ")
		So(err, ShouldNotBeNil)
	})
}

type report struct{ ID string }

func TestReportCache(t *testing.T) {
	Convey("Given a cache of two reports", t, func() {
		c, err := repository.NewReportCache[report](2)
		So(err, ShouldBeNil)

		c.Put("1", report{ID: "1"})
		c.Put("2", report{ID: "2"})
		_, ok := c.Get("1")
		So(ok, ShouldBeTrue)

		Convey("The least recently used report is evicted", func() {
			c.Put("3", report{ID: "3"})
			So(c.Len(), ShouldEqual, 2)
			_, ok := c.Get("2")
			So(ok, ShouldBeFalse)
			r, ok := c.Get("1")
			So(ok, ShouldBeTrue)
			So(r.ID, ShouldEqual, "1")
		})

		Convey("Unknown ids miss", func() {
			_, ok := c.Get("nope")
			So(ok, ShouldBeFalse)
		})
	})
}
