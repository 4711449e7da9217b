package upstream_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/trainhist/internal/adapters/upstream"
	"github.com/okian/trainhist/internal/domain/classify"
	"github.com/okian/trainhist/internal/domain/season"
	. "github.com/smartystreets/goconvey/convey"
)

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ajax.php", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("p") == "trainingGraph" && q.Get("player_id") == "1":
			_, _ = w.Write([]byte(`<script>var series = [{"name":"s","data":[{"x":1000,"y":1}]}];</script>`))
		case q.Get("p") == "trainingGraph":
			_, _ = w.Write([]byte(`<p>not allowed</p>`))
		case q.Get("p") == "players" && q.Get("sub") == "scout_report" && q.Get("sport") == "soccer":
			_, _ = w.Write([]byte(scoutPage))
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pid") == "404" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(profilePage))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient(t *testing.T) {
	Convey("Given a client pointed at a fake site", t, func() {
		srv := newSite(t)
		c := upstream.New(upstream.WithBaseURL(srv.URL), upstream.WithLocation(time.UTC))
		ctx := context.Background()

		Convey("The training series is fetched and decoded", func() {
			series, err := c.TrainingSeries(ctx, "1")
			So(err, ShouldBeNil)
			So(len(series), ShouldEqual, 1)
			So(len(series[0].Data), ShouldEqual, 1)
		})

		Convey("A page without a series is unavailable", func() {
			_, err := c.TrainingSeries(ctx, "2")
			So(errors.Is(err, classify.ErrSeriesUnavailable), ShouldBeTrue)
		})

		Convey("Scout, profile and transfers come from their pages", func() {
			page, err := c.Scout(ctx, "1")
			So(err, ShouldBeNil)
			So(page.Speed.Stars, ShouldEqual, 4)

			p, err := c.Profile(ctx, "1")
			So(err, ShouldBeNil)
			So(p.Name, ShouldEqual, "Ada Lovelace")

			rows, err := c.Transfers(ctx, "1")
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 2)
		})

		Convey("The anchor is read from the header", func() {
			a, err := c.Anchor(ctx)
			So(err, ShouldBeNil)
			So(a.Season, ShouldEqual, 98)
		})

		Convey("Error statuses are reported", func() {
			_, err := c.Profile(ctx, "404")
			So(errors.Is(err, upstream.ErrStatus), ShouldBeTrue)
		})

		Convey("A cancelled context fails the request", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := c.Profile(cctx, "1")
			So(errors.Is(err, upstream.ErrRequest), ShouldBeTrue)
		})
	})

	Convey("Given an unreachable site", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := upstream.New(upstream.WithBaseURL(srv.URL))
		_, err := c.Anchor(context.Background())
		So(errors.Is(err, season.ErrAnchorUnavailable), ShouldBeTrue)
		So(errors.Is(err, upstream.ErrRequest), ShouldBeTrue)
	})
}
