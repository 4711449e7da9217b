package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/trainhist/internal/config"
	"github.com/okian/trainhist/pkg/logger"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("TRAINHIST_ADDR", ":8080")
			_ = os.Setenv("TRAINHIST_QUEUE_SIZE", "64")
			_ = os.Setenv("TRAINHIST_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("TRAINHIST_ADDR")
				_ = os.Unsetenv("TRAINHIST_QUEUE_SIZE")
				_ = os.Unsetenv("TRAINHIST_WORKER_COUNT")
			}()

			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
		})

		convey.Convey("When the service is built with a static anchor and SQLite preferences", func() {
			cfg := config.New()
			cfg.WorkerCount = 2
			cfg.AnchorDate = "2024-08-01"
			cfg.AnchorSeason = 101
			cfg.PreferencesPath = filepath.Join(t.TempDir(), "prefs.db")

			svc, err := newService(cfg, logger.Discard())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			clock, err := svc.Clock(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(clock.Current(), convey.ShouldBeGreaterThanOrEqualTo, 101)

			mux := newMux(context.Background(), svc, logger.Discard())
			for _, path := range []string{"/healthz", "/stats", "/api-docs", "/openapi.yaml", "/preferences/currency"} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("When the timezone is unknown", func() {
			cfg := config.New()
			cfg.Timezone = "Nowhere/Special"
			_, err := newService(cfg, logger.Discard())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("Updating system metrics does not panic", t, func() {
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)
	})
}
