package smoketest_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/headcount/internal/adapters/camera"
	"github.com/okian/headcount/internal/adapters/estimator"
	"github.com/okian/headcount/internal/adapters/http/api"
	"github.com/okian/headcount/internal/adapters/mq/hub"
	service "github.com/okian/headcount/internal/app"
	"github.com/okian/headcount/internal/smoketest"
	"github.com/okian/headcount/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func TestRun(t *testing.T) {
	Convey("Given a live service that has not loaded its estimator", t, func() {
		feed := hub.New()
		svc := service.New(
			&estimator.SimulatedLoader{Delay: 10 * time.Millisecond, Options: []estimator.Option{
				estimator.WithLatencyRange(0, time.Millisecond),
				estimator.WithScript(0, 1, 1, 2, 2, 1),
			}},
			camera.NewSynthetic(),
			service.WithRefreshInterval(2*time.Millisecond),
			service.WithAttendanceLogSize(4),
			service.WithPublisher(feed),
		)
		mux := http.NewServeMux()
		api.NewServer(svc, feed).Register(mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()
		defer func() { _ = svc.Stop(context.Background()) }()

		cfg := &smoketest.Config{
			BaseURL:      srv.URL,
			Duration:     200 * time.Millisecond,
			PollInterval: 10 * time.Millisecond,
			Timeout:      time.Second,
			ReadyTimeout: 2 * time.Second,
			WindowSize:   30,
			LogSize:      4,
			Attendance:   true,
		}

		Convey("When a smoke run is executed", func() {
			stats, err := smoketest.Run(context.Background(), cfg)

			Convey("Then it passes and leaves the service stopped", func() {
				So(err, ShouldBeNil)
				So(stats.Violations, ShouldEqual, 0)
				So(stats.LastTick, ShouldBeGreaterThan, stats.FirstTick)
				So(stats.Events, ShouldBeBetweenOrEqual, 1, 4)
				So(svc.State(), ShouldEqual, service.StateStopped)
			})
		})
	})

	Convey("Given no service", t, func() {
		cfg := &smoketest.Config{BaseURL: "http://127.0.0.1:1", Timeout: 100 * time.Millisecond}

		Convey("Then the health check fails", func() {
			_, err := smoketest.Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
		})
	})
}
