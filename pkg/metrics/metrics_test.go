package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then collectors are registered under the default namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.RecordTick()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "headcount_monitor_ticks_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("cam"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithCustomLabels(map[string]string{"site": "lab"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordStaleSample()

			Convey("Then names and const labels follow the options", func() {
				expected := `
# HELP test_cam_stale_samples_total Detection results discarded because their run had ended
# TYPE test_cam_stale_samples_total counter
test_cam_stale_samples_total{site="lab"} 1
`
				So(testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_cam_stale_samples_total"), ShouldBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording tick pipeline metrics", func() {
			m.RecordTick()
			m.RecordTick()
			m.RecordDetectionError()
			m.UpdateFaceCount(3)
			m.UpdateInstantaneousFPS(58)
			m.UpdateAverageFaceCount(2.4)
			m.UpdateWindowLength(30)

			Convey("Then values are observable", func() {
				So(testutil.ToFloat64(m.ticks), ShouldEqual, 2)
				So(testutil.ToFloat64(m.detectionErrors), ShouldEqual, 1)
				So(testutil.ToFloat64(m.faceCount), ShouldEqual, 3)
				So(testutil.ToFloat64(m.instantaneousFPS), ShouldEqual, 58)
				So(testutil.ToFloat64(m.averageFaceCount), ShouldEqual, 2.4)
				So(testutil.ToFloat64(m.windowLength), ShouldEqual, 30)
			})
		})

		Convey("When recording attendance events by kind", func() {
			m.RecordAttendanceEvent("appeared")
			m.RecordAttendanceEvent("appeared")
			m.RecordAttendanceEvent("disappeared")

			Convey("Then each kind has its own series", func() {
				So(testutil.ToFloat64(m.attendanceEvents.WithLabelValues("appeared")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.attendanceEvents.WithLabelValues("disappeared")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.attendanceEvents.WithLabelValues("change")), ShouldEqual, 0)
			})
		})

		Convey("When recording HTTP and error metrics", func() {
			So(func() {
				m.RecordHTTPRequest("status", "GET", "200", 1.5)
				m.RecordErrorByComponent("loop", "detection_error")
				m.RecordDetectionLatency(12)
			}, ShouldNotPanic)
			So(testutil.ToFloat64(m.httpRequests.WithLabelValues("status", "GET", "200")), ShouldEqual, 1)
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then every helper can be called without panicking", func() {
			So(func() {
				RecordTick()
				RecordDetectionError()
				RecordDetectionLatency(10)
				RecordStaleSample()
				UpdateFaceCount(1)
				UpdateInstantaneousFPS(30)
				UpdateAverageFaceCount(1.0)
				UpdateWindowLength(1)
				RecordAttendanceEvent("appeared")
				UpdateAttendanceLogLength(1)
				UpdateMonitorState(3)
				RecordModelLoadError()
				RecordCameraAcquisitionError()
				RecordMonitoringRun()
				UpdateFeedSubscribers(2)
				RecordFeedDropped()
				RecordHTTPRequest("status", "GET", "200", 2)
				RecordErrorByComponent("api", "client_error")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.5)
				UpdateProcessCPUPercent(12.5)
				UpdateProcessRSS(4096)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
