package smoketest_test

import (
	"testing"
	"time"

	"github.com/okian/headcount/internal/domain/model"
	"github.com/okian/headcount/internal/smoketest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestVerifyLog(t *testing.T) {
	Convey("Given a smoke config", t, func() {
		cfg := &smoketest.Config{WindowSize: 30, LogSize: 3}
		now := time.Now()
		ev := func(ago time.Duration, count int, kind model.Kind) model.AttendanceEvent {
			return model.AttendanceEvent{Timestamp: now.Add(-ago), Count: count, Kind: kind}
		}

		Convey("When the log is consistent", func() {
			log := []model.AttendanceEvent{
				ev(0, 0, model.KindDisappeared),
				ev(time.Second, 2, model.KindAppeared),
				ev(2*time.Second, 1, model.KindAppeared),
			}
			So(smoketest.VerifyLog(cfg, log), ShouldBeEmpty)
		})

		Convey("When the log is too long", func() {
			log := []model.AttendanceEvent{
				ev(0, 1, model.KindAppeared),
				ev(time.Second, 0, model.KindDisappeared),
				ev(2*time.Second, 1, model.KindAppeared),
				ev(3*time.Second, 0, model.KindDisappeared),
			}
			So(smoketest.VerifyLog(cfg, log), ShouldHaveLength, 1)
		})

		Convey("When the log is oldest first", func() {
			log := []model.AttendanceEvent{
				ev(time.Second, 1, model.KindAppeared),
				ev(0, 0, model.KindDisappeared),
			}
			So(smoketest.VerifyLog(cfg, log), ShouldNotBeEmpty)
		})

		Convey("When a kind contradicts the counts", func() {
			log := []model.AttendanceEvent{
				ev(0, 3, model.KindDisappeared),
				ev(time.Second, 1, model.KindAppeared),
			}
			So(smoketest.VerifyLog(cfg, log), ShouldHaveLength, 1)
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given a smoke config", t, func() {
		cfg := &smoketest.Config{WindowSize: 5, LogSize: 10}
		face := model.Region{TopLeft: model.Point{X: 10, Y: 20}, BottomRight: model.Point{X: 60, Y: 70}}

		Convey("When a snapshot is healthy", func() {
			snap := &model.Snapshot{SessionID: "s", Tick: 4, FaceCount: 1, WindowLen: 4, HasAverage: true, AverageCount: 1,
				OverlayEnabled: true, Regions: []model.Region{face}}
			prev := &model.Snapshot{SessionID: "s", Tick: 3}
			So(smoketest.Verify(cfg, prev, snap), ShouldBeEmpty)
		})

		Convey("When an overlay region has no area", func() {
			flat := model.Region{TopLeft: model.Point{X: 10, Y: 10}, BottomRight: model.Point{X: 50, Y: 10}}
			snap := &model.Snapshot{SessionID: "s", Tick: 1, FaceCount: 2, WindowLen: 1, HasAverage: true, AverageCount: 2,
				OverlayEnabled: true, Regions: []model.Region{face, flat}}
			errs := smoketest.Verify(cfg, nil, snap)
			So(errs, ShouldHaveLength, 1)
			So(errs[0].Error(), ShouldContainSubstring, "region 1 is empty")
		})

		Convey("When a snapshot breaks several invariants", func() {
			snap := &model.Snapshot{SessionID: "s", Tick: 2, FaceCount: 1, WindowLen: 6, Regions: make([]model.Region, 2)}
			prev := &model.Snapshot{SessionID: "s", Tick: 3}
			errs := smoketest.Verify(cfg, prev, snap)

			Convey("Then each is reported", func() {
				// window too long, no average, regions without overlay, tick backwards
				So(errs, ShouldHaveLength, 4)
			})
		})

		Convey("When the session changed", func() {
			snap := &model.Snapshot{SessionID: "b", Tick: 1}
			prev := &model.Snapshot{SessionID: "a", Tick: 9}
			So(smoketest.Verify(cfg, prev, snap), ShouldBeEmpty)
		})
	})
}
