package detector_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/headcount/internal/adapters/detector"
	"github.com/okian/headcount/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type stubEstimator struct {
	regions []model.Region
	err     error
	panics  bool
	calls   int
}

func (s *stubEstimator) EstimateFaces(_ context.Context, _ model.Frame) ([]model.Region, error) {
	s.calls++
	if s.panics {
		panic("model crashed")
	}
	return s.regions, s.err
}

func box(x float64) model.Region {
	return model.Region{TopLeft: model.Point{X: x, Y: 0}, BottomRight: model.Point{X: x + 10, Y: 10}}
}

func TestAdapter_Detect(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return fixed }
	ctx := context.Background()

	Convey("Given an estimator returning overlapping boxes", t, func() {
		est := &stubEstimator{regions: []model.Region{box(0), box(0), box(5)}}
		a := detector.New(est, detector.WithClock(clock))

		Convey("When detecting a frame", func() {
			s, err := a.Detect(ctx, model.Frame{Seq: 1})

			Convey("Then every region counts, without deduplication", func() {
				So(err, ShouldBeNil)
				So(s.Count, ShouldEqual, 3)
				So(s.Regions, ShouldHaveLength, 3)
				So(s.ObservedAt, ShouldEqual, fixed)
				So(est.calls, ShouldEqual, 1)
			})
		})
	})

	Convey("Given an estimator returning nothing", t, func() {
		a := detector.New(&stubEstimator{}, detector.WithClock(clock))
		s, err := a.Detect(ctx, model.Frame{Seq: 2})
		So(err, ShouldBeNil)
		So(s.Count, ShouldEqual, 0)
	})

	Convey("Given a failing estimator", t, func() {
		cause := errors.New("backend rejected")
		a := detector.New(&stubEstimator{err: cause})

		Convey("When detecting", func() {
			_, err := a.Detect(ctx, model.Frame{Seq: 7})

			Convey("Then a DetectionError wrapping the cause is returned", func() {
				So(errors.Is(err, detector.ErrDetection), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
				var de *detector.DetectionError
				So(errors.As(err, &de), ShouldBeTrue)
				So(de.FrameSeq, ShouldEqual, 7)
			})
		})
	})

	Convey("Given a panicking estimator", t, func() {
		a := detector.New(&stubEstimator{panics: true})

		Convey("When detecting", func() {
			var err error
			So(func() { _, err = a.Detect(ctx, model.Frame{Seq: 3}) }, ShouldNotPanic)

			Convey("Then the panic is converted to a DetectionError", func() {
				So(errors.Is(err, detector.ErrDetection), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "model crashed")
			})
		})
	})
}
