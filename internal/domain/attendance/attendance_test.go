package attendance_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/headcount/internal/domain/attendance"
	"github.com/okian/headcount/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "ev-" + strconv.Itoa(n)
	}
}

func at(i int) time.Time { return t0.Add(time.Duration(i) * time.Second) }

func TestTracker_TransitionSequence(t *testing.T) {
	Convey("Given a tracker starting from lastCount=0", t, func() {
		tr := attendance.New(attendance.WithIDGenerator(sequentialIDs()))

		Convey("When fed [0,0,1,1,2,1,0]", func() {
			emitted := 0
			for i, c := range []int{0, 0, 1, 1, 2, 1, 0} {
				if _, ok := tr.Observe(c, at(i)); ok {
					emitted++
				}
			}

			Convey("Then four events are logged head-first", func() {
				want := []model.AttendanceEvent{
					{ID: "ev-4", Timestamp: at(6), Count: 0, Kind: model.KindDisappeared},
					{ID: "ev-3", Timestamp: at(5), Count: 1, Kind: model.KindDisappeared},
					{ID: "ev-2", Timestamp: at(4), Count: 2, Kind: model.KindAppeared},
					{ID: "ev-1", Timestamp: at(2), Count: 1, Kind: model.KindAppeared},
				}
				So(emitted, ShouldEqual, 4)
				So(cmp.Diff(want, tr.Log()), ShouldBeEmpty)
				So(tr.Len(), ShouldEqual, 4)
			})

			Convey("And lastCount tracks the final sample", func() {
				last, observed := tr.LastCount()
				So(last, ShouldEqual, 0)
				So(observed, ShouldBeTrue)
			})
		})
	})
}

func TestTracker_Capacity(t *testing.T) {
	Convey("Given a tracker with the default capacity", t, func() {
		tr := attendance.New(attendance.WithIDGenerator(sequentialIDs()))
		So(tr.Capacity(), ShouldEqual, 10)

		Convey("When 25 alternating counts generate 25 events", func() {
			for i := 0; i < 25; i++ {
				tr.Observe((i+1)%2, at(i))
				So(tr.Len(), ShouldBeLessThanOrEqualTo, 10)
			}

			Convey("Then the log keeps the ten most recent", func() {
				log := tr.Log()
				So(len(log), ShouldEqual, 10)
				So(log[0].ID, ShouldEqual, "ev-25")
				So(log[9].ID, ShouldEqual, "ev-16")
			})
		})

		Convey("When exactly the 11th event arrives", func() {
			for i := 0; i < 11; i++ {
				tr.Observe((i+1)%2, at(i))
			}

			Convey("Then the oldest (tail) entry is evicted", func() {
				log := tr.Log()
				So(len(log), ShouldEqual, 10)
				So(log[0].ID, ShouldEqual, "ev-11")
				So(log[9].ID, ShouldEqual, "ev-2")
			})
		})
	})

	Convey("Given a tracker with capacity 2", t, func() {
		tr := attendance.New(attendance.WithCapacity(2), attendance.WithIDGenerator(sequentialIDs()))
		tr.Observe(1, at(0))
		tr.Observe(2, at(1))
		tr.Observe(3, at(2))
		So(tr.Len(), ShouldEqual, 2)
		So(tr.Log()[0].Count, ShouldEqual, 3)
		So(tr.Log()[1].Count, ShouldEqual, 2)
	})
}

func TestTracker_Baseline(t *testing.T) {
	Convey("Given the zero baseline", t, func() {
		tr := attendance.New()

		Convey("When the first sample is 3", func() {
			ev, ok := tr.Observe(3, t0)

			Convey("Then it is reported as an arrival", func() {
				So(ok, ShouldBeTrue)
				So(ev.Kind, ShouldEqual, model.KindAppeared)
				So(ev.Count, ShouldEqual, 3)
				So(ev.ID, ShouldNotBeEmpty)
			})
		})

		Convey("When nothing was observed yet", func() {
			last, observed := tr.LastCount()
			So(last, ShouldEqual, 0)
			So(observed, ShouldBeFalse)
		})
	})

	Convey("Given the first-sample baseline", t, func() {
		tr := attendance.New(attendance.WithBaseline(attendance.BaselineFirstSample))

		Convey("When the first sample is 3", func() {
			_, ok := tr.Observe(3, t0)

			Convey("Then no event is emitted and 3 becomes the baseline", func() {
				So(ok, ShouldBeFalse)
				last, observed := tr.LastCount()
				So(last, ShouldEqual, 3)
				So(observed, ShouldBeTrue)
			})

			Convey("And a later drop is a departure", func() {
				ev, ok := tr.Observe(1, at(1))
				So(ok, ShouldBeTrue)
				So(ev.Kind, ShouldEqual, model.KindDisappeared)
			})
		})
	})
}

func TestTracker_Reset(t *testing.T) {
	Convey("Given a tracker with history", t, func() {
		tr := attendance.New()
		tr.Observe(2, t0)
		before := tr.Log()

		Convey("When reset", func() {
			tr.Reset()

			Convey("Then log and baseline are cleared", func() {
				So(tr.Len(), ShouldEqual, 0)
				_, observed := tr.LastCount()
				So(observed, ShouldBeFalse)
			})

			Convey("And previously returned logs are unaffected", func() {
				So(len(before), ShouldEqual, 1)
				So(before[0].Count, ShouldEqual, 2)
			})
		})
	})
}

func TestParseBaseline(t *testing.T) {
	Convey("Given baseline names", t, func() {
		b, err := attendance.ParseBaseline("first_sample")
		So(err, ShouldBeNil)
		So(b, ShouldEqual, attendance.BaselineFirstSample)
		So(b.String(), ShouldEqual, "first_sample")

		b, err = attendance.ParseBaseline("")
		So(err, ShouldBeNil)
		So(b, ShouldEqual, attendance.BaselineZero)

		_, err = attendance.ParseBaseline("sentinel")
		So(err, ShouldNotBeNil)
	})
}
