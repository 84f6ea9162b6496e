package aggregator_test

import (
	"testing"
	"time"

	"github.com/okian/headcount/internal/domain/aggregator"
	. "github.com/smartystreets/goconvey/convey"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func feed(a *aggregator.Aggregator, counts ...int) aggregator.Metrics {
	var m aggregator.Metrics
	for i, c := range counts {
		m = a.OnSample(c, t0.Add(time.Duration(i)*33*time.Millisecond))
	}
	return m
}

func TestWindow(t *testing.T) {
	Convey("Given a window of capacity 3", t, func() {
		w := aggregator.NewWindow(3)

		Convey("When fewer values than capacity are pushed", func() {
			w.Push(1)
			w.Push(2)
			So(w.Len(), ShouldEqual, 2)
			So(w.Values(), ShouldResemble, []float64{1, 2})
		})

		Convey("When pushed past capacity", func() {
			for i := 1; i <= 5; i++ {
				w.Push(float64(i))
			}

			Convey("Then the oldest values are evicted first", func() {
				So(w.Len(), ShouldEqual, 3)
				So(w.Cap(), ShouldEqual, 3)
				So(w.Values(), ShouldResemble, []float64{3, 4, 5})
			})

			Convey("And Reset empties it", func() {
				w.Reset()
				So(w.Len(), ShouldEqual, 0)
				So(w.Values(), ShouldBeEmpty)
			})
		})

		Convey("When created with a non-positive capacity", func() {
			So(aggregator.NewWindow(0).Cap(), ShouldEqual, 1)
		})
	})
}

func TestAggregator_WindowLength(t *testing.T) {
	Convey("Given an aggregator with the default window", t, func() {
		a := aggregator.New()
		So(a.WindowSize(), ShouldEqual, 30)

		Convey("Then the window length is min(samples, 30) after every sample", func() {
			for i := 1; i <= 75; i++ {
				m := a.OnSample(i%4, t0.Add(time.Duration(i)*time.Millisecond))
				expected := i
				if expected > 30 {
					expected = 30
				}
				So(m.WindowLen, ShouldEqual, expected)
			}
		})
	})
}

func TestAggregator_Average(t *testing.T) {
	Convey("Given a fresh aggregator", t, func() {
		a := aggregator.New()

		Convey("When no sample was observed", func() {
			So(a.Current().HasAverage, ShouldBeFalse)
		})

		Convey("When fed [2,2,2]", func() {
			m := feed(a, 2, 2, 2)
			So(m.AverageCount, ShouldEqual, 2.0)
			So(m.HasAverage, ShouldBeTrue)
		})

		Convey("When fed [1,2,3]", func() {
			So(feed(a, 1, 2, 3).AverageCount, ShouldEqual, 2.0)
		})

		Convey("When fed thirty 1s followed by a 5", func() {
			counts := make([]int, 0, 31)
			for i := 0; i < 30; i++ {
				counts = append(counts, 1)
			}
			counts = append(counts, 5)
			m := feed(a, counts...)

			Convey("Then the evicted first sample is excluded", func() {
				// (29*1 + 5) / 30 = 1.133 -> 1.1
				So(m.AverageCount, ShouldEqual, 1.1)
				So(m.WindowLen, ShouldEqual, 30)
			})
		})

		Convey("When the mean needs rounding to one decimal", func() {
			So(feed(a, 1, 1, 2).AverageCount, ShouldEqual, 1.3)
			a.Reset()
			So(feed(a, 0, 1, 1).AverageCount, ShouldEqual, 0.7)
		})
	})

	Convey("Given an aggregator with a window of 2", t, func() {
		a := aggregator.New(aggregator.WithWindowSize(2))
		So(feed(a, 10, 0, 4).AverageCount, ShouldEqual, 2.0)
	})
}

func TestAggregator_Rate(t *testing.T) {
	Convey("Given a fresh aggregator", t, func() {
		a := aggregator.New()

		Convey("When the first sample arrives", func() {
			m := a.OnSample(1, t0)

			Convey("Then no rate is derived yet", func() {
				So(m.InstantaneousRate, ShouldEqual, 0)
			})
		})

		Convey("When samples are 20ms apart", func() {
			a.OnSample(1, t0)
			m := a.OnSample(1, t0.Add(20*time.Millisecond))
			So(m.InstantaneousRate, ShouldEqual, 50)

			Convey("And a sample repeats the same timestamp", func() {
				var m2 aggregator.Metrics
				So(func() { m2 = a.OnSample(2, t0.Add(20*time.Millisecond)) }, ShouldNotPanic)

				Convey("Then the rate is unchanged but the window still grows", func() {
					So(m2.InstantaneousRate, ShouldEqual, 50)
					So(m2.WindowLen, ShouldEqual, 3)
				})
			})

			Convey("And a sample goes backwards in time", func() {
				m2 := a.OnSample(2, t0)
				So(m2.InstantaneousRate, ShouldEqual, 50)
			})
		})

		Convey("When the interval is fractional", func() {
			a.OnSample(1, t0)
			m := a.OnSample(1, t0.Add(16*time.Millisecond))
			// 1000/16 = 62.5 rounds up
			So(m.InstantaneousRate, ShouldEqual, 63)
		})

		Convey("When reset after samples", func() {
			feed(a, 1, 2, 3)
			a.Reset()

			Convey("Then all state is cleared", func() {
				So(a.Current(), ShouldResemble, aggregator.Metrics{})
				So(a.WindowValues(), ShouldBeEmpty)
				So(a.OnSample(1, t0.Add(time.Hour)).InstantaneousRate, ShouldEqual, 0)
			})
		})
	})
}
