package service_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/okian/headcount/internal/adapters/camera"
	"github.com/okian/headcount/internal/adapters/detector"
	"github.com/okian/headcount/internal/adapters/estimator"
	"github.com/okian/headcount/internal/domain/model"
	"github.com/okian/headcount/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

const testInterval = 2 * time.Millisecond

// scripted returns a loader whose estimator cycles through counts instantly.
func scripted(counts ...int) estimator.Loader {
	return &estimator.SimulatedLoader{
		Options: []estimator.Option{
			estimator.WithLatencyRange(0, 0),
			estimator.WithScript(counts...),
		},
	}
}

func loaderOf(est detector.Estimator) estimator.Loader {
	return estimator.LoaderFunc(func(context.Context) (detector.Estimator, error) {
		return est, nil
	})
}

// recorder collects published snapshots.
type recorder struct {
	mu    sync.Mutex
	snaps []model.Snapshot
}

func (r *recorder) Publish(_ context.Context, snap model.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
}

func (r *recorder) all() []model.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Snapshot(nil), r.snaps...)
}

// gate blocks its first call until released, ignoring cancellation, then
// answers every later call immediately with no faces.
type gate struct {
	entered  chan struct{}
	release  chan struct{}
	returned chan struct{}
	faces    int

	mu    sync.Mutex
	calls int
}

func newGate(faces int) *gate {
	return &gate{
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
		returned: make(chan struct{}),
		faces:    faces,
	}
}

func (g *gate) EstimateFaces(context.Context, model.Frame) ([]model.Region, error) {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()

	if !first {
		return nil, nil
	}
	close(g.entered)
	<-g.release
	defer close(g.returned)
	return make([]model.Region, g.faces), nil
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}

// slowCamera holds every Acquire until release is closed, like a camera
// waiting on a permission prompt.
type slowCamera struct {
	*camera.Synthetic
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newSlowCamera() *slowCamera {
	return &slowCamera{
		Synthetic: camera.NewSynthetic(),
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
}

func (c *slowCamera) Acquire(ctx context.Context) (camera.Handle, error) {
	c.once.Do(func() { close(c.entered) })
	<-c.release
	return c.Synthetic.Acquire(ctx)
}

// within reports whether fn returns before d elapses.
func within(d time.Duration, fn func()) bool {
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}
