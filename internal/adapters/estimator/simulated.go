package estimator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/headcount/internal/adapters/detector"
	"github.com/okian/headcount/internal/domain/model"
)

// Default simulation constants.
const (
	defaultMinLatency      = 20 * time.Millisecond
	defaultMaxLatency      = 60 * time.Millisecond
	defaultMaxFaces        = 4
	defaultStepProbability = 0.05
	defaultRandomSeed      = 42
	defaultFrameWidth      = 640
	defaultFrameHeight     = 480
	minFaceSize            = 40
	maxFaceSize            = 120
)

// ErrSimulatedFailure is returned when the simulated failure rate triggers.
var ErrSimulatedFailure = errors.New("simulated estimator failure")

var _ detector.Estimator = (*Simulated)(nil)

// Simulated is a stand-in estimator. The face count follows a slow random
// walk (or a fixed script) and each call sleeps within a latency range.
type Simulated struct {
	minLatency      time.Duration
	maxLatency      time.Duration
	maxFaces        int
	failureRate     float64
	stepProbability float64
	seed            int64
	frameWidth      int
	frameHeight     int
	script          []int

	mu     sync.Mutex
	rng    *rand.Rand
	count  int
	cursor int
}

// NewSimulated creates a simulated estimator.
func NewSimulated(opts ...Option) *Simulated {
	s := &Simulated{
		minLatency:      defaultMinLatency,
		maxLatency:      defaultMaxLatency,
		maxFaces:        defaultMaxFaces,
		stepProbability: defaultStepProbability,
		seed:            defaultRandomSeed,
		frameWidth:      defaultFrameWidth,
		frameHeight:     defaultFrameHeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rng = rand.New(rand.NewSource(s.seed)) //nolint:gosec // simulation, not crypto
	return s
}

// EstimateFaces implements detector.Estimator.
func (s *Simulated) EstimateFaces(ctx context.Context, frame model.Frame) ([]model.Region, error) {
	s.mu.Lock()
	latency := s.minLatency
	if span := s.maxLatency - s.minLatency; span > 0 {
		latency += time.Duration(s.rng.Int63n(int64(span)))
	}
	fail := s.failureRate > 0 && s.rng.Float64() < s.failureRate
	count := s.nextCount()
	regions := s.regions(count, frame)
	s.mu.Unlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("estimate cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	if fail {
		return nil, ErrSimulatedFailure
	}
	return regions, nil
}

// nextCount advances the script or the random walk. Caller holds mu.
func (s *Simulated) nextCount() int {
	if len(s.script) > 0 {
		c := s.script[s.cursor%len(s.script)]
		s.cursor++
		return c
	}
	if s.rng.Float64() < s.stepProbability {
		if s.rng.Intn(2) == 0 {
			s.count--
		} else {
			s.count++
		}
	}
	if s.count < 0 {
		s.count = 0
	}
	if s.count > s.maxFaces {
		s.count = s.maxFaces
	}
	return s.count
}

// regions places count boxes inside the frame. Caller holds mu.
func (s *Simulated) regions(count int, frame model.Frame) []model.Region {
	w, h := frame.Width, frame.Height
	if w <= 0 || h <= 0 {
		w, h = s.frameWidth, s.frameHeight
	}
	out := make([]model.Region, 0, count)
	for i := 0; i < count; i++ {
		size := float64(minFaceSize + s.rng.Intn(maxFaceSize-minFaceSize+1))
		x := s.rng.Float64() * maxFloat(float64(w)-size, 0)
		y := s.rng.Float64() * maxFloat(float64(h)-size, 0)
		out = append(out, model.Region{
			TopLeft:     model.Point{X: x, Y: y},
			BottomRight: model.Point{X: x + size, Y: y + size},
		})
	}
	return out
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
