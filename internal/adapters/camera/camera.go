// Package camera defines the camera contract used by the loop driver and a
// synthetic camera that needs no hardware.
package camera

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/headcount/internal/domain/model"
)

// Sentinel kinds for camera errors.
var (
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrUnknownHandle    = errors.New("unknown camera handle")
)

// Handle is an acquired stream. The core only asks it for the current frame
// and never reads pixel data.
type Handle interface {
	ID() string
	CurrentFrame() model.Frame
}

// Camera acquires and releases streams.
type Camera interface {
	Acquire(ctx context.Context) (Handle, error)
	Release(h Handle) error
}

// Default synthetic resolution.
const (
	defaultWidth  = 640
	defaultHeight = 480
)

// Option applies a configuration option to the Synthetic camera.
type Option func(*Synthetic)

// WithResolution sets the frame size.
func WithResolution(width, height int) Option {
	return func(s *Synthetic) {
		if width > 0 && height > 0 {
			s.width = width
			s.height = height
		}
	}
}

// WithAcquireError makes every Acquire fail with err.
func WithAcquireError(err error) Option {
	return func(s *Synthetic) {
		s.acquireErr = err
	}
}

// Synthetic is an in-memory camera producing numbered frames.
type Synthetic struct {
	width  int
	height int

	mu         sync.Mutex
	acquireErr error
	open       map[string]*syntheticHandle
	acquired   atomic.Int64
	released   atomic.Int64
}

// NewSynthetic creates a synthetic camera.
func NewSynthetic(opts ...Option) *Synthetic {
	s := &Synthetic{
		width:  defaultWidth,
		height: defaultHeight,
		open:   make(map[string]*syntheticHandle),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAcquireError changes the acquisition outcome at runtime; nil restores success.
func (s *Synthetic) SetAcquireError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acquireErr = err
}

// Acquire implements Camera.
func (s *Synthetic) Acquire(ctx context.Context) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("acquire cancelled: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquireErr != nil {
		return nil, s.acquireErr
	}
	h := &syntheticHandle{id: uuid.NewString(), width: s.width, height: s.height}
	s.open[h.id] = h
	s.acquired.Add(1)
	return h, nil
}

// Release implements Camera.
func (s *Synthetic) Release(h Handle) error {
	if h == nil {
		return ErrUnknownHandle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.open[h.ID()]; !ok {
		return ErrUnknownHandle
	}
	delete(s.open, h.ID())
	s.released.Add(1)
	return nil
}

// Open returns the number of handles not yet released.
func (s *Synthetic) Open() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}

// Acquired returns the total number of successful acquisitions.
func (s *Synthetic) Acquired() int64 { return s.acquired.Load() }

// Released returns the total number of releases.
func (s *Synthetic) Released() int64 { return s.released.Load() }

type syntheticHandle struct {
	id     string
	width  int
	height int
	seq    atomic.Uint64
}

func (h *syntheticHandle) ID() string { return h.id }

func (h *syntheticHandle) CurrentFrame() model.Frame {
	return model.Frame{
		Seq:       h.seq.Add(1),
		Timestamp: time.Now(),
		Width:     h.width,
		Height:    h.height,
	}
}
