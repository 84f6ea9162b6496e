package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/headcount/internal/domain/aggregator"
	"github.com/okian/headcount/internal/domain/attendance"
	"github.com/okian/headcount/internal/domain/model"
)

// Session is the state one monitoring session accumulates. The driver owns it
// and hands its aggregator and tracker the samples.
type Session struct {
	ID         string
	StartedAt  time.Time
	Aggregator *aggregator.Aggregator
	Tracker    *attendance.Tracker
	Ticks      uint64
	Last       model.Sample
}

func (s *Service) newSession() *Session {
	return &Session{
		ID:         uuid.NewString(),
		StartedAt:  time.Now(),
		Aggregator: aggregator.New(aggregator.WithWindowSize(s.windowSize)),
		Tracker: attendance.New(
			attendance.WithCapacity(s.logSize),
			attendance.WithBaseline(s.baseline),
		),
	}
}
