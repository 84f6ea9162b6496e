// Package smoketest drives a live headcount service over HTTP: it starts a
// monitoring run, watches the status feed for invariant violations, and stops
// it again.
package smoketest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/okian/headcount/internal/domain/model"
	"github.com/okian/headcount/pkg/logger"
)

// ErrViolations is returned when any invariant check failed.
var ErrViolations = errors.New("invariant violations observed")

// Run executes the complete smoke run.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}
	log := logger.Get().Named("smoke")
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting headcount smoke run",
		logger.String("run", stats.RunID),
		logger.String("baseURL", cfg.BaseURL),
		logger.Duration("duration", cfg.Duration),
		logger.Bool("attendance", cfg.Attendance))

	// Step 1: Check service health
	if err := client.getJSON(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Make sure the estimator is loaded
	if err := waitReady(ctx, client, cfg); err != nil {
		return stats, fmt.Errorf("estimator not ready: %w", err)
	}

	// Step 3: Configure and start
	enabled := "false"
	if cfg.Attendance {
		enabled = "true"
	}
	if err := client.postJSON(ctx, "/attendance?enabled="+enabled, nil); err != nil {
		return stats, fmt.Errorf("toggle attendance: %w", err)
	}
	var started stateResponse
	if err := client.postJSON(ctx, "/start", &started); err != nil {
		return stats, fmt.Errorf("start monitoring: %w", err)
	}
	log.Info(ctx, "monitoring started", logger.String("session", started.SessionID))

	// Step 4: Watch the running session
	watchErr := watch(ctx, client, cfg, stats, log)

	// Step 5: Stop, even if watching failed
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Timeout)
	defer cancel()
	if err := client.postJSON(stopCtx, "/stop", nil); err != nil {
		return stats, errors.Join(watchErr, fmt.Errorf("stop monitoring: %w", err))
	}
	if watchErr != nil {
		return stats, watchErr
	}

	// Step 6: A stopped session must not tick
	if err := verifyStopped(ctx, client, stats); err != nil {
		return stats, err
	}

	// Step 7: The attendance endpoint agrees with the invariants
	var att attendanceResponse
	if err := client.getJSON(ctx, "/attendance", &att); err != nil {
		return stats, fmt.Errorf("read attendance: %w", err)
	}
	stats.Events = len(att.Events)
	for _, err := range VerifyLog(cfg, att.Events) {
		stats.Violations++
		log.Error(ctx, "attendance violation", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Violations > 0 {
		return stats, fmt.Errorf("%w: %d", ErrViolations, stats.Violations)
	}
	log.Info(ctx, "smoke run completed successfully")
	return stats, nil
}

// waitReady polls /status until the estimator is loaded, issuing POST /init
// when the service is idle.
func waitReady(ctx context.Context, client *HTTPClient, cfg *Config) error {
	deadline := time.Now().Add(cfg.ReadyTimeout)
	for {
		var snap model.Snapshot
		if err := client.getJSON(ctx, "/status", &snap); err != nil {
			return err
		}
		switch snap.State {
		case "ready", "running", "stopped":
			return nil
		case "idle":
			var se *StatusError
			if err := client.postJSON(ctx, "/init", nil); err != nil && !(errors.As(err, &se) && se.Code == http.StatusConflict) {
				return err
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("still %s after %s", snap.State, cfg.ReadyTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.PollInterval):
		}
	}
}

func watch(ctx context.Context, client *HTTPClient, cfg *Config, stats *Stats, log logger.Logger) error {
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	timeout := time.After(cfg.Duration)

	var prev *model.Snapshot
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			if stats.LastTick <= stats.FirstTick {
				return fmt.Errorf("no ticks observed in %s", cfg.Duration)
			}
			return nil
		case <-ticker.C:
		}

		var snap model.Snapshot
		if err := client.getJSON(ctx, "/status", &snap); err != nil {
			return fmt.Errorf("poll status: %w", err)
		}
		stats.Polls++
		if prev == nil {
			stats.FirstTick = snap.Tick
		}
		stats.LastTick = snap.Tick
		if snap.FaceCount > stats.MaxFaces {
			stats.MaxFaces = snap.FaceCount
		}
		if !snap.IsActive {
			return fmt.Errorf("session became inactive (state %s)", snap.State)
		}

		for _, err := range Verify(cfg, prev, &snap) {
			stats.Violations++
			log.Error(ctx, "invariant violation", logger.Uint64("tick", snap.Tick), logger.Error(err))
		}
		if cfg.Verbose {
			log.Info(ctx, "status",
				logger.Uint64("tick", snap.Tick),
				logger.Int("faces", snap.FaceCount),
				logger.Int("fps", snap.InstantaneousRate),
				logger.Float64("average", snap.AverageCount),
				logger.Int("attendance", len(snap.AttendanceLog)))
		}
		prev = &snap
	}
}

func verifyStopped(ctx context.Context, client *HTTPClient, stats *Stats) error {
	var first, second model.Snapshot
	if err := client.getJSON(ctx, "/status", &first); err != nil {
		return fmt.Errorf("poll stopped status: %w", err)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(settleDelay):
	}
	if err := client.getJSON(ctx, "/status", &second); err != nil {
		return fmt.Errorf("poll stopped status: %w", err)
	}
	if first.IsActive || first.State != "stopped" {
		stats.Violations++
		return fmt.Errorf("%w: state %s after stop", ErrViolations, first.State)
	}
	if second.Tick != first.Tick {
		stats.Violations++
		return fmt.Errorf("%w: ticked after stop (%d -> %d)", ErrViolations, first.Tick, second.Tick)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var ticksPerSecond float64
	if stats.Duration > 0 {
		ticksPerSecond = float64(stats.LastTick-stats.FirstTick) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.String("run", stats.RunID),
		logger.Int("polls", stats.Polls),
		logger.Uint64("firstTick", stats.FirstTick),
		logger.Uint64("lastTick", stats.LastTick),
		logger.Int("maxFaces", stats.MaxFaces),
		logger.Int("events", stats.Events),
		logger.Int("violations", stats.Violations),
		logger.Duration("duration", stats.Duration),
		logger.Float64("ticksPerSecond", ticksPerSecond))
}
