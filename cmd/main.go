package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/headcount/internal/adapters/camera"
	"github.com/okian/headcount/internal/adapters/estimator"
	"github.com/okian/headcount/internal/adapters/http/api"
	"github.com/okian/headcount/internal/adapters/http/swagger"
	"github.com/okian/headcount/internal/adapters/mq/hub"
	app "github.com/okian/headcount/internal/app"
	"github.com/okian/headcount/internal/config"
	"github.com/okian/headcount/internal/domain/attendance"
	"github.com/okian/headcount/pkg/logger"
	"github.com/okian/headcount/pkg/metrics"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// components is everything main wires together.
type components struct {
	svc  *app.Service
	feed *hub.Hub
	mux  *http.ServeMux
}

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithJSON(cfg.LogJSON)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	c, err := build(cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build service", logger.Error(err))
		return
	}

	// Load the estimator in the background; the API reports Loading meanwhile.
	go initialize(ctx, c.svc, cfg.AutoStart, loggerInstance)

	go startSystemMetricsUpdater(ctx, loggerInstance)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           c.mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop ticking and release the camera before closing live streams.
	if err := c.svc.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "monitor shutdown failed", logger.Error(err))
	}
	_ = c.feed.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// build wires the loop driver, its collaborators and the HTTP routes from cfg.
func build(cfg *config.Config, log logger.Logger) (*components, error) {
	baseline, err := attendance.ParseBaseline(cfg.AttendanceBaseline)
	if err != nil {
		return nil, err
	}

	latencyMin, latencyMax := cfg.EstimatorLatency()
	loader := &estimator.SimulatedLoader{
		Delay: cfg.EstimatorLoadDelay(),
		Options: []estimator.Option{
			estimator.WithLatencyRange(latencyMin, latencyMax),
			estimator.WithMaxFaces(cfg.EstimatorMaxFaces),
			estimator.WithFailureRate(cfg.EstimatorFailureRate),
			estimator.WithFrameSize(cfg.CameraWidth, cfg.CameraHeight),
		},
	}
	cam := camera.NewSynthetic(camera.WithResolution(cfg.CameraWidth, cfg.CameraHeight))
	feed := hub.New(hub.WithSubscriberBuffer(cfg.FeedBufferSize))

	svc := app.New(loader, cam,
		app.WithLogger(log.Named("monitor")),
		app.WithRefreshInterval(cfg.RefreshInterval()),
		app.WithWindowSize(cfg.WindowSize),
		app.WithAttendanceLogSize(cfg.AttendanceLogSize),
		app.WithAttendanceBaseline(baseline),
		app.WithAttendanceEnabled(cfg.AttendanceEnabled),
		app.WithOverlayEnabled(cfg.OverlayEnabled),
		app.WithResetOnRestart(cfg.ResetOnRestart),
		app.WithPublisher(feed),
	)

	mux := http.NewServeMux()
	api.NewServer(svc, feed).Register(mux)
	swagger.Register(context.Background(), mux)

	return &components{svc: svc, feed: feed, mux: mux}, nil
}

// initialize loads the estimator and optionally starts monitoring. A failed
// load leaves the driver Idle; POST /init retries.
func initialize(ctx context.Context, svc *app.Service, autoStart bool, log logger.Logger) {
	if err := svc.Init(ctx); err != nil {
		log.Error(ctx, "estimator initialization failed; retry with POST /init", logger.Error(err))
		return
	}
	if !autoStart {
		return
	}
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "auto start failed", logger.Error(err))
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context, log logger.Logger) {
	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pid fits in int32
	if err != nil {
		log.Warn(ctx, "process metrics unavailable", logger.Error(err))
	}

	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics(proc)
		}
	}
}

// updateSystemMetrics updates runtime and process metrics. proc may be nil.
func updateSystemMetrics(proc *process.Process) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}

	if proc == nil {
		return
	}
	if pct, err := proc.CPUPercent(); err == nil {
		metrics.UpdateProcessCPUPercent(pct)
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		metrics.UpdateProcessRSS(mem.RSS)
	}
}
