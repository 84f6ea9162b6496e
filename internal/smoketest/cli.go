package smoketest

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/headcount/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0o600
)

// SetupLogging initializes the logger to write to stdout and, when logFile is
// not "-", to a file. An empty logFile gets a timestamped name.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	var (
		out    io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if logFile != "-" {
		if logFile == "" {
			logFile = "smoke_" + time.Now().Format("20060102_150405") + ".log"
		}
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	if err := logger.Init(logger.WithWriter(out)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	os.Stdout.WriteString(`Headcount Smoke Tool
====================

Starts a monitoring run on a live headcount service, watches /status for
invariant violations, then stops the run and checks nothing ticks afterwards.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -duration duration
        How long to watch the running session (default 5s)
  -poll duration
        Delay between status polls (default 100ms)
  -timeout duration
        HTTP request timeout (default 5s)
  -ready-timeout duration
        How long to wait for the estimator to load (default 30s)
  -window int
        Expected rolling window capacity (default 30)
  -log-size int
        Expected attendance log capacity (default 10)
  -attendance
        Enable attendance tracking for the run (default true)
  -log string
        Log file; "-" for stdout only (default: smoke_TIMESTAMP.log)
  -verbose
        Log every poll
  -help
        Show this help message

Examples:
  go run ./cmd/smoke -duration 30s -verbose
  go run ./cmd/smoke -url http://localhost:8080 -attendance=false -log -
`)
}
