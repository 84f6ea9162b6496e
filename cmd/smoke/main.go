package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/headcount/internal/smoketest"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		duration     = flag.Duration("duration", smoketest.DefaultDuration, "How long to watch the running session")
		poll         = flag.Duration("poll", smoketest.DefaultPollInterval, "Delay between status polls")
		timeout      = flag.Duration("timeout", smoketest.DefaultTimeout, "HTTP request timeout")
		readyTimeout = flag.Duration("ready-timeout", smoketest.DefaultReadyTimeout, "How long to wait for the estimator to load")
		window       = flag.Int("window", smoketest.DefaultWindowSize, "Expected rolling window capacity")
		logSize      = flag.Int("log-size", smoketest.DefaultLogSize, "Expected attendance log capacity")
		attendance   = flag.Bool("attendance", true, "Enable attendance tracking for the run")
		logFile      = flag.String("log", "", `Log file; "-" for stdout only (default: smoke_TIMESTAMP.log)`)
		verbose      = flag.Bool("verbose", false, "Log every poll")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoketest.ShowHelp()
		return
	}

	closer, err := smoketest.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)

	cfg := &smoketest.Config{
		BaseURL:      *baseURL,
		Duration:     *duration,
		PollInterval: *poll,
		Timeout:      *timeout,
		ReadyTimeout: *readyTimeout,
		WindowSize:   *window,
		LogSize:      *logSize,
		Attendance:   *attendance,
		Verbose:      *verbose,
	}

	_, err = smoketest.Run(ctx, cfg)
	cancel()
	_ = closer.Close()
	if err != nil {
		os.Stderr.WriteString("Smoke run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
