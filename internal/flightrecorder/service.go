// Package flightrecorder keeps a rolling execution trace in memory and writes it to disk when a request runs
// into its deadline.
package flightrecorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync/atomic"
	"time"
)

const (
	defaultMinAge   = 2 * time.Minute
	defaultMaxBytes = 32 * 1024 * 1024
	defaultCooldown = 15 * time.Minute
)

// Recorder writes at most one trace per cooldown period.
type Recorder struct {
	logger    *slog.Logger
	recorder  *trace.FlightRecorder
	directory string
	cooldown  time.Duration
	last      atomic.Int64
	captured  atomic.Int64
}

type Config struct {
	MinAge   time.Duration
	MaxBytes uint64
	// Cooldown is the minimum time between two captures.
	Cooldown time.Duration
	// Directory receives the trace files. It is created when missing.
	Directory string
}

func New(cfg Config, logger *slog.Logger) (*Recorder, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.Directory == "" {
		return nil, errors.New("traces directory is required")
	}
	stat, err := os.Stat(cfg.Directory)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err = os.MkdirAll(cfg.Directory, 0o750); err != nil { //nolint:mnd // owner and group
			return nil, fmt.Errorf("create traces directory: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("stat traces directory: %w", err)
	case !stat.IsDir():
		return nil, fmt.Errorf("traces path is not a directory: %s", cfg.Directory)
	}

	if cfg.MinAge == 0 {
		cfg.MinAge = defaultMinAge
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = defaultCooldown
	}

	return &Recorder{
		logger:    logger,
		recorder:  trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: cfg.MinAge, MaxBytes: cfg.MaxBytes}),
		directory: cfg.Directory,
		cooldown:  cfg.Cooldown,
		last:      atomic.Int64{},
		captured:  atomic.Int64{},
	}, nil
}

func (r *Recorder) Start(ctx context.Context) error {
	if err := r.recorder.Start(); err != nil {
		return fmt.Errorf("start flight recorder: %w", err)
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started",
		slog.String("directory", r.directory), slog.Duration("cooldown", r.cooldown))
	return nil
}

func (r *Recorder) Stop(ctx context.Context) {
	r.recorder.Stop()
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder stopped", slog.Int64("captured", r.captured.Load()))
}

// Capture writes the buffered trace to a file named after reason. Calls within the cooldown of the previous
// capture are dropped.
func (r *Recorder) Capture(ctx context.Context, reason string) {
	now := time.Now()
	last := r.last.Load()
	if last > 0 && now.Sub(time.Unix(0, last)) < r.cooldown {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "trace capture cooling down", slog.String("reason", reason))
		return
	}
	if !r.last.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	path := filepath.Join(r.directory, fmt.Sprintf("%s-%s.trace", reason, now.UTC().Format("20060102-150405")))
	file, err := os.Create(path) //nolint:gosec // the directory is configured by the operator.
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to create trace file",
			slog.String("file", path), slog.Any("error", err))
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to close trace file",
				slog.String("file", path), slog.Any("error", closeErr))
		}
	}()

	n, err := r.recorder.WriteTo(file)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to write trace",
			slog.String("file", path), slog.Any("error", err))
		return
	}
	r.captured.Add(1)
	r.logger.LogAttrs(ctx, slog.LevelWarn, "captured trace",
		slog.String("file", path), slog.String("reason", reason), slog.Int64("bytes", n))
}
