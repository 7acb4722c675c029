package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/coordinator"
	"github.com/julianstephens/studyplan/internal/lockfile"
	"github.com/julianstephens/studyplan/internal/logger"
	"github.com/julianstephens/studyplan/internal/metrics"
	"github.com/julianstephens/studyplan/internal/models"
)

// WatchCmd keeps the schedule current: it polls the store, folds in new feedback
// and recomputes whenever inputs change. SIGHUP forces a recompute.
type WatchCmd struct {
	Poll        time.Duration `help:"How often to check for changes." default:"${poll_interval}"`
	MetricsFile string        `help:"Write Prometheus metrics to this file (node-exporter textfile format)." type:"path"`
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	if c.Poll <= 0 {
		c.Poll = constants.WatchPollInterval
	}

	lock, err := lockfile.Acquire(ctx.ConfigDir)
	if err != nil {
		if errors.Is(err, lockfile.ErrAlreadyRunning) {
			return fmt.Errorf("another studyplan watch is already running: %w", err)
		}
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("Failed to release lockfile", "error", err)
		}
	}()

	if ctx.Metrics == nil {
		ctx.Metrics = metrics.New()
	}
	w := &watcher{metrics: ctx.Metrics, metricsFile: c.MetricsFile}
	coord, err := ctx.NewCoordinator(w)
	if err != nil {
		return err
	}
	w.coord = coord

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	ticker := time.NewTicker(c.Poll)
	defer ticker.Stop()

	fmt.Printf("Watching %s (poll every %s, Ctrl-C to stop)\n", ctx.Store.GetConfigPath(), c.Poll)
	return w.serve(runCtx, ticker.C, hup)
}

type watcher struct {
	coord       *coordinator.Coordinator
	metrics     *metrics.Metrics
	metricsFile string
}

func (w *watcher) Publish(result models.ScheduleResult) {
	logger.Info("Schedule published",
		"sessions", len(result.Sessions),
		"overflow", len(result.Overflow),
		"fingerprint", result.Fingerprint)
	w.writeMetrics()
}

func (w *watcher) writeMetrics() {
	if err := w.metrics.WriteTextfile(w.metricsFile); err != nil {
		logger.Warn("Failed to write metrics file", "path", w.metricsFile, "error", err)
	}
}

// serve runs the coordinator until ctx is cancelled. Each tick runs a learner
// pass and queues a debounced recompute; the fingerprint cache makes idle
// ticks cheap.
func (w *watcher) serve(ctx context.Context, ticks <-chan time.Time, hup <-chan os.Signal) error {
	done := make(chan error, 1)
	go func() { done <- w.coord.Run(ctx) }()

	w.coord.Trigger(coordinator.ReasonManual)
	for {
		select {
		case <-ctx.Done():
			return <-done

		case <-ticks:
			if _, err := w.coord.Learn(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("Learner pass failed", "error", err)
			}
			w.coord.Trigger(coordinator.ReasonPoll)
			w.writeMetrics()

		case <-hup:
			logger.Info("SIGHUP received, recomputing")
			if _, err := w.coord.Recompute(ctx, true); err != nil && ctx.Err() == nil {
				logger.Warn("Recompute failed", "error", err)
			}
			w.writeMetrics()
		}
	}
}
