// Package coordinator serializes schedule recomputes and learner passes onto a
// single worker goroutine.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/julianstephens/studyplan/internal/constants"
	apperrors "github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/logger"
	"github.com/julianstephens/studyplan/internal/metrics"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/optimizer"
	"github.com/julianstephens/studyplan/internal/recurrence"
	"github.com/julianstephens/studyplan/internal/scheduler"
	"github.com/julianstephens/studyplan/internal/storage"
)

// Trigger reasons
const (
	ReasonManual   = "manual"
	ReasonPoll     = "poll"
	ReasonSignal   = "signal"
	ReasonLearner  = "learner"
	ReasonDataEdit = "edit"
)

var ErrAlreadyRunning = errors.New("coordinator is already running")

// Publisher receives every schedule the coordinator persists.
type Publisher interface {
	Publish(models.ScheduleResult)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(models.ScheduleResult)

func (f PublisherFunc) Publish(r models.ScheduleResult) { f(r) }

// Report describes one recompute.
type Report struct {
	Schedule models.ScheduleResult
	// Cached is true when the inputs matched an earlier recompute and the
	// scheduler was not run.
	Cached   bool
	Duration time.Duration
}

type Options struct {
	Publisher Publisher
	Metrics   *metrics.Metrics
	// Now is the scheduling clock. Defaults to time.Now.
	Now       func() time.Time
	CacheSize int
}

type requestKind int

const (
	recomputeRequest requestKind = iota
	learnRequest
)

type request struct {
	kind   requestKind
	force  bool
	dryRun bool
	reply  chan response
}

type response struct {
	report  Report
	outcome optimizer.Outcome
	err     error
}

type Coordinator struct {
	store     storage.Provider
	publisher Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
	cache     *lru.Cache[uint64, models.ScheduleResult]
	learner   *optimizer.FeedbackLearner

	triggers chan string
	requests chan request
	running  atomic.Bool
}

func New(store storage.Provider, opts Options) (*Coordinator, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = constants.ResultCacheSize
	}
	cache, err := lru.New[uint64, models.ScheduleResult](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Coordinator{
		store:     store,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		now:       now,
		cache:     cache,
		learner:   optimizer.NewFeedbackLearner(store),
		triggers:  make(chan string, 64),
		requests:  make(chan request),
	}, nil
}

// Trigger marks a recompute as pending. It never blocks; bursts of triggers
// collapse into one recompute once the debounce window has passed.
func (c *Coordinator) Trigger(reason string) {
	c.metrics.Trigger()
	select {
	case c.triggers <- reason:
	default:
		// the queue only needs one entry to keep the pending flag set
	}
}

// Recompute runs a recompute on the worker and waits for it. Unless force is
// set, unchanged inputs return the cached schedule.
func (c *Coordinator) Recompute(ctx context.Context, force bool) (Report, error) {
	resp, err := c.do(ctx, request{kind: recomputeRequest, force: force})
	return resp.report, err
}

// Preview computes the schedule the next recompute would produce without
// saving or publishing it.
func (c *Coordinator) Preview(ctx context.Context) (Report, error) {
	resp, err := c.do(ctx, request{kind: recomputeRequest, force: true, dryRun: true})
	return resp.report, err
}

// Learn runs a learner pass on the worker and queues a recompute when any
// feedback was consumed.
func (c *Coordinator) Learn(ctx context.Context) (optimizer.Outcome, error) {
	resp, err := c.do(ctx, request{kind: learnRequest})
	return resp.outcome, err
}

func (c *Coordinator) do(ctx context.Context, req request) (response, error) {
	req.reply = make(chan response, 1)
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
	select {
	case resp := <-req.reply:
		return resp, resp.err
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

// Run is the worker loop. It returns when ctx is cancelled. A recompute that has
// started always runs to completion.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer c.running.Store(false)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	var (
		pending     bool
		lastTrigger time.Time
		lastRun     time.Time
	)
	arm := func() {
		debounce, minInterval := c.timing()
		fireAt := lastTrigger.Add(debounce)
		if next := lastRun.Add(minInterval); next.After(fireAt) {
			fireAt = next
		}
		timer.Reset(max(time.Until(fireAt), 0))
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case reason := <-c.triggers:
			logger.Debug("Recompute triggered", "reason", reason)
			pending = true
			lastTrigger = time.Now()
			arm()

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			if _, err := c.recompute(false); err != nil {
				logger.Warn("Recompute failed", "error", err)
			}
			lastRun = time.Now()

		case req := <-c.requests:
			var resp response
			switch req.kind {
			case recomputeRequest:
				if req.dryRun {
					resp.report, resp.err = c.preview()
					break
				}
				// a synchronous recompute reads the same store a pending one would
				pending = false
				resp.report, resp.err = c.recompute(req.force)
				lastRun = time.Now()
			case learnRequest:
				resp.outcome, resp.err = c.learn()
				if resp.err == nil && resp.outcome.Consumed() > 0 {
					pending = true
					lastTrigger = time.Now()
					arm()
				}
			}
			req.reply <- resp
		}
	}
}

// timing reads the debounce settings, falling back to the defaults when the
// settings cannot be loaded.
func (c *Coordinator) timing() (time.Duration, time.Duration) {
	settings, err := c.store.GetSettings()
	if err != nil {
		return constants.DefaultDebounce, constants.DefaultMinInterval
	}
	return settings.Debounce(), settings.MinInterval()
}

func (c *Coordinator) learn() (optimizer.Outcome, error) {
	_, outcome, err := c.learner.Run()
	if err != nil {
		return outcome, err
	}
	c.metrics.ObserveFeedback(outcome.Positive, outcome.Negative, outcome.Neutral, outcome.Dropped)
	return outcome, nil
}

type snapshot struct {
	input    scheduler.Input
	holidays recurrence.HolidaySet
	timezone string
	stored   models.ScheduleResult
}

func (c *Coordinator) snapshot() (snapshot, error) {
	settings, err := c.store.GetSettings()
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to load settings: %w", err)
	}
	prefs, err := c.store.GetPreferences()
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	constraints, err := settings.Constraints(c.now(), prefs)
	if err != nil {
		return snapshot{}, err
	}
	holidays, err := recurrence.HolidaySetFromSettings(settings)
	if err != nil {
		return snapshot{}, apperrors.NewConfigError(constants.SettingHolidays, "%v", err)
	}
	tasks, err := c.store.GetAllTasks()
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to load tasks: %w", err)
	}
	events, err := c.store.GetEvents(constraints.HorizonStart, constraints.HorizonEnd)
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to load events: %w", err)
	}
	stored, err := c.store.GetSchedule()
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to load schedule: %w", err)
	}

	return snapshot{
		input: scheduler.Input{
			Tasks:       tasks,
			Events:      events,
			Previous:    stored.Sessions,
			Constraints: constraints,
			Preferences: prefs,
		},
		holidays: holidays,
		timezone: settings.Timezone,
		stored:   stored,
	}, nil
}

func (c *Coordinator) recompute(force bool) (Report, error) {
	started := time.Now()
	report, err := c.recomputeOnce(force)
	report.Duration = time.Since(started)

	switch {
	case err != nil:
		c.metrics.ObserveRecompute(metrics.ResultError, report.Duration, nil)
		if apperrors.IsConfigError(err) {
			logger.Warn("Configuration error, keeping the previous schedule", "error", err)
		}
	case report.Cached:
		c.metrics.ObserveRecompute(metrics.ResultCached, report.Duration, &report.Schedule)
	default:
		c.metrics.ObserveRecompute(metrics.ResultComputed, report.Duration, &report.Schedule)
	}
	return report, err
}

func (c *Coordinator) preview() (Report, error) {
	started := time.Now()
	snap, err := c.snapshot()
	if err != nil {
		return Report{}, err
	}
	fp, err := fingerprint(snap)
	if err != nil {
		return Report{}, fmt.Errorf("failed to fingerprint inputs: %w", err)
	}
	result, err := c.generate(snap, fp)
	if err != nil {
		return Report{}, err
	}
	return Report{Schedule: result, Duration: time.Since(started)}, nil
}

func (c *Coordinator) generate(snap snapshot, fp uint64) (models.ScheduleResult, error) {
	result, err := scheduler.New(recurrence.NewExpander(snap.holidays)).GenerateSchedule(snap.input)
	if err != nil {
		return models.ScheduleResult{}, err
	}
	result.Fingerprint = fp
	result.GeneratedAt = snap.input.Constraints.Now
	return result, nil
}

func (c *Coordinator) recomputeOnce(force bool) (Report, error) {
	snap, err := c.snapshot()
	if err != nil {
		return Report{}, err
	}
	fp, err := fingerprint(snap)
	if err != nil {
		return Report{}, fmt.Errorf("failed to fingerprint inputs: %w", err)
	}

	if !force {
		if cached, ok := c.cache.Get(fp); ok {
			if snap.stored.Fingerprint != fp {
				if err := c.persist(cached); err != nil {
					return Report{}, err
				}
			}
			logger.Debug("Inputs unchanged, reusing schedule", "fingerprint", fp)
			return Report{Schedule: cached, Cached: true}, nil
		}
	}

	result, err := c.generate(snap, fp)
	if err != nil {
		return Report{}, err
	}

	if err := c.persist(result); err != nil {
		return Report{}, err
	}
	c.cache.Add(fp, result)

	logger.Info("Schedule recomputed",
		"sessions", len(result.Sessions),
		"overflow", len(result.Overflow),
		"minutes", result.ScheduledMinutes())
	return Report{Schedule: result}, nil
}

func (c *Coordinator) persist(result models.ScheduleResult) error {
	if err := c.store.SaveSchedule(result); err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	if c.publisher != nil {
		c.publisher.Publish(result)
	}
	return nil
}
