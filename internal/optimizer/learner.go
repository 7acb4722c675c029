// Package optimizer learns scheduling preferences from how the user treated
// placed sessions.
package optimizer

import (
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/logger"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage"
)

// Config bounds the learner. Every learned energy weight stays in [Floor, Ceiling].
type Config struct {
	Step    float64
	Floor   float64
	Ceiling float64
}

func DefaultConfig() Config {
	return Config{
		Step:    constants.DefaultLearnerStep,
		Floor:   constants.DefaultLearnerFloor,
		Ceiling: constants.DefaultLearnerCeiling,
	}
}

func ConfigFromSettings(s models.Settings) Config {
	return Config{Step: s.LearnerStep, Floor: s.LearnerFloor, Ceiling: s.LearnerCeiling}
}

// Outcome counts what a learner pass did with the feedback it read.
type Outcome struct {
	Positive int
	Negative int
	Neutral  int
	Dropped  int
}

func (o Outcome) Consumed() int {
	return o.Positive + o.Negative + o.Neutral + o.Dropped
}

// Signal classifies one piece of feedback: +1 rewards the hour it was placed
// in, -1 penalizes it, 0 leaves it alone.
func Signal(fb models.BlockFeedback) int {
	if fb.Completion < constants.LowCompletionThreshold {
		return -1
	}
	switch fb.Action {
	case models.ActionKept, models.ActionExtended:
		if fb.Completion >= constants.KeptCompletionThreshold {
			return 1
		}
	case models.ActionRescheduled, models.ActionDeleted, models.ActionShortened:
		return -1
	}
	return 0
}

// Apply folds feedback into a copy of prefs in arrival order. Feedback for
// session ids not in known is dropped; a nil known accepts everything.
func Apply(prefs models.Preferences, feedback []models.BlockFeedback, known map[string]bool, cfg Config, loc *time.Location) (models.Preferences, Outcome) {
	out := prefs.Clone()
	if loc == nil {
		loc = time.Local
	}
	biasStep := cfg.Step / constants.CourseBiasStepDivisor

	var outcome Outcome
	for _, fb := range feedback {
		if known != nil && !known[fb.SessionID] {
			outcome.Dropped++
			logger.Debug("Dropping feedback for unknown session", "session", fb.SessionID, "action", fb.Action)
			continue
		}

		sign := Signal(fb)
		switch sign {
		case 1:
			outcome.Positive++
		case -1:
			outcome.Negative++
		default:
			outcome.Neutral++
			continue
		}

		hour := fb.Start.In(loc).Hour()
		delta := float64(sign) * cfg.Step
		out.Energy[hour] = round(clamp(out.Energy.Weight(hour)+delta, cfg.Floor, cfg.Ceiling))

		if fb.CourseID != "" {
			bias := out.CourseBias[fb.CourseID] + float64(sign)*biasStep
			out.CourseBias[fb.CourseID] = round(clamp(bias, -constants.MaxCourseBias, constants.MaxCourseBias))
		}
	}
	return out, outcome
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round trims float drift so repeated nudges land on clean values.
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// FeedbackLearner runs learner passes against the store.
type FeedbackLearner struct {
	store storage.Provider
}

func NewFeedbackLearner(store storage.Provider) *FeedbackLearner {
	return &FeedbackLearner{store: store}
}

// Run loads preferences, pending feedback and the current schedule, applies the
// feedback, saves the preferences and then clears the feedback it consumed.
func (l *FeedbackLearner) Run() (models.Preferences, Outcome, error) {
	settings, err := l.store.GetSettings()
	if err != nil {
		return models.Preferences{}, Outcome{}, fmt.Errorf("failed to load settings: %w", err)
	}
	loc, err := settings.Location()
	if err != nil {
		return models.Preferences{}, Outcome{}, err
	}
	prefs, err := l.store.GetPreferences()
	if err != nil {
		return models.Preferences{}, Outcome{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	feedback, err := l.store.ListFeedback()
	if err != nil {
		return models.Preferences{}, Outcome{}, fmt.Errorf("failed to load feedback: %w", err)
	}
	if len(feedback) == 0 {
		return prefs, Outcome{}, nil
	}
	schedule, err := l.store.GetSchedule()
	if err != nil {
		return models.Preferences{}, Outcome{}, fmt.Errorf("failed to load schedule: %w", err)
	}

	known := make(map[string]bool, len(schedule.Sessions))
	for _, s := range schedule.Sessions {
		known[s.ID] = true
	}

	updated, outcome := Apply(prefs, feedback, known, ConfigFromSettings(settings), loc)
	if err := l.store.SavePreferences(updated); err != nil {
		return models.Preferences{}, Outcome{}, fmt.Errorf("failed to save preferences: %w", err)
	}

	ids := make([]string, len(feedback))
	for i, fb := range feedback {
		ids[i] = fb.ID
	}
	if err := l.store.ClearFeedback(ids); err != nil {
		return updated, outcome, fmt.Errorf("failed to clear feedback: %w", err)
	}

	logger.Info("Learner pass complete",
		"positive", outcome.Positive,
		"negative", outcome.Negative,
		"neutral", outcome.Neutral,
		"dropped", outcome.Dropped)
	return updated, outcome, nil
}
