// Package recurrence expands recurring task definitions into dated occurrences.
package recurrence

import (
	"fmt"
	"time"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/logger"
	"github.com/julianstephens/studyplan/internal/models"
)

type Expander struct {
	sources map[models.HolidaySource]HolidayChecker
}

// NewExpander returns an expander whose "list" holiday source is holidays.
// A nil checker means the list is empty.
func NewExpander(holidays HolidayChecker) *Expander {
	if holidays == nil {
		holidays = NoHolidays{}
	}
	return &Expander{
		sources: map[models.HolidaySource]HolidayChecker{
			models.HolidaySourceNone: NoHolidays{},
			models.HolidaySourceList: holidays,
		},
	}
}

func (e *Expander) holidays(source models.HolidaySource) HolidayChecker {
	if source == "" {
		source = models.HolidaySourceList
	}
	if h, ok := e.sources[source]; ok {
		return h
	}
	logger.Warn("Unknown holiday source, holidays ignored", "source", source)
	return NoHolidays{}
}

// Expand returns the occurrence dates of rule anchored at anchor, up to windowEnd.
// The anchor is always the first occurrence. Later candidates are computed from the
// anchor, moved forward off skipped days, and dropped unless strictly later than
// the previous occurrence, so the result is strictly increasing.
func (e *Expander) Expand(rule models.RecurrenceRule, anchor, windowEnd time.Time) []time.Time {
	interval := rule.Interval
	if interval <= 0 {
		logger.Warn("Recurrence interval must be at least 1, clamping", "interval", rule.Interval)
		interval = 1
	}
	count := rule.End.Count
	if rule.End.Kind == models.EndAfter && count < 1 {
		logger.Warn("Recurrence count must be at least 1, clamping", "count", rule.End.Count)
		count = 1
	}

	occurrences := []time.Time{anchor}
	if rule.End.Kind == models.EndAfter && count == 1 {
		return occurrences
	}

	prev := anchor
	for k := 1; k < constants.MaxRecurrenceIterations; k++ {
		candidate := step(anchor, rule.Frequency, k*interval)
		if candidate.After(windowEnd) || e.pastUntil(rule, candidate) {
			break
		}

		adjusted, ok := e.adjust(candidate, rule.Skip)
		if !ok {
			logger.Warn("No schedulable day found for occurrence", "candidate", candidate.Format(constants.DateFormat))
			continue
		}
		if adjusted.After(windowEnd) || e.pastUntil(rule, adjusted) {
			break
		}
		if !adjusted.After(prev) {
			continue
		}

		occurrences = append(occurrences, adjusted)
		prev = adjusted
		if rule.End.Kind == models.EndAfter && len(occurrences) >= count {
			break
		}
	}
	return occurrences
}

// ExpandTask turns a recurring task into concrete occurrence tasks due within the
// window. Occurrences other than the anchor that fall due before windowStart are not
// materialized, and a completed anchor is left out. Non-recurring tasks pass through.
func (e *Expander) ExpandTask(task models.Task, windowStart, windowEnd time.Time) []models.Task {
	if task.Recurrence == nil {
		if task.Completed {
			return nil
		}
		return []models.Task{task}
	}

	var out []models.Task
	for k, due := range e.Expand(*task.Recurrence, task.Due, windowEnd) {
		if k == 0 {
			if !task.Completed {
				anchor := task
				anchor.SeriesID = task.ID
				out = append(out, anchor)
			}
			continue
		}
		if due.Before(windowStart) {
			continue
		}
		occ := task
		occ.ID = fmt.Sprintf("%s#%d", task.ID, k)
		occ.Due = due
		occ.Completed = false
		occ.Recurrence = nil
		occ.SeriesID = task.ID
		occ.RecurrenceIndex = k
		out = append(out, occ)
	}
	return out
}

// NextDue returns the first occurrence strictly after the anchor, if any.
func (e *Expander) NextDue(rule models.RecurrenceRule, anchor, windowEnd time.Time) (time.Time, bool) {
	dates := e.Expand(rule, anchor, windowEnd)
	if len(dates) < 2 {
		return time.Time{}, false
	}
	return dates[1], true
}

func (e *Expander) pastUntil(rule models.RecurrenceRule, t time.Time) bool {
	if rule.End.Kind != models.EndUntil || rule.End.Until.IsZero() {
		return false
	}
	ty, tm, td := t.Date()
	uy, um, ud := rule.End.Until.In(t.Location()).Date()
	return time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC).After(time.Date(uy, um, ud, 0, 0, 0, 0, time.UTC))
}

func (e *Expander) adjust(t time.Time, skip models.SkipPolicy) (time.Time, bool) {
	if !skip.SkipWeekends && !skip.SkipHolidays {
		return t, true
	}
	holidays := e.holidays(skip.HolidaySource)
	for i := 0; i <= constants.SkipAdjustLimit; i++ {
		weekend := t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
		if !(skip.SkipWeekends && weekend) && !(skip.SkipHolidays && holidays.IsHoliday(t)) {
			return t, true
		}
		t = t.AddDate(0, 0, 1)
	}
	return t, false
}

func step(anchor time.Time, freq models.Frequency, n int) time.Time {
	switch freq {
	case models.FrequencyWeekly:
		return anchor.AddDate(0, 0, 7*n)
	case models.FrequencyMonthly:
		return addMonthsClamped(anchor, n)
	case models.FrequencyYearly:
		return addMonthsClamped(anchor, 12*n)
	default:
		return anchor.AddDate(0, 0, n)
	}
}

// addMonthsClamped adds n months, pinning the day to the target month's last day
// when the anchor's day does not exist there (Jan 31 + 1 month = Feb 28).
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
