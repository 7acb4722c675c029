// Package availability answers "when may a study session go?" for one recompute.
// It owns the horizon, working hours, allowed weekdays, blackout windows,
// obstacles and the per-day study minute ledger.
package availability

import (
	"time"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
)

type obstacleKind int

const (
	obstacleFixed obstacleKind = iota
	obstacleHard
	obstacleSession
)

type obstacle struct {
	window models.TimeWindow
	kind   obstacleKind
}

type Model struct {
	c           models.Constraints
	loc         *time.Location
	granularity time.Duration
	gap         time.Duration
	allowed     map[time.Weekday]bool
	obstacles   []obstacle
	used        map[string]int
}

// Validate reports constraints that make scheduling impossible as a ConfigError.
func Validate(c models.Constraints) error {
	switch {
	case c.DayStartHour < 0 || c.DayStartHour > 23:
		return errors.NewConfigError(constants.SettingDayStartHour, "must be within 0-23 (got %d)", c.DayStartHour)
	case c.DayEndHour < 1 || c.DayEndHour > 24:
		return errors.NewConfigError(constants.SettingDayEndHour, "must be within 1-24 (got %d)", c.DayEndHour)
	case c.DayStartHour >= c.DayEndHour:
		return errors.NewConfigError(constants.SettingDayEndHour, "must be after day start (%d >= %d)", c.DayStartHour, c.DayEndHour)
	case len(c.AllowedWeekdays) == 0:
		return errors.NewConfigError(constants.SettingAllowedWeekdays, "must name at least one day")
	case c.MaxStudyMinutesPerBlock <= 0:
		return errors.NewConfigError(constants.SettingMaxMinutesPerBlock, "must be positive (got %d)", c.MaxStudyMinutesPerBlock)
	case c.MaxStudyMinutesPerDay <= 0:
		return errors.NewConfigError(constants.SettingMaxMinutesPerDay, "must be positive (got %d)", c.MaxStudyMinutesPerDay)
	case c.MinGapBetweenBlocksMinutes < 0:
		return errors.NewConfigError(constants.SettingMinGapMinutes, "must not be negative (got %d)", c.MinGapBetweenBlocksMinutes)
	case c.SlotGranularityMinutes < 0:
		return errors.NewConfigError(constants.SettingSlotGranularityMin, "must not be negative (got %d)", c.SlotGranularityMinutes)
	case !c.HorizonStart.Before(c.HorizonEnd):
		return errors.NewConfigError(constants.SettingHorizonDays, "horizon start %s is not before end %s",
			c.HorizonStart.Format(time.RFC3339), c.HorizonEnd.Format(time.RFC3339))
	}
	return nil
}

// New builds the availability model. Fixed events become permanent obstacles.
func New(c models.Constraints, events []models.FixedEvent) (*Model, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}

	loc := c.Location
	if loc == nil {
		loc = c.Now.Location()
	}
	gran := c.SlotGranularityMinutes
	if gran == 0 {
		gran = constants.DefaultSlotGranularityMin
	}

	m := &Model{
		c:           c,
		loc:         loc,
		granularity: time.Duration(gran) * time.Minute,
		gap:         time.Duration(c.MinGapBetweenBlocksMinutes) * time.Minute,
		allowed:     make(map[time.Weekday]bool, len(c.AllowedWeekdays)),
		used:        make(map[string]int),
	}
	for _, wd := range c.AllowedWeekdays {
		m.allowed[wd] = true
	}
	for _, ev := range events {
		if !ev.End.After(ev.Start) {
			continue
		}
		m.obstacles = append(m.obstacles, obstacle{window: models.TimeWindow{Start: ev.Start, End: ev.End}, kind: obstacleFixed})
	}
	return m, nil
}

func (m *Model) Location() *time.Location {
	return m.loc
}

func (m *Model) Now() time.Time {
	return m.c.Now
}

// StartOfDay returns local midnight of t's day.
func (m *Model) StartOfDay(t time.Time) time.Time {
	t = t.In(m.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, m.loc)
}

// DayKey identifies the local day containing t.
func (m *Model) DayKey(t time.Time) string {
	return t.In(m.loc).Format(constants.DateFormat)
}

// Days lists local midnights of every allowed day in the horizon, ascending.
// Days whose working window is cut away entirely by the horizon are left out.
func (m *Model) Days() []time.Time {
	var days []time.Time
	for day := m.StartOfDay(m.c.HorizonStart); day.Before(m.c.HorizonEnd); day = day.AddDate(0, 0, 1) {
		if !m.allowed[day.Weekday()] {
			continue
		}
		if ww := m.WorkingWindow(day); !ww.End.After(ww.Start) {
			continue
		}
		days = append(days, day)
	}
	return days
}

// WorkingWindow is the part of day's working hours that lies inside the horizon.
func (m *Model) WorkingWindow(day time.Time) models.TimeWindow {
	day = m.StartOfDay(day)
	w := models.TimeWindow{
		Start: time.Date(day.Year(), day.Month(), day.Day(), m.c.DayStartHour, 0, 0, 0, m.loc),
		End:   time.Date(day.Year(), day.Month(), day.Day(), m.c.DayEndHour, 0, 0, 0, m.loc),
	}
	if w.Start.Before(m.c.HorizonStart) {
		w.Start = m.c.HorizonStart
	}
	if w.End.After(m.c.HorizonEnd) {
		w.End = m.c.HorizonEnd
	}
	return w
}

// InWorkingHours reports whether w lies inside a single allowed day's working window.
func (m *Model) InWorkingHours(w models.TimeWindow) bool {
	day := m.StartOfDay(w.Start)
	if !m.allowed[day.Weekday()] {
		return false
	}
	ww := m.WorkingWindow(day)
	return !w.Start.Before(ww.Start) && !w.End.After(ww.End)
}

// Blocked reports whether w touches a blackout window.
func (m *Model) Blocked(w models.TimeWindow) bool {
	for _, b := range m.c.DoNotScheduleWindows {
		if w.Overlaps(b) {
			return true
		}
	}
	return false
}

// ConflictsWithFixed reports whether w overlaps a fixed event or a hard-locked session.
// The gap is not applied.
func (m *Model) ConflictsWithFixed(w models.TimeWindow) bool {
	for _, o := range m.obstacles {
		if o.kind != obstacleSession && w.Overlaps(o.window) {
			return true
		}
	}
	return false
}

// Free reports whether w keeps the minimum gap to every obstacle and avoids blackouts.
func (m *Model) Free(w models.TimeWindow) bool {
	if m.Blocked(w) {
		return false
	}
	for _, o := range m.obstacles {
		if w.Overlaps(o.window.Pad(m.gap)) {
			return false
		}
	}
	return true
}

// Reserve records a placed session as an obstacle and charges its minutes to its day.
func (m *Model) Reserve(w models.TimeWindow, hard bool) {
	kind := obstacleSession
	if hard {
		kind = obstacleHard
	}
	m.obstacles = append(m.obstacles, obstacle{window: w, kind: kind})
	m.used[m.DayKey(w.Start)] += int(w.Duration().Minutes())
}

func (m *Model) MinutesUsed(day time.Time) int {
	return m.used[m.DayKey(day)]
}

// FitsDailyCap reports whether minutes more study on day stays within the daily cap.
func (m *Model) FitsDailyCap(day time.Time, minutes int) bool {
	return m.MinutesUsed(day)+minutes <= m.c.MaxStudyMinutesPerDay
}

func (m *Model) MaxBlockMinutes() int {
	return m.c.MaxStudyMinutesPerBlock
}

// EnergyAt returns the learned weight of the local hour containing t.
func (m *Model) EnergyAt(t time.Time) float64 {
	return m.c.EnergyProfile.Weight(t.In(m.loc).Hour())
}

// Starts lists every grid-aligned start on day where a session of the given length
// fits the working window, ends by deadline (when set), and is Free.
func (m *Model) Starts(day time.Time, minutes int, deadline time.Time) []time.Time {
	ww := m.WorkingWindow(day)
	if !ww.Start.Before(ww.End) {
		return nil
	}
	length := time.Duration(minutes) * time.Minute
	ws := ww.Start.In(m.loc)
	dayStart := time.Date(ws.Year(), ws.Month(), ws.Day(), m.c.DayStartHour, 0, 0, 0, m.loc)

	// First grid point at or after the (possibly clipped) window start.
	start := dayStart
	if ww.Start.After(dayStart) {
		steps := ww.Start.Sub(dayStart) / m.granularity
		start = dayStart.Add(steps * m.granularity)
		if start.Before(ww.Start) {
			start = start.Add(m.granularity)
		}
	}

	var starts []time.Time
	for ; !start.Add(length).After(ww.End); start = start.Add(m.granularity) {
		end := start.Add(length)
		if !deadline.IsZero() && end.After(deadline) {
			break
		}
		if m.Free(models.TimeWindow{Start: start, End: end}) {
			starts = append(starts, start)
		}
	}
	return starts
}

// BestStart picks the highest-energy start, earliest on ties. ok is false when starts is empty.
func (m *Model) BestStart(starts []time.Time) (best time.Time, ok bool) {
	bestEnergy := -1.0
	for _, s := range starts {
		if e := m.EnergyAt(s); e > bestEnergy {
			best, bestEnergy, ok = s, e, true
		}
	}
	return best, ok
}
