package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/studyplan/internal/availability"
	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/models"
)

// Overflow reasons
const (
	ReasonNoFeasibleDay   = "no feasible day before due date"
	ReasonDailyCap        = "daily cap exceeded every feasible day"
	ReasonNoSlot          = "no slot before due date"
	ReasonPinnedConflict  = "pinned slot conflicts with fixed event"
	ReasonPinnedInThePast = "pinned slot is in the past"
)

// Why a previous session had to move.
const (
	CauseConflict = "conflict"
	CauseCapacity = "capacity"
)

// Where a moved session landed relative to its previous slot.
const (
	MoveSameDayEarlier = "same-day-earlier"
	MoveSameDayLater   = "same-day-later"
	MoveOtherDay       = "other-day"
)

// reschedule remembers a previous session that must be re-placed. The new
// session's provenance is "auto-reschedule-<cause>-<move>".
type reschedule struct {
	previous models.ScheduledSession
	cause    string
}

func (r reschedule) provenance(placed time.Time, model *availability.Model) string {
	return constants.AutoReschedulePrefix + r.cause + "-" + move(r.previous.Start, placed, model)
}

type engine struct {
	model    *availability.Model
	c        models.Constraints
	sessions []models.ScheduledSession
	overflow []models.OverflowItem
	log      []string
	placed   map[string]bool
	taskDays map[string]map[string]bool
	moved    map[string]reschedule
}

// Place assigns ranked sub-sessions to concrete slots around fixed events and the
// previous schedule. Sub-sessions that cannot be placed become overflow items.
// The only error is a ConfigError for unusable constraints.
func Place(ranked []models.SubSession, events []models.FixedEvent, previous []models.ScheduledSession, c models.Constraints) (models.ScheduleResult, error) {
	model, err := availability.New(c, events)
	if err != nil {
		return models.ScheduleResult{}, err
	}

	e := &engine{
		model:    model,
		c:        c,
		placed:   make(map[string]bool),
		taskDays: make(map[string]map[string]bool),
		moved:    make(map[string]reschedule),
	}

	e.placePinned(ranked)
	e.retain(previous, ranked)

	for _, sub := range ranked {
		if e.placed[sub.Key()] || sub.Pinned != nil {
			continue
		}
		e.place(sub)
	}

	sort.Slice(e.sessions, func(i, j int) bool {
		a, b := e.sessions[i], e.sessions[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.TaskID != b.TaskID {
			return a.TaskID < b.TaskID
		}
		return a.SessionIndex < b.SessionIndex
	})
	sort.SliceStable(e.overflow, func(i, j int) bool {
		a, b := e.overflow[i], e.overflow[j]
		if !a.Due.Equal(b.Due) {
			return a.Due.Before(b.Due)
		}
		if a.TaskID != b.TaskID {
			return a.TaskID < b.TaskID
		}
		return a.SessionIndex < b.SessionIndex
	})

	return models.ScheduleResult{
		Sessions:    e.sessions,
		Overflow:    e.overflow,
		Log:         e.log,
		GeneratedAt: c.Now,
	}, nil
}

func (e *engine) logf(format string, args ...interface{}) {
	e.log = append(e.log, fmt.Sprintf(format, args...))
}

func (e *engine) placePinned(ranked []models.SubSession) {
	for _, sub := range ranked {
		if sub.Pinned == nil {
			continue
		}
		w := *sub.Pinned
		switch {
		case w.Start.Before(e.c.HorizonStart):
			e.overflowSub(sub, ReasonPinnedInThePast)
		case e.model.ConflictsWithFixed(w):
			e.overflowSub(sub, ReasonPinnedConflict)
		default:
			e.model.Reserve(w, true)
			e.add(sessionFor(sub, w, models.LockHard, models.ProvenanceLocked))
			e.logf("pinned %s at %s (locked task)", label(sub.Title, sub.Index, sub.Count), e.span(w))
		}
	}
}

// retain keeps what it can of the previous schedule: hard locks first, then
// user-adjusted sessions, then still-valid engine sessions. Sessions that must
// move are remembered so their re-placement carries auto-reschedule provenance.
func (e *engine) retain(previous []models.ScheduledSession, ranked []models.SubSession) {
	current := make(map[string]bool, len(ranked))
	for _, sub := range ranked {
		current[sub.Key()] = true
	}
	auto := make(map[string]models.ScheduledSession)
	prev := make([]models.ScheduledSession, 0, len(previous))
	for _, p := range previous {
		if !p.End.After(e.c.HorizonStart) || !p.Start.Before(e.c.HorizonEnd) {
			continue
		}
		prev = append(prev, p)
	}
	sort.SliceStable(prev, func(i, j int) bool {
		if !prev[i].Start.Equal(prev[j].Start) {
			return prev[i].Start.Before(prev[j].Start)
		}
		return prev[i].ID < prev[j].ID
	})

	for _, tier := range []models.LockTier{models.LockHard, models.LockUserAdjusted, models.LockNone} {
		for _, p := range prev {
			if models.ParseLockTier(string(p.Lock)) != tier {
				continue
			}
			key := p.Key()
			if !current[key] {
				e.logf("dropped %s: task no longer needs this session", label(p.Title, p.SessionIndex, p.SessionCount))
				continue
			}
			if e.placed[key] {
				continue
			}
			switch tier {
			case models.LockHard:
				e.model.Reserve(p.Window(), true)
				e.add(p)
				e.logf("kept %s at %s (hard lock)", label(p.Title, p.SessionIndex, p.SessionCount), e.span(p.Window()))
			case models.LockUserAdjusted:
				if e.model.ConflictsWithFixed(p.Window()) {
					e.moved[key] = reschedule{previous: p, cause: CauseConflict}
					e.logf("moving %s: user-adjusted slot %s now conflicts", label(p.Title, p.SessionIndex, p.SessionCount), e.span(p.Window()))
					continue
				}
				e.model.Reserve(p.Window(), false)
				e.add(p)
				e.logf("kept %s at %s (user adjusted)", label(p.Title, p.SessionIndex, p.SessionCount), e.span(p.Window()))
			default:
				if _, dup := auto[key]; !dup {
					auto[key] = p
				}
			}
		}
	}

	// Engine sessions are revisited in ranked order, the order a fresh
	// placement would use, so an unchanged recompute logs the same lines.
	for _, sub := range ranked {
		if p, ok := auto[sub.Key()]; ok && !e.placed[sub.Key()] {
			e.retainAuto(p, sub)
		}
	}
}

func (e *engine) retainAuto(p models.ScheduledSession, sub models.SubSession) {
	w := p.Window()
	name := label(p.Title, p.SessionIndex, p.SessionCount)
	switch {
	case p.Minutes() != sub.Minutes:
		e.logf("re-placing %s: length changed from %d to %d minutes", name, p.Minutes(), sub.Minutes)
	case !e.model.Free(w) || !e.model.InWorkingHours(w) || w.End.After(sub.Due):
		e.moved[p.Key()] = reschedule{previous: p, cause: CauseConflict}
		e.logf("moving %s: slot %s is no longer available", name, e.span(w))
	case !e.model.FitsDailyCap(w.Start, p.Minutes()):
		e.moved[p.Key()] = reschedule{previous: p, cause: CauseCapacity}
		e.logf("moving %s: daily cap reached on %s", name, e.model.DayKey(w.Start))
	default:
		e.model.Reserve(w, false)
		kept := p
		kept.Title, kept.CourseID, kept.Category = sub.Title, sub.CourseID, sub.Category
		e.add(kept)
		e.logPlaced(sub, w)
	}
}

func (e *engine) place(sub models.SubSession) {
	name := label(sub.Title, sub.Index, sub.Count)
	dueDay := e.model.StartOfDay(sub.Due)
	notBefore := e.model.StartOfDay(sub.NotBefore)
	// A session due after the horizon only uses the horizon days inside its
	// spread window. Whatever does not fit waits for a later recompute.
	beyond := sub.Due.After(e.c.HorizonEnd)
	var feasible []time.Time
	for _, day := range e.model.Days() {
		if day.After(dueDay) {
			break
		}
		if beyond && day.Before(notBefore) {
			continue
		}
		feasible = append(feasible, day)
	}
	if len(feasible) == 0 {
		if beyond {
			e.postpone(sub)
			return
		}
		e.overflowSub(sub, ReasonNoFeasibleDay)
		e.logf("overflow %s: %s", name, ReasonNoFeasibleDay)
		return
	}

	siblings := e.taskDays[sub.TaskID]
	passes := []func(time.Time) bool{
		func(d time.Time) bool { return !d.Before(notBefore) && !siblings[e.model.DayKey(d)] },
		func(d time.Time) bool { return !siblings[e.model.DayKey(d)] },
		func(time.Time) bool { return true },
	}

	mv, rescheduling := e.moved[sub.Key()]
	if rescheduling {
		origDay := e.model.StartOfDay(mv.previous.Start)
		passes = append([]func(time.Time) bool{func(d time.Time) bool { return d.Equal(origDay) }}, passes...)
	}

	capBlocked := make(map[string]bool)
	for _, accept := range passes {
		for _, day := range feasible {
			if !accept(day) {
				continue
			}
			if !e.model.FitsDailyCap(day, sub.Minutes) {
				capBlocked[e.model.DayKey(day)] = true
				continue
			}
			start, ok := e.model.BestStart(e.model.Starts(day, sub.Minutes, sub.Due))
			if !ok {
				continue
			}
			w := models.TimeWindow{Start: start, End: start.Add(time.Duration(sub.Minutes) * time.Minute)}
			e.model.Reserve(w, false)

			lock, provenance := models.LockNone, models.ProvenanceAuto
			if rescheduling {
				lock = mv.previous.Lock
				provenance = mv.provenance(start, e.model)
			}
			e.add(sessionFor(sub, w, lock, provenance))
			e.logPlaced(sub, w)
			return
		}
	}

	if beyond {
		e.postpone(sub)
		return
	}
	reason := ReasonNoSlot
	if len(capBlocked) == len(feasible) {
		reason = ReasonDailyCap
	}
	e.overflowSub(sub, reason)
	e.logf("overflow %s: %s", name, reason)
}

// postpone leaves sub unscheduled without reporting overflow: its due date lies
// past the horizon, so there is still time to place it later.
func (e *engine) postpone(sub models.SubSession) {
	e.placed[sub.Key()] = true
	e.logf("deferred %s: due %s, after the horizon",
		label(sub.Title, sub.Index, sub.Count), sub.Due.Format("2006-01-02 15:04"))
}

// logPlaced writes the same line whether a session is freshly placed or kept
// from the previous schedule, so unchanged inputs give an identical log.
func (e *engine) logPlaced(sub models.SubSession, w models.TimeWindow) {
	e.logf("placed %s at %s (energy %.2f, score %.3f)",
		label(sub.Title, sub.Index, sub.Count), e.span(w), e.model.EnergyAt(w.Start), sub.Score)
}

func move(original, placed time.Time, model *availability.Model) string {
	if model.DayKey(original) != model.DayKey(placed) {
		return MoveOtherDay
	}
	if placed.After(original) {
		return MoveSameDayLater
	}
	return MoveSameDayEarlier
}

func (e *engine) add(s models.ScheduledSession) {
	e.sessions = append(e.sessions, s)
	e.placed[s.Key()] = true
	days := e.taskDays[s.TaskID]
	if days == nil {
		days = make(map[string]bool)
		e.taskDays[s.TaskID] = days
	}
	days[e.model.DayKey(s.Start)] = true
}

func (e *engine) overflowSub(sub models.SubSession, reason string) {
	e.placed[sub.Key()] = true
	e.overflow = append(e.overflow, models.OverflowItem{
		ID:           sub.SessionID(),
		TaskID:       sub.TaskID,
		Title:        sub.Title,
		SessionIndex: sub.Index,
		SessionCount: sub.Count,
		Minutes:      sub.Minutes,
		Due:          sub.Due,
		Reason:       reason,
	})
}

func (e *engine) span(w models.TimeWindow) string {
	loc := e.model.Location()
	return fmt.Sprintf("%s %s-%s", w.Start.In(loc).Format(constants.DateFormat),
		w.Start.In(loc).Format(constants.TimeFormat), w.End.In(loc).Format(constants.TimeFormat))
}

func sessionFor(sub models.SubSession, w models.TimeWindow, lock models.LockTier, provenance string) models.ScheduledSession {
	return models.ScheduledSession{
		ID:           sub.SessionID(),
		TaskID:       sub.TaskID,
		CourseID:     sub.CourseID,
		Title:        sub.Title,
		Category:     sub.Category,
		SessionIndex: sub.Index,
		SessionCount: sub.Count,
		Start:        w.Start,
		End:          w.End,
		Lock:         lock,
		Provenance:   provenance,
	}
}

func label(title string, index, count int) string {
	return fmt.Sprintf("%q %d/%d", title, index+1, count)
}
