package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LockTier says who may move a scheduled session.
type LockTier string

const (
	// LockNone sessions belong to the engine and may be moved on any recompute.
	LockNone LockTier = "none"
	// LockUserAdjusted sessions were edited by the user. The engine only moves them off a conflict.
	LockUserAdjusted LockTier = "user_adjusted"
	// LockHard sessions are never moved.
	LockHard LockTier = "hard"
)

func (l LockTier) IsLocked() bool {
	return l == LockHard
}

func (l LockTier) IsUserEdited() bool {
	return l == LockUserAdjusted
}

func ParseLockTier(s string) LockTier {
	switch LockTier(s) {
	case LockHard, LockUserAdjusted:
		return LockTier(s)
	default:
		return LockNone
	}
}

const (
	ProvenanceAuto   = "auto"
	ProvenanceLocked = "locked-task"
	ProvenanceUser   = "user"
)

// sessionNamespace seeds deterministic session ids.
var sessionNamespace = uuid.MustParse("6f1c2a8e-3d4b-5c6d-8e9f-0a1b2c3d4e5f")

// SessionID returns the stable id of the index-th of count sub-sessions of a task.
func SessionID(taskID string, index, count int) string {
	return uuid.NewSHA1(sessionNamespace, []byte(SessionKey(taskID, index, count))).String()
}

// SessionKey identifies a sub-session across recomputes.
func SessionKey(taskID string, index, count int) string {
	return fmt.Sprintf("%s/%d/%d", taskID, index, count)
}

// SubSession is one planned piece of a task's work, before placement.
type SubSession struct {
	TaskID     string
	CourseID   string
	Title      string
	Category   Category
	Index      int
	Count      int
	Minutes    int
	MinBlock   int
	MaxBlock   int
	Due        time.Time
	NotBefore  time.Time
	Difficulty float64
	Importance float64
	Score      float64
	// Pinned is set for locked tasks; the session occupies exactly this window.
	Pinned *TimeWindow
}

func (s SubSession) Key() string {
	return SessionKey(s.TaskID, s.Index, s.Count)
}

func (s SubSession) SessionID() string {
	return SessionID(s.TaskID, s.Index, s.Count)
}

type ScheduledSession struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"task_id"`
	CourseID     string    `json:"course_id,omitempty"`
	Title        string    `json:"title"`
	Category     Category  `json:"category"`
	SessionIndex int       `json:"session_index"`
	SessionCount int       `json:"session_count"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Lock         LockTier  `json:"lock"`
	Provenance   string    `json:"provenance"`
}

func (s ScheduledSession) Key() string {
	return SessionKey(s.TaskID, s.SessionIndex, s.SessionCount)
}

func (s ScheduledSession) Minutes() int {
	return int(s.End.Sub(s.Start).Minutes())
}

func (s ScheduledSession) Window() TimeWindow {
	return TimeWindow{Start: s.Start, End: s.End}
}

type OverflowItem struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"task_id"`
	Title        string    `json:"title"`
	SessionIndex int       `json:"session_index"`
	SessionCount int       `json:"session_count"`
	Minutes      int       `json:"minutes"`
	Due          time.Time `json:"due"`
	Reason       string    `json:"reason"`
}

type ScheduleResult struct {
	Sessions    []ScheduledSession `json:"sessions"`
	Overflow    []OverflowItem     `json:"overflow"`
	Log         []string           `json:"log"`
	Fingerprint uint64             `json:"fingerprint"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// ScheduledMinutes sums the length of every placed session.
func (r ScheduleResult) ScheduledMinutes() int {
	total := 0
	for _, s := range r.Sessions {
		total += s.Minutes()
	}
	return total
}
