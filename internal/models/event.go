package models

import "time"

type EventSource string

const (
	SourceCalendar EventSource = "calendar"
	SourceClass    EventSource = "class"
	SourceExam     EventSource = "exam"
	SourceExternal EventSource = "external"
)

// FixedEvent is an external commitment. It is always locked and only ever acts as an obstacle.
type FixedEvent struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Start     time.Time   `json:"start"`
	End       time.Time   `json:"end"`
	Source    EventSource `json:"source"`
	DeletedAt *string     `json:"deleted_at,omitempty"`
}
