package models

import (
	"fmt"
	"strings"
	"time"
)

type FeedbackAction string

const (
	ActionKept        FeedbackAction = "kept"
	ActionRescheduled FeedbackAction = "rescheduled"
	ActionDeleted     FeedbackAction = "deleted"
	ActionShortened   FeedbackAction = "shortened"
	ActionExtended    FeedbackAction = "extended"
)

func FeedbackActions() []FeedbackAction {
	return []FeedbackAction{ActionKept, ActionRescheduled, ActionDeleted, ActionShortened, ActionExtended}
}

func ParseFeedbackAction(s string) (FeedbackAction, error) {
	a := FeedbackAction(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range FeedbackActions() {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("invalid feedback action: %s (use kept, rescheduled, deleted, shortened, or extended)", s)
}

// BlockFeedback records what the user did with a placed session.
type BlockFeedback struct {
	ID         string         `json:"id"`
	SessionID  string         `json:"session_id"`
	TaskID     string         `json:"task_id"`
	CourseID   string         `json:"course_id,omitempty"`
	Category   Category       `json:"category"`
	Start      time.Time      `json:"start"`
	End        time.Time      `json:"end"`
	Completion float64        `json:"completion"`
	Action     FeedbackAction `json:"action"`
	RecordedAt time.Time      `json:"recorded_at"`
}
