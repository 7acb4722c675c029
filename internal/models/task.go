package models

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/studyplan/internal/constants"
)

type Category string

const (
	CategoryExam         Category = "exam"
	CategoryProject      Category = "project"
	CategoryQuiz         Category = "quiz"
	CategoryHomework     Category = "homework"
	CategoryReading      Category = "reading"
	CategoryReview       Category = "review"
	CategoryPracticeTest Category = "practice-test"
)

type SessionBias string

const (
	BiasShort  SessionBias = "short"
	BiasMedium SessionBias = "medium"
	BiasLong   SessionBias = "long"
)

// SuggestedMinutes returns the preferred length of a single session for the bias.
func (b SessionBias) SuggestedMinutes() int {
	switch b {
	case BiasShort:
		return constants.ShortSessionMinutes
	case BiasLong:
		return constants.LongSessionMinutes
	default:
		return constants.MediumSessionMinutes
	}
}

// EffortProfile describes how much work a category usually needs and how it should be spread.
type EffortProfile struct {
	BaseMinutes int         `json:"base_minutes"`
	MinSessions int         `json:"min_sessions"`
	SpreadDays  int         `json:"spread_days"`
	Bias        SessionBias `json:"bias"`
}

var categoryProfiles = map[Category]EffortProfile{
	CategoryProject:      {BaseMinutes: 240, MinSessions: 4, SpreadDays: 7, Bias: BiasLong},
	CategoryExam:         {BaseMinutes: 180, MinSessions: 3, SpreadDays: 5, Bias: BiasMedium},
	CategoryQuiz:         {BaseMinutes: 60, MinSessions: 2, SpreadDays: 2, Bias: BiasShort},
	CategoryHomework:     {BaseMinutes: 60, MinSessions: 1, SpreadDays: 2, Bias: BiasMedium},
	CategoryReading:      {BaseMinutes: 45, MinSessions: 1, SpreadDays: 1, Bias: BiasShort},
	CategoryReview:       {BaseMinutes: 90, MinSessions: 2, SpreadDays: 3, Bias: BiasShort},
	CategoryPracticeTest: {BaseMinutes: 50, MinSessions: 1, SpreadDays: 1, Bias: BiasMedium},
}

// Profile returns the category's effort profile. Unknown categories use the homework profile.
func (c Category) Profile() EffortProfile {
	if p, ok := categoryProfiles[c]; ok {
		return p
	}
	return categoryProfiles[CategoryHomework]
}

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{
		CategoryExam, CategoryProject, CategoryQuiz, CategoryHomework,
		CategoryReading, CategoryReview, CategoryPracticeTest,
	}
}

// ParseCategory maps user input onto a category, falling back to homework.
func ParseCategory(s string) Category {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")
	if s == "practicetest" {
		return CategoryPracticeTest
	}
	c := Category(s)
	if _, ok := categoryProfiles[c]; ok {
		return c
	}
	return CategoryHomework
}

type Task struct {
	ID               string          `json:"id" validate:"required"`
	CourseID         string          `json:"course_id,omitempty"`
	Title            string          `json:"title" validate:"required"`
	Category         Category        `json:"category" validate:"oneof=exam project quiz homework reading review practice-test"`
	Due              time.Time       `json:"due" validate:"required"`
	EstimatedMinutes int             `json:"estimated_minutes" validate:"gte=0,lte=10080"`
	MinBlockMinutes  int             `json:"min_block_minutes,omitempty" validate:"gte=0"`
	MaxBlockMinutes  int             `json:"max_block_minutes,omitempty" validate:"gte=0"`
	Difficulty       *float64        `json:"difficulty,omitempty" validate:"omitempty,gte=0,lte=1"`
	Importance       *float64        `json:"importance,omitempty" validate:"omitempty,gte=0,lte=1"`
	Locked           bool            `json:"locked"`
	Completed        bool            `json:"completed"`
	Recurrence       *RecurrenceRule `json:"recurrence,omitempty"`
	Effort           *EffortProfile  `json:"effort,omitempty"`
	SeriesID         string          `json:"series_id,omitempty"`
	RecurrenceIndex  int             `json:"recurrence_index,omitempty"`
	DeletedAt        *string         `json:"deleted_at,omitempty"` // RFC3339 timestamp
}

// Validate checks a task definition before it is stored.
func (t Task) Validate() error {
	if err := validate.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid task field %s: must satisfy %s (got %v)", fe.Field(), fe.ActualTag(), fe.Value())
		}
		return err
	}
	if t.MinBlockMinutes > 0 && t.MaxBlockMinutes > 0 && t.MinBlockMinutes > t.MaxBlockMinutes {
		return fmt.Errorf("invalid task: min block (%d) exceeds max block (%d)", t.MinBlockMinutes, t.MaxBlockMinutes)
	}
	if t.Locked && t.EstimatedMinutes == 0 {
		return fmt.Errorf("invalid task: a locked task needs an estimate")
	}
	return nil
}

// Float returns a pointer to v, for optional task fields.
func Float(v float64) *float64 {
	return &v
}

func (t Task) DifficultyOrDefault() float64 {
	if t.Difficulty == nil {
		return constants.DefaultDifficulty
	}
	return *t.Difficulty
}

func (t Task) ImportanceOrDefault() float64 {
	if t.Importance == nil {
		return constants.DefaultImportance
	}
	return *t.Importance
}

func (t Task) MinBlock() int {
	if t.MinBlockMinutes <= 0 {
		return constants.DefaultMinBlockMinutes
	}
	return t.MinBlockMinutes
}

func (t Task) MaxBlock() int {
	if t.MaxBlockMinutes <= 0 {
		return constants.DefaultMaxBlockMinutes
	}
	return t.MaxBlockMinutes
}

// Profile returns the task's effort override when present, otherwise its category profile.
func (t Task) Profile() EffortProfile {
	if t.Effort != nil {
		return *t.Effort
	}
	return t.Category.Profile()
}

func (t Task) IsRecurring() bool {
	return t.Recurrence != nil
}
