package storage

import (
	"errors"
	"time"

	"github.com/julianstephens/studyplan/internal/models"
)

// ErrNotFound is returned (wrapped) when a task, event or setting row does not exist.
var ErrNotFound = errors.New("not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Tasks
	AddTask(models.Task) error
	GetTask(id string) (models.Task, error)
	GetAllTasks() ([]models.Task, error)
	GetAllTasksIncludingDeleted() ([]models.Task, error)
	UpdateTask(models.Task) error
	DeleteTask(id string) error
	RestoreTask(id string) error

	// Fixed events
	AddEvent(models.FixedEvent) error
	GetEvent(id string) (models.FixedEvent, error)
	// GetEvents returns the non-deleted events overlapping [start, end).
	GetEvents(start, end time.Time) ([]models.FixedEvent, error)
	DeleteEvent(id string) error

	// Preferences
	GetPreferences() (models.Preferences, error)
	SavePreferences(models.Preferences) error

	// Feedback is append-only; the learner clears what it consumed.
	AppendFeedback(models.BlockFeedback) error
	ListFeedback() ([]models.BlockFeedback, error)
	ClearFeedback(ids []string) error

	// Schedule
	SaveSchedule(models.ScheduleResult) error
	// GetSchedule returns the last saved schedule, or an empty result before the first save.
	GetSchedule() (models.ScheduleResult, error)
	// UpdateSessionLock records a user edit: a new lock tier and, when window is
	// non-nil, a new slot.
	UpdateSessionLock(id string, lock models.LockTier, window *models.TimeWindow) error

	// Utils
	GetConfigPath() string
}
