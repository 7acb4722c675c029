package constants

const (
	AppName            = "studyplan"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/studyplan/studyplan.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DateTimeFormat is accepted by the CLI for due dates and event bounds
	DateTimeFormat = "2006-01-02 15:04"

	// StorageTimeFormat is how timestamps are persisted, always in UTC so rows sort lexically
	StorageTimeFormat = "2006-01-02T15:04:05Z"

	// Coordinator process lock
	CoordinatorLockfileName = "studyplan-watch.lock"

	// Metrics
	MetricsNamespace = "studyplan"
)
