package constants

import "time"

const (
	// Placement grid
	DefaultSlotGranularityMin = 15

	// Task defaults applied when a field is left unset
	DefaultMinBlockMinutes = 20
	DefaultMaxBlockMinutes = 180
	DefaultDifficulty      = 0.5
	DefaultImportance      = 0.5

	// Suggested session length per session bias
	ShortSessionMinutes  = 30
	MediumSessionMinutes = 60
	LongSessionMinutes   = 90

	// DefaultEnergyWeight is used for hours missing from the energy profile
	DefaultEnergyWeight = 0.5

	// SkipAdjustLimit bounds the day-by-day search when moving an occurrence off a skipped day
	SkipAdjustLimit = 370
	// MaxRecurrenceIterations bounds a single expansion pass
	MaxRecurrenceIterations = 10000

	// Energy-level filter thresholds
	MediumEnergyImportance = 0.7
	MediumEnergyDueDays    = 7
	LowEnergyDueDays       = 2
	LowEnergyImportance    = 0.7
	LowEnergyHardImportant = 0.8
	LowEnergyHardDifficult = 0.6

	// Coordinator timing
	DefaultDebounce    = 250 * time.Millisecond
	DefaultMinInterval = time.Second
	ResultCacheSize    = 32
	WatchPollInterval  = 5 * time.Second

	// Due dates given without a time of day fall due at 23:59
	DefaultDueTimeOfDay = 23*time.Hour + 59*time.Minute

	// Provenance prefix stamped on sessions moved by the engine
	AutoReschedulePrefix = "auto-reschedule-"
)

// Default priority weights. They must sum to 1.0.
const (
	DefaultWeightUrgency    = 0.45
	DefaultWeightImportance = 0.35
	DefaultWeightDifficulty = 0.10
	DefaultWeightSize       = 0.10
)

func init() {
	// Runtime validation: ensure the default weights are normalized
	sum := DefaultWeightUrgency + DefaultWeightImportance + DefaultWeightDifficulty + DefaultWeightSize
	if sum < 0.999 || sum > 1.001 {
		panic("default priority weights must sum to 1.0")
	}
}
