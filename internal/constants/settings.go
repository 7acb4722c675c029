package constants

const (
	// Availability settings
	SettingDayStartHour       = "day_start_hour"
	SettingDayEndHour         = "day_end_hour"
	SettingAllowedWeekdays    = "allowed_weekdays"
	SettingHorizonDays        = "horizon_days"
	SettingMaxMinutesPerDay   = "max_study_minutes_per_day"
	SettingMaxMinutesPerBlock = "max_study_minutes_per_block"
	SettingMinGapMinutes      = "min_gap_minutes"
	SettingSlotGranularityMin = "slot_granularity_min"
	SettingTimezone           = "timezone"
	SettingEnergyLevel        = "energy_level"
	SettingQuietHours         = "quiet_hours"
	SettingHolidays           = "holidays"

	// Learner settings
	SettingLearnerStep    = "learner_step"
	SettingLearnerFloor   = "learner_floor"
	SettingLearnerCeiling = "learner_ceiling"

	// Coordinator settings
	SettingDebounceMs    = "debounce_ms"
	SettingMinIntervalMs = "min_interval_ms"

	// Default Settings Values
	DefaultDayStartHour       = 8
	DefaultDayEndHour         = 22
	DefaultAllowedWeekdays    = "sun,mon,tue,wed,thu,fri,sat"
	DefaultHorizonDays        = 14
	DefaultMaxMinutesPerDay   = 240
	DefaultMaxMinutesPerBlock = 120
	DefaultMinGapMinutes      = 10
	DefaultTimezone           = "Local" // Use system local timezone by default
	DefaultEnergyLevel        = "high"
	DefaultDebounceMs         = 250
	DefaultMinIntervalMs      = 1000
)
