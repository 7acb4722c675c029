package models

import (
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/errors"
)

// Settings is the persisted user configuration from which each recompute's
// Constraints are derived. The key tag names the row in the settings table.
type Settings struct {
	DayStartHour       int     `key:"day_start_hour" validate:"gte=0,lte=23"`
	DayEndHour         int     `key:"day_end_hour" validate:"gte=1,lte=24,gtfield=DayStartHour"`
	AllowedWeekdays    string  `key:"allowed_weekdays" validate:"required"`
	HorizonDays        int     `key:"horizon_days" validate:"gte=1,lte=365"`
	MaxMinutesPerDay   int     `key:"max_study_minutes_per_day" validate:"gt=0,lte=1440"`
	MaxMinutesPerBlock int     `key:"max_study_minutes_per_block" validate:"gt=0,lte=1440"`
	MinGapMinutes      int     `key:"min_gap_minutes" validate:"gte=0,lte=240"`
	SlotGranularityMin int     `key:"slot_granularity_min" validate:"gt=0,lte=60"`
	Timezone           string  `key:"timezone" validate:"required"`
	EnergyLevel        string  `key:"energy_level" validate:"oneof=high medium low"`
	QuietHours         string  `key:"quiet_hours"`
	Holidays           string  `key:"holidays"`
	LearnerStep        float64 `key:"learner_step" validate:"gt=0,lte=1"`
	LearnerFloor       float64 `key:"learner_floor" validate:"gte=0,lt=1"`
	LearnerCeiling     float64 `key:"learner_ceiling" validate:"gtfield=LearnerFloor,lte=1"`
	DebounceMs         int     `key:"debounce_ms" validate:"gte=0"`
	MinIntervalMs      int     `key:"min_interval_ms" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("key")
	})
}

// DefaultSettings returns the settings written by init.
func DefaultSettings() Settings {
	return Settings{
		DayStartHour:       constants.DefaultDayStartHour,
		DayEndHour:         constants.DefaultDayEndHour,
		AllowedWeekdays:    constants.DefaultAllowedWeekdays,
		HorizonDays:        constants.DefaultHorizonDays,
		MaxMinutesPerDay:   constants.DefaultMaxMinutesPerDay,
		MaxMinutesPerBlock: constants.DefaultMaxMinutesPerBlock,
		MinGapMinutes:      constants.DefaultMinGapMinutes,
		SlotGranularityMin: constants.DefaultSlotGranularityMin,
		Timezone:           constants.DefaultTimezone,
		EnergyLevel:        constants.DefaultEnergyLevel,
		LearnerStep:        constants.DefaultLearnerStep,
		LearnerFloor:       constants.DefaultLearnerFloor,
		LearnerCeiling:     constants.DefaultLearnerCeiling,
		DebounceMs:         constants.DefaultDebounceMs,
		MinIntervalMs:      constants.DefaultMinIntervalMs,
	}
}

// Validate checks field ranges and the free-form fields. Every failure is a ConfigError.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			if fe.Param() != "" {
				return errors.NewConfigError(fe.Field(), "must satisfy %s=%s (got %v)", fe.Tag(), fe.Param(), fe.Value())
			}
			return errors.NewConfigError(fe.Field(), "must satisfy %s (got %v)", fe.Tag(), fe.Value())
		}
		return errors.NewConfigError("", "%v", err)
	}

	weekdays, err := ParseWeekdays(s.AllowedWeekdays)
	if err != nil {
		return errors.NewConfigError(constants.SettingAllowedWeekdays, "%v", err)
	}
	if len(weekdays) == 0 {
		return errors.NewConfigError(constants.SettingAllowedWeekdays, "must name at least one day")
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return errors.NewConfigError(constants.SettingTimezone, "unknown timezone %q", s.Timezone)
	}
	if _, err := ParseQuietHours(s.QuietHours); err != nil {
		return errors.NewConfigError(constants.SettingQuietHours, "%v", err)
	}
	if _, err := ParseHolidays(s.Holidays); err != nil {
		return errors.NewConfigError(constants.SettingHolidays, "%v", err)
	}
	return nil
}

// Location resolves the configured timezone.
func (s Settings) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, errors.NewConfigError(constants.SettingTimezone, "unknown timezone %q", s.Timezone)
	}
	return loc, nil
}

func (s Settings) Debounce() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

func (s Settings) MinInterval() time.Duration {
	return time.Duration(s.MinIntervalMs) * time.Millisecond
}

// Constraints derives the availability snapshot for a recompute starting at now.
// The horizon runs from now to the end of the HorizonDays-th local day.
func (s Settings) Constraints(now time.Time, prefs Preferences) (Constraints, error) {
	if err := s.Validate(); err != nil {
		return Constraints{}, err
	}
	loc, err := s.Location()
	if err != nil {
		return Constraints{}, err
	}
	weekdays, _ := ParseWeekdays(s.AllowedWeekdays)
	quiet, _ := ParseQuietHours(s.QuietHours)
	level, _ := ParseEnergyLevel(s.EnergyLevel)

	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	horizonEnd := today.AddDate(0, 0, s.HorizonDays)

	var windows []TimeWindow
	for day := today; day.Before(horizonEnd); day = day.AddDate(0, 0, 1) {
		for _, q := range quiet {
			windows = append(windows, q.On(day))
		}
	}

	return Constraints{
		Now:                        now,
		Location:                   loc,
		HorizonStart:               now,
		HorizonEnd:                 horizonEnd,
		DayStartHour:               s.DayStartHour,
		DayEndHour:                 s.DayEndHour,
		AllowedWeekdays:            weekdays,
		MaxStudyMinutesPerDay:      s.MaxMinutesPerDay,
		MaxStudyMinutesPerBlock:    s.MaxMinutesPerBlock,
		MinGapBetweenBlocksMinutes: s.MinGapMinutes,
		SlotGranularityMinutes:     s.SlotGranularityMin,
		DoNotScheduleWindows:       windows,
		EnergyProfile:              prefs.Energy.Clone(),
		EnergyLevel:                level,
	}, nil
}
