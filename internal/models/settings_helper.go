package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/studyplan/internal/constants"
)

// MapToSettings converts key/value rows into Settings. Keys that are absent keep
// their default value; unknown keys are ignored.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := DefaultSettings()

	intFields := map[string]*int{
		constants.SettingDayStartHour:       &settings.DayStartHour,
		constants.SettingDayEndHour:         &settings.DayEndHour,
		constants.SettingHorizonDays:        &settings.HorizonDays,
		constants.SettingMaxMinutesPerDay:   &settings.MaxMinutesPerDay,
		constants.SettingMaxMinutesPerBlock: &settings.MaxMinutesPerBlock,
		constants.SettingMinGapMinutes:      &settings.MinGapMinutes,
		constants.SettingSlotGranularityMin: &settings.SlotGranularityMin,
		constants.SettingDebounceMs:         &settings.DebounceMs,
		constants.SettingMinIntervalMs:      &settings.MinIntervalMs,
	}
	floatFields := map[string]*float64{
		constants.SettingLearnerStep:    &settings.LearnerStep,
		constants.SettingLearnerFloor:   &settings.LearnerFloor,
		constants.SettingLearnerCeiling: &settings.LearnerCeiling,
	}
	stringFields := map[string]*string{
		constants.SettingAllowedWeekdays: &settings.AllowedWeekdays,
		constants.SettingTimezone:        &settings.Timezone,
		constants.SettingEnergyLevel:     &settings.EnergyLevel,
		constants.SettingQuietHours:      &settings.QuietHours,
		constants.SettingHolidays:        &settings.Holidays,
	}

	for key, value := range data {
		value = strings.TrimSpace(value)
		if p, ok := intFields[key]; ok {
			v, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			*p = v
		} else if p, ok := floatFields[key]; ok {
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			*p = v
		} else if p, ok := stringFields[key]; ok {
			*p = value
		}
	}

	return settings, nil
}

// SettingsToMap converts Settings into key/value rows.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingDayStartHour:       strconv.Itoa(settings.DayStartHour),
		constants.SettingDayEndHour:         strconv.Itoa(settings.DayEndHour),
		constants.SettingAllowedWeekdays:    settings.AllowedWeekdays,
		constants.SettingHorizonDays:        strconv.Itoa(settings.HorizonDays),
		constants.SettingMaxMinutesPerDay:   strconv.Itoa(settings.MaxMinutesPerDay),
		constants.SettingMaxMinutesPerBlock: strconv.Itoa(settings.MaxMinutesPerBlock),
		constants.SettingMinGapMinutes:      strconv.Itoa(settings.MinGapMinutes),
		constants.SettingSlotGranularityMin: strconv.Itoa(settings.SlotGranularityMin),
		constants.SettingTimezone:           settings.Timezone,
		constants.SettingEnergyLevel:        settings.EnergyLevel,
		constants.SettingQuietHours:         settings.QuietHours,
		constants.SettingHolidays:           settings.Holidays,
		constants.SettingLearnerStep:        strconv.FormatFloat(settings.LearnerStep, 'f', -1, 64),
		constants.SettingLearnerFloor:       strconv.FormatFloat(settings.LearnerFloor, 'f', -1, 64),
		constants.SettingLearnerCeiling:     strconv.FormatFloat(settings.LearnerCeiling, 'f', -1, 64),
		constants.SettingDebounceMs:         strconv.Itoa(settings.DebounceMs),
		constants.SettingMinIntervalMs:      strconv.Itoa(settings.MinIntervalMs),
	}
}

// SettingKeys returns every known settings key, sorted.
func SettingKeys() []string {
	m := SettingsToMap(DefaultSettings())
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WithValue returns a copy of settings with key set to value, validated.
func (s Settings) WithValue(key, value string) (Settings, error) {
	m := SettingsToMap(s)
	if _, ok := m[key]; !ok {
		return Settings{}, fmt.Errorf("unknown setting: %s", key)
	}
	m[key] = value
	updated, err := MapToSettings(m)
	if err != nil {
		return Settings{}, err
	}
	if err := updated.Validate(); err != nil {
		return Settings{}, err
	}
	return updated, nil
}

// ParseWeekdays parses a comma-separated list of weekdays
func ParseWeekdays(s string) ([]time.Weekday, error) {
	dayMap := map[string]time.Weekday{
		"sun": time.Sunday, "sunday": time.Sunday,
		"mon": time.Monday, "monday": time.Monday,
		"tue": time.Tuesday, "tuesday": time.Tuesday,
		"wed": time.Wednesday, "wednesday": time.Wednesday,
		"thu": time.Thursday, "thursday": time.Thursday,
		"fri": time.Friday, "friday": time.Friday,
		"sat": time.Saturday, "saturday": time.Saturday,
	}

	seen := map[time.Weekday]bool{}
	var weekdays []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		wd, ok := dayMap[part]
		if !ok {
			// Try parsing as number (0=Sunday, 6=Saturday)
			num, err := strconv.Atoi(part)
			if err != nil || num < 0 || num > 6 {
				return nil, fmt.Errorf("invalid weekday: %s", part)
			}
			wd = time.Weekday(num)
		}
		if !seen[wd] {
			seen[wd] = true
			weekdays = append(weekdays, wd)
		}
	}
	sort.Slice(weekdays, func(i, j int) bool { return weekdays[i] < weekdays[j] })
	return weekdays, nil
}

// ClockWindow is a daily window expressed in minutes after local midnight.
type ClockWindow struct {
	StartMin int
	EndMin   int
}

// On anchors the window to the wall clock of day in day's location, so a DST
// change on that day does not shift it.
func (c ClockWindow) On(day time.Time) TimeWindow {
	y, m, d := day.Date()
	loc := day.Location()
	return TimeWindow{
		Start: time.Date(y, m, d, 0, c.StartMin, 0, 0, loc),
		End:   time.Date(y, m, d, 0, c.EndMin, 0, 0, loc),
	}
}

// ParseQuietHours parses "HH:MM-HH:MM" windows separated by commas.
func ParseQuietHours(s string) ([]ClockWindow, error) {
	var windows []ClockWindow
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.SplitN(part, "-", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid window %q (expected HH:MM-HH:MM)", part)
		}
		start, err := time.Parse(constants.TimeFormat, strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid window start %q: %w", bounds[0], err)
		}
		end, err := time.Parse(constants.TimeFormat, strings.TrimSpace(bounds[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid window end %q: %w", bounds[1], err)
		}
		w := ClockWindow{StartMin: start.Hour()*60 + start.Minute(), EndMin: end.Hour()*60 + end.Minute()}
		if w.EndMin <= w.StartMin {
			return nil, fmt.Errorf("window %q must end after it starts", part)
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// ParseHolidays parses a comma-separated list of YYYY-MM-DD dates.
func ParseHolidays(s string) ([]time.Time, error) {
	var days []time.Time
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.Parse(constants.DateFormat, part)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday %q: %w", part, err)
		}
		days = append(days, d)
	}
	return days, nil
}
