package recurrence

import (
	"time"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/models"
)

// HolidayChecker answers whether a calendar day is a holiday.
type HolidayChecker interface {
	IsHoliday(day time.Time) bool
}

// NoHolidays never reports a holiday.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(time.Time) bool { return false }

// HolidaySet is a fixed list of holiday dates, matched by calendar date.
type HolidaySet map[string]bool

func NewHolidaySet(days []time.Time) HolidaySet {
	set := make(HolidaySet, len(days))
	for _, d := range days {
		set[d.Format(constants.DateFormat)] = true
	}
	return set
}

// HolidaySetFromSettings builds the configured holiday list.
func HolidaySetFromSettings(s models.Settings) (HolidaySet, error) {
	days, err := models.ParseHolidays(s.Holidays)
	if err != nil {
		return nil, err
	}
	return NewHolidaySet(days), nil
}

func (h HolidaySet) IsHoliday(day time.Time) bool {
	return h[day.Format(constants.DateFormat)]
}
