package models

import (
	"fmt"
	"strings"
	"time"
)

// EnergyLevel is how much the user wants on their plate right now.
type EnergyLevel string

const (
	EnergyHigh   EnergyLevel = "high"
	EnergyMedium EnergyLevel = "medium"
	EnergyLow    EnergyLevel = "low"
)

func ParseEnergyLevel(s string) (EnergyLevel, error) {
	switch l := EnergyLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case EnergyHigh, EnergyMedium, EnergyLow:
		return l, nil
	}
	return "", fmt.Errorf("invalid energy level: %s (use high, medium, or low)", s)
}

// Constraints is the availability snapshot handed to a single recompute.
type Constraints struct {
	Now                        time.Time
	Location                   *time.Location
	HorizonStart               time.Time
	HorizonEnd                 time.Time
	DayStartHour               int
	DayEndHour                 int
	AllowedWeekdays            []time.Weekday
	MaxStudyMinutesPerDay      int
	MaxStudyMinutesPerBlock    int
	MinGapBetweenBlocksMinutes int
	SlotGranularityMinutes     int
	DoNotScheduleWindows       []TimeWindow
	EnergyProfile              EnergyProfile
	EnergyLevel                EnergyLevel
}
