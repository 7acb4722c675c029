package models

import "time"

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

type EndKind string

const (
	EndNever EndKind = "never"
	EndUntil EndKind = "until"
	EndAfter EndKind = "after"
)

type RecurrenceEnd struct {
	Kind  EndKind   `json:"kind"`
	Until time.Time `json:"until,omitempty"`
	Count int       `json:"count,omitempty"`
}

type SkipDirection string

// Only forward adjustment is supported; an occurrence never moves earlier.
const SkipForward SkipDirection = "forward"

type HolidaySource string

const (
	HolidaySourceNone HolidaySource = "none"
	HolidaySourceList HolidaySource = "list"
)

type SkipPolicy struct {
	SkipWeekends  bool          `json:"skip_weekends"`
	SkipHolidays  bool          `json:"skip_holidays"`
	HolidaySource HolidaySource `json:"holiday_source,omitempty"`
	Direction     SkipDirection `json:"direction,omitempty"`
}

type RecurrenceRule struct {
	Frequency Frequency     `json:"frequency"`
	Interval  int           `json:"interval"`
	End       RecurrenceEnd `json:"end"`
	Skip      SkipPolicy    `json:"skip"`
}
