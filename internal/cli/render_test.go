package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage"
)

func at(day, hour, min int) time.Time {
	return time.Date(2026, 3, day, hour, min, 0, 0, time.UTC)
}

func TestRenderSchedule(t *testing.T) {
	result := models.ScheduleResult{
		Sessions: []models.ScheduledSession{
			{ID: "aaaaaaaa-1", Title: "Midterm", SessionIndex: 0, SessionCount: 3, Start: at(2, 9, 0), End: at(2, 10, 0), Lock: models.LockNone, Provenance: models.ProvenanceAuto},
			{ID: "bbbbbbbb-2", Title: "Midterm", SessionIndex: 1, SessionCount: 3, Start: at(3, 10, 15), End: at(3, 11, 15), Lock: models.LockUserAdjusted, Provenance: "auto-reschedule-conflict-same-day-later"},
		},
		Overflow: []models.OverflowItem{
			{Title: "Essay", SessionIndex: 0, SessionCount: 1, Minutes: 90, Due: at(3, 17, 0), Reason: "daily cap reached"},
		},
	}

	out := RenderSchedule(result, time.UTC)
	for _, want := range []string{
		"2 session(s), 120 min",
		"Mon Mar 2",
		"09:00–10:00  Midterm (1/3)",
		"[user_adjusted]",
		"auto-reschedule-conflict-same-day-later",
		"Could not schedule 1 session(s)",
		"Essay (1/1, 90 min, due 2026-03-03 17:00): daily cap reached",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered schedule missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptySchedule(t *testing.T) {
	out := RenderSchedule(models.ScheduleResult{}, time.UTC)
	if !strings.Contains(out, "Nothing scheduled") {
		t.Errorf("expected empty marker, got:\n%s", out)
	}
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		in       string
		endOfDay bool
		want     time.Time
		wantErr  bool
	}{
		{"2026-03-06 14:30", false, at(6, 14, 30), false},
		{"2026-03-06", true, at(6, 23, 59), false},
		{"2026-03-06", false, at(6, 0, 0), false},
		{"06/03/2026", false, time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := ParseDateTime(tt.in, time.UTC, tt.endOfDay)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDateTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("ParseDateTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	if got := ExpandHome("~/.config/studyplan/studyplan.db", "/home/u"); got != "/home/u/.config/studyplan/studyplan.db" {
		t.Errorf("unexpected expansion: %s", got)
	}
	if got := ExpandHome("/tmp/x.db", "/home/u"); got != "/tmp/x.db" {
		t.Errorf("absolute path changed: %s", got)
	}
}

func TestFindSession(t *testing.T) {
	result := models.ScheduleResult{Sessions: []models.ScheduledSession{
		{ID: "abc123"}, {ID: "abd456"},
	}}
	if s, err := FindSession(result, "abc"); err != nil || s.ID != "abc123" {
		t.Errorf("prefix lookup failed: %v %v", s, err)
	}
	if _, err := FindSession(result, "ab"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguity error, got %v", err)
	}
	if _, err := FindSession(result, "zzz"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
