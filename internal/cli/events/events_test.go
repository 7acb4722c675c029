package events

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage"
	"github.com/julianstephens/studyplan/internal/storage/sqlite"
)

var now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *cli.Context {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	return &cli.Context{Store: store, Now: func() time.Time { return now }}
}

func TestEventAddRepeatsWeekly(t *testing.T) {
	ctx := setupTestDB(t)

	cmd := &EventAddCmd{Title: "Lecture", Start: "2026-03-02 14:00", End: "2026-03-02 15:00", Source: "class", Weeks: 3}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("event add failed: %v", err)
	}

	events, err := ctx.Store.GetEvents(now, now.AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, e := range events {
		want := time.Date(2026, 3, 2+7*i, 14, 0, 0, 0, time.UTC)
		if !e.Start.Equal(want) || e.End.Sub(e.Start) != time.Hour || e.Source != models.SourceClass {
			t.Errorf("event %d = %+v", i, e)
		}
	}

	if err := (&EventListCmd{Days: 14}).Run(ctx); err != nil {
		t.Errorf("event list failed: %v", err)
	}
}

func TestEventAddRejectsInvertedRange(t *testing.T) {
	ctx := setupTestDB(t)
	cmd := &EventAddCmd{Title: "Bad", Start: "2026-03-02 15:00", End: "2026-03-02 14:00", Weeks: 1}
	if err := cmd.Run(ctx); err == nil {
		t.Error("expected an error for an event that ends before it starts")
	}
}

func TestEventDelete(t *testing.T) {
	ctx := setupTestDB(t)
	if err := (&EventAddCmd{Title: "Dentist", Start: "2026-03-03 10:00", End: "2026-03-03 11:00", Weeks: 1}).Run(ctx); err != nil {
		t.Fatalf("event add failed: %v", err)
	}
	events, _ := ctx.Store.GetEvents(now, now.AddDate(0, 0, 7))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	if err := (&EventDeleteCmd{ID: events[0].ID}).Run(ctx); err != nil {
		t.Fatalf("event delete failed: %v", err)
	}
	if _, err := ctx.Store.GetEvent(events[0].ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected deleted event to be gone, got %v", err)
	}
}
