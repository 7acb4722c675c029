package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "nested", "studyplan.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

var due = time.Date(2026, 3, 6, 17, 0, 0, 0, time.UTC)

func TestInitWritesDefaultSettings(t *testing.T) {
	store := setupStore(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings != models.DefaultSettings() {
		t.Errorf("expected default settings, got %+v", settings)
	}

	// A second Init on an existing database is a no-op.
	settings.DayStartHour = 6
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	if err := store.Init(); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	got, _ := store.GetSettings()
	if got.DayStartHour != 6 {
		t.Errorf("re-init overwrote settings: day start %d", got.DayStartHour)
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Error("expected Load to fail before init")
	}
}

func TestLoadReopensDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studyplan.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.AddTask(models.Task{ID: "t1", Title: "Essay", Category: models.CategoryHomework, Due: due}); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetTask("t1"); err != nil {
		t.Errorf("task lost across reopen: %v", err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	store := setupStore(t)

	task := models.Task{
		ID: "t1", CourseID: "cs101", Title: "Problem set", Category: models.CategoryHomework,
		Due: due, EstimatedMinutes: 120, MinBlockMinutes: 30, MaxBlockMinutes: 90,
		Difficulty: models.Float(0.7),
		Recurrence: &models.RecurrenceRule{
			Frequency: models.FrequencyWeekly, Interval: 1,
			End:  models.RecurrenceEnd{Kind: models.EndAfter, Count: 5},
			Skip: models.SkipPolicy{SkipWeekends: true},
		},
	}
	if err := store.AddTask(task); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if err := store.AddTask(task); err == nil {
		t.Error("adding a duplicate id should fail")
	}

	got, err := store.GetTask("t1")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if !got.Due.Equal(due) || got.CourseID != "cs101" || got.MaxBlockMinutes != 90 {
		t.Errorf("unexpected task: %+v", got)
	}
	if got.Difficulty == nil || *got.Difficulty != 0.7 || got.Importance != nil {
		t.Errorf("optional fields not preserved: difficulty=%v importance=%v", got.Difficulty, got.Importance)
	}
	if got.Recurrence == nil || got.Recurrence.End.Count != 5 || !got.Recurrence.Skip.SkipWeekends {
		t.Errorf("recurrence not preserved: %+v", got.Recurrence)
	}

	got.Completed = true
	if err := store.UpdateTask(got); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if got, _ := store.GetTask("t1"); !got.Completed {
		t.Error("update not persisted")
	}
	if err := store.UpdateTask(models.Task{ID: "nope", Due: due}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound updating a missing task, got %v", err)
	}

	if err := store.DeleteTask("t1"); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if _, err := store.GetTask("t1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("deleted task still visible: %v", err)
	}
	tasks, _ := store.GetAllTasks()
	if len(tasks) != 0 {
		t.Errorf("expected no active tasks, got %d", len(tasks))
	}
	all, _ := store.GetAllTasksIncludingDeleted()
	if len(all) != 1 || all[0].DeletedAt == nil {
		t.Errorf("expected one soft-deleted task, got %+v", all)
	}

	if err := store.RestoreTask("t1"); err != nil {
		t.Fatalf("RestoreTask failed: %v", err)
	}
	if err := store.RestoreTask("t1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("restoring an active task should be ErrNotFound, got %v", err)
	}
	if _, err := store.GetTask("t1"); err != nil {
		t.Errorf("restored task missing: %v", err)
	}
}

func TestEventsInRange(t *testing.T) {
	store := setupStore(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	events := []models.FixedEvent{
		{ID: "before", Title: "Old", Start: day.Add(-3 * time.Hour), End: day.Add(-2 * time.Hour), Source: models.SourceCalendar},
		{ID: "lecture", Title: "Lecture", Start: day.Add(14 * time.Hour), End: day.Add(15 * time.Hour), Source: models.SourceClass},
		{ID: "spanning", Title: "Trip", Start: day.Add(-time.Hour), End: day.Add(time.Hour), Source: models.SourceExternal},
		{ID: "after", Title: "Later", Start: day.Add(48 * time.Hour), End: day.Add(49 * time.Hour), Source: models.SourceExam},
	}
	for _, ev := range events {
		if err := store.AddEvent(ev); err != nil {
			t.Fatalf("AddEvent(%s) failed: %v", ev.ID, err)
		}
	}
	if err := store.AddEvent(models.FixedEvent{ID: "bad", Start: day, End: day}); err == nil {
		t.Error("expected an error for an empty event")
	}

	got, err := store.GetEvents(day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "spanning" || got[1].ID != "lecture" {
		t.Errorf("unexpected events: %+v", got)
	}
	if got[1].Source != models.SourceClass || !got[1].Start.Equal(day.Add(14*time.Hour)) {
		t.Errorf("event fields not preserved: %+v", got[1])
	}

	if err := store.DeleteEvent("lecture"); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}
	got, _ = store.GetEvents(day, day.Add(24*time.Hour))
	if len(got) != 1 {
		t.Errorf("deleted event still returned: %+v", got)
	}
	if _, err := store.GetEvent("lecture"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	store := setupStore(t)

	prefs, err := store.GetPreferences()
	if err != nil {
		t.Fatalf("GetPreferences failed: %v", err)
	}
	if prefs.Weights != models.DefaultWeights() || len(prefs.Energy) != 0 {
		t.Errorf("expected defaults before the first save, got %+v", prefs)
	}

	prefs.Energy[9] = 0.8
	prefs.CourseBias["cs101"] = -0.1
	if err := store.SavePreferences(prefs); err != nil {
		t.Fatalf("SavePreferences failed: %v", err)
	}
	prefs.Energy[9] = 0.9
	if err := store.SavePreferences(prefs); err != nil {
		t.Fatalf("second SavePreferences failed: %v", err)
	}

	got, _ := store.GetPreferences()
	if got.Energy.Weight(9) != 0.9 || got.Bias("cs101") != -0.1 {
		t.Errorf("preferences not persisted: %+v", got)
	}
}

func TestFeedbackLog(t *testing.T) {
	store := setupStore(t)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"f2", "f1", "f3"} {
		fb := models.BlockFeedback{
			ID: id, SessionID: "s1", TaskID: "t1", Category: models.CategoryExam,
			Start: start, End: start.Add(time.Hour), Completion: 0.9, Action: models.ActionKept,
			RecordedAt: start.Add(time.Duration(i) * time.Minute),
		}
		if err := store.AppendFeedback(fb); err != nil {
			t.Fatalf("AppendFeedback failed: %v", err)
		}
	}

	list, err := store.ListFeedback()
	if err != nil {
		t.Fatalf("ListFeedback failed: %v", err)
	}
	if len(list) != 3 || list[0].ID != "f2" || list[2].ID != "f3" {
		t.Errorf("feedback not in arrival order: %+v", list)
	}
	if list[0].Action != models.ActionKept || list[0].Completion != 0.9 {
		t.Errorf("feedback fields not preserved: %+v", list[0])
	}

	if err := store.ClearFeedback([]string{"f2", "f1"}); err != nil {
		t.Fatalf("ClearFeedback failed: %v", err)
	}
	list, _ = store.ListFeedback()
	if len(list) != 1 || list[0].ID != "f3" {
		t.Errorf("expected only f3 to remain, got %+v", list)
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	store := setupStore(t)

	empty, err := store.GetSchedule()
	if err != nil {
		t.Fatalf("GetSchedule failed: %v", err)
	}
	if len(empty.Sessions) != 0 || !empty.GeneratedAt.IsZero() {
		t.Errorf("expected an empty schedule, got %+v", empty)
	}

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	result := models.ScheduleResult{
		Sessions: []models.ScheduledSession{
			{ID: "b", TaskID: "t2", Title: "Read", Category: models.CategoryReading, SessionIndex: 0, SessionCount: 1,
				Start: start.Add(2 * time.Hour), End: start.Add(3 * time.Hour), Lock: models.LockNone, Provenance: models.ProvenanceAuto},
			{ID: "a", TaskID: "t1", Title: "Exam", Category: models.CategoryExam, SessionIndex: 0, SessionCount: 3,
				Start: start, End: start.Add(time.Hour), Lock: models.LockHard, Provenance: models.ProvenanceLocked},
		},
		Overflow: []models.OverflowItem{
			{ID: "o", TaskID: "t3", Title: "Project", SessionIndex: 1, SessionCount: 4, Minutes: 90, Due: due, Reason: "no slot before due date"},
		},
		Log:         []string{"placed a", "placed b"},
		Fingerprint: 1<<63 + 5,
		GeneratedAt: start,
	}
	if err := store.SaveSchedule(result); err != nil {
		t.Fatalf("SaveSchedule failed: %v", err)
	}

	got, err := store.GetSchedule()
	if err != nil {
		t.Fatalf("GetSchedule failed: %v", err)
	}
	if len(got.Sessions) != 2 || got.Sessions[0].ID != "a" || got.Sessions[0].Lock != models.LockHard {
		t.Errorf("sessions not restored in start order: %+v", got.Sessions)
	}
	if len(got.Overflow) != 1 || got.Overflow[0].Minutes != 90 || got.Overflow[0].Reason != "no slot before due date" {
		t.Errorf("overflow not restored: %+v", got.Overflow)
	}
	if got.Fingerprint != result.Fingerprint || len(got.Log) != 2 || !got.GeneratedAt.Equal(start) {
		t.Errorf("metadata not restored: %d %v %v", got.Fingerprint, got.Log, got.GeneratedAt)
	}

	// Saving replaces the previous schedule entirely.
	if err := store.SaveSchedule(models.ScheduleResult{GeneratedAt: start}); err != nil {
		t.Fatalf("SaveSchedule failed: %v", err)
	}
	got, _ = store.GetSchedule()
	if len(got.Sessions) != 0 || len(got.Overflow) != 0 {
		t.Errorf("old schedule survived: %+v", got)
	}
}

func TestUpdateSessionLock(t *testing.T) {
	store := setupStore(t)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	result := models.ScheduleResult{
		Sessions: []models.ScheduledSession{{
			ID: "s1", TaskID: "t1", Title: "Exam", Category: models.CategoryExam, SessionCount: 1,
			Start: start, End: start.Add(time.Hour), Lock: models.LockNone, Provenance: models.ProvenanceAuto,
		}},
		GeneratedAt: start,
	}
	if err := store.SaveSchedule(result); err != nil {
		t.Fatalf("SaveSchedule failed: %v", err)
	}

	moved := models.TimeWindow{Start: start.Add(4 * time.Hour), End: start.Add(5 * time.Hour)}
	if err := store.UpdateSessionLock("s1", models.LockUserAdjusted, &moved); err != nil {
		t.Fatalf("UpdateSessionLock failed: %v", err)
	}
	got, _ := store.GetSchedule()
	s := got.Sessions[0]
	if s.Lock != models.LockUserAdjusted || !s.Start.Equal(moved.Start) || s.Provenance != models.ProvenanceUser {
		t.Errorf("session not updated: %+v", s)
	}

	if err := store.UpdateSessionLock("s1", models.LockHard, nil); err != nil {
		t.Fatalf("UpdateSessionLock failed: %v", err)
	}
	got, _ = store.GetSchedule()
	if got.Sessions[0].Lock != models.LockHard || !got.Sessions[0].Start.Equal(moved.Start) {
		t.Errorf("lock-only update changed the slot: %+v", got.Sessions[0])
	}

	if err := store.UpdateSessionLock("missing", models.LockHard, nil); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
