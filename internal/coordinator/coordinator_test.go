package coordinator

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/metrics"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage"
	"github.com/julianstephens/studyplan/internal/storage/sqlite"
)

// now is Monday 2026-03-02 08:00 UTC.
var now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

// countingStore counts snapshots, one GetAllTasks call per recompute.
type countingStore struct {
	storage.Provider
	snapshots atomic.Int32
}

func (s *countingStore) GetAllTasks() ([]models.Task, error) {
	s.snapshots.Add(1)
	return s.Provider.GetAllTasks()
}

func setupStore(t *testing.T) *countingStore {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "studyplan.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	settings.DayStartHour = 9
	settings.DayEndHour = 17
	settings.DebounceMs = 20
	settings.MinIntervalMs = 0
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	if err := store.AddTask(models.Task{
		ID: "exam-1", Title: "Midterm", Category: models.CategoryExam,
		EstimatedMinutes: 180, Due: time.Date(2026, 3, 6, 17, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	return &countingStore{Provider: store}
}

type published chan models.ScheduleResult

func (p published) Publish(r models.ScheduleResult) { p <- r }

func start(t *testing.T, store storage.Provider, pub Publisher) *Coordinator {
	t.Helper()
	c, err := New(store, Options{
		Publisher: pub,
		Metrics:   metrics.New(),
		Now:       func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return c
}

func TestRecomputePersistsAndPublishes(t *testing.T) {
	store := setupStore(t)
	pub := make(published, 4)
	c := start(t, store, pub)

	report, err := c.Recompute(context.Background(), false)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if report.Cached {
		t.Error("first recompute should not be cached")
	}
	if len(report.Schedule.Sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(report.Schedule.Sessions))
	}
	if report.Schedule.Fingerprint == 0 {
		t.Error("expected a fingerprint on the result")
	}
	if !report.Schedule.GeneratedAt.Equal(now) {
		t.Errorf("GeneratedAt = %v, want %v", report.Schedule.GeneratedAt, now)
	}

	stored, err := store.GetSchedule()
	if err != nil {
		t.Fatalf("GetSchedule failed: %v", err)
	}
	if stored.Fingerprint != report.Schedule.Fingerprint || len(stored.Sessions) != 3 {
		t.Errorf("stored schedule does not match: %+v", stored)
	}

	select {
	case r := <-pub:
		if len(r.Sessions) != 3 {
			t.Errorf("published %d sessions, want 3", len(r.Sessions))
		}
	default:
		t.Error("expected the schedule to be published")
	}
}

func TestRecomputeReusesCachedSchedule(t *testing.T) {
	store := setupStore(t)
	pub := make(published, 4)
	c := start(t, store, pub)
	ctx := context.Background()

	first, err := c.Recompute(ctx, false)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	second, err := c.Recompute(ctx, false)
	if err != nil {
		t.Fatalf("second Recompute failed: %v", err)
	}
	if !second.Cached {
		t.Error("unchanged inputs should reuse the cached schedule")
	}
	if second.Schedule.Fingerprint != first.Schedule.Fingerprint {
		t.Error("fingerprint changed without input changes")
	}
	if len(pub) != 1 {
		t.Errorf("expected 1 publish, got %d", len(pub))
	}

	forced, err := c.Recompute(ctx, true)
	if err != nil {
		t.Fatalf("forced Recompute failed: %v", err)
	}
	if forced.Cached {
		t.Error("forced recompute must run the scheduler")
	}

	if err := store.AddTask(models.Task{
		ID: "hw-1", Title: "Problem set", Category: models.CategoryHomework,
		EstimatedMinutes: 60, Due: time.Date(2026, 3, 4, 17, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	changed, err := c.Recompute(ctx, false)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if changed.Cached || changed.Schedule.Fingerprint == first.Schedule.Fingerprint {
		t.Error("a new task should change the fingerprint")
	}
	if len(changed.Schedule.Sessions) != 4 {
		t.Errorf("expected 4 sessions, got %d", len(changed.Schedule.Sessions))
	}
}

func TestConfigErrorKeepsPreviousSchedule(t *testing.T) {
	store := setupStore(t)
	c := start(t, store, nil)
	ctx := context.Background()

	before, err := c.Recompute(ctx, false)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	settings, _ := store.GetSettings()
	settings.DayEndHour = settings.DayStartHour
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	_, err = c.Recompute(ctx, true)
	if err == nil {
		t.Fatal("expected a configuration error")
	}
	var cfgErr *apperrors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError, got %T: %v", err, err)
	}

	after, err := store.GetSchedule()
	if err != nil {
		t.Fatalf("GetSchedule failed: %v", err)
	}
	if after.Fingerprint != before.Schedule.Fingerprint || len(after.Sessions) != len(before.Schedule.Sessions) {
		t.Error("configuration error replaced the stored schedule")
	}
}

func TestTriggerCoalescesBursts(t *testing.T) {
	store := setupStore(t)
	pub := make(published, 4)
	c := start(t, store, pub)

	for i := 0; i < 10; i++ {
		c.Trigger(ReasonDataEdit)
	}

	select {
	case <-pub:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced recompute never ran")
	}
	time.Sleep(150 * time.Millisecond)

	if got := store.snapshots.Load(); got != 1 {
		t.Errorf("expected one recompute for the burst, got %d", got)
	}
}

func TestLearnQueuesRecompute(t *testing.T) {
	store := setupStore(t)
	pub := make(published, 4)
	c := start(t, store, pub)
	ctx := context.Background()

	report, err := c.Recompute(ctx, false)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	<-pub

	session := report.Schedule.Sessions[0]
	if err := store.AppendFeedback(models.BlockFeedback{
		ID: "fb-1", SessionID: session.ID, TaskID: session.TaskID, Category: session.Category,
		Start: session.Start, End: session.End, Completion: 1, Action: models.ActionKept,
		RecordedAt: now,
	}); err != nil {
		t.Fatalf("AppendFeedback failed: %v", err)
	}

	outcome, err := c.Learn(ctx)
	if err != nil {
		t.Fatalf("Learn failed: %v", err)
	}
	if outcome.Positive != 1 {
		t.Errorf("expected 1 positive signal, got %+v", outcome)
	}

	select {
	case <-pub:
	case <-time.After(2 * time.Second):
		t.Fatal("learner pass did not queue a recompute")
	}

	remaining, _ := store.ListFeedback()
	if len(remaining) != 0 {
		t.Errorf("expected feedback log to be cleared, got %d", len(remaining))
	}
}

func TestRunRejectsSecondWorker(t *testing.T) {
	c := start(t, setupStore(t), nil)
	// give the first worker time to start
	deadline := time.Now().Add(time.Second)
	for !c.running.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := c.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestRecomputeWithoutWorkerHonoursContext(t *testing.T) {
	c, err := New(setupStore(t), Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Recompute(ctx, false); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	store := setupStore(t)
	pub := make(published, 4)
	c := start(t, store, pub)

	report, err := c.Preview(context.Background())
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if len(report.Schedule.Sessions) != 3 {
		t.Errorf("expected 3 previewed sessions, got %d", len(report.Schedule.Sessions))
	}
	stored, err := store.GetSchedule()
	if err != nil {
		t.Fatalf("GetSchedule failed: %v", err)
	}
	if len(stored.Sessions) != 0 || len(pub) != 0 {
		t.Error("preview saved or published a schedule")
	}

	saved, err := c.Recompute(context.Background(), false)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if saved.Cached {
		t.Error("preview must not populate the cache")
	}
	for i := range saved.Schedule.Sessions {
		if saved.Schedule.Sessions[i].ID != report.Schedule.Sessions[i].ID ||
			!saved.Schedule.Sessions[i].Start.Equal(report.Schedule.Sessions[i].Start) {
			t.Errorf("recompute differs from preview at %d", i)
		}
	}
}
