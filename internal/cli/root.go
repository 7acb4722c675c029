package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/coordinator"
	"github.com/julianstephens/studyplan/internal/metrics"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage"
)

type Context struct {
	Store     storage.Provider
	ConfigDir string
	// Profile names the keyring entry holding a PostgreSQL connection string.
	Profile string
	Metrics *metrics.Metrics
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
	// Assume answers yes to every confirmation prompt.
	Assume bool
}

func (c *Context) Clock() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Location returns the configured timezone.
func (c *Context) Location() (*time.Location, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.Location()
}

// NewCoordinator builds a coordinator over the context's store.
func (c *Context) NewCoordinator(pub coordinator.Publisher) (*coordinator.Coordinator, error) {
	return coordinator.New(c.Store, coordinator.Options{
		Publisher: pub,
		Metrics:   c.Metrics,
		Now:       c.Now,
	})
}

// WithCoordinator runs fn against a coordinator whose worker lives only for the
// duration of the call.
func (c *Context) WithCoordinator(fn func(context.Context, *coordinator.Coordinator) error) error {
	coord, err := c.NewCoordinator(nil)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		coord.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()
	return fn(ctx, coord)
}

// Recompute runs a single recompute through a short-lived coordinator.
func (c *Context) Recompute(force bool) (coordinator.Report, error) {
	var report coordinator.Report
	err := c.WithCoordinator(func(ctx context.Context, coord *coordinator.Coordinator) error {
		var err error
		report, err = coord.Recompute(ctx, force)
		return err
	})
	return report, err
}

// Confirm asks a yes/no question unless Assume is set.
func (c *Context) Confirm(title string) (bool, error) {
	if c.Assume {
		return true, nil
	}
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// ParseDateTime accepts "YYYY-MM-DD HH:MM" or "YYYY-MM-DD" in loc. A bare date
// resolves to endOfDay when set, otherwise to midnight.
func ParseDateTime(s string, loc *time.Location, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(constants.DateTimeFormat, s, loc); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(constants.DateFormat, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (use YYYY-MM-DD or \"YYYY-MM-DD HH:MM\")", s)
	}
	if endOfDay {
		t = t.Add(constants.DefaultDueTimeOfDay)
	}
	return t, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// ShortID trims ids for display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FindSession resolves a session by id or unique id prefix.
func FindSession(result models.ScheduleResult, id string) (models.ScheduledSession, error) {
	var match *models.ScheduledSession
	for i, s := range result.Sessions {
		if s.ID == id {
			return s, nil
		}
		if strings.HasPrefix(s.ID, id) {
			if match != nil {
				return models.ScheduledSession{}, fmt.Errorf("session id %q is ambiguous", id)
			}
			match = &result.Sessions[i]
		}
	}
	if match == nil {
		return models.ScheduledSession{}, fmt.Errorf("session %q: %w", id, storage.ErrNotFound)
	}
	return *match, nil
}
