package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/studyplan/internal/backup"
	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Reset the SQLite database. A snapshot is written to backups/ first."`
	Source string `help:"Database path, connection string or 'keyring' to copy existing data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized studyplan storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source == "" {
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to determine home directory: %w", err)
	}
	source, err := cli.OpenStore(c.Source, ctx.Profile, home)
	if err != nil {
		return err
	}
	if samePath(source.GetConfigPath(), ctx.Store.GetConfigPath()) {
		return fmt.Errorf("source and destination are the same database: %s", c.Source)
	}
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	fmt.Printf("Copying data from: %s\n", source.GetConfigPath())
	return copyData(source, ctx.Store)
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if !strings.HasSuffix(dbPath, ".db") {
		return fmt.Errorf("--force only applies to SQLite databases")
	}
	if c.Source != "" && samePath(c.Source, dbPath) {
		return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to access existing database: %w", err)
	}

	snapshot, err := backup.NewManager(dbPath).Snapshot("reset")
	if err != nil {
		return fmt.Errorf("failed to back up database before reset: %w", err)
	}
	fmt.Printf("Backed up existing database to: %s\n", snapshot)

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	fmt.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

// copyData moves everything a recompute reads, plus the saved schedule, from
// src into dst. Feedback is copied too so no pending learning is lost.
func copyData(src, dst storage.Provider) error {
	settings, err := src.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	if err := dst.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	prefs, err := src.GetPreferences()
	if err != nil {
		return fmt.Errorf("failed to read preferences: %w", err)
	}
	if err := dst.SavePreferences(prefs); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	tasks, err := src.GetAllTasksIncludingDeleted()
	if err != nil {
		return fmt.Errorf("failed to read tasks: %w", err)
	}
	for _, task := range tasks {
		if err := dst.AddTask(task); err != nil {
			return fmt.Errorf("failed to add task %s: %w", task.ID, err)
		}
	}
	fmt.Printf("  Copied %d task(s)\n", len(tasks))

	events, err := src.GetEvents(time.Unix(0, 0), time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}
	for _, event := range events {
		if err := dst.AddEvent(event); err != nil {
			return fmt.Errorf("failed to add event %s: %w", event.ID, err)
		}
	}
	fmt.Printf("  Copied %d event(s)\n", len(events))

	feedback, err := src.ListFeedback()
	if err != nil {
		return fmt.Errorf("failed to read feedback: %w", err)
	}
	for _, fb := range feedback {
		if err := dst.AppendFeedback(fb); err != nil {
			return fmt.Errorf("failed to add feedback %s: %w", fb.ID, err)
		}
	}

	schedule, err := src.GetSchedule()
	if err != nil {
		return fmt.Errorf("failed to read schedule: %w", err)
	}
	if !schedule.GeneratedAt.IsZero() {
		if err := dst.SaveSchedule(schedule); err != nil {
			return fmt.Errorf("failed to save schedule: %w", err)
		}
	}
	fmt.Printf("  Copied schedule with %d session(s)\n", len(schedule.Sessions))
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
