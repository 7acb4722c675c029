// Package backup snapshots the SQLite database before destructive operations.
package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/studyplan/internal/constants"
)

const (
	// DirName is created next to the database file.
	DirName = "backups"
	// Keep is how many snapshots survive pruning.
	Keep = 10

	fileSuffix      = ".db"
	timestampLayout = "20060102-150405"
)

// Info describes one snapshot on disk.
type Info struct {
	Path    string
	Reason  string
	Created time.Time
	Size    int64
}

type Manager struct {
	dbPath string
	dir    string
	now    func() time.Time
}

func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), DirName),
		now:    time.Now,
	}
}

func (m *Manager) Dir() string {
	return m.dir
}

// Snapshot writes a consistent copy of the database tagged with reason and
// prunes old snapshots. A missing database is not an error: it returns "".
func (m *Manager) Snapshot(reason string) (string, error) {
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("failed to access database: %w", err)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s-%s%s", constants.AppName, reason, m.now().UTC().Format(timestampLayout), fileSuffix)
	dest := filepath.Join(m.dir, name)
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("backup %s already exists", name)
	}

	db, err := sql.Open("sqlite", m.dbPath+"?mode=ro")
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec("VACUUM INTO ?", dest); err != nil {
		return "", fmt.Errorf("failed to snapshot database: %w", err)
	}

	if err := m.prune(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to prune old backups: %v\n", err)
	}
	return dest, nil
}

// List returns snapshots newest first. Files that do not follow the naming
// scheme are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	prefix := constants.AppName + "-"
	var out []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		body := strings.TrimSuffix(strings.TrimPrefix(name, prefix), fileSuffix)
		if len(body) <= len(timestampLayout) {
			continue
		}
		stamp := body[len(body)-len(timestampLayout):]
		created, err := time.Parse(timestampLayout, stamp)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{
			Path:    filepath.Join(m.dir, name),
			Reason:  strings.TrimSuffix(body[:len(body)-len(timestampLayout)], "-"),
			Created: created,
			Size:    info.Size(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Created.After(out[j].Created)
	})
	return out, nil
}

func (m *Manager) prune() error {
	snapshots, err := m.List()
	if err != nil {
		return err
	}
	for _, s := range snapshots[min(Keep, len(snapshots)):] {
		if err := os.Remove(s.Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", s.Path, err)
		}
	}
	return nil
}
