// Package lockfile guarantees a single long-lived coordinator per data directory.
package lockfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/studyplan/internal/constants"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid

	ErrAlreadyRunning = errors.New("another studyplan coordinator is running")
	ErrMalformed      = errors.New("lockfile is malformed")
)

// Owner is the process recorded in a lockfile.
type Owner struct {
	PID       int
	StartedAt time.Time
}

// Lock is a held coordinator lock.
type Lock struct {
	path  string
	owner Owner
}

// Path returns the lockfile location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, constants.CoordinatorLockfileName)
}

// Acquire takes the coordinator lock in dir. A lockfile left by a process that
// is gone, or that is not studyplan, is treated as stale and replaced.
func Acquire(dir string) (*Lock, error) {
	path := Path(dir)
	owner, err := ReadOwner(path)
	switch {
	case err == nil:
		if Alive(owner) {
			return nil, fmt.Errorf("%w (pid %d since %s)", ErrAlreadyRunning, owner.PID,
				owner.StartedAt.Local().Format(constants.DateTimeFormat))
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	case errors.Is(err, ErrMalformed):
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove malformed lockfile: %w", err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("failed to create lockfile: %w", err)
	}
	defer f.Close()

	owner = Owner{PID: getpidFunc(), StartedAt: time.Now().UTC()}
	if _, err := fmt.Fprintf(f, "%d|%s\n", owner.PID, owner.StartedAt.Format(time.RFC3339)); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	return &Lock{path: path, owner: owner}, nil
}

// Release removes the lockfile if it still belongs to this lock.
func (l *Lock) Release() error {
	owner, err := ReadOwner(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err == nil && owner.PID != l.owner.PID {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}

// ReadOwner parses a "pid|started_at" lockfile.
func ReadOwner(path string) (Owner, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Owner{}, err
	}

	pidStr, startedStr, ok := strings.Cut(strings.TrimSpace(string(content)), "|")
	if !ok {
		return Owner{}, ErrMalformed
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return Owner{}, fmt.Errorf("%w: invalid process ID %q", ErrMalformed, pidStr)
	}
	started, err := time.Parse(time.RFC3339, startedStr)
	if err != nil {
		return Owner{}, fmt.Errorf("%w: invalid start time %q", ErrMalformed, startedStr)
	}
	return Owner{PID: pid, StartedAt: started}, nil
}

// Alive reports whether owner's process still exists and is a studyplan binary.
func Alive(owner Owner) bool {
	process, err := findProcessFunc(owner.PID)
	if err != nil || process == nil {
		return false
	}
	return strings.HasPrefix(process.Executable(), constants.AppName)
}
