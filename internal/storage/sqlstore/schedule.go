package sqlstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/julianstephens/studyplan/internal/models"
)

// SaveSchedule replaces the stored schedule in one transaction.
func (s *Store) SaveSchedule(result models.ScheduleResult) error {
	logJSON, err := json.Marshal(result.Log)
	if err != nil {
		return fmt.Errorf("encoding schedule log: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"sessions", "overflow", "schedule_meta"} {
		if err := s.txExec(tx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, ss := range result.Sessions {
		if err := s.txExec(tx, `INSERT INTO sessions
			(id, task_id, course_id, title, category, session_index, session_count, start_at, end_at, lock_tier, provenance)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ss.ID, ss.TaskID, ss.CourseID, ss.Title, string(ss.Category), ss.SessionIndex, ss.SessionCount,
			formatTime(ss.Start), formatTime(ss.End), string(ss.Lock), ss.Provenance); err != nil {
			return fmt.Errorf("failed to save session %s: %w", ss.ID, err)
		}
	}
	for _, o := range result.Overflow {
		if err := s.txExec(tx, `INSERT INTO overflow
			(id, task_id, title, session_index, session_count, minutes, due, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.TaskID, o.Title, o.SessionIndex, o.SessionCount, o.Minutes, formatTime(o.Due), o.Reason); err != nil {
			return fmt.Errorf("failed to save overflow %s: %w", o.ID, err)
		}
	}
	if err := s.txExec(tx, `INSERT INTO schedule_meta (id, fingerprint, generated_at, log) VALUES (1, ?, ?, ?)`,
		strconv.FormatUint(result.Fingerprint, 10), formatTime(result.GeneratedAt), string(logJSON)); err != nil {
		return fmt.Errorf("failed to save schedule metadata: %w", err)
	}

	return tx.Commit()
}

func (s *Store) GetSchedule() (models.ScheduleResult, error) {
	var result models.ScheduleResult
	var fingerprint, generated, logJSON string
	err := s.queryRow(`SELECT fingerprint, generated_at, log FROM schedule_meta WHERE id = 1`).
		Scan(&fingerprint, &generated, &logJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return result, nil
	}
	if err != nil {
		return result, err
	}
	if result.Fingerprint, err = strconv.ParseUint(fingerprint, 10, 64); err != nil {
		return result, fmt.Errorf("parsing fingerprint: %w", err)
	}
	if result.GeneratedAt, err = parseTime("generated_at", generated); err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(logJSON), &result.Log); err != nil {
		return result, fmt.Errorf("parsing schedule log: %w", err)
	}

	if result.Sessions, err = s.sessions(); err != nil {
		return result, err
	}
	if result.Overflow, err = s.overflow(); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Store) sessions() ([]models.ScheduledSession, error) {
	rows, err := s.query(`SELECT id, task_id, course_id, title, category, session_index, session_count,
		start_at, end_at, lock_tier, provenance FROM sessions ORDER BY start_at, task_id, session_index`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ScheduledSession
	for rows.Next() {
		var ss models.ScheduledSession
		var category, start, end, lock string
		if err := rows.Scan(&ss.ID, &ss.TaskID, &ss.CourseID, &ss.Title, &category, &ss.SessionIndex,
			&ss.SessionCount, &start, &end, &lock, &ss.Provenance); err != nil {
			return nil, err
		}
		ss.Category = models.Category(category)
		ss.Lock = models.ParseLockTier(lock)
		if ss.Start, err = parseTime("start_at", start); err != nil {
			return nil, err
		}
		if ss.End, err = parseTime("end_at", end); err != nil {
			return nil, err
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}

func (s *Store) overflow() ([]models.OverflowItem, error) {
	rows, err := s.query(`SELECT id, task_id, title, session_index, session_count, minutes, due, reason
		FROM overflow ORDER BY due, task_id, session_index`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OverflowItem
	for rows.Next() {
		var o models.OverflowItem
		var due string
		if err := rows.Scan(&o.ID, &o.TaskID, &o.Title, &o.SessionIndex, &o.SessionCount, &o.Minutes, &due, &o.Reason); err != nil {
			return nil, err
		}
		if o.Due, err = parseTime("due", due); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateSessionLock changes the lock tier, and optionally the window, of one
// stored session. It backs user edits made between recomputes.
func (s *Store) UpdateSessionLock(id string, lock models.LockTier, window *models.TimeWindow) error {
	var res sql.Result
	var err error
	if window != nil {
		res, err = s.exec(`UPDATE sessions SET lock_tier = ?, start_at = ?, end_at = ?, provenance = ? WHERE id = ?`,
			string(lock), formatTime(window.Start), formatTime(window.End), models.ProvenanceUser, id)
	} else {
		res, err = s.exec(`UPDATE sessions SET lock_tier = ? WHERE id = ?`, string(lock), id)
	}
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return mustAffect(res, "session", id)
}
