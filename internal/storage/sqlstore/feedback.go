package sqlstore

import (
	"fmt"

	"github.com/julianstephens/studyplan/internal/models"
)

func (s *Store) AppendFeedback(fb models.BlockFeedback) error {
	_, err := s.exec(`INSERT INTO feedback
		(id, session_id, task_id, course_id, category, start_at, end_at, completion, action, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fb.ID, fb.SessionID, fb.TaskID, fb.CourseID, string(fb.Category),
		formatTime(fb.Start), formatTime(fb.End), fb.Completion, string(fb.Action), formatTime(fb.RecordedAt))
	if err != nil {
		return fmt.Errorf("failed to append feedback: %w", err)
	}
	return nil
}

// ListFeedback returns pending feedback in arrival order.
func (s *Store) ListFeedback() ([]models.BlockFeedback, error) {
	rows, err := s.query(`SELECT id, session_id, task_id, course_id, category, start_at, end_at,
		completion, action, recorded_at FROM feedback ORDER BY recorded_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BlockFeedback
	for rows.Next() {
		var fb models.BlockFeedback
		var category, start, end, action, recorded string
		if err := rows.Scan(&fb.ID, &fb.SessionID, &fb.TaskID, &fb.CourseID, &category,
			&start, &end, &fb.Completion, &action, &recorded); err != nil {
			return nil, err
		}
		fb.Category = models.Category(category)
		fb.Action = models.FeedbackAction(action)
		if fb.Start, err = parseTime("start_at", start); err != nil {
			return nil, err
		}
		if fb.End, err = parseTime("end_at", end); err != nil {
			return nil, err
		}
		if fb.RecordedAt, err = parseTime("recorded_at", recorded); err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}

// ClearFeedback removes consumed entries. Feedback appended after the learner
// read the log is kept for the next pass.
func (s *Store) ClearFeedback(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, id := range ids {
		if err := s.txExec(tx, `DELETE FROM feedback WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to clear feedback %s: %w", id, err)
		}
	}
	return tx.Commit()
}
