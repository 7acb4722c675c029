package sqlstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage"
)

const taskColumns = `id, course_id, title, category, due, estimated_minutes, min_block_minutes,
	max_block_minutes, difficulty, importance, locked, completed, recurrence, effort,
	series_id, recurrence_index, deleted_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var category, due string
	var difficulty, importance sql.NullFloat64
	var recurrence, effort, deletedAt sql.NullString

	err := row.Scan(
		&t.ID, &t.CourseID, &t.Title, &category, &due, &t.EstimatedMinutes, &t.MinBlockMinutes,
		&t.MaxBlockMinutes, &difficulty, &importance, &t.Locked, &t.Completed, &recurrence, &effort,
		&t.SeriesID, &t.RecurrenceIndex, &deletedAt,
	)
	if err != nil {
		return models.Task{}, err
	}

	t.Category = models.Category(category)
	if t.Due, err = parseTime("due", due); err != nil {
		return models.Task{}, err
	}
	t.Difficulty = nullFloat(difficulty)
	t.Importance = nullFloat(importance)
	t.DeletedAt = nullString(deletedAt)

	if recurrence.Valid && recurrence.String != "" {
		var rule models.RecurrenceRule
		if err := json.Unmarshal([]byte(recurrence.String), &rule); err != nil {
			return models.Task{}, fmt.Errorf("parsing recurrence of task %s: %w", t.ID, err)
		}
		t.Recurrence = &rule
	}
	if effort.Valid && effort.String != "" {
		var profile models.EffortProfile
		if err := json.Unmarshal([]byte(effort.String), &profile); err != nil {
			return models.Task{}, fmt.Errorf("parsing effort of task %s: %w", t.ID, err)
		}
		t.Effort = &profile
	}
	return t, nil
}

func taskArgs(t models.Task) ([]interface{}, error) {
	var recurrence, effort interface{}
	if t.Recurrence != nil {
		b, err := json.Marshal(t.Recurrence)
		if err != nil {
			return nil, fmt.Errorf("encoding recurrence: %w", err)
		}
		recurrence = string(b)
	}
	if t.Effort != nil {
		b, err := json.Marshal(t.Effort)
		if err != nil {
			return nil, fmt.Errorf("encoding effort: %w", err)
		}
		effort = string(b)
	}
	var difficulty, importance, deletedAt interface{}
	if t.Difficulty != nil {
		difficulty = *t.Difficulty
	}
	if t.Importance != nil {
		importance = *t.Importance
	}
	if t.DeletedAt != nil {
		deletedAt = *t.DeletedAt
	}

	return []interface{}{
		t.ID, t.CourseID, t.Title, string(t.Category), formatTime(t.Due), t.EstimatedMinutes, t.MinBlockMinutes,
		t.MaxBlockMinutes, difficulty, importance, t.Locked, t.Completed, recurrence, effort,
		t.SeriesID, t.RecurrenceIndex, deletedAt,
	}, nil
}

func (s *Store) AddTask(task models.Task) error {
	args, err := taskArgs(task)
	if err != nil {
		return err
	}
	_, err = s.exec(`INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}
	return nil
}

func (s *Store) GetTask(id string) (models.Task, error) {
	t, err := scanTask(s.queryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND deleted_at IS NULL`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
	}
	return t, err
}

func (s *Store) GetAllTasks() ([]models.Task, error) {
	return s.listTasks(`SELECT ` + taskColumns + ` FROM tasks WHERE deleted_at IS NULL ORDER BY due, id`)
}

func (s *Store) GetAllTasksIncludingDeleted() ([]models.Task, error) {
	return s.listTasks(`SELECT ` + taskColumns + ` FROM tasks ORDER BY due, id`)
}

func (s *Store) listTasks(query string) ([]models.Task, error) {
	rows, err := s.query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateTask(task models.Task) error {
	args, err := taskArgs(task)
	if err != nil {
		return err
	}
	// Move the id from the front to the WHERE clause.
	args = append(args[1:], args[0])
	res, err := s.exec(`UPDATE tasks SET course_id = ?, title = ?, category = ?, due = ?,
		estimated_minutes = ?, min_block_minutes = ?, max_block_minutes = ?, difficulty = ?,
		importance = ?, locked = ?, completed = ?, recurrence = ?, effort = ?, series_id = ?,
		recurrence_index = ?, deleted_at = ?
		WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return mustAffect(res, "task", task.ID)
}

// DeleteTask soft-deletes the task so it can be restored later.
func (s *Store) DeleteTask(id string) error {
	res, err := s.exec(`UPDATE tasks SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, s.timestamp(), id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return mustAffect(res, "task", id)
}

func (s *Store) RestoreTask(id string) error {
	res, err := s.exec(`UPDATE tasks SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to restore task: %w", err)
	}
	return mustAffect(res, "deleted task", id)
}
