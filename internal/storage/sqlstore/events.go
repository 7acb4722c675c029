package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage"
)

const eventColumns = `id, title, start_at, end_at, source, deleted_at`

func scanEvent(row rowScanner) (models.FixedEvent, error) {
	var ev models.FixedEvent
	var start, end, source string
	var deletedAt sql.NullString
	if err := row.Scan(&ev.ID, &ev.Title, &start, &end, &source, &deletedAt); err != nil {
		return models.FixedEvent{}, err
	}

	var err error
	if ev.Start, err = parseTime("start_at", start); err != nil {
		return models.FixedEvent{}, err
	}
	if ev.End, err = parseTime("end_at", end); err != nil {
		return models.FixedEvent{}, err
	}
	ev.Source = models.EventSource(source)
	ev.DeletedAt = nullString(deletedAt)
	return ev, nil
}

func (s *Store) AddEvent(ev models.FixedEvent) error {
	if !ev.End.After(ev.Start) {
		return fmt.Errorf("event %s ends before it starts", ev.ID)
	}
	_, err := s.exec(`INSERT INTO fixed_events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, NULL)`,
		ev.ID, ev.Title, formatTime(ev.Start), formatTime(ev.End), string(ev.Source))
	if err != nil {
		return fmt.Errorf("failed to add event: %w", err)
	}
	return nil
}

func (s *Store) GetEvent(id string) (models.FixedEvent, error) {
	ev, err := scanEvent(s.queryRow(`SELECT `+eventColumns+` FROM fixed_events WHERE id = ? AND deleted_at IS NULL`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.FixedEvent{}, fmt.Errorf("event %s: %w", id, storage.ErrNotFound)
	}
	return ev, err
}

func (s *Store) GetEvents(start, end time.Time) ([]models.FixedEvent, error) {
	rows, err := s.query(`SELECT `+eventColumns+` FROM fixed_events
		WHERE deleted_at IS NULL AND end_at > ? AND start_at < ?
		ORDER BY start_at, id`, formatTime(start), formatTime(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.FixedEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *Store) DeleteEvent(id string) error {
	res, err := s.exec(`UPDATE fixed_events SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, s.timestamp(), id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return mustAffect(res, "event", id)
}
