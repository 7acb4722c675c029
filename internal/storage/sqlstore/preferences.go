package sqlstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/studyplan/internal/models"
)

// GetPreferences returns the learned preferences, or the defaults before the
// first save.
func (s *Store) GetPreferences() (models.Preferences, error) {
	var data string
	err := s.queryRow(`SELECT data FROM preferences WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.Preferences{}, err
	}

	prefs := models.DefaultPreferences()
	if err := json.Unmarshal([]byte(data), &prefs); err != nil {
		return models.Preferences{}, fmt.Errorf("parsing preferences: %w", err)
	}
	if prefs.Energy == nil {
		prefs.Energy = models.EnergyProfile{}
	}
	if prefs.CourseBias == nil {
		prefs.CourseBias = map[string]float64{}
	}
	return prefs, nil
}

func (s *Store) SavePreferences(prefs models.Preferences) error {
	b, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	_, err = s.exec(`INSERT INTO preferences (id, data) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data`, string(b))
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
