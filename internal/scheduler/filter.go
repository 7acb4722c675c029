package scheduler

import (
	"time"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/models"
)

// FilterByEnergy drops tasks the user should not be shown at the given energy level.
// High energy keeps everything; medium keeps locked, important or soon-due work;
// low keeps only what is locked, due by tomorrow, or important and close or hard.
func FilterByEnergy(tasks []models.Task, level models.EnergyLevel, now time.Time) []models.Task {
	if level == "" || level == models.EnergyHigh {
		return tasks
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfTomorrow := today.AddDate(0, 0, 2)
	day := 24 * time.Hour

	var out []models.Task
	for _, t := range tasks {
		importance := t.ImportanceOrDefault()
		untilDue := t.Due.Sub(now)
		keep := t.Locked
		switch level {
		case models.EnergyMedium:
			keep = keep ||
				importance >= constants.MediumEnergyImportance ||
				untilDue <= constants.MediumEnergyDueDays*day
		case models.EnergyLow:
			keep = keep ||
				t.Due.Before(endOfTomorrow) ||
				(untilDue <= constants.LowEnergyDueDays*day && importance >= constants.LowEnergyImportance) ||
				(importance >= constants.LowEnergyHardImportant && t.DifficultyOrDefault() >= constants.LowEnergyHardDifficult)
		}
		if keep {
			out = append(out, t)
		}
	}
	return out
}
