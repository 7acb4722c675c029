package scheduler

import (
	"fmt"

	"github.com/julianstephens/studyplan/internal/availability"
	"github.com/julianstephens/studyplan/internal/decomposer"
	"github.com/julianstephens/studyplan/internal/logger"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/recurrence"
	"github.com/julianstephens/studyplan/internal/scorer"
)

// Input is everything a recompute reads. The scheduler never looks anywhere else,
// so identical inputs always produce identical schedules.
type Input struct {
	Tasks       []models.Task
	Events      []models.FixedEvent
	Previous    []models.ScheduledSession
	Constraints models.Constraints
	Preferences models.Preferences
}

type Scheduler struct {
	expander *recurrence.Expander
}

// New returns a scheduler that expands recurring tasks with expander.
// A nil expander expands without holidays.
func New(expander *recurrence.Expander) *Scheduler {
	if expander == nil {
		expander = recurrence.NewExpander(nil)
	}
	return &Scheduler{expander: expander}
}

// GenerateSchedule runs the full pipeline: energy filter, recurrence expansion,
// decomposition, scoring and placement.
func (s *Scheduler) GenerateSchedule(in Input) (models.ScheduleResult, error) {
	c := in.Constraints
	if err := availability.Validate(c); err != nil {
		return models.ScheduleResult{}, err
	}
	loc := c.Location
	if loc == nil {
		loc = c.Now.Location()
	}

	var pipelineLog []string
	tasks := FilterByEnergy(activeTasks(in.Tasks), c.EnergyLevel, c.Now)
	if dropped := len(activeTasks(in.Tasks)) - len(tasks); dropped > 0 {
		pipelineLog = append(pipelineLog, fmt.Sprintf("energy level %s: set aside %d task(s)", c.EnergyLevel, dropped))
	}

	var occurrences []models.Task
	for _, t := range tasks {
		for _, occ := range s.expander.ExpandTask(t, c.HorizonStart, c.HorizonEnd) {
			occ.Due = occ.Due.In(loc)
			occurrences = append(occurrences, occ)
		}
	}

	subs := decomposer.DecomposeAll(occurrences, c.MaxStudyMinutesPerBlock)
	ranked := scorer.New(in.Preferences, c.Now).Rank(subs)

	result, err := Place(ranked, in.Events, in.Previous, c)
	if err != nil {
		return models.ScheduleResult{}, err
	}
	result.Log = append(pipelineLog, result.Log...)

	logger.Debug("Schedule generated",
		"tasks", len(occurrences),
		"sub_sessions", len(ranked),
		"sessions", len(result.Sessions),
		"overflow", len(result.Overflow))
	return result, nil
}

func activeTasks(tasks []models.Task) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if t.DeletedAt != nil {
			continue
		}
		if t.Completed && t.Recurrence == nil {
			continue
		}
		out = append(out, t)
	}
	return out
}
