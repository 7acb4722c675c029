package tasks

import (
	"fmt"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/recurrence"
)

// recurrenceLookaheadYears bounds the search for a recurring task's next occurrence.
const recurrenceLookaheadYears = 5

type TaskCompleteCmd struct {
	ID string `arg:"" help:"Task ID."`
}

func (c *TaskCompleteCmd) Run(ctx *cli.Context) error {
	task, err := ctx.Store.GetTask(c.ID)
	if err != nil {
		return err
	}
	if task.Completed {
		fmt.Printf("Task %s is already complete.\n", task.Title)
		return nil
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	holidays, err := recurrence.HolidaySetFromSettings(settings)
	if err != nil {
		return err
	}

	advanced := Complete(task, recurrence.NewExpander(holidays))
	if err := ctx.Store.UpdateTask(advanced); err != nil {
		return err
	}

	if advanced.Completed {
		fmt.Printf("Completed task: %s\n", task.Title)
	} else {
		fmt.Printf("Completed %s, next due %s\n", task.Title, advanced.Due.Format("Mon Jan 2 15:04"))
	}
	return nil
}

// Complete marks a task done. A recurring task moves its anchor to the next
// occurrence instead, and is only done once the series has ended.
func Complete(task models.Task, expander *recurrence.Expander) models.Task {
	if task.Recurrence == nil {
		task.Completed = true
		return task
	}

	rule := *task.Recurrence
	next, ok := expander.NextDue(rule, task.Due, task.Due.AddDate(recurrenceLookaheadYears, 0, 0))
	if !ok {
		task.Completed = true
		return task
	}
	if rule.End.Kind == models.EndAfter {
		rule.End.Count--
	}
	task.Recurrence = &rule
	task.Due = next
	task.RecurrenceIndex++
	return task
}
