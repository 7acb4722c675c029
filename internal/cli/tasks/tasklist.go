package tasks

import (
	"fmt"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
)

type TaskListCmd struct {
	ShowDeleted bool `help:"Include deleted tasks." name:"show-deleted"`
	ShowDone    bool `help:"Include completed tasks." name:"show-done"`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	var (
		tasks []models.Task
		err   error
	)
	if c.ShowDeleted {
		tasks, err = ctx.Store.GetAllTasksIncludingDeleted()
	} else {
		tasks, err = ctx.Store.GetAllTasks()
	}
	if err != nil {
		return err
	}

	var shown []models.Task
	for _, t := range tasks {
		if t.Completed && !t.IsRecurring() && !c.ShowDone {
			continue
		}
		shown = append(shown, t)
	}
	if len(shown) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	fmt.Println(cli.RenderTasks(shown, loc))
	return nil
}
