package tasks

import (
	"fmt"

	"github.com/julianstephens/studyplan/internal/cli"
)

type TaskDeleteCmd struct {
	ID string `arg:"" help:"Task ID."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	task, err := ctx.Store.GetTask(c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteTask(c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted task: %s\n", task.Title)
	fmt.Printf("Use 'studyplan task restore %s' to undo.\n", c.ID)
	return nil
}

type TaskRestoreCmd struct {
	ID string `arg:"" help:"Task ID."`
}

func (c *TaskRestoreCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.RestoreTask(c.ID); err != nil {
		return err
	}
	task, err := ctx.Store.GetTask(c.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Restored task: %s\n", task.Title)
	return nil
}
