package plans

import (
	"context"
	"fmt"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/coordinator"
)

type PlanCmd struct {
	Force bool `help:"Recompute even when nothing has changed."`
}

func (c *PlanCmd) Run(ctx *cli.Context) error {
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	current, err := ctx.Store.GetSchedule()
	if err != nil {
		return err
	}

	return ctx.WithCoordinator(func(runCtx context.Context, coord *coordinator.Coordinator) error {
		preview, err := coord.Preview(runCtx)
		if err != nil {
			return err
		}
		fmt.Println(cli.RenderSchedule(preview.Schedule, loc))

		if len(current.Sessions) > 0 && !c.Force && preview.Schedule.Fingerprint == current.Fingerprint {
			fmt.Println("Schedule is already up to date.")
			return nil
		}

		ok, err := ctx.Confirm("Save this schedule?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Schedule not saved.")
			return nil
		}

		report, err := coord.Recompute(runCtx, c.Force)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %d session(s)", len(report.Schedule.Sessions))
		if n := len(report.Schedule.Overflow); n > 0 {
			fmt.Printf(", %d could not be placed", n)
		}
		fmt.Println(".")
		return nil
	})
}
