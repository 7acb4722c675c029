package plans

import (
	"context"
	"fmt"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/coordinator"
)

type LearnCmd struct{}

func (c *LearnCmd) Run(ctx *cli.Context) error {
	return ctx.WithCoordinator(func(runCtx context.Context, coord *coordinator.Coordinator) error {
		outcome, err := coord.Learn(runCtx)
		if err != nil {
			return err
		}
		if outcome.Consumed() == 0 {
			fmt.Println("No feedback to learn from.")
			return nil
		}
		fmt.Printf("Learned from %d feedback record(s): %d positive, %d negative, %d neutral",
			outcome.Consumed(), outcome.Positive, outcome.Negative, outcome.Neutral)
		if outcome.Dropped > 0 {
			fmt.Printf(", %d for sessions no longer scheduled", outcome.Dropped)
		}
		fmt.Println(".")

		report, err := coord.Recompute(runCtx, false)
		if err != nil {
			return err
		}
		fmt.Printf("Schedule updated: %d session(s).\n", len(report.Schedule.Sessions))
		return nil
	})
}
