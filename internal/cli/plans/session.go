package plans

import (
	"fmt"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
)

type SessionLockCmd struct {
	ID     string `arg:"" help:"Session ID or unique prefix."`
	Unlock bool   `help:"Hand the session back to the scheduler."`
}

func (c *SessionLockCmd) Run(ctx *cli.Context) error {
	current, err := ctx.Store.GetSchedule()
	if err != nil {
		return err
	}
	session, err := cli.FindSession(current, c.ID)
	if err != nil {
		return err
	}

	lock := models.LockHard
	if c.Unlock {
		lock = models.LockNone
	}
	if err := ctx.Store.UpdateSessionLock(session.ID, lock, nil); err != nil {
		return err
	}

	if c.Unlock {
		fmt.Printf("Unlocked %s\n", session.Title)
	} else {
		fmt.Printf("Locked %s at %s\n", session.Title, session.Start.Format("Mon Jan 2 15:04"))
	}
	return nil
}

type SessionMoveCmd struct {
	ID string `arg:"" help:"Session ID or unique prefix."`
	To string `short:"t" help:"New start (\"YYYY-MM-DD HH:MM\")." required:""`
}

// Run moves a session and then recomputes so the rest of the schedule makes
// room. The moved session is user-adjusted: the scheduler keeps it unless it
// conflicts with something fixed.
func (c *SessionMoveCmd) Run(ctx *cli.Context) error {
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	current, err := ctx.Store.GetSchedule()
	if err != nil {
		return err
	}
	session, err := cli.FindSession(current, c.ID)
	if err != nil {
		return err
	}
	start, err := cli.ParseDateTime(c.To, loc, false)
	if err != nil {
		return err
	}

	window := models.TimeWindow{Start: start, End: start.Add(session.End.Sub(session.Start))}
	if err := ctx.Store.UpdateSessionLock(session.ID, models.LockUserAdjusted, &window); err != nil {
		return err
	}

	report, err := ctx.Recompute(false)
	if err != nil {
		return err
	}
	moved, err := cli.FindSession(report.Schedule, session.ID)
	if err != nil {
		fmt.Printf("Moved %s, but it no longer fits the schedule.\n", session.Title)
		return nil
	}
	if !moved.Start.Equal(start) {
		fmt.Printf("%s conflicts at %s; placed at %s instead.\n", session.Title,
			start.Format("Mon Jan 2 15:04"), moved.Start.In(loc).Format("Mon Jan 2 15:04"))
		return nil
	}
	fmt.Printf("Moved %s to %s\n", session.Title, start.Format("Mon Jan 2 15:04"))
	return nil
}
