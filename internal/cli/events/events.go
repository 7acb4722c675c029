package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
)

type EventAddCmd struct {
	Title  string `arg:"" help:"Event title."`
	Start  string `short:"s" help:"Start (\"YYYY-MM-DD HH:MM\")." required:""`
	End    string `short:"e" help:"End (\"YYYY-MM-DD HH:MM\")." required:""`
	Source string `help:"Where the event came from (calendar|class|exam|external)." enum:"calendar,class,exam,external" default:"calendar"`
	Weeks  int    `short:"w" help:"Repeat the event weekly for this many weeks." default:"1"`
}

func (c *EventAddCmd) Run(ctx *cli.Context) error {
	if c.Weeks < 1 {
		return fmt.Errorf("weeks must be at least 1")
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	start, err := cli.ParseDateTime(c.Start, loc, false)
	if err != nil {
		return err
	}
	end, err := cli.ParseDateTime(c.End, loc, false)
	if err != nil {
		return err
	}
	if !end.After(start) {
		return fmt.Errorf("event must end after it starts")
	}

	source := models.EventSource(c.Source)
	if source == "" {
		source = models.SourceCalendar
	}
	for week := 0; week < c.Weeks; week++ {
		event := models.FixedEvent{
			ID:     uuid.New().String(),
			Title:  c.Title,
			Start:  start.AddDate(0, 0, 7*week),
			End:    end.AddDate(0, 0, 7*week),
			Source: source,
		}
		if err := ctx.Store.AddEvent(event); err != nil {
			return err
		}
		fmt.Printf("Added event: %s (ID: %s, %s)\n", event.Title, event.ID, event.Start.Format("Mon Jan 2 15:04"))
	}
	return nil
}

type EventListCmd struct {
	Days int `help:"How many days ahead to list." default:"14"`
}

func (c *EventListCmd) Run(ctx *cli.Context) error {
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	now := ctx.Clock().In(loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	events, err := ctx.Store.GetEvents(from, from.AddDate(0, 0, c.Days))
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No upcoming events.")
		return nil
	}
	fmt.Println(cli.RenderEvents(events, loc))
	return nil
}

type EventDeleteCmd struct {
	ID string `arg:"" help:"Event ID."`
}

func (c *EventDeleteCmd) Run(ctx *cli.Context) error {
	event, err := ctx.Store.GetEvent(c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteEvent(c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted event: %s\n", event.Title)
	return nil
}
