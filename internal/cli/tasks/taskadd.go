package tasks

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
)

type TaskAddCmd struct {
	Title        string   `arg:"" help:"Task title."`
	Due          string   `short:"d" help:"Due date (YYYY-MM-DD or \"YYYY-MM-DD HH:MM\")." required:""`
	Category     string   `short:"c" help:"Category (exam|project|quiz|homework|reading|review|practice-test)." default:"homework"`
	Minutes      int      `short:"m" help:"Estimated minutes. Defaults to the category's base effort."`
	Course       string   `help:"Course the task belongs to."`
	Difficulty   *float64 `help:"Difficulty from 0 to 1."`
	Importance   *float64 `help:"Importance from 0 to 1."`
	MinBlock     int      `help:"Shortest session in minutes."`
	MaxBlock     int      `help:"Longest session in minutes."`
	Locked       bool     `help:"Pin the task to the window ending at its due time."`
	Repeat       string   `short:"r" help:"Repeat the task (daily|weekly|monthly|yearly)." enum:",daily,weekly,monthly,yearly" default:""`
	Interval     int      `short:"i" help:"Repeat every N periods." default:"1"`
	Until        string   `help:"Last date the task repeats (YYYY-MM-DD)."`
	Count        int      `help:"Total number of occurrences."`
	SkipWeekends bool     `help:"Move occurrences that land on a weekend to the next weekday."`
	SkipHolidays bool     `help:"Move occurrences that land on a configured holiday."`
}

func (c *TaskAddCmd) Validate() error {
	if c.Interval < 1 {
		return fmt.Errorf("interval must be at least 1")
	}
	if c.Until != "" && c.Count > 0 {
		return fmt.Errorf("--until and --count cannot be combined")
	}
	if c.Repeat == "" && (c.Until != "" || c.Count > 0 || c.SkipWeekends || c.SkipHolidays) {
		return fmt.Errorf("recurrence options require --repeat")
	}
	return nil
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	due, err := cli.ParseDateTime(c.Due, loc, true)
	if err != nil {
		return err
	}

	category := models.ParseCategory(c.Category)
	minutes := c.Minutes
	if minutes == 0 {
		minutes = category.Profile().BaseMinutes
	}

	task := models.Task{
		ID:               uuid.New().String(),
		CourseID:         c.Course,
		Title:            c.Title,
		Category:         category,
		Due:              due,
		EstimatedMinutes: minutes,
		MinBlockMinutes:  c.MinBlock,
		MaxBlockMinutes:  c.MaxBlock,
		Difficulty:       c.Difficulty,
		Importance:       c.Importance,
		Locked:           c.Locked,
	}

	if c.Repeat != "" {
		rule, err := c.rule(loc)
		if err != nil {
			return err
		}
		task.Recurrence = &rule
	}

	if err := task.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.AddTask(task); err != nil {
		return err
	}

	fmt.Printf("Added task: %s (ID: %s, due %s)\n", task.Title, task.ID, due.Format("Mon Jan 2 15:04"))
	return nil
}

func (c *TaskAddCmd) rule(loc *time.Location) (models.RecurrenceRule, error) {
	rule := models.RecurrenceRule{
		Frequency: models.Frequency(c.Repeat),
		Interval:  c.Interval,
		End:       models.RecurrenceEnd{Kind: models.EndNever},
		Skip: models.SkipPolicy{
			SkipWeekends: c.SkipWeekends,
			SkipHolidays: c.SkipHolidays,
			Direction:    models.SkipForward,
		},
	}
	if c.SkipHolidays {
		rule.Skip.HolidaySource = models.HolidaySourceList
	}
	switch {
	case c.Until != "":
		until, err := cli.ParseDateTime(c.Until, loc, true)
		if err != nil {
			return models.RecurrenceRule{}, fmt.Errorf("invalid --until: %w", err)
		}
		rule.End = models.RecurrenceEnd{Kind: models.EndUntil, Until: until}
	case c.Count > 0:
		rule.End = models.RecurrenceEnd{Kind: models.EndAfter, Count: c.Count}
	}
	return rule, nil
}
