package plans

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
)

type FeedbackCmd struct {
	Session    string  `arg:"" help:"Session ID or unique prefix."`
	Action     string  `short:"a" help:"What happened to the session (kept|rescheduled|deleted|shortened|extended)."`
	Completion float64 `short:"c" help:"Fraction of the session completed, 0 to 1." default:"1"`
}

func (c *FeedbackCmd) Validate() error {
	if c.Completion < 0 || c.Completion > 1 {
		return fmt.Errorf("completion must be between 0 and 1")
	}
	return nil
}

func (c *FeedbackCmd) Run(ctx *cli.Context) error {
	current, err := ctx.Store.GetSchedule()
	if err != nil {
		return err
	}
	session, err := cli.FindSession(current, c.Session)
	if err != nil {
		return err
	}

	action, err := c.action()
	if err != nil {
		return err
	}

	fb := models.BlockFeedback{
		ID:         uuid.New().String(),
		SessionID:  session.ID,
		TaskID:     session.TaskID,
		CourseID:   session.CourseID,
		Category:   session.Category,
		Start:      session.Start,
		End:        session.End,
		Completion: c.Completion,
		Action:     action,
		RecordedAt: ctx.Clock(),
	}
	if err := ctx.Store.AppendFeedback(fb); err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}

	fmt.Printf("Feedback recorded for %s: %s\n", session.Title, action)
	return nil
}

func (c *FeedbackCmd) action() (models.FeedbackAction, error) {
	if c.Action != "" {
		return models.ParseFeedbackAction(c.Action)
	}

	var options []huh.Option[models.FeedbackAction]
	for _, a := range models.FeedbackActions() {
		options = append(options, huh.NewOption(string(a), a))
	}
	var action models.FeedbackAction
	err := huh.NewSelect[models.FeedbackAction]().
		Title("What happened to this session?").
		Options(options...).
		Value(&action).
		Run()
	if err != nil {
		return "", err
	}
	return action, nil
}
