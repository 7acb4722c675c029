package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true).
			MarginTop(1)

	lockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	movedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderSchedule lays out sessions grouped by local day.
func RenderSchedule(result models.ScheduleResult, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Study schedule: %d session(s), %d min", len(result.Sessions), result.ScheduledMinutes())))
	b.WriteString("\n")

	if len(result.Sessions) == 0 {
		b.WriteString(dimStyle.Render("  Nothing scheduled"))
		b.WriteString("\n")
	}

	var day string
	for _, s := range result.Sessions {
		start, end := s.Start.In(loc), s.End.In(loc)
		if d := start.Format(constants.DateFormat); d != day {
			day = d
			b.WriteString(dayStyle.Render(start.Format("Mon Jan 2")))
			b.WriteString("\n")
		}
		line := fmt.Sprintf("  %s–%s  %s", start.Format(constants.TimeFormat), end.Format(constants.TimeFormat), s.Title)
		if s.SessionCount > 1 {
			line += fmt.Sprintf(" (%d/%d)", s.SessionIndex+1, s.SessionCount)
		}
		b.WriteString(line)
		b.WriteString("  " + dimStyle.Render(ShortID(s.ID)))
		if s.Lock != models.LockNone {
			b.WriteString("  " + lockStyle.Render("["+string(s.Lock)+"]"))
		}
		if strings.HasPrefix(s.Provenance, constants.AutoReschedulePrefix) {
			b.WriteString("  " + movedStyle.Render(s.Provenance))
		}
		b.WriteString("\n")
	}

	if len(result.Overflow) > 0 {
		b.WriteString("\n")
		b.WriteString(RenderOverflow(result.Overflow, loc))
	}
	return b.String()
}

// RenderOverflow lists the sub-sessions that could not be placed.
func RenderOverflow(items []models.OverflowItem, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(warningStyle.Render(fmt.Sprintf("Could not schedule %d session(s):", len(items))))
	b.WriteString("\n")
	for _, o := range items {
		fmt.Fprintf(&b, "  %s (%d/%d, %d min, due %s): %s\n",
			o.Title, o.SessionIndex+1, o.SessionCount, o.Minutes,
			o.Due.In(loc).Format(constants.DateTimeFormat), o.Reason)
	}
	return b.String()
}

func RenderTasks(tasks []models.Task, loc *time.Location) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("ID", "TITLE", "CATEGORY", "DUE", "MIN", "STATUS")
	for _, task := range tasks {
		status := "open"
		switch {
		case task.DeletedAt != nil:
			status = "deleted"
		case task.Completed:
			status = "done"
		case task.Locked:
			status = "locked"
		}
		if task.IsRecurring() {
			status += ", " + string(task.Recurrence.Frequency)
		}
		t.Row(task.ID, task.Title, string(task.Category),
			task.Due.In(loc).Format(constants.DateTimeFormat),
			fmt.Sprintf("%d", task.EstimatedMinutes), status)
	}
	return t.String()
}

func RenderEvents(events []models.FixedEvent, loc *time.Location) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("ID", "TITLE", "START", "END", "SOURCE")
	for _, e := range events {
		t.Row(e.ID, e.Title,
			e.Start.In(loc).Format(constants.DateTimeFormat),
			e.End.In(loc).Format(constants.DateTimeFormat),
			string(e.Source))
	}
	return t.String()
}
