// Package decomposer splits a task's effort into ordered sub-sessions.
package decomposer

import (
	"math"
	"time"

	"github.com/julianstephens/studyplan/internal/models"
)

// Decompose splits task into sub-sessions no longer than min(task max block, blockCap).
// A blockCap of zero means no per-block cap. Completed tasks yield nothing, and a
// locked task yields a single sub-session pinned to end at its due time.
func Decompose(task models.Task, blockCap int) []models.SubSession {
	if task.Completed {
		return nil
	}
	if task.Locked {
		return []models.SubSession{pinned(task)}
	}

	profile := task.Profile()
	minutes := task.EstimatedMinutes
	if profile.BaseMinutes > minutes {
		minutes = profile.BaseMinutes
	}
	if minutes <= 0 {
		return nil
	}

	maxBlock := task.MaxBlock()
	if blockCap > 0 && blockCap < maxBlock {
		maxBlock = blockCap
	}
	minBlock := task.MinBlock()
	if minBlock > maxBlock {
		minBlock = maxBlock
	}

	count := int(math.Round(float64(minutes) / float64(profile.Bias.SuggestedMinutes())))
	if count < profile.MinSessions {
		count = profile.MinSessions
	}
	if count < 1 {
		count = 1
	}
	if ceilDiv(minutes, count) > maxBlock {
		count = ceilDiv(minutes, maxBlock)
	}

	size := clamp(ceilDiv(minutes, count), minBlock, maxBlock)
	var sizes []int
	for remaining := minutes; remaining > 0 && len(sizes) < count; {
		s := size
		if remaining < s {
			s = remaining
		}
		sizes = append(sizes, s)
		remaining -= s
	}

	n := len(sizes)
	windowStart := startOfDay(task.Due).AddDate(0, 0, -profile.SpreadDays)
	out := make([]models.SubSession, n)
	for i, s := range sizes {
		sub := base(task, i, n, s, minBlock, maxBlock)
		sub.NotBefore = windowStart.AddDate(0, 0, i*profile.SpreadDays/n)
		out[i] = sub
	}
	return out
}

// DecomposeAll decomposes every task in order.
func DecomposeAll(tasks []models.Task, blockCap int) []models.SubSession {
	var out []models.SubSession
	for _, t := range tasks {
		out = append(out, Decompose(t, blockCap)...)
	}
	return out
}

func pinned(task models.Task) models.SubSession {
	minutes := task.EstimatedMinutes
	if minutes <= 0 {
		minutes = task.Profile().BaseMinutes
	}
	sub := base(task, 0, 1, minutes, minutes, minutes)
	sub.NotBefore = task.Due.Add(-time.Duration(minutes) * time.Minute)
	sub.Pinned = &models.TimeWindow{Start: sub.NotBefore, End: task.Due}
	return sub
}

func base(task models.Task, index, count, minutes, minBlock, maxBlock int) models.SubSession {
	return models.SubSession{
		TaskID:     task.ID,
		CourseID:   task.CourseID,
		Title:      task.Title,
		Category:   task.Category,
		Index:      index,
		Count:      count,
		Minutes:    minutes,
		MinBlock:   minBlock,
		MaxBlock:   maxBlock,
		Due:        task.Due,
		Difficulty: task.DifficultyOrDefault(),
		Importance: task.ImportanceOrDefault(),
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
