package scorer

import (
	"sort"
	"time"

	"github.com/julianstephens/studyplan/internal/models"
)

// Scorer ranks sub-sessions by a weighted mix of urgency, importance,
// difficulty and size, plus the learned bias of the sub-session's course.
type Scorer struct {
	weights models.Weights
	prefs   models.Preferences
	now     time.Time
}

func New(prefs models.Preferences, now time.Time) *Scorer {
	return &Scorer{
		weights: prefs.Weights.Normalized(),
		prefs:   prefs,
		now:     now,
	}
}

// Urgency is 1/max(1, days until due). Overdue work scores 1.
func Urgency(due, now time.Time) float64 {
	days := due.Sub(now).Hours() / 24
	if days < 1 {
		return 1
	}
	return 1 / days
}

// SizeFactor is the sub-session length relative to its max block, within [0, 1].
func SizeFactor(sub models.SubSession) float64 {
	if sub.MaxBlock <= 0 {
		return 0
	}
	f := float64(sub.Minutes) / float64(sub.MaxBlock)
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}

func (s *Scorer) Score(sub models.SubSession) float64 {
	w := s.weights
	return w.Urgency*Urgency(sub.Due, s.now) +
		w.Importance*sub.Importance +
		w.Difficulty*sub.Difficulty +
		w.Size*SizeFactor(sub) +
		s.prefs.Bias(sub.CourseID)
}

// Rank scores every sub-session and returns them highest priority first.
// Ties go to the earlier due date, then the lower session index, then the task id.
func (s *Scorer) Rank(subs []models.SubSession) []models.SubSession {
	ranked := make([]models.SubSession, len(subs))
	copy(ranked, subs)
	for i := range ranked {
		ranked[i].Score = s.Score(ranked[i])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Due.Equal(b.Due) {
			return a.Due.Before(b.Due)
		}
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return a.TaskID < b.TaskID
	})
	return ranked
}
