package models

import "github.com/julianstephens/studyplan/internal/constants"

// Weights are the priority scorer coefficients.
type Weights struct {
	Urgency    float64 `json:"urgency"`
	Importance float64 `json:"importance"`
	Difficulty float64 `json:"difficulty"`
	Size       float64 `json:"size"`
}

func DefaultWeights() Weights {
	return Weights{
		Urgency:    constants.DefaultWeightUrgency,
		Importance: constants.DefaultWeightImportance,
		Difficulty: constants.DefaultWeightDifficulty,
		Size:       constants.DefaultWeightSize,
	}
}

// Normalized scales the weights to sum to 1. Negative weights count as zero, and an
// all-zero set falls back to the defaults.
func (w Weights) Normalized() Weights {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	}
	w = Weights{clamp(w.Urgency), clamp(w.Importance), clamp(w.Difficulty), clamp(w.Size)}
	sum := w.Urgency + w.Importance + w.Difficulty + w.Size
	if sum <= 0 {
		return DefaultWeights()
	}
	return Weights{w.Urgency / sum, w.Importance / sum, w.Difficulty / sum, w.Size / sum}
}

// EnergyProfile maps hour of day (0-23) to a preference weight.
type EnergyProfile map[int]float64

// Weight returns the hour's weight, or the neutral default when the hour is unset.
func (e EnergyProfile) Weight(hour int) float64 {
	if w, ok := e[hour]; ok {
		return w
	}
	return constants.DefaultEnergyWeight
}

func (e EnergyProfile) Clone() EnergyProfile {
	out := make(EnergyProfile, len(e))
	for h, w := range e {
		out[h] = w
	}
	return out
}

type Preferences struct {
	Weights    Weights            `json:"weights"`
	Energy     EnergyProfile      `json:"energy"`
	CourseBias map[string]float64 `json:"course_bias"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Weights:    DefaultWeights(),
		Energy:     EnergyProfile{},
		CourseBias: map[string]float64{},
	}
}

// Clone returns a deep copy so learners and schedulers never share maps.
func (p Preferences) Clone() Preferences {
	bias := make(map[string]float64, len(p.CourseBias))
	for k, v := range p.CourseBias {
		bias[k] = v
	}
	return Preferences{Weights: p.Weights, Energy: p.Energy.Clone(), CourseBias: bias}
}

func (p Preferences) Bias(courseID string) float64 {
	if courseID == "" {
		return 0
	}
	return p.CourseBias[courseID]
}
