package constants

const (
	// Feedback learner constants:
	// - LearnerStep is added to (or subtracted from) the hour's energy weight per feedback.
	// - LearnerFloor and LearnerCeiling bound every learned energy weight.
	// - Completion at or above KeptCompletionThreshold counts as a positive signal for
	//   kept or extended blocks; completion below LowCompletionThreshold is always negative.
	DefaultLearnerStep      = 0.1
	DefaultLearnerFloor     = 0.1
	DefaultLearnerCeiling   = 1.0
	KeptCompletionThreshold = 0.8
	LowCompletionThreshold  = 0.4

	// Course bias moves at a fraction of the energy step and stays within +/- MaxCourseBias
	CourseBiasStepDivisor = 5.0
	MaxCourseBias         = 0.2
)

func init() {
	// Runtime validation: the learner bounds must describe a non-empty range
	if DefaultLearnerFloor >= DefaultLearnerCeiling {
		panic("DefaultLearnerFloor must be below DefaultLearnerCeiling")
	}
}
