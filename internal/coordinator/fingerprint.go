package coordinator

import (
	"sort"
	"time"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/julianstephens/studyplan/internal/models"
)

type fingerprintInput struct {
	Tasks       []models.Task
	Events      []models.FixedEvent
	Edited      []models.ScheduledSession
	Constraints models.Constraints
	Timezone    string
	Preferences models.Preferences
	Holidays    []string
}

// fingerprint hashes everything a recompute reads. The clock is truncated to the
// slot grid so that recomputes within one slot share a fingerprint. Previous
// sessions only count when the user touched them; engine-owned sessions are a
// function of the other inputs.
func fingerprint(snap snapshot) (uint64, error) {
	in := snap.input
	c := in.Constraints
	if g := c.SlotGranularityMinutes; g > 0 {
		c.Now = c.Now.Truncate(time.Duration(g) * time.Minute)
		c.HorizonStart = c.Now
	}
	c.Location = nil

	var edited []models.ScheduledSession
	for _, s := range in.Previous {
		if s.Lock != models.LockNone || s.Provenance == models.ProvenanceUser {
			edited = append(edited, s)
		}
	}

	holidays := make([]string, 0, len(snap.holidays))
	for day := range snap.holidays {
		holidays = append(holidays, day)
	}
	sort.Strings(holidays)

	return hashstructure.Hash(fingerprintInput{
		Tasks:       in.Tasks,
		Events:      in.Events,
		Edited:      edited,
		Constraints: c,
		Timezone:    snap.timezone,
		Preferences: in.Preferences,
		Holidays:    holidays,
	}, hashstructure.FormatV2, nil)
}
