package settings

import (
	"fmt"
	"sort"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
)

type PrefsCmd struct {
	Reset      bool     `help:"Forget everything the learner has picked up."`
	Urgency    *float64 `help:"Priority weight for urgency."`
	Importance *float64 `help:"Priority weight for importance."`
	Difficulty *float64 `help:"Priority weight for difficulty."`
	Size       *float64 `help:"Priority weight for session size."`
}

func (c *PrefsCmd) Run(ctx *cli.Context) error {
	prefs, err := ctx.Store.GetPreferences()
	if err != nil {
		return fmt.Errorf("failed to get preferences: %w", err)
	}

	updated := false
	if c.Reset {
		if ok, err := ctx.Confirm("Reset learned preferences?"); err != nil || !ok {
			return err
		}
		prefs = models.DefaultPreferences()
		updated = true
	}
	for _, w := range []struct {
		value *float64
		field *float64
	}{
		{c.Urgency, &prefs.Weights.Urgency},
		{c.Importance, &prefs.Weights.Importance},
		{c.Difficulty, &prefs.Weights.Difficulty},
		{c.Size, &prefs.Weights.Size},
	} {
		if w.value == nil {
			continue
		}
		if *w.value < 0 {
			return fmt.Errorf("weights cannot be negative")
		}
		*w.field = *w.value
		updated = true
	}

	if updated {
		if err := ctx.Store.SavePreferences(prefs); err != nil {
			return fmt.Errorf("failed to save preferences: %w", err)
		}
		fmt.Println("Preferences updated successfully.")
	}

	printPrefs(prefs)
	return nil
}

func printPrefs(prefs models.Preferences) {
	w := prefs.Weights.Normalized()
	fmt.Println("Priority weights (normalized):")
	fmt.Printf("  urgency %.2f  importance %.2f  difficulty %.2f  size %.2f\n", w.Urgency, w.Importance, w.Difficulty, w.Size)

	fmt.Println("\nEnergy by hour:")
	if len(prefs.Energy) == 0 {
		fmt.Println("  (neutral, nothing learned yet)")
	}
	hours := make([]int, 0, len(prefs.Energy))
	for h := range prefs.Energy {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	for _, h := range hours {
		fmt.Printf("  %02d:00  %.2f\n", h, prefs.Energy[h])
	}

	if len(prefs.CourseBias) > 0 {
		fmt.Println("\nCourse bias:")
		courses := make([]string, 0, len(prefs.CourseBias))
		for course := range prefs.CourseBias {
			courses = append(courses, course)
		}
		sort.Strings(courses)
		for _, course := range courses {
			fmt.Printf("  %-20s %+.2f\n", course, prefs.CourseBias[course])
		}
	}
}
