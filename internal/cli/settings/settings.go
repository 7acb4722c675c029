package settings

import (
	"fmt"
	"strings"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
)

type SettingsCmd struct {
	Set []string `help:"Set a value as key=value. May be repeated." placeholder:"KEY=VALUE"`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if len(c.Set) == 0 {
		values := models.SettingsToMap(settings)
		fmt.Println("Current Settings:")
		for _, key := range models.SettingKeys() {
			fmt.Printf("  %-28s %s\n", key, values[key])
		}
		return nil
	}

	for _, kv := range c.Set {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q (expected key=value)", kv)
		}
		settings, err = settings.WithValue(strings.TrimSpace(key), strings.TrimSpace(value))
		if err != nil {
			return err
		}
	}

	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}
