package plans

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/julianstephens/studyplan/internal/cli"
)

type ScheduleCmd struct {
	JSON bool `help:"Print the schedule as JSON." name:"json"`
	Log  bool `help:"Show the placement log."`
}

func (c *ScheduleCmd) Run(ctx *cli.Context) error {
	result, err := ctx.Store.GetSchedule()
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.GeneratedAt.IsZero() {
		fmt.Println("No schedule yet. Run 'studyplan plan' to create one.")
		return nil
	}

	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	fmt.Println(cli.RenderSchedule(result, loc))
	fmt.Printf("Generated %s\n", result.GeneratedAt.In(loc).Format("Mon Jan 2 15:04"))

	if c.Log {
		fmt.Println()
		for _, line := range result.Log {
			fmt.Println("  " + line)
		}
	}
	return nil
}
