package cli

import (
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/resolve"

	"github.com/spf13/cobra"
)

func newDoctorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Report checklist problems (duplicate ids, dangling deps, cycles)",
		Long: "Read-only health report. Dangling dependencies and cycles block the steps\n" +
			"involved but are never fatal; this surfaces them so they can be edited away.",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			duplicates := []string{}
			seen := map[string]int{}
			for _, it := range db.Items {
				seen[it.ID]++
			}
			for _, it := range db.Items {
				if seen[it.ID] > 1 {
					duplicates = append(duplicates, it.ID)
					seen[it.ID] = 0
				}
			}

			dangling := resolve.Dangling(db.Items)
			if dangling == nil {
				dangling = map[string][]string{}
			}
			cycles := resolve.Cycles(db.Items)
			if cycles == nil {
				cycles = [][]string{}
			}

			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"items":        len(db.Items),
				"duplicateIds": duplicates,
				"danglingDeps": dangling,
				"cycles":       cycles,
				"healthy":      len(duplicates) == 0 && len(dangling) == 0 && len(cycles) == 0,
			}})
		},
	}
}
