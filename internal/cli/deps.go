package cli

import (
	"strings"

	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/checklist"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/resolve"

	"github.com/spf13/cobra"
)

func newDepsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Dependency commands",
	}
	cmd.AddCommand(newDepsSetCmd(app))
	cmd.AddCommand(newDepsClearCmd(app))
	cmd.AddCommand(newDepsListCmd(app))
	cmd.AddCommand(newDepsCyclesCmd(app))
	return cmd
}

func newDepsSetCmd(app *App) *cobra.Command {
	var on string

	cmd := &cobra.Command{
		Use:   "set <step-id>",
		Short: "Set a step's dependencies (comma-separated step ids, AND semantics)",
		Long: strings.TrimSpace(`
Set the full dependsOn list for a step. The step becomes actionable in a run
only once every listed step is completed. Self-references and duplicates are
dropped; references to unknown ids are kept (and block until resolved).
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := []string{}
			for _, d := range strings.Split(on, ",") {
				if d = strings.TrimSpace(d); d != "" {
					deps = append(deps, d)
				}
			}
			return patchStep(cmd, app, args[0], checklist.Patch{DependsOn: &deps})
		},
	}
	cmd.Flags().StringVar(&on, "on", "", "Comma-separated step ids this step depends on")
	_ = cmd.MarkFlagRequired("on")
	return cmd
}

func newDepsClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <step-id>",
		Short: "Remove all of a step's dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			empty := []string{}
			return patchStep(cmd, app, args[0], checklist.Patch{DependsOn: &empty})
		},
	}
}

func newDepsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list [step-id]",
		Short: "List dependencies (optionally for a single step)",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			type depEntry struct {
				ID        string   `json:"id"`
				Title     string   `json:"title"`
				DependsOn []string `json:"dependsOn"`
			}

			out := []depEntry{}
			for _, it := range db.Items {
				if len(args) == 1 && it.ID != args[0] {
					continue
				}
				if len(it.DependsOn) == 0 && len(args) == 0 {
					continue
				}
				out = append(out, depEntry{ID: it.ID, Title: it.Title, DependsOn: it.DependsOn})
			}
			if len(args) == 1 && len(out) == 0 {
				return writeErr(cmd, errNotFound("step", args[0]))
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func newDepsCyclesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cycles",
		Short: "Detect dependency cycles (report-only; cycles block but never crash)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			cycles := resolve.Cycles(db.Items)
			if cycles == nil {
				cycles = [][]string{}
			}
			return writeOut(cmd, app, map[string]any{"data": cycles})
		},
	}
}
