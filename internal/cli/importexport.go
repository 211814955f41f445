package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/checklist"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/model"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/sanitize"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the checklist as a JSON array of steps",
		Long: "Writes the checklist (not run progress) as a JSON array suitable for\n" +
			"re-importing with 'stepwise import'.",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			items := db.Items
			if items == nil {
				items = []model.ChecklistItem{}
			}
			b, err := json.MarshalIndent(items, "", "  ")
			if err != nil {
				return writeErr(cmd, err)
			}
			b = append(b, '\n')

			if outPath != "" {
				if err := os.WriteFile(outPath, b, 0o644); err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{
					"file":  outPath,
					"items": len(items),
				}})
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to file instead of stdout")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a checklist from a JSON array, replacing the current one",
		Long: "Reads a JSON array of steps, repairs malformed entries, and replaces the\n" +
			"current checklist. An import that yields zero usable steps is refused, and\n" +
			"replacing a non-empty checklist requires --force. Repairs are reported as\n" +
			"diagnostics; the import still succeeds.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			raw, err := sanitize.DecodeArray(b)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("%s: %w", args[0], err))
			}
			items, diags := sanitize.Sanitize(raw)
			if len(items) == 0 {
				return writeErr(cmd, errors.New("import yielded zero usable steps; checklist left untouched"))
			}

			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if len(db.Items) > 0 && !force {
				return writeErr(cmd, fmt.Errorf("checklist has %d steps; pass --force to replace them", len(db.Items)))
			}

			cl := checklist.New(db.Items)
			if err := cl.ReplaceAll(items); err != nil {
				return writeErr(cmd, err)
			}
			db.Items = cl.Items()
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			if diags == nil {
				diags = []string{}
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"imported":    len(items),
				"diagnostics": diags,
			}})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Replace a non-empty checklist")
	return cmd
}
