package cli

import (
	"strings"
	"time"

	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/checklist"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/ids"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/model"

	"github.com/spf13/cobra"
)

func newStepsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Checklist step commands (Builder)",
	}
	cmd.AddCommand(newStepsListCmd(app))
	cmd.AddCommand(newStepsShowCmd(app))
	cmd.AddCommand(newStepsAddCmd(app))
	cmd.AddCommand(newStepsSetTitleCmd(app))
	cmd.AddCommand(newStepsSetDescriptionCmd(app))
	cmd.AddCommand(newStepsRemoveCmd(app))
	cmd.AddCommand(newStepsReorderCmd(app))
	return cmd
}

func newStepsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List steps in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			items := db.Items
			if items == nil {
				items = []model.ChecklistItem{}
			}
			return writeOut(cmd, app, map[string]any{"data": items})
		},
	}
}

func newStepsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <step-id>",
		Short: "Show a single step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			cl := checklist.New(db.Items)
			it, ok := cl.Find(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("step", args[0]))
			}
			return writeOut(cmd, app, map[string]any{"data": it})
		},
	}
}

func newStepsAddCmd(app *App) *cobra.Command {
	var title string
	var description string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a step at the end of the checklist",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			cl := checklist.New(db.Items)

			it := model.ChecklistItem{
				ID:        ids.NewItemID(),
				Title:     strings.TrimSpace(title),
				DependsOn: []string{},
				CreatedAt: time.Now().UTC(),
			}
			if it.Title == "" {
				it.Title = "Untitled step"
			}
			if cmd.Flags().Changed("description") {
				d := description
				it.Description = &d
			}

			if err := cl.Append(it); err != nil {
				return writeErr(cmd, err)
			}
			db.Items = cl.Items()
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": it})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Step title")
	cmd.Flags().StringVar(&description, "description", "", "Optional longer description")
	return cmd
}

func newStepsSetTitleCmd(app *App) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "set-title <step-id>",
		Short: "Change a step's title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return patchStep(cmd, app, args[0], checklist.Patch{Title: &title})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newStepsSetDescriptionCmd(app *App) *cobra.Command {
	var description string
	var clear bool

	cmd := &cobra.Command{
		Use:   "set-description <step-id>",
		Short: "Change or clear a step's description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := checklist.Patch{}
			if clear {
				p.ClearDesc = true
			} else {
				p.Description = &description
			}
			return patchStep(cmd, app, args[0], p)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the description entirely")
	return cmd
}

func newStepsRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <step-id>",
		Short: "Delete a step (other steps' dependencies on it are left as-is)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			cl := checklist.New(db.Items)
			if err := cl.Remove(args[0]); err != nil {
				return writeErr(cmd, errNotFound("step", args[0]))
			}
			db.Items = cl.Items()
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": args[0]}})
		},
	}
}

func newStepsReorderCmd(app *App) *cobra.Command {
	var to int

	cmd := &cobra.Command{
		Use:   "reorder <step-id>",
		Short: "Move a step to a new position (0-based; display order only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			cl := checklist.New(db.Items)
			if err := cl.Reorder(args[0], to); err != nil {
				return writeErr(cmd, errNotFound("step", args[0]))
			}
			db.Items = cl.Items()
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": db.Items})
		},
	}
	cmd.Flags().IntVar(&to, "to", 0, "Target index")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func patchStep(cmd *cobra.Command, app *App, id string, p checklist.Patch) error {
	db, s, err := loadDB(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	cl := checklist.New(db.Items)
	if err := cl.Update(id, p); err != nil {
		return writeErr(cmd, errNotFound("step", id))
	}
	db.Items = cl.Items()
	if err := s.Save(db); err != nil {
		return writeErr(cmd, err)
	}
	it, _ := cl.Find(id)
	return writeOut(cmd, app, map[string]any{"data": it})
}
