package cli

import (
	"errors"

	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/checklist"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/resolve"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/run"

	"github.com/spf13/cobra"
)

func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run-tracking commands (Runner)",
	}
	cmd.AddCommand(newRunStatusCmd(app))
	cmd.AddCommand(newRunToggleCmd(app))
	cmd.AddCommand(newRunCompleteVisibleCmd(app))
	cmd.AddCommand(newRunResetCmd(app))
	return cmd
}

type runStepView struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Completed bool     `json:"completed"`
	Blockers  []string `json:"blockers,omitempty"`
}

func newRunStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show actionable, blocked, and completed steps for the current run",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			cl := checklist.New(db.Items)
			state := run.FromSnapshot(db.Run)
			byID := cl.ByID()

			actionable := []runStepView{}
			for _, it := range resolve.Actionable(db.Items, state) {
				actionable = append(actionable, runStepView{ID: it.ID, Title: it.Title, Completed: state.Completed(it.ID)})
			}
			blocked := []runStepView{}
			for _, it := range resolve.Blocked(db.Items, state) {
				blocked = append(blocked, runStepView{
					ID:       it.ID,
					Title:    it.Title,
					Blockers: resolve.Blockers(it, byID, state),
				})
			}

			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"actionable": actionable,
				"blocked":    blocked,
				"completed":  state.CompletedCount(),
				"total":      cl.Len(),
			}})
		},
	}
}

func newRunToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <step-id>",
		Short: "Flip completion for a step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			cl := checklist.New(db.Items)
			if _, ok := cl.Find(args[0]); !ok {
				return writeErr(cmd, errNotFound("step", args[0]))
			}

			state := run.FromSnapshot(db.Run)
			state.Toggle(args[0])
			db.Run = state.Snapshot()
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"id":        args[0],
				"completed": state.Completed(args[0]),
			}})
		},
	}
}

func newRunCompleteVisibleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "complete-visible",
		Short: "Complete every currently actionable step",
		Long: "Marks exactly the current actionable set as completed. Blocked steps are\n" +
			"never touched, so nothing completes before its prerequisites.",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			state := run.FromSnapshot(db.Run)

			visible := resolve.Actionable(db.Items, state)
			ids := make([]string, 0, len(visible))
			for _, it := range visible {
				ids = append(ids, it.ID)
			}
			state.SetMany(ids)

			db.Run = state.Snapshot()
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"completed": ids,
			}})
		},
	}
}

func newRunResetCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear all run progress (checklist structure is untouched)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			state := run.FromSnapshot(db.Run)
			if state.CompletedCount() > 0 && !force {
				return writeErr(cmd, errors.New("run has progress; pass --force to clear it"))
			}

			state.Reset()
			db.Run = state.Snapshot()
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"reset": true}})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Clear progress without confirmation")
	return cmd
}
