package cli

import (
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/checklist"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/generate"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/sanitize"

	"github.com/spf13/cobra"
)

func newGenerateCmd(app *App) *cobra.Command {
	var prompt string
	var apply bool
	var maxItems int
	var modelName string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draft candidate steps from a prompt (requires an Anthropic API key)",
		Long: "Drafts candidate step titles from a free-text goal. By default the\n" +
			"candidates are only printed; pass --apply to append them to the checklist\n" +
			"as machine-generated steps with no dependencies. Needs\n" +
			"STEPWISE_ANTHROPIC_API_KEY (or ANTHROPIC_API_KEY) in the environment.",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			cl := checklist.New(db.Items)

			opts := []generate.ClientOption{}
			if maxItems > 0 {
				opts = append(opts, generate.WithMaxItems(maxItems))
			}
			if modelName != "" {
				opts = append(opts, generate.WithModel(modelName))
			}
			client, err := generate.NewAnthropicClient(opts...)
			if err != nil {
				return writeErr(cmd, err)
			}

			titles, err := client.Generate(cmd.Context(), prompt, cl.Titles())
			if err != nil {
				return writeErr(cmd, err)
			}

			if !apply {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{
					"candidates": titles,
					"applied":    false,
				}})
			}

			// Generated content is untrusted; run it through the sanitizer
			// like any import before it touches the checklist.
			raw := make([]any, 0, len(titles))
			for _, t := range titles {
				raw = append(raw, map[string]any{"title": t, "aiGenerated": true})
			}
			added, _ := sanitize.Sanitize(raw)
			for _, it := range added {
				if err := cl.Append(it); err != nil {
					return writeErr(cmd, err)
				}
			}
			db.Items = cl.Items()
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"added":   added,
				"applied": true,
			}})
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "", "Goal to draft steps for")
	cmd.Flags().BoolVar(&apply, "apply", false, "Append drafted steps to the checklist")
	cmd.Flags().IntVar(&maxItems, "max", 0, "Maximum candidates to draft (default 10)")
	cmd.Flags().StringVar(&modelName, "model", "", "Override the drafting model")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}
