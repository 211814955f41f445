package tui

import (
	"strings"

	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/checklist"

	"github.com/charmbracelet/lipgloss"
)

// renderDetail draws the right-hand pane for the selected step: title, id,
// dependency status, and the markdown description.
func (m appModel) renderDetail(row stepRowItem, width, height int) string {
	it, ok := checklist.New(m.db.Items).Find(row.id)
	if !ok {
		return lipgloss.NewStyle().Width(width).Height(height).Render("")
	}

	var b strings.Builder

	title := it.Title
	if it.MachineGenerated {
		title += "  (generated)"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Width(width).Render(title))
	b.WriteString("\n")
	b.WriteString(styleMuted().Render(it.ID))
	b.WriteString("\n\n")

	if len(it.DependsOn) > 0 {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render("Depends on"))
		b.WriteString("\n")
		byID := checklist.New(m.db.Items).ByID()
		for _, depID := range it.DependsOn {
			dep, found := byID[depID]
			switch {
			case !found:
				b.WriteString(lipgloss.NewStyle().Foreground(colorError).Render("  ? " + depID + " (missing)"))
			case m.state.Completed(depID):
				b.WriteString(lipgloss.NewStyle().Foreground(colorDone).Render("  ✓ " + dep.Title))
			default:
				b.WriteString(lipgloss.NewStyle().Foreground(colorBlocked).Render("  ○ " + dep.Title))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.mode == modeRunner && len(row.blockers) > 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(colorBlocked).Bold(true).Render("Blocked"))
		b.WriteString("\n")
		for _, reason := range row.blockers {
			b.WriteString(lipgloss.NewStyle().Foreground(colorBlocked).Width(width).Render("  " + reason))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if desc := it.DescriptionText(); desc != "" {
		b.WriteString(renderMarkdown(desc, width-2))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}
