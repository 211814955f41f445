package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// stepRowItem is a single checklist step as shown in either mode's list.
// The runner fields are zero in builder mode.
type stepRowItem struct {
	id        string
	title     string
	generated bool

	completed bool
	blocked   bool
	blockers  []string
}

func (i stepRowItem) FilterValue() string { return strings.TrimSpace(i.title) }

type stepDelegate struct {
	// Runner mode shows checkboxes and dims blocked rows; builder shows
	// plain titles.
	runner bool
}

func (d stepDelegate) Height() int                             { return 1 }
func (d stepDelegate) Spacing() int                            { return 0 }
func (d stepDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d stepDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		fmt.Fprint(w, "")
		return
	}

	row, ok := item.(stepRowItem)
	if !ok {
		fmt.Fprint(w, fmt.Sprint(item))
		return
	}

	line := row.title
	if d.runner {
		box := "[ ]"
		if row.completed {
			box = "[x]"
		}
		line = box + " " + line
		if row.blocked && len(row.blockers) > 0 {
			line += "  (" + row.blockers[0] + ")"
		}
	} else if row.generated {
		line += "  *"
	}

	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Cut(line, 0, contentW)
	}

	style := lipgloss.NewStyle()
	switch {
	case index == m.Index():
		style = style.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	case d.runner && row.blocked:
		style = faintIfDark(style.Foreground(colorBlocked))
	case d.runner && row.completed:
		style = style.Foreground(colorDone)
	}

	fmt.Fprint(w, style.Render(line))
}

func newStepList(items []list.Item, runner bool) list.Model {
	l := list.New(items, stepDelegate{runner: runner}, 0, 0)
	// We render our own header + footer, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("step", "steps")
	// Bubble list defaults to quitting on ESC; here ESC is "cancel".
	l.KeyMap.Quit.SetKeys("ctrl+c")
	// Emacs-style navigation aliases.
	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	cursorUpKeys = append(cursorUpKeys, "ctrl+p")
	l.KeyMap.CursorUp.SetKeys(cursorUpKeys...)

	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	cursorDownKeys = append(cursorDownKeys, "ctrl+n")
	l.KeyMap.CursorDown.SetKeys(cursorDownKeys...)
	return l
}

func selectStepByID(l *list.Model, id string) {
	for i, it := range l.Items() {
		if row, ok := it.(stepRowItem); ok && row.id == id {
			l.Select(i)
			return
		}
	}
}
