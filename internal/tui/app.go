package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/checklist"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/generate"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/ids"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/model"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/resolve"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/run"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/sanitize"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/store"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type mode int

const (
	modeBuilder mode = iota
	modeRunner
)

func (m mode) String() string {
	if m == modeRunner {
		return "runner"
	}
	return "builder"
}

type editKind int

const (
	editNone editKind = iota
	editAdd
	editTitle
	editDescription
	editDeps
	editGenerate
	editImportPath
	editExportPath
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDelete
	confirmReset
	confirmImport
)

// genResultMsg carries one generation response. seq guards against stale
// responses: only the message matching the latest request is applied.
type genResultMsg struct {
	seq    int
	titles []string
	err    error
}

type appModel struct {
	store store.Store
	db    *store.DB
	state *run.State

	width  int
	height int

	mode mode

	builderList list.Model
	runnerList  list.Model

	input      textinput.Model
	edit       editKind
	editStepID string

	confirm       confirmKind
	confirmFocus  confirmModalFocus
	confirmStepID string

	// Import waiting on the replace confirmation.
	pendingImport      []model.ChecklistItem
	pendingImportDiags []string

	status string

	generator  generate.Generator
	genSeq     int
	genPending bool
}

func newAppModel(s store.Store, db *store.DB) appModel {
	m := appModel{
		store: s,
		db:    db,
		state: run.FromSnapshot(db.Run),
		mode:  modeBuilder,
	}

	m.builderList = newStepList([]list.Item{}, false)
	m.runnerList = newStepList([]list.Item{}, true)

	m.input = textinput.New()
	m.input.CharLimit = 500

	ui, err := s.LoadUIState()
	if err == nil && ui.Mode == "runner" {
		m.mode = modeRunner
	}
	m.refreshLists()
	if err == nil && ui.SelectedItemID != "" {
		selectStepByID(&m.builderList, ui.SelectedItemID)
		selectStepByID(&m.runnerList, ui.SelectedItemID)
	}
	return m
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case genResultMsg:
		if msg.seq != m.genSeq {
			// Stale response from a superseded request; drop it.
			return m, nil
		}
		m.genPending = false
		if msg.err != nil {
			m.status = "generate failed: " + msg.err.Error()
			return m, nil
		}
		// Generated content is untrusted; sanitize it like an import before
		// it touches the checklist.
		raw := make([]any, 0, len(msg.titles))
		for _, t := range msg.titles {
			raw = append(raw, map[string]any{"title": t, "aiGenerated": true})
		}
		added, _ := sanitize.Sanitize(raw)
		cl := checklist.New(m.db.Items)
		for _, it := range added {
			_ = cl.Append(it)
		}
		m.db.Items = cl.Items()
		m.save()
		m.refreshLists()
		m.status = fmt.Sprintf("added %d generated steps", len(added))
		return m, nil

	case tea.KeyMsg:
		if m.confirm != confirmNone {
			return m.updateConfirm(msg)
		}
		if m.edit != editNone {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}

	return m.updateActiveList(msg)
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g", "n":
		m.confirm = confirmNone
		m.pendingImport = nil
		m.pendingImportDiags = nil
		return m, nil
	case "tab", "left", "right":
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
		return m, nil
	case "enter", "y":
		confirmed := msg.String() == "y" || m.confirmFocus == confirmFocusConfirm
		kind := m.confirm
		m.confirm = confirmNone
		if !confirmed {
			m.pendingImport = nil
			m.pendingImportDiags = nil
			return m, nil
		}
		switch kind {
		case confirmDelete:
			cl := checklist.New(m.db.Items)
			if err := cl.Remove(m.confirmStepID); err == nil {
				m.db.Items = cl.Items()
				m.save()
				m.refreshLists()
				m.status = "step removed"
			}
		case confirmReset:
			m.state.Reset()
			m.save()
			m.refreshLists()
			m.status = "run progress cleared"
		case confirmImport:
			m.applyImport()
		}
		return m, nil
	}
	return m, nil
}

func (m appModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.edit = editNone
		m.input.Blur()
		return m, nil
	case "enter":
		kind := m.edit
		value := strings.TrimSpace(m.input.Value())
		m.edit = editNone
		m.input.Blur()
		return m.commitInput(kind, value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) commitInput(kind editKind, value string) (tea.Model, tea.Cmd) {
	switch kind {
	case editAdd:
		if value == "" {
			return m, nil
		}
		cl := checklist.New(m.db.Items)
		it := model.ChecklistItem{
			ID:        ids.NewItemID(),
			Title:     value,
			DependsOn: []string{},
			CreatedAt: time.Now().UTC(),
		}
		if err := cl.Append(it); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.db.Items = cl.Items()
		m.save()
		m.refreshLists()
		selectStepByID(&m.builderList, it.ID)

	case editTitle:
		cl := checklist.New(m.db.Items)
		if err := cl.Update(m.editStepID, checklist.Patch{Title: &value}); err == nil {
			m.db.Items = cl.Items()
			m.save()
			m.refreshLists()
		}

	case editDescription:
		cl := checklist.New(m.db.Items)
		p := checklist.Patch{}
		if value == "" {
			p.ClearDesc = true
		} else {
			p.Description = &value
		}
		if err := cl.Update(m.editStepID, p); err == nil {
			m.db.Items = cl.Items()
			m.save()
			m.refreshLists()
		}

	case editDeps:
		deps := []string{}
		for _, d := range strings.Split(value, ",") {
			if d = strings.TrimSpace(d); d != "" {
				deps = append(deps, d)
			}
		}
		cl := checklist.New(m.db.Items)
		if err := cl.Update(m.editStepID, checklist.Patch{DependsOn: &deps}); err == nil {
			m.db.Items = cl.Items()
			m.save()
			m.refreshLists()
		}

	case editGenerate:
		if value == "" {
			return m, nil
		}
		return m, m.startGenerate(value)

	case editImportPath:
		if value != "" {
			m.importFromFile(value)
		}

	case editExportPath:
		if value != "" {
			m.exportToFile(value)
		}
	}
	return m, nil
}

func (m appModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.saveUIState()
		return m, tea.Quit
	}

	// While the list is filtering, every key belongs to the filter input.
	filtering := m.builderList.FilterState() == list.Filtering
	if m.mode == modeRunner {
		filtering = m.runnerList.FilterState() == list.Filtering
	}
	if filtering {
		return m.updateActiveList(msg)
	}

	switch msg.String() {
	case "q":
		m.saveUIState()
		return m, tea.Quit
	case "tab":
		if m.mode == modeBuilder {
			m.mode = modeRunner
		} else {
			m.mode = modeBuilder
		}
		m.refreshLists()
		m.saveUIState()
		return m, nil
	}

	if m.mode == modeBuilder {
		return m.updateBuilderKeys(msg)
	}
	return m.updateRunnerKeys(msg)
}

func (m appModel) updateBuilderKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		return m.openInput(editAdd, "New step title", ""), nil
	case "e", "enter":
		if row, ok := m.selectedRow(); ok {
			return m.openInputFor(editTitle, "Title", row.id, row.title), nil
		}
	case "d":
		if row, ok := m.selectedRow(); ok {
			cur := ""
			if it, found := checklist.New(m.db.Items).Find(row.id); found {
				cur = it.DescriptionText()
			}
			return m.openInputFor(editDescription, "Description (markdown; empty clears)", row.id, cur), nil
		}
	case "p":
		if row, ok := m.selectedRow(); ok {
			cur := ""
			if it, found := checklist.New(m.db.Items).Find(row.id); found {
				cur = strings.Join(it.DependsOn, ", ")
			}
			return m.openInputFor(editDeps, "Depends on (comma-separated step ids)", row.id, cur), nil
		}
	case "J":
		m.moveSelected(+1)
		return m, nil
	case "K":
		m.moveSelected(-1)
		return m, nil
	case "x", "backspace":
		if row, ok := m.selectedRow(); ok {
			m.confirm = confirmDelete
			m.confirmFocus = confirmFocusCancel
			m.confirmStepID = row.id
		}
		return m, nil
	case "g":
		if m.genPending {
			m.status = "generation already in flight"
			return m, nil
		}
		return m.openInput(editGenerate, "Generate steps for goal", ""), nil
	case "I":
		return m.openInput(editImportPath, "Import from JSON file", ""), nil
	case "E":
		return m.openInput(editExportPath, "Export to JSON file", ""), nil
	}
	return m.updateActiveList(msg)
}

func (m appModel) updateRunnerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ", "x", "enter":
		if row, ok := m.selectedRow(); ok {
			// Blocked steps cannot be checked, but a completed step can
			// always be unchecked.
			if row.blocked && !row.completed {
				m.status = "blocked: " + strings.Join(row.blockers, "; ")
				return m, nil
			}
			m.state.Toggle(row.id)
			m.save()
			m.refreshLists()
			selectStepByID(&m.runnerList, row.id)
		}
		return m, nil
	case "a":
		visible := resolve.Actionable(m.db.Items, m.state)
		ids := make([]string, 0, len(visible))
		for _, it := range visible {
			ids = append(ids, it.ID)
		}
		m.state.SetMany(ids)
		m.save()
		m.refreshLists()
		m.status = fmt.Sprintf("completed %d steps", len(ids))
		return m, nil
	case "r":
		if m.state.CompletedCount() == 0 {
			return m, nil
		}
		m.confirm = confirmReset
		m.confirmFocus = confirmFocusCancel
		return m, nil
	}
	return m.updateActiveList(msg)
}

func (m appModel) updateActiveList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.mode == modeBuilder {
		m.builderList, cmd = m.builderList.Update(msg)
	} else {
		m.runnerList, cmd = m.runnerList.Update(msg)
	}
	return m, cmd
}

func (m appModel) openInput(kind editKind, prompt, value string) appModel {
	return m.openInputFor(kind, prompt, "", value)
}

func (m appModel) openInputFor(kind editKind, prompt, stepID, value string) appModel {
	m.edit = kind
	m.editStepID = stepID
	m.input.Prompt = prompt + ": "
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return m
}

func (m *appModel) selectedRow() (stepRowItem, bool) {
	l := &m.builderList
	if m.mode == modeRunner {
		l = &m.runnerList
	}
	row, ok := l.SelectedItem().(stepRowItem)
	return row, ok
}

func (m *appModel) moveSelected(delta int) {
	row, ok := m.selectedRow()
	if !ok {
		return
	}
	cl := checklist.New(m.db.Items)
	idx := -1
	for i, it := range m.db.Items {
		if it.ID == row.id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	if err := cl.Reorder(row.id, idx+delta); err != nil {
		return
	}
	m.db.Items = cl.Items()
	m.save()
	m.refreshLists()
	selectStepByID(&m.builderList, row.id)
}

func (m *appModel) startGenerate(prompt string) tea.Cmd {
	if m.generator == nil {
		c, err := generate.NewAnthropicClient()
		if err != nil {
			m.status = err.Error()
			return nil
		}
		m.generator = c
	}
	m.genSeq++
	seq := m.genSeq
	m.genPending = true
	m.status = "generating..."
	existing := checklist.New(m.db.Items).Titles()
	gen := m.generator
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		titles, err := gen.Generate(ctx, prompt, existing)
		return genResultMsg{seq: seq, titles: titles, err: err}
	}
}

func (m *appModel) importFromFile(path string) {
	b, err := os.ReadFile(path)
	if err != nil {
		m.status = err.Error()
		return
	}
	raw, err := sanitize.DecodeArray(b)
	if err != nil {
		m.status = err.Error()
		return
	}
	items, diags := sanitize.Sanitize(raw)
	if len(items) == 0 {
		m.status = "import yielded zero usable steps; checklist left untouched"
		return
	}
	m.pendingImport = items
	m.pendingImportDiags = diags
	if len(m.db.Items) > 0 {
		m.confirm = confirmImport
		m.confirmFocus = confirmFocusCancel
		return
	}
	m.applyImport()
}

func (m *appModel) applyImport() {
	if len(m.pendingImport) == 0 {
		return
	}
	cl := checklist.New(m.db.Items)
	if err := cl.ReplaceAll(m.pendingImport); err != nil {
		m.status = err.Error()
		return
	}
	m.db.Items = cl.Items()
	m.save()
	m.refreshLists()
	if n := len(m.pendingImportDiags); n > 0 {
		m.status = fmt.Sprintf("imported %d steps (%d repaired)", len(m.pendingImport), n)
	} else {
		m.status = fmt.Sprintf("imported %d steps", len(m.pendingImport))
	}
	m.pendingImport = nil
	m.pendingImportDiags = nil
}

func (m *appModel) exportToFile(path string) {
	items := m.db.Items
	if items == nil {
		items = []model.ChecklistItem{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		m.status = err.Error()
		return
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("exported %d steps to %s", len(items), path)
}

func (m *appModel) save() {
	m.db.Run = m.state.Snapshot()
	if err := m.store.Save(m.db); err != nil {
		m.status = "save failed: " + err.Error()
	}
}

func (m *appModel) saveUIState() {
	ui := &store.UIState{Version: 1, Mode: m.mode.String()}
	if row, ok := m.selectedRow(); ok {
		ui.SelectedItemID = row.id
	}
	// Best effort; losing UI state never blocks quitting.
	_ = m.store.SaveUIState(ui)
}

func (m *appModel) refreshLists() {
	builder := make([]list.Item, 0, len(m.db.Items))
	for _, it := range m.db.Items {
		builder = append(builder, stepRowItem{
			id:        it.ID,
			title:     it.Title,
			generated: it.MachineGenerated,
		})
	}

	byID := checklist.New(m.db.Items).ByID()
	runner := make([]list.Item, 0, len(m.db.Items))
	for _, it := range resolve.Actionable(m.db.Items, m.state) {
		runner = append(runner, stepRowItem{
			id:        it.ID,
			title:     it.Title,
			generated: it.MachineGenerated,
			completed: m.state.Completed(it.ID),
		})
	}
	for _, it := range resolve.Blocked(m.db.Items, m.state) {
		runner = append(runner, stepRowItem{
			id:        it.ID,
			title:     it.Title,
			generated: it.MachineGenerated,
			completed: m.state.Completed(it.ID),
			blocked:   true,
			blockers:  resolve.Blockers(it, byID, m.state),
		})
	}

	curBuilder := ""
	if row, ok := m.builderList.SelectedItem().(stepRowItem); ok {
		curBuilder = row.id
	}
	curRunner := ""
	if row, ok := m.runnerList.SelectedItem().(stepRowItem); ok {
		curRunner = row.id
	}

	m.builderList.SetItems(builder)
	m.runnerList.SetItems(runner)
	if curBuilder != "" {
		selectStepByID(&m.builderList, curBuilder)
	}
	if curRunner != "" {
		selectStepByID(&m.runnerList, curRunner)
	}
}

func (m *appModel) resizeLists() {
	h := m.height - 6
	if h < 8 {
		h = 8
	}
	w := m.width / 2
	if w < 40 {
		w = 40
	}
	m.builderList.SetSize(w, h)
	m.runnerList.SetSize(w, h)
}

func (m appModel) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	if m.confirm != confirmNone {
		modal := m.renderConfirm()
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}

	body := m.renderBody()

	lines := []string{header, body}
	if m.edit != editNone {
		lines = append(lines, renderInputLine(m.width-2, m.input.View()))
	}
	if m.status != "" {
		lines = append(lines, styleMuted().Render(m.status))
	}
	lines = append(lines, footer)
	return strings.Join(lines, "\n")
}

func (m appModel) renderHeader() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	inactive := styleMuted()

	builderTab := inactive.Render("Builder")
	runnerTab := inactive.Render("Runner")
	if m.mode == modeBuilder {
		builderTab = active.Render("Builder")
	} else {
		runnerTab = active.Render("Runner")
	}

	progress := fmt.Sprintf("%d/%d done", m.state.CompletedCount(), len(m.db.Items))
	return fmt.Sprintf("%s | %s   %s   %s",
		builderTab, runnerTab,
		styleMuted().Render(progress),
		styleMuted().Render(m.store.Dir),
	)
}

func (m appModel) renderBody() string {
	bodyHeight := m.height - 6
	if bodyHeight < 8 {
		bodyHeight = 8
	}
	leftWidth := m.width / 2
	if leftWidth < 40 {
		leftWidth = 40
	}
	rightWidth := m.width - leftWidth - 2
	if rightWidth < 30 {
		rightWidth = 30
	}

	var left string
	if m.mode == modeBuilder {
		left = m.builderList.View()
	} else {
		left = m.runnerList.View()
	}

	var detail string
	if row, ok := m.selectedRow(); ok {
		detail = m.renderDetail(row, rightWidth, bodyHeight)
	} else {
		detail = lipgloss.NewStyle().Width(rightWidth).Height(bodyHeight).Render("No step selected.")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, detail)
}

func (m appModel) renderFooter() string {
	help := "tab: mode  q: quit"
	if m.edit != editNone {
		help = "enter: apply  esc: cancel"
	} else if m.mode == modeBuilder {
		help = "n: new  e: title  d: desc  p: deps  J/K: move  x: delete  g: generate  I/E: import/export  tab: mode  q: quit"
	} else {
		help = "space: toggle  a: complete visible  r: reset  tab: mode  q: quit"
	}
	return styleMuted().Render(help)
}

func (m appModel) renderConfirm() string {
	switch m.confirm {
	case confirmDelete:
		title := "Delete step"
		body := "Delete the selected step? Steps depending on it will stay blocked until edited."
		if it, ok := checklist.New(m.db.Items).Find(m.confirmStepID); ok {
			body = fmt.Sprintf("Delete %q? Steps depending on it will stay blocked until edited.", it.Title)
		}
		return renderConfirmModal(m.width, title, body, "Delete", "Cancel", m.confirmFocus)
	case confirmReset:
		body := fmt.Sprintf("Clear progress on %d completed steps? The checklist itself is untouched.", m.state.CompletedCount())
		return renderConfirmModal(m.width, "Reset run", body, "Reset", "Cancel", m.confirmFocus)
	case confirmImport:
		body := fmt.Sprintf("Replace the current %d steps with %d imported steps?", len(m.db.Items), len(m.pendingImport))
		return renderConfirmModal(m.width, "Import checklist", body, "Replace", "Cancel", m.confirmFocus)
	}
	return ""
}
