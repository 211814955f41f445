package tui

import (
	"testing"
	"time"

	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/model"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func testDB() *store.DB {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return &store.DB{
		Version: 1,
		Items: []model.ChecklistItem{
			{ID: "step-aaa", Title: "Buy flour", DependsOn: []string{}, CreatedAt: now},
			{ID: "step-bbb", Title: "Make dough", DependsOn: []string{"step-aaa"}, CreatedAt: now},
			{ID: "step-ccc", Title: "Bake", DependsOn: []string{"step-bbb"}, CreatedAt: now},
		},
		Run: map[string]bool{},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewAppModel_RestoresModeAndSelection(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := store.Store{Dir: dir}
	if err := s.SaveUIState(&store.UIState{Version: 1, Mode: "runner", SelectedItemID: "step-bbb"}); err != nil {
		t.Fatalf("seed SaveUIState: %v", err)
	}

	m := newAppModel(s, testDB())
	if m.mode != modeRunner {
		t.Fatalf("expected runner mode; got %v", m.mode)
	}
	row, ok := m.runnerList.SelectedItem().(stepRowItem)
	if !ok || row.id != "step-bbb" {
		t.Fatalf("expected step-bbb selected; got %+v ok=%v", row, ok)
	}
}

func TestUpdate_TabSwitchesMode(t *testing.T) {
	t.Parallel()

	m := newAppModel(store.Store{Dir: t.TempDir()}, testDB())
	if m.mode != modeBuilder {
		t.Fatalf("expected builder mode initially")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(appModel)
	if m.mode != modeRunner {
		t.Fatalf("expected runner mode after tab; got %v", m.mode)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(appModel)
	if m.mode != modeBuilder {
		t.Fatalf("expected builder mode after second tab; got %v", m.mode)
	}
}

func TestRunner_ToggleActionableStep(t *testing.T) {
	t.Parallel()

	m := newAppModel(store.Store{Dir: t.TempDir()}, testDB())
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(appModel)

	// First runner row is the only actionable step.
	row, ok := m.runnerList.SelectedItem().(stepRowItem)
	if !ok || row.id != "step-aaa" {
		t.Fatalf("expected step-aaa first; got %+v", row)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(appModel)
	if !m.state.Completed("step-aaa") {
		t.Fatalf("expected step-aaa completed after toggle")
	}

	// step-bbb should now be actionable (second row, uncompleted).
	found := false
	for _, it := range m.runnerList.Items() {
		if r, ok := it.(stepRowItem); ok && r.id == "step-bbb" {
			found = true
			if r.blocked {
				t.Fatalf("expected step-bbb unblocked after completing step-aaa")
			}
		}
	}
	if !found {
		t.Fatalf("step-bbb missing from runner list")
	}
}

func TestRunner_BlockedStepCannotBeToggled(t *testing.T) {
	t.Parallel()

	m := newAppModel(store.Store{Dir: t.TempDir()}, testDB())
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(appModel)

	selectStepByID(&m.runnerList, "step-ccc")
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(appModel)

	if m.state.Completed("step-ccc") {
		t.Fatalf("blocked step must not complete")
	}
	if m.status == "" {
		t.Fatalf("expected a blocked explanation in the status line")
	}
}

func TestRunner_CompleteVisibleOnlyTouchesActionable(t *testing.T) {
	t.Parallel()

	m := newAppModel(store.Store{Dir: t.TempDir()}, testDB())
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(appModel)

	next, _ = m.Update(keyRunes("a"))
	m = next.(appModel)

	if !m.state.Completed("step-aaa") {
		t.Fatalf("expected step-aaa completed")
	}
	if m.state.Completed("step-bbb") || m.state.Completed("step-ccc") {
		t.Fatalf("complete-visible must not touch blocked steps")
	}

	// A second pass completes the newly unblocked layer.
	next, _ = m.Update(keyRunes("a"))
	m = next.(appModel)
	if !m.state.Completed("step-bbb") {
		t.Fatalf("expected step-bbb completed on second pass")
	}
	if m.state.Completed("step-ccc") {
		t.Fatalf("step-ccc still blocked on second pass")
	}
}

func TestGenResult_StaleSeqIsDiscarded(t *testing.T) {
	t.Parallel()

	m := newAppModel(store.Store{Dir: t.TempDir()}, testDB())
	m.genSeq = 2
	m.genPending = true

	next, _ := m.Update(genResultMsg{seq: 1, titles: []string{"Stale step"}})
	m = next.(appModel)

	if len(m.db.Items) != 3 {
		t.Fatalf("stale generation result must not add steps; got %d items", len(m.db.Items))
	}
	if !m.genPending {
		t.Fatalf("stale result must not clear the pending flag")
	}
}

func TestGenResult_CurrentSeqAppendsGeneratedSteps(t *testing.T) {
	t.Parallel()

	m := newAppModel(store.Store{Dir: t.TempDir()}, testDB())
	m.genSeq = 2
	m.genPending = true

	next, _ := m.Update(genResultMsg{seq: 2, titles: []string{"Preheat oven", "Serve"}})
	m = next.(appModel)

	if m.genPending {
		t.Fatalf("expected pending flag cleared")
	}
	if len(m.db.Items) != 5 {
		t.Fatalf("expected 5 items after applying generation; got %d", len(m.db.Items))
	}
	last := m.db.Items[len(m.db.Items)-1]
	if !last.MachineGenerated {
		t.Fatalf("generated steps must carry the machine-generated flag")
	}
	if len(last.DependsOn) != 0 {
		t.Fatalf("generated steps must start with no dependencies")
	}
}

func TestBuilder_DeleteRequiresConfirm(t *testing.T) {
	t.Parallel()

	m := newAppModel(store.Store{Dir: t.TempDir()}, testDB())

	next, _ := m.Update(keyRunes("x"))
	m = next.(appModel)
	if m.confirm != confirmDelete {
		t.Fatalf("expected delete confirm modal; got %v", m.confirm)
	}
	if len(m.db.Items) != 3 {
		t.Fatalf("nothing may be deleted before confirming")
	}

	// Esc cancels.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(appModel)
	if m.confirm != confirmNone {
		t.Fatalf("expected modal dismissed")
	}
	if len(m.db.Items) != 3 {
		t.Fatalf("cancel must not delete")
	}

	// Confirm with y.
	next, _ = m.Update(keyRunes("x"))
	m = next.(appModel)
	next, _ = m.Update(keyRunes("y"))
	m = next.(appModel)
	if len(m.db.Items) != 2 {
		t.Fatalf("expected 2 items after confirmed delete; got %d", len(m.db.Items))
	}
}

func TestBuilder_AddStepViaInput(t *testing.T) {
	t.Parallel()

	m := newAppModel(store.Store{Dir: t.TempDir()}, testDB())

	next, _ := m.Update(keyRunes("n"))
	m = next.(appModel)
	if m.edit != editAdd {
		t.Fatalf("expected add input open")
	}

	m.input.SetValue("Let dough rise")
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(appModel)

	if m.edit != editNone {
		t.Fatalf("expected input closed after enter")
	}
	if len(m.db.Items) != 4 {
		t.Fatalf("expected 4 items; got %d", len(m.db.Items))
	}
	last := m.db.Items[3]
	if last.Title != "Let dough rise" {
		t.Fatalf("unexpected title %q", last.Title)
	}
	if last.ID == "" {
		t.Fatalf("new step must get an id")
	}
}
