package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/model"
)

func TestLoad_EmptyWorkspace(t *testing.T) {
	s := Store{Dir: t.TempDir()}

	db, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(db.Items) != 0 || len(db.Run) != 0 {
		t.Fatalf("fresh workspace must be empty; got %+v", db)
	}
	if db.Version != 1 {
		t.Fatalf("expected version 1; got %d", db.Version)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := Store{Dir: t.TempDir()}

	desc := "with *markdown*"
	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	in := &DB{
		Version: 1,
		Items: []model.ChecklistItem{
			{ID: "step-a", Title: "First", DependsOn: []string{}, CreatedAt: created},
			{ID: "step-b", Title: "Second", Description: &desc, DependsOn: []string{"step-a"}, MachineGenerated: true, CreatedAt: created},
		},
		Run: map[string]bool{"step-a": true, "step-ghost": true, "step-b": false},
	}
	if err := s.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(out.Items) != 2 {
		t.Fatalf("expected 2 items; got %d", len(out.Items))
	}
	if out.Items[0].ID != "step-a" || out.Items[1].ID != "step-b" {
		t.Fatalf("display order must survive the round trip; got %v, %v", out.Items[0].ID, out.Items[1].ID)
	}
	if out.Items[1].Description == nil || *out.Items[1].Description != desc {
		t.Fatalf("description lost: %+v", out.Items[1])
	}
	if !out.Items[1].MachineGenerated {
		t.Fatalf("aiGenerated flag lost")
	}
	if want := []string{"step-a"}; !reflect.DeepEqual(out.Items[1].DependsOn, want) {
		t.Fatalf("dependsOn lost: %v", out.Items[1].DependsOn)
	}
	if !out.Items[0].CreatedAt.Equal(created) {
		t.Fatalf("createdAt changed: %v", out.Items[0].CreatedAt)
	}

	// Orphaned run entries survive; false entries are dropped.
	if want := map[string]bool{"step-a": true, "step-ghost": true}; !reflect.DeepEqual(out.Run, want) {
		t.Fatalf("run snapshot: got %v want %v", out.Run, want)
	}
}

func TestSave_ReplacesPreviousState(t *testing.T) {
	s := Store{Dir: t.TempDir()}

	first := &DB{Items: []model.ChecklistItem{{ID: "a", Title: "A", DependsOn: []string{}}}, Run: map[string]bool{"a": true}}
	if err := s.Save(first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second := &DB{Items: []model.ChecklistItem{{ID: "b", Title: "B", DependsOn: []string{}}}, Run: map[string]bool{}}
	if err := s.Save(second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].ID != "b" {
		t.Fatalf("save must replace, not merge; got %+v", out.Items)
	}
	if len(out.Run) != 0 {
		t.Fatalf("stale run flags must not survive a save; got %v", out.Run)
	}
}

func TestUIState_BestEffort(t *testing.T) {
	dir := t.TempDir()
	s := Store{Dir: dir}

	st, err := s.LoadUIState()
	if err != nil {
		t.Fatalf("LoadUIState: %v", err)
	}
	if st.Version != 1 || st.Mode != "" {
		t.Fatalf("missing file must yield fresh state; got %+v", st)
	}

	st.Mode = "runner"
	st.SelectedItemID = "step-x"
	if err := s.SaveUIState(st); err != nil {
		t.Fatalf("SaveUIState: %v", err)
	}

	got, err := s.LoadUIState()
	if err != nil {
		t.Fatalf("LoadUIState: %v", err)
	}
	if got.Mode != "runner" || got.SelectedItemID != "step-x" {
		t.Fatalf("round trip: got %+v", got)
	}

	// Corrupt file falls back to defaults instead of failing.
	if err := os.WriteFile(filepath.Join(dir, uiStateFileName), []byte("{nope"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err = s.LoadUIState()
	if err != nil {
		t.Fatalf("LoadUIState on corrupt file: %v", err)
	}
	if got.Mode != "" || got.Version != 1 {
		t.Fatalf("corrupt state must be treated as missing; got %+v", got)
	}
}

func TestWorkspaceDir_UsesConfigDirOverride(t *testing.T) {
	base := t.TempDir()
	t.Setenv("STEPWISE_CONFIG_DIR", base)

	dir, err := WorkspaceDir("default")
	if err != nil {
		t.Fatalf("WorkspaceDir: %v", err)
	}
	if want := filepath.Join(base, "workspaces", "default"); dir != want {
		t.Fatalf("got %q want %q", dir, want)
	}

	if _, err := WorkspaceDir("   "); err == nil {
		t.Fatalf("blank workspace name must be rejected")
	}
}
