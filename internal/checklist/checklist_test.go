package checklist

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/model"
)

func item(id, title string, deps ...string) model.ChecklistItem {
	return model.ChecklistItem{
		ID:        id,
		Title:     title,
		DependsOn: deps,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func order(c *Checklist) []string {
	out := []string{}
	for _, it := range c.Items() {
		out = append(out, it.ID)
	}
	return out
}

func TestAppend_RejectsMissingAndDuplicateIDs(t *testing.T) {
	t.Parallel()

	c := New(nil)
	if err := c.Append(item("", "x")); err == nil {
		t.Fatalf("expected error for missing id")
	}
	if err := c.Append(item("a", "A")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := c.Append(item("a", "A again")); err == nil {
		t.Fatalf("expected error for duplicate id")
	}
}

func TestReorder_ClampsAndNoOps(t *testing.T) {
	t.Parallel()

	c := New([]model.ChecklistItem{item("a", "A"), item("b", "B"), item("c", "C")})

	if err := c.Reorder("a", 99); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if got, want := order(c), []string{"b", "c", "a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("clamp-to-end: got %v want %v", got, want)
	}

	if err := c.Reorder("c", -5); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if got, want := order(c), []string{"c", "b", "a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("clamp-to-start: got %v want %v", got, want)
	}

	if err := c.Reorder("b", 1); err != nil {
		t.Fatalf("no-op reorder: %v", err)
	}
	if got, want := order(c), []string{"c", "b", "a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("no-op changed order: got %v", got)
	}

	if err := c.Reorder("ghost", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound; got %v", err)
	}
}

func TestUpdate_PatchSemantics(t *testing.T) {
	t.Parallel()

	c := New([]model.ChecklistItem{item("a", "A")})

	desc := "notes"
	if err := c.Update("a", Patch{Description: &desc}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := c.Find("a")
	if got.Title != "A" {
		t.Fatalf("nil title field must leave title alone; got %q", got.Title)
	}
	if got.Description == nil || *got.Description != "notes" {
		t.Fatalf("description not applied: %v", got.Description)
	}

	blank := "   "
	if err := c.Update("a", Patch{Title: &blank}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = c.Find("a")
	if got.Title != "Untitled step" {
		t.Fatalf("blank title must fall back to placeholder; got %q", got.Title)
	}

	if err := c.Update("a", Patch{ClearDesc: true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = c.Find("a")
	if got.Description != nil {
		t.Fatalf("ClearDesc must remove the description")
	}

	deps := []string{" b ", "a", "b", "", "c"}
	if err := c.Update("a", Patch{DependsOn: &deps}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = c.Find("a")
	if want := []string{"b", "c"}; !reflect.DeepEqual(got.DependsOn, want) {
		t.Fatalf("deps not normalized: got %v want %v", got.DependsOn, want)
	}
}

func TestRemove_LeavesDanglingReferences(t *testing.T) {
	t.Parallel()

	c := New([]model.ChecklistItem{item("a", "A"), item("b", "B", "a")})
	if err := c.Remove("a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, _ := c.Find("b")
	if want := []string{"a"}; !reflect.DeepEqual(got.DependsOn, want) {
		t.Fatalf("remove must not cascade into dependsOn; got %v", got.DependsOn)
	}
}

func TestReplaceAll_AtomicAndEmptyRefused(t *testing.T) {
	t.Parallel()

	c := New([]model.ChecklistItem{item("a", "A"), item("b", "B")})
	before := c.Items()

	if err := c.ReplaceAll(nil); !errors.Is(err, ErrEmptyReplace) {
		t.Fatalf("expected ErrEmptyReplace; got %v", err)
	}
	if !reflect.DeepEqual(c.Items(), before) {
		t.Fatalf("failed replace must leave checklist untouched")
	}

	next := []model.ChecklistItem{item("x", "X")}
	if err := c.ReplaceAll(next); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got := order(c); !reflect.DeepEqual(got, []string{"x"}) {
		t.Fatalf("replace not applied: %v", got)
	}

	// Caller mutations after the fact must not leak into the checklist.
	next[0].Title = "mutated"
	got, _ := c.Find("x")
	if got.Title != "X" {
		t.Fatalf("ReplaceAll must copy its input")
	}
}
