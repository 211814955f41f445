// Package checklist holds the ordered collection of checklist items (the
// workflow definition). Order is display order only; it never influences
// dependency resolution.
package checklist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/model"
)

var (
	// ErrEmptyReplace is returned when a bulk replace would install zero
	// items. Replacing a checklist with nothing must be an explicit delete,
	// never the silent result of a failed import.
	ErrEmptyReplace = errors.New("refusing to replace checklist with zero items")

	ErrNotFound = errors.New("item not found")
)

// Checklist is an ordered sequence of items. It is not safe for concurrent
// use; all mutation happens on the single foreground control flow.
type Checklist struct {
	items []model.ChecklistItem
}

// New builds a checklist from items. The slice is copied.
func New(items []model.ChecklistItem) *Checklist {
	c := &Checklist{}
	c.items = append(c.items, items...)
	return c
}

// Items returns a copy of the items in display order.
func (c *Checklist) Items() []model.ChecklistItem {
	out := make([]model.ChecklistItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Checklist) Len() int { return len(c.items) }

// Find returns the item with the given id.
func (c *Checklist) Find(id string) (model.ChecklistItem, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	return model.ChecklistItem{}, false
}

// ByID returns an id -> item lookup for the current snapshot.
func (c *Checklist) ByID() map[string]model.ChecklistItem {
	out := make(map[string]model.ChecklistItem, len(c.items))
	for _, it := range c.items {
		out[it.ID] = it
	}
	return out
}

// Titles returns all titles in display order (used to seed generation
// dedupe).
func (c *Checklist) Titles() []string {
	out := make([]string, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it.Title)
	}
	return out
}

// Append adds an item to the end. The id must be pre-assigned and unique.
func (c *Checklist) Append(item model.ChecklistItem) error {
	if strings.TrimSpace(item.ID) == "" {
		return errors.New("item id must be pre-assigned")
	}
	if c.indexOf(item.ID) >= 0 {
		return fmt.Errorf("duplicate item id: %s", item.ID)
	}
	c.items = append(c.items, item)
	return nil
}

// Patch describes a partial update. Nil fields are left unchanged, so
// "not provided" stays distinct from "set to empty".
type Patch struct {
	Title       *string
	Description *string
	ClearDesc   bool
	DependsOn   *[]string
}

// Update applies a patch to the item with the given id.
//
// DependsOn is normalized the same way the sanitizer normalizes it:
// trimmed, empties dropped, self-reference removed, de-duplicated. Entries
// referencing unknown ids are kept (dangling references are tolerated).
func (c *Checklist) Update(id string, p Patch) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	it := &c.items[i]
	if p.Title != nil {
		it.Title = strings.TrimSpace(*p.Title)
		if it.Title == "" {
			it.Title = "Untitled step"
		}
	}
	if p.ClearDesc {
		it.Description = nil
	} else if p.Description != nil {
		d := *p.Description
		it.Description = &d
	}
	if p.DependsOn != nil {
		it.DependsOn = normalizeDeps(*p.DependsOn, it.ID)
	}
	return nil
}

// Remove deletes the item. Other items' dependsOn entries referencing it are
// left alone; the resolver treats them as never satisfiable until edited.
func (c *Checklist) Remove(id string) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

// Reorder moves the item to newIndex; out-of-range indexes are clamped.
// Dependency relationships are unaffected.
func (c *Checklist) Reorder(id string, newIndex int) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(c.items)-1 {
		newIndex = len(c.items) - 1
	}
	if newIndex == i {
		return nil
	}
	it := c.items[i]
	rest := make([]model.ChecklistItem, 0, len(c.items)-1)
	rest = append(rest, c.items[:i]...)
	rest = append(rest, c.items[i+1:]...)

	next := make([]model.ChecklistItem, 0, len(c.items))
	next = append(next, rest[:newIndex]...)
	next = append(next, it)
	next = append(next, rest[newIndex:]...)
	c.items = next
	return nil
}

// ReplaceAll atomically installs a new item set (import). An empty batch is
// refused before any mutation.
func (c *Checklist) ReplaceAll(items []model.ChecklistItem) error {
	if len(items) == 0 {
		return ErrEmptyReplace
	}
	next := make([]model.ChecklistItem, len(items))
	copy(next, items)
	c.items = next
	return nil
}

func (c *Checklist) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

func normalizeDeps(deps []string, selfID string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, d := range deps {
		d = strings.TrimSpace(d)
		if d == "" || d == selfID || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
