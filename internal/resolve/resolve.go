// Package resolve computes which checklist items are actionable for a given
// run state.
//
// The rule is a pure AND-gate evaluated independently per item: every id in
// dependsOn must map to a completed flag. There is no transitive traversal
// and no cycle detection in the gating path; a cycle simply leaves both
// sides permanently blocked, and a dependency on a nonexistent id is never
// satisfiable. Both are accepted behavior, reported only by the separate
// diagnostic helpers.
package resolve

import (
	"fmt"
	"strings"

	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/model"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/run"
)

// Actionable returns the items whose dependencies are all completed, in
// display order (a filter, never a resort). Items with no dependencies are
// always actionable, including items already completed in this run.
func Actionable(items []model.ChecklistItem, state *run.State) []model.ChecklistItem {
	out := make([]model.ChecklistItem, 0, len(items))
	for _, it := range items {
		if IsActionable(it, state) {
			out = append(out, it)
		}
	}
	return out
}

// Blocked returns the complement of Actionable, in display order.
func Blocked(items []model.ChecklistItem, state *run.State) []model.ChecklistItem {
	out := []model.ChecklistItem{}
	for _, it := range items {
		if !IsActionable(it, state) {
			out = append(out, it)
		}
	}
	return out
}

// IsActionable evaluates the AND-gate for a single item.
func IsActionable(it model.ChecklistItem, state *run.State) bool {
	for _, dep := range it.DependsOn {
		if !state.Completed(dep) {
			return false
		}
	}
	return true
}

// Blockers explains why an item is blocked: one message per unsatisfied
// dependency, distinguishing incomplete deps from dangling references.
// An actionable item yields nil.
func Blockers(it model.ChecklistItem, byID map[string]model.ChecklistItem, state *run.State) []string {
	var out []string
	for _, dep := range it.DependsOn {
		if state.Completed(dep) {
			continue
		}
		target, ok := byID[dep]
		if !ok {
			out = append(out, fmt.Sprintf("depends on %s, which does not exist", dep))
			continue
		}
		out = append(out, fmt.Sprintf("waiting on %q (%s)", target.Title, dep))
	}
	return out
}

// Cycles reports dependency cycles among the given items. This is a
// diagnostic for `deps cycles` and `doctor` only; nothing in the gating
// path consults it. Nodes are visited in display order so output is stable.
func Cycles(items []model.ChecklistItem) [][]string {
	graph := map[string][]string{}
	for _, it := range items {
		graph[it.ID] = append(graph[it.ID], it.DependsOn...)
	}

	visited := map[string]bool{}
	onStack := map[string]bool{}
	var stack []string
	var cycles [][]string
	seenCycleKey := map[string]bool{}

	var dfs func(n string)
	dfs = func(n string) {
		visited[n] = true
		onStack[n] = true
		stack = append(stack, n)

		for _, m := range graph[n] {
			if !visited[m] {
				dfs(m)
				continue
			}
			if onStack[m] {
				var cycle []string
				for i := len(stack) - 1; i >= 0; i-- {
					cycle = append([]string{stack[i]}, cycle...)
					if stack[i] == m {
						break
					}
				}
				cycle = append(cycle, m)
				key := strings.Join(cycle, "->")
				if !seenCycleKey[key] {
					seenCycleKey[key] = true
					cycles = append(cycles, cycle)
				}
			}
		}

		stack = stack[:len(stack)-1]
		onStack[n] = false
	}

	for _, it := range items {
		if !visited[it.ID] {
			dfs(it.ID)
		}
	}
	return cycles
}

// Dangling returns, per item id, the dependsOn entries that reference no
// existing item. Used by `doctor`.
func Dangling(items []model.ChecklistItem) map[string][]string {
	exists := map[string]bool{}
	for _, it := range items {
		exists[it.ID] = true
	}
	out := map[string][]string{}
	for _, it := range items {
		for _, dep := range it.DependsOn {
			if !exists[dep] {
				out[it.ID] = append(out[it.ID], dep)
			}
		}
	}
	return out
}
