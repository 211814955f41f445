// Package sanitize normalizes untrusted checklist input (hand-edited or
// AI-produced JSON) into valid items. It never fails: malformed entries are
// skipped or repaired, and every repair is reported as a diagnostic.
package sanitize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/ids"
	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/model"
)

// DecodeArray parses an import payload. The payload must be a JSON array;
// everything past that is handled (and repaired) by Sanitize.
func DecodeArray(b []byte) ([]any, error) {
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		var probe any
		if json.Unmarshal(b, &probe) == nil {
			return nil, fmt.Errorf("import payload must be a JSON array")
		}
		return nil, fmt.Errorf("parse import payload: %w", err)
	}
	return raw, nil
}

// Sanitize normalizes raw entries into checklist items.
//
// Each entry is processed independently and in order:
//   - non-object entries are skipped with a diagnostic
//   - a missing/blank id gets a freshly minted one; an id colliding with an
//     earlier entry in the same batch is re-minted with a diagnostic
//   - a missing/blank title becomes "Untitled step"
//   - dependsOn keeps only trimmed non-empty strings, drops self-references
//     and duplicates; a non-array value is replaced with an empty list
//   - an unparseable createdAt becomes the current time
//
// Output items satisfy every per-item invariant; cross-item resolvability
// (dangling references) is the resolver's concern, not the sanitizer's.
func Sanitize(raw []any) ([]model.ChecklistItem, []string) {
	items := make([]model.ChecklistItem, 0, len(raw))
	diags := []string{}
	seen := map[string]bool{}

	for i, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			diags = append(diags, fmt.Sprintf("entry %d: not an object; skipped", i+1))
			continue
		}

		id := strings.TrimSpace(stringField(obj, "id"))
		if id == "" {
			id = ids.NewItemID()
		} else if seen[id] {
			fresh := ids.NewItemID()
			diags = append(diags, fmt.Sprintf("entry %d: duplicate id %q; reassigned %q", i+1, id, fresh))
			id = fresh
		}
		// Fresh ids are unique with overwhelming probability, but the batch
		// invariant is absolute, so re-mint until clear.
		for seen[id] {
			id = ids.NewItemID()
		}
		seen[id] = true

		title := strings.TrimSpace(stringField(obj, "title"))
		if title == "" {
			title = "Untitled step"
		}

		item := model.ChecklistItem{
			ID:        id,
			Title:     title,
			DependsOn: []string{},
			CreatedAt: time.Now().UTC(),
		}

		if d, ok := obj["description"].(string); ok {
			item.Description = &d
		}

		if rawDeps, present := obj["dependsOn"]; present && rawDeps != nil {
			deps, ok := rawDeps.([]any)
			if !ok {
				diags = append(diags, fmt.Sprintf("entry %d: dependsOn is not a list; cleared", i+1))
			} else {
				item.DependsOn = cleanDeps(deps, id)
			}
		}

		if ts, ok := obj["createdAt"].(string); ok {
			if t, err := parseTimestamp(ts); err == nil {
				item.CreatedAt = t
			}
		}

		if b, ok := boolField(obj, "aiGenerated"); ok {
			item.MachineGenerated = b
		} else if b, ok := boolField(obj, "machineGenerated"); ok {
			item.MachineGenerated = b
		}

		items = append(items, item)
	}

	return items, diags
}

func cleanDeps(deps []any, selfID string) []string {
	out := []string{}
	dedup := map[string]bool{}
	for _, d := range deps {
		s, ok := d.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" || s == selfID || dedup[s] {
			continue
		}
		dedup[s] = true
		out = append(out, s)
	}
	return out
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func boolField(obj map[string]any, key string) (bool, bool) {
	b, ok := obj[key].(bool)
	return b, ok
}
