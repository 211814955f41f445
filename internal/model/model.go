package model

import "time"

// ChecklistItem is one step in the workflow.
//
// The collection order of items is display order only; dependency semantics
// come exclusively from DependsOn. CreatedAt is record-keeping, never used
// for ordering or resolution.
type ChecklistItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	// Description is optional; nil (absent) is distinct from an empty string.
	Description *string `json:"description,omitempty"`

	// DependsOn lists ids of items that must all be completed before this
	// item is actionable. Set semantics: no duplicates, no self-reference.
	// Entries may reference ids that do not exist in the checklist; such an
	// item is never actionable until the reference is removed.
	DependsOn []string `json:"dependsOn"`

	// MachineGenerated marks items produced by the generation adapter.
	// Display/labeling only; never affects visibility.
	MachineGenerated bool `json:"aiGenerated,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// DependsOnSet returns DependsOn as a lookup set.
func (it ChecklistItem) DependsOnSet() map[string]bool {
	if len(it.DependsOn) == 0 {
		return nil
	}
	set := make(map[string]bool, len(it.DependsOn))
	for _, d := range it.DependsOn {
		set[d] = true
	}
	return set
}

// DescriptionText returns the description or "" when absent.
func (it ChecklistItem) DescriptionText() string {
	if it.Description == nil {
		return ""
	}
	return *it.Description
}
