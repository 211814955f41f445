package sanitize

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func decode(t *testing.T, payload string) []any {
	t.Helper()
	raw, err := DecodeArray([]byte(payload))
	if err != nil {
		t.Fatalf("DecodeArray: %v", err)
	}
	return raw
}

func TestDecodeArray_RejectsNonArray(t *testing.T) {
	t.Parallel()

	if _, err := DecodeArray([]byte(`{"title":"x"}`)); err == nil {
		t.Fatalf("expected error for JSON object payload")
	}
	if _, err := DecodeArray([]byte(`not json at all`)); err == nil {
		t.Fatalf("expected error for non-JSON payload")
	}
	if _, err := DecodeArray([]byte(`[]`)); err != nil {
		t.Fatalf("empty array should decode; got %v", err)
	}
}

func TestSanitize_MalformedImportScenario(t *testing.T) {
	t.Parallel()

	raw := decode(t, `[{"title":"Step 1"}, "not an object", {"id":"dup","title":"Step 2"}, {"id":"dup","title":"Step 3"}]`)
	items, diags := Sanitize(raw)

	if len(items) != 3 {
		t.Fatalf("expected 3 valid items; got %d", len(items))
	}
	if items[0].Title != "Step 1" || items[0].ID == "" {
		t.Fatalf("entry 1 not repaired as expected: %+v", items[0])
	}
	if items[1].ID != "dup" {
		t.Fatalf("first dup keeps its id; got %q", items[1].ID)
	}
	if items[2].ID == "dup" || items[2].ID == "" {
		t.Fatalf("colliding entry must get a fresh id; got %q", items[2].ID)
	}

	var sawSkip, sawCollision bool
	for _, d := range diags {
		if strings.Contains(d, "not an object") {
			sawSkip = true
		}
		if strings.Contains(d, "duplicate id") {
			sawCollision = true
		}
	}
	if !sawSkip || !sawCollision {
		t.Fatalf("expected skip + collision diagnostics; got %v", diags)
	}
}

func TestSanitize_SelfReferenceStripped(t *testing.T) {
	t.Parallel()

	raw := decode(t, `[{"id":"a","title":"A","dependsOn":["a","b","b"," ","a"]}]`)
	items, _ := Sanitize(raw)
	if len(items) != 1 {
		t.Fatalf("expected 1 item; got %d", len(items))
	}
	if got := items[0].DependsOn; len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected dependsOn [b]; got %v", got)
	}
}

func TestSanitize_DependsOnNotAList(t *testing.T) {
	t.Parallel()

	raw := decode(t, `[{"id":"a","title":"A","dependsOn":"b"}]`)
	items, diags := Sanitize(raw)
	if len(items[0].DependsOn) != 0 {
		t.Fatalf("expected cleared dependsOn; got %v", items[0].DependsOn)
	}
	if len(diags) == 0 || !strings.Contains(diags[0], "dependsOn") {
		t.Fatalf("expected dependsOn diagnostic; got %v", diags)
	}
}

func TestSanitize_TitleFallbackAndDescription(t *testing.T) {
	t.Parallel()

	raw := decode(t, `[{"id":"a","title":"   "},{"id":"b","title":"B","description":""},{"id":"c","title":"C","description":123}]`)
	items, _ := Sanitize(raw)

	if items[0].Title != "Untitled step" {
		t.Fatalf("blank title must fall back to placeholder; got %q", items[0].Title)
	}
	if items[1].Description == nil || *items[1].Description != "" {
		t.Fatalf("empty-string description must pass through; got %v", items[1].Description)
	}
	if items[2].Description != nil {
		t.Fatalf("non-string description must be omitted; got %v", *items[2].Description)
	}
}

func TestSanitize_CreatedAtAndMachineGenerated(t *testing.T) {
	t.Parallel()

	raw := decode(t, `[{"id":"a","title":"A","createdAt":"2026-02-03T04:05:06Z","aiGenerated":true},{"id":"b","title":"B","createdAt":"last tuesday","machineGenerated":true},{"id":"c","title":"C","aiGenerated":"yes"}]`)
	before := time.Now().UTC().Add(-time.Minute)
	items, _ := Sanitize(raw)

	want := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	if !items[0].CreatedAt.Equal(want) {
		t.Fatalf("valid createdAt must be kept; got %v", items[0].CreatedAt)
	}
	if !items[0].MachineGenerated {
		t.Fatalf("aiGenerated=true must be kept")
	}
	if items[1].CreatedAt.Before(before) {
		t.Fatalf("invalid createdAt must be replaced with now; got %v", items[1].CreatedAt)
	}
	if !items[1].MachineGenerated {
		t.Fatalf("machineGenerated key must also be accepted")
	}
	if items[2].MachineGenerated {
		t.Fatalf("non-bool aiGenerated must coerce to false")
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	t.Parallel()

	raw := decode(t, `[{"title":"First"},{"id":"x","title":"X","dependsOn":["x","y"],"description":"d"},{"id":"x","title":"X2"}]`)
	first, _ := Sanitize(raw)

	b, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, diags := Sanitize(decode(t, string(b)))

	if len(diags) != 0 {
		t.Fatalf("re-sanitizing clean output must not produce diagnostics; got %v", diags)
	}
	if len(second) != len(first) {
		t.Fatalf("item count changed: %d -> %d", len(first), len(second))
	}
	for i := range first {
		if second[i].ID != first[i].ID || second[i].Title != first[i].Title {
			t.Fatalf("item %d changed: %+v -> %+v", i, first[i], second[i])
		}
		if len(second[i].DependsOn) != len(first[i].DependsOn) {
			t.Fatalf("item %d deps changed: %v -> %v", i, first[i].DependsOn, second[i].DependsOn)
		}
		if !second[i].CreatedAt.Equal(first[i].CreatedAt) {
			t.Fatalf("item %d createdAt changed: %v -> %v", i, first[i].CreatedAt, second[i].CreatedAt)
		}
	}
}

func TestSanitize_EmptyAndGarbageInput(t *testing.T) {
	t.Parallel()

	items, diags := Sanitize(nil)
	if len(items) != 0 || len(diags) != 0 {
		t.Fatalf("nil input: got %v / %v", items, diags)
	}

	items, diags = Sanitize([]any{"a", 1.5, nil, true})
	if len(items) != 0 {
		t.Fatalf("all-garbage input must yield zero items; got %v", items)
	}
	if len(diags) != 4 {
		t.Fatalf("every skipped entry needs a diagnostic; got %v", diags)
	}
}
