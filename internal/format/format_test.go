package format

import (
	"bytes"
	"strings"
	"testing"
)

func TestWrite_JSONEnvelope(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Write(&buf, map[string]any{"data": []string{"a", "b"}}, "json", false)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, want := strings.TrimSpace(buf.String()), `{"data":["a","b"]}`; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestWrite_EDN(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Write(&buf, map[string]any{"count": 2, "done": true, "name": "x y"}, "edn", false)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, want := strings.TrimSpace(buf.String()), `{:count 2 :done true :name "x y"}`; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()

	if err := Write(&bytes.Buffer{}, nil, "yaml", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
