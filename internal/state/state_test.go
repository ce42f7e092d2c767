package state_test

import (
	"errors"
	"testing"
	"time"

	"distill/internal/services"
	"distill/internal/state"
)

func TestWriteOnceFields(t *testing.T) {
	st := state.New("run-1", "note.txt")

	if err := st.SetInputType(state.InputText); err != nil {
		t.Fatalf("first write: %v", err)
	}
	err := st.SetInputType(state.InputURL)
	if err == nil {
		t.Fatal("expected second write to be rejected")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if st.InputType() != state.InputText {
		t.Fatalf("first value should win, got %q", st.InputType())
	}
}

func TestLayerBounds(t *testing.T) {
	st := state.New("run-1", "note.txt")
	if err := st.SetLayer(0, "x"); err == nil {
		t.Fatal("expected level 0 to be rejected")
	}
	if err := st.SetLayer(state.LayerCount+1, "x"); err == nil {
		t.Fatal("expected out-of-range level to be rejected")
	}
	for level := 1; level <= state.LayerCount; level++ {
		if err := st.SetLayer(level, "body"); err != nil {
			t.Fatalf("SetLayer(%d): %v", level, err)
		}
	}
	got, err := st.Layer(3)
	if err != nil || got != "body" {
		t.Fatalf("Layer(3) = %q, %v", got, err)
	}
}

func TestVerifySingleAssignment(t *testing.T) {
	st := state.New("run-1", "note.txt")
	if err := st.VerifySingleAssignment(); err != nil {
		t.Fatalf("fresh state: %v", err)
	}

	if err := st.SetNaming(time.Now(), "note"); err != nil {
		t.Fatal(err)
	}
	st.SetNaming(time.Now(), "other") // rejected, but counted

	err := st.VerifySingleAssignment()
	if err == nil {
		t.Fatal("expected double-write to be reported")
	}
	counts := st.WriteCounts()
	if counts["naming"] != 2 {
		t.Fatalf("expected write count 2 for naming, got %d", counts["naming"])
	}
}

func TestSavedPathsCopied(t *testing.T) {
	st := state.New("run-1", "note.txt")
	paths := []string{"a.md", "b.md"}
	if err := st.SetSavedPaths(paths); err != nil {
		t.Fatal(err)
	}
	paths[0] = "mutated"
	if got := st.SavedPaths(); got[0] != "a.md" {
		t.Fatalf("expected stored copy to be isolated, got %q", got[0])
	}
}
