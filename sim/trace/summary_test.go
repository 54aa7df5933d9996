package trace

import (
	"testing"
)

func TestSummarize_NilRecorder_ReturnsZeroSummary(t *testing.T) {
	s := Summarize(nil)
	if s.Activations != 0 || s.Deactivations != 0 || s.Open != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
	if s.Sources == nil {
		t.Error("Sources must be non-nil")
	}
}

func TestSummarize_CountsLifecycleEdges(t *testing.T) {
	// GIVEN three activations, two of them closed
	r := NewRecorder()
	r.Report(Record{Kind: Activated, Source: "a", Entity: 1})
	r.Report(Record{Kind: Activated, Source: "a", Entity: 2})
	r.Report(Record{Kind: Activated, Source: "b", Entity: 3})
	r.Report(Record{Kind: Deactivated, Source: "a", Entity: 1})
	r.Report(Record{Kind: Deactivated, Source: "b", Entity: 3})

	// WHEN summarized
	s := Summarize(r)

	// THEN counts reflect the records
	if s.Activations != 3 {
		t.Errorf("Activations = %d, want 3", s.Activations)
	}
	if s.Deactivations != 2 {
		t.Errorf("Deactivations = %d, want 2", s.Deactivations)
	}
	if s.Open != 1 {
		t.Errorf("Open = %d, want 1", s.Open)
	}
	if s.Sources["a"] != 2 || s.Sources["b"] != 1 {
		t.Errorf("Sources = %v, want a:2 b:1", s.Sources)
	}
}
