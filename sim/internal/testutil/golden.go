// Package testutil provides shared test infrastructure for marblesim.
// It holds the golden diagram dataset types and assertion helpers used
// across the sim/ test packages.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"github.com/inference-sim/marblesim/sim/marble"
)

// GoldenDataset represents the structure of testdata/golden_diagrams.json.
type GoldenDataset struct {
	Diagrams []GoldenDiagram `json:"diagrams"`
	Windows  []GoldenWindow  `json:"windows"`
}

// GoldenDiagram is a conventional diagram and the events it must compile to.
type GoldenDiagram struct {
	Name    string         `json:"name"`
	Diagram string         `json:"diagram"`
	Values  map[string]any `json:"values"`
	Error   any            `json:"error"`
	Events  []GoldenEvent  `json:"events"`
}

// GoldenEvent is one expected notification. Value is ignored for "done".
type GoldenEvent struct {
	Frame int64  `json:"frame"`
	Kind  string `json:"kind"`
	Value any    `json:"value"`
}

// GoldenWindow is a subscription diagram and its expected markers.
type GoldenWindow struct {
	Name         string `json:"name"`
	Diagram      string `json:"diagram"`
	Subscribed   *int64 `json:"subscribed"`
	Unsubscribed *int64 `json:"unsubscribed"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "golden_diagrams.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// TimedEvents converts the golden events into marble events.
func (g GoldenDiagram) TimedEvents(t *testing.T) []marble.TimedEvent {
	t.Helper()
	events := make([]marble.TimedEvent, 0, len(g.Events))
	for _, e := range g.Events {
		var n marble.Notification
		switch e.Kind {
		case "next":
			n = marble.Next(e.Value)
		case "error":
			n = marble.Error(e.Value)
		case "done":
			n = marble.Done()
		default:
			t.Fatalf("%s: unknown event kind %q", g.Name, e.Kind)
		}
		events = append(events, marble.At(e.Frame, n))
	}
	return events
}

// Window converts the golden markers into a marble window.
func (g GoldenWindow) Window() marble.SubscriptionWindow {
	return marble.SubscriptionWindow{Subscribed: g.Subscribed, Unsubscribed: g.Unsubscribed}
}

// AssertEventsEqual compares two event sequences frame by frame.
func AssertEventsEqual(t *testing.T, name string, want, got []marble.TimedEvent) {
	t.Helper()
	if len(want) != len(got) {
		t.Errorf("%s: got %d events %v, want %d events %v", name, len(got), got, len(want), want)
		return
	}
	for i := range want {
		if !reflect.DeepEqual(want[i], got[i]) {
			t.Errorf("%s: event[%d]: got %v, want %v", name, i, got[i], want[i])
		}
	}
}
