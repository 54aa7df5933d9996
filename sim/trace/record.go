// Package trace provides diagnostic recording of entity activation and
// deactivation. Records are pure data and never drive control flow.
// This package has no dependencies on sim/; entity identities are carried
// as plain integers.
package trace

// Kind says which lifecycle edge a Record describes.
type Kind string

const (
	// Activated is reported when an entity starts serving a subscriber.
	Activated Kind = "activated"
	// Deactivated is reported when that entity terminates.
	Deactivated Kind = "deactivated"
)

// Record captures one lifecycle edge of one entity.
type Record struct {
	Kind     Kind
	Source   string // name of the observable the entity replays
	Entity   uint64 // scheduler identity of the activated entity
	Frame    int64
	Reason   string // terminate reason; empty for activation and normal completion
	Snapshot any    // configuration snapshot with subscriber identity redacted
}
