// Package marble compiles marble diagrams into timed notification sequences
// and subscription windows, and renders timed sequences back into diagrams.
//
// One diagram character outside a group is one FrameUnit of virtual time.
// The grammar:
//
//	'-' or ' '  idle, advances time
//	'^'         subscription point; time restarts at zero
//	'(' ... ')' group; every event inside shares one frame
//	'|'         completion
//	'#'         error
//	'!'         unsubscription point (subscription diagrams only)
//	anything    a next value, optionally substituted through Values
//
// This package has no dependency on sim/. It is pure data and pure functions.
package marble

import "fmt"

// FrameUnit is the number of frames one diagram character occupies.
const FrameUnit int64 = 10

// DefaultErrorValue is the reason carried by '#' when the caller supplies none.
const DefaultErrorValue = "error"

// Kind tags the variant of a Notification.
type Kind int

const (
	// KindNext carries a value.
	KindNext Kind = iota
	// KindError carries a reason and terminates the stream.
	KindError
	// KindDone terminates the stream without a payload.
	KindDone
)

func (k Kind) String() string {
	switch k {
	case KindNext:
		return "next"
	case KindError:
		return "error"
	case KindDone:
		return "done"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Notification is one stream event. Value is the next value for KindNext,
// the reason for KindError and always nil for KindDone.
type Notification struct {
	Kind  Kind
	Value any
}

// Next returns a KindNext notification carrying v.
func Next(v any) Notification { return Notification{Kind: KindNext, Value: v} }

// Error returns a KindError notification carrying reason.
func Error(reason any) Notification { return Notification{Kind: KindError, Value: reason} }

// Done returns a KindDone notification.
func Done() Notification { return Notification{Kind: KindDone} }

// IsTerminal reports whether n ends a stream.
func (n Notification) IsTerminal() bool {
	return n.Kind == KindError || n.Kind == KindDone
}

func (n Notification) String() string {
	switch n.Kind {
	case KindNext:
		return fmt.Sprintf("next(%v)", n.Value)
	case KindError:
		return fmt.Sprintf("error(%v)", n.Value)
	default:
		return n.Kind.String()
	}
}

// TimedEvent is a notification pinned to a virtual frame.
type TimedEvent struct {
	Frame        int64
	Notification Notification
}

func (e TimedEvent) String() string {
	return fmt.Sprintf("%d:%s", e.Frame, e.Notification)
}

// At is shorthand for building expected sequences by hand.
func At(frame int64, n Notification) TimedEvent {
	return TimedEvent{Frame: frame, Notification: n}
}

// Values maps single-character diagram symbols to the values they stand for.
// Symbols absent from the table emit the raw character as a string.
type Values map[string]any

func (v Values) lookup(c rune) any {
	if val, ok := v[string(c)]; ok {
		return val
	}
	return string(c)
}

// SubscriptionWindow is the compiled form of a subscription diagram.
// A nil field means the marker was absent.
type SubscriptionWindow struct {
	Subscribed   *int64
	Unsubscribed *int64
}

// Window builds a SubscriptionWindow with both markers present.
func Window(subscribed, unsubscribed int64) SubscriptionWindow {
	return SubscriptionWindow{Subscribed: &subscribed, Unsubscribed: &unsubscribed}
}

// OpenWindow builds a SubscriptionWindow that never unsubscribes.
func OpenWindow(subscribed int64) SubscriptionWindow {
	return SubscriptionWindow{Subscribed: &subscribed}
}

func (w SubscriptionWindow) String() string {
	return fmt.Sprintf("{subscribed: %s, unsubscribed: %s}", frameString(w.Subscribed), frameString(w.Unsubscribed))
}

func frameString(f *int64) string {
	if f == nil {
		return "absent"
	}
	return fmt.Sprintf("%d", *f)
}
