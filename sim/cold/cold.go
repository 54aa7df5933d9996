// Package cold implements the cold observable replay engine: a source whose
// timed notifications are fixed at construction and replayed, relative to
// the activation frame, to whichever subscriber activates it.
package cold

import (
	"fmt"

	"github.com/inference-sim/marblesim/sim"
	"github.com/inference-sim/marblesim/sim/marble"
	"github.com/inference-sim/marblesim/sim/trace"
)

// Redacted replaces the subscriber identity in diagnostic snapshots.
const Redacted = "[redacted]"

// Observable is a cold source. One Observable may be activated any number of
// times; each activation is a separate entity with its own State.
type Observable struct {
	name   string
	events []marble.TimedEvent
	sink   trace.Sink
}

var _ sim.Schedulable[State] = (*Observable)(nil)

// Option configures an Observable.
type Option func(*Observable)

// WithSink reports activation and deactivation to sink.
func WithSink(sink trace.Sink) Option {
	return func(o *Observable) { o.sink = sink }
}

// WithName sets the source name used in diagnostic records.
func WithName(name string) Option {
	return func(o *Observable) { o.name = name }
}

// New creates an Observable replaying events. The slice is copied.
func New(events []marble.TimedEvent, opts ...Option) *Observable {
	o := &Observable{
		name:   "cold",
		events: append([]marble.TimedEvent(nil), events...),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// FromDiagram compiles diagram and creates an Observable replaying it.
func FromDiagram(diagram string, values marble.Values, errorValue any, opts ...Option) (*Observable, error) {
	events, err := marble.Compile(diagram, values, errorValue)
	if err != nil {
		return nil, fmt.Errorf("cold observable: %w", err)
	}
	return New(events, opts...), nil
}

// Name returns the source name.
func (o *Observable) Name() string { return o.name }

// Events returns a copy of the notifications this source replays.
func (o *Observable) Events() []marble.TimedEvent {
	return append([]marble.TimedEvent(nil), o.events...)
}

// State is the per-activation state.
type State struct {
	StartedBy sim.EntityID
}

// Snapshot is the configuration reported to the diagnostic sink.
type Snapshot struct {
	Name      string
	Events    []marble.TimedEvent
	StartedBy string
}

func (o *Observable) snapshot() Snapshot {
	return Snapshot{Name: o.name, Events: o.Events(), StartedBy: Redacted}
}

type (
	sendNext  struct{ value any }
	sendError struct{ reason any }
	sendDone  struct{}
)

func payloadFor(n marble.Notification) any {
	switch n.Kind {
	case marble.KindError:
		return sendError{reason: n.Value}
	case marble.KindDone:
		return sendDone{}
	default:
		return sendNext{value: n.Value}
	}
}

// Init activates the source for the subscriber passed as args, which must
// be a sim.EntityID. One task is submitted per event, due at its frame.
func (o *Observable) Init(env sim.Env, args any) sim.InitResult[State] {
	subscriber, ok := args.(sim.EntityID)
	if !ok || subscriber == sim.NoEntity {
		return sim.Refused[State](fmt.Errorf("cold observable %s: subscriber must be a sim.EntityID, got %T(%v)", o.name, args, args))
	}
	o.report(trace.Activated, env, nil)

	tasks := make([]sim.Task, 0, len(o.events))
	for _, e := range o.events {
		tasks = append(tasks, sim.Task{Delay: e.Frame, Payload: payloadFor(e.Notification)})
	}
	return sim.Started(State{StartedBy: subscriber}, tasks...)
}

// HandleTask sends the notification a task stands for to the subscriber.
// The source stops after an error or completion.
func (o *Observable) HandleTask(_ sim.Env, payload any, state State) sim.Result[State] {
	to := state.StartedBy
	switch p := payload.(type) {
	case sendNext:
		return sim.Continue(state, sim.Send{To: to, Message: marble.Next(p.value)})
	case sendError:
		return sim.Stop(nil, state, sim.Send{To: to, Message: marble.Error(p.reason)})
	case sendDone:
		return sim.Stop(nil, state, sim.Send{To: to, Message: marble.Done()})
	case sim.Message:
		// cold sources take no input
		return sim.Continue(state)
	default:
		return sim.Stop(fmt.Errorf("cold observable %s: unexpected task payload %T", o.name, payload), state)
	}
}

// Terminate reports deactivation. The subscriber identity is dropped with
// the state.
func (o *Observable) Terminate(env sim.Env, reason error, _ State) {
	o.report(trace.Deactivated, env, reason)
}

func (o *Observable) report(kind trace.Kind, env sim.Env, reason error) {
	if o.sink == nil {
		return
	}
	rec := trace.Record{
		Kind:     kind,
		Source:   o.name,
		Entity:   uint64(env.Self),
		Frame:    env.Now,
		Snapshot: o.snapshot(),
	}
	if reason != nil {
		rec.Reason = reason.Error()
	}
	o.sink.Report(rec)
}

// Subscribe activates o on sch at the current frame on behalf of subscriber
// and returns the identity of the activation.
func Subscribe(sch *sim.Scheduler, o *Observable, subscriber sim.EntityID) (sim.EntityID, error) {
	return sim.Spawn[State](sch, o, subscriber)
}
