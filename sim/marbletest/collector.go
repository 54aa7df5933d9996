package marbletest

import (
	"github.com/inference-sim/marblesim/sim"
	"github.com/inference-sim/marblesim/sim/cold"
	"github.com/inference-sim/marblesim/sim/marble"
)

// Collector is a subscriber that records every notification with the frame
// it arrived at. Anything that is not a marble.Notification is recorded as
// a next value.
type Collector struct {
	events []marble.TimedEvent
}

// Receive records msg.
func (c *Collector) Receive(env sim.Env, _ sim.EntityID, msg any) []sim.Send {
	n, ok := msg.(marble.Notification)
	if !ok {
		n = marble.Next(msg)
	}
	c.events = append(c.events, marble.At(env.Now, n))
	return nil
}

// Events returns a copy of what has been recorded so far.
func (c *Collector) Events() []marble.TimedEvent {
	return append([]marble.TimedEvent{}, c.events...)
}

// Subscription is one activation of a source made through a Harness.
type Subscription struct {
	collector *Collector
	source    *cold.Observable
	id        sim.EntityID
}

// Events returns what the subscriber received.
func (s *Subscription) Events() []marble.TimedEvent { return s.collector.Events() }

// Source returns the entity identity of the activation, or sim.NoEntity
// before the subscription frame.
func (s *Subscription) Source() sim.EntityID { return s.id }

// Stage is a pipeline step between a source and its collector. It maps one
// incoming notification to zero or more outgoing ones, delivered downstream
// at the same frame.
type Stage func(n marble.Notification) []marble.Notification

// Map builds a Stage applying fn to next values and passing terminals through.
func Map(fn func(v any) any) Stage {
	return func(n marble.Notification) []marble.Notification {
		if n.Kind == marble.KindNext {
			return []marble.Notification{marble.Next(fn(n.Value))}
		}
		return []marble.Notification{n}
	}
}

// Filter builds a Stage dropping next values for which keep returns false.
func Filter(keep func(v any) bool) Stage {
	return func(n marble.Notification) []marble.Notification {
		if n.Kind == marble.KindNext && !keep(n.Value) {
			return nil
		}
		return []marble.Notification{n}
	}
}

type stageReceiver struct {
	stage Stage
	next  sim.EntityID
}

func (r stageReceiver) Receive(_ sim.Env, _ sim.EntityID, msg any) []sim.Send {
	n, ok := msg.(marble.Notification)
	if !ok {
		return nil
	}
	out := r.stage(n)
	sends := make([]sim.Send, 0, len(out))
	for _, o := range out {
		sends = append(sends, sim.Send{To: r.next, Message: o})
	}
	return sends
}
