package trace

import "github.com/inference-sim/marblesim/sim/marble"

// Sink receives lifecycle records.
type Sink interface {
	Report(r Record)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(r Record)

// Report calls f.
func (f SinkFunc) Report(r Record) { f(r) }

// Multi fans every record out to each non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	kept := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return SinkFunc(func(r Record) {
		for _, s := range kept {
			s.Report(r)
		}
	})
}

// Recorder collects records in the order they were reported.
type Recorder struct {
	Records []Record
}

// NewRecorder creates a Recorder ready for recording.
func NewRecorder() *Recorder {
	return &Recorder{Records: make([]Record, 0)}
}

// Report appends a record.
func (r *Recorder) Report(rec Record) {
	r.Records = append(r.Records, rec)
}

// Windows returns one subscription window per activation of source, in
// activation order. An activation without a matching deactivation has an
// absent Unsubscribed frame.
func (r *Recorder) Windows(source string) []marble.SubscriptionWindow {
	windows := make([]marble.SubscriptionWindow, 0)
	open := make(map[uint64]int)
	for _, rec := range r.Records {
		if rec.Source != source {
			continue
		}
		frame := rec.Frame
		switch rec.Kind {
		case Activated:
			open[rec.Entity] = len(windows)
			windows = append(windows, marble.SubscriptionWindow{Subscribed: &frame})
		case Deactivated:
			if i, ok := open[rec.Entity]; ok {
				windows[i].Unsubscribed = &frame
				delete(open, rec.Entity)
			}
		}
	}
	return windows
}
