// Package marbletest runs cold sources through optional pipeline stages
// under a virtual clock and checks what arrived against marble diagrams.
//
//	h := marbletest.New()
//	src, _ := h.Cold("-a-b-|", nil)
//	sub, _ := h.Subscribe(src, "^---!")
//	_ = h.Run()
//	err := h.ExpectEvents(sub, "-a-b", nil)
package marbletest

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/marblesim/sim"
	"github.com/inference-sim/marblesim/sim/cold"
	"github.com/inference-sim/marblesim/sim/marble"
	"github.com/inference-sim/marblesim/sim/trace"
)

// ErrMismatch is wrapped by every failed expectation.
var ErrMismatch = errors.New("marble mismatch")

// Harness owns one scheduler, one trace recorder and the subscriptions made
// through it. It is single-use: build, subscribe, Run, then expect.
type Harness struct {
	Scheduler *sim.Scheduler
	Trace     *trace.Recorder
	RunID     uuid.UUID

	log        *logrus.Entry
	sink       trace.Sink
	errorValue any
	sources    int
	errs       []error
}

// Option configures a Harness.
type Option func(*harnessConfig)

type harnessConfig struct {
	horizon    int64
	logger     *logrus.Entry
	errorValue any
}

// WithHorizon bounds the run to frames.
func WithHorizon(frames int64) Option {
	return func(c *harnessConfig) { c.horizon = frames }
}

// WithLogger sends scheduler and lifecycle logs to logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(c *harnessConfig) { c.logger = logger }
}

// WithErrorValue sets the reason '#' stands for in every diagram of the run.
func WithErrorValue(v any) Option {
	return func(c *harnessConfig) { c.errorValue = v }
}

// New creates a Harness at frame 0.
func New(opts ...Option) *Harness {
	cfg := harnessConfig{logger: logrus.NewEntry(logrus.StandardLogger())}
	for _, opt := range opts {
		opt(&cfg)
	}

	runID := uuid.New()
	log := cfg.logger.WithField("run", runID.String())
	sch := sim.NewScheduler(cfg.horizon)
	sch.Log = log
	rec := trace.NewRecorder()

	return &Harness{
		Scheduler:  sch,
		Trace:      rec,
		RunID:      runID,
		log:        log,
		sink:       trace.Multi(rec, trace.NewLogSink(log)),
		errorValue: cfg.errorValue,
	}
}

// Cold compiles diagram into a cold source reporting to the harness trace.
// Sources are named cold-1, cold-2, ... in creation order.
func (h *Harness) Cold(diagram string, values marble.Values) (*cold.Observable, error) {
	h.sources++
	name := fmt.Sprintf("cold-%d", h.sources)
	return cold.FromDiagram(diagram, values, h.errorValue, cold.WithSink(h.sink), cold.WithName(name))
}

// Subscribe attaches a collector to src through stages, applied in order.
// window is a subscription diagram: the source is activated at its '^'
// (frame 0 when absent) and cancelled at its '!' when present.
func (h *Harness) Subscribe(src *cold.Observable, window string, stages ...Stage) (*Subscription, error) {
	w, err := marble.CompileWindow(window)
	if err != nil {
		return nil, fmt.Errorf("subscription window: %w", err)
	}
	var at int64
	if w.Subscribed != nil {
		at = *w.Subscribed
	}
	if w.Unsubscribed != nil && *w.Unsubscribed < at {
		return nil, fmt.Errorf("subscription window %q: unsubscription at %d precedes subscription at %d", window, *w.Unsubscribed, at)
	}

	sub := &Subscription{collector: &Collector{}, source: src}
	downstream := h.Scheduler.Register(sub.collector)
	for i := len(stages) - 1; i >= 0; i-- {
		downstream = h.Scheduler.Register(stageReceiver{stage: stages[i], next: downstream})
	}

	h.Scheduler.At(at, func() {
		id, err := cold.Subscribe(h.Scheduler, src, downstream)
		if err != nil {
			h.errs = append(h.errs, err)
			return
		}
		sub.id = id
		h.log.Debugf("[frame %07d] %s subscribed as entity %d", h.Scheduler.Now(), src.Name(), id)
	})
	if w.Unsubscribed != nil {
		h.Scheduler.At(*w.Unsubscribed, func() {
			h.Scheduler.Cancel(sub.id)
		})
	}
	return sub, nil
}

// Run drives the clock until nothing is left to do or the horizon is
// reached.
func (h *Harness) Run() error {
	err := h.Scheduler.Run()
	return errors.Join(append(h.errs, err)...)
}

// ExpectEvents compares what sub received with diagram, compiled with values
// and the harness error value.
func (h *Harness) ExpectEvents(sub *Subscription, diagram string, values marble.Values) error {
	want, err := marble.Compile(diagram, values, h.errorValue)
	if err != nil {
		return fmt.Errorf("expected diagram: %w", err)
	}
	got := sub.Events()
	if reflect.DeepEqual(want, got) {
		return nil
	}
	return fmt.Errorf("%w: %s\n  expected: %s\n  received: %s", ErrMismatch,
		sub.source.Name(), describe(want, values), describe(got, values))
}

// ExpectSubscriptions compares the activation windows of src with the given
// subscription diagrams, one per activation in order.
func (h *Harness) ExpectSubscriptions(src *cold.Observable, windows ...string) error {
	want := make([]marble.SubscriptionWindow, 0, len(windows))
	for _, d := range windows {
		w, err := marble.CompileWindow(d)
		if err != nil {
			return fmt.Errorf("expected subscription: %w", err)
		}
		want = append(want, w)
	}
	got := h.Trace.Windows(src.Name())
	if reflect.DeepEqual(want, got) {
		return nil
	}
	return fmt.Errorf("%w: %s subscriptions\n  expected: %v\n  received: %v", ErrMismatch, src.Name(), want, got)
}

// describe renders events as a diagram when possible and as a list otherwise.
func describe(events []marble.TimedEvent, values marble.Values) string {
	if d, err := marble.Render(events, values); err == nil {
		return fmt.Sprintf("%q %v", d, events)
	}
	return fmt.Sprintf("%v", events)
}
