package cold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/marblesim/sim"
	"github.com/inference-sim/marblesim/sim/marble"
	"github.com/inference-sim/marblesim/sim/trace"
)

type subscriber struct {
	got []marble.TimedEvent
}

func (s *subscriber) Receive(env sim.Env, _ sim.EntityID, msg any) []sim.Send {
	s.got = append(s.got, marble.At(env.Now, msg.(marble.Notification)))
	return nil
}

func TestObservable_ReplaysDiagramToSubscriber(t *testing.T) {
	// GIVEN a cold observable compiled from "-a-b-|" and an attached subscriber
	rec := trace.NewRecorder()
	obs, err := FromDiagram("-a-b-|", nil, nil, WithSink(rec), WithName("src"))
	require.NoError(t, err)
	sch := sim.NewScheduler(0)
	sub := &subscriber{}
	subID := sch.Register(sub)
	id, err := Subscribe(sch, obs, subID)
	require.NoError(t, err)

	// WHEN the clock runs to completion
	require.NoError(t, sch.Run())

	// THEN the subscriber saw exactly the diagram, in order
	assert.Equal(t, []marble.TimedEvent{
		marble.At(10, marble.Next("a")),
		marble.At(30, marble.Next("b")),
		marble.At(50, marble.Done()),
	}, sub.got)

	// AND terminate ran exactly once, after Done
	require.Len(t, rec.Records, 2)
	assert.Equal(t, trace.Activated, rec.Records[0].Kind)
	assert.Equal(t, int64(0), rec.Records[0].Frame)
	assert.Equal(t, trace.Deactivated, rec.Records[1].Kind)
	assert.Equal(t, int64(50), rec.Records[1].Frame)
	assert.Equal(t, uint64(id), rec.Records[1].Entity)
	assert.Empty(t, rec.Records[1].Reason)
	assert.False(t, sch.Alive(id))
}

func TestObservable_FramesRelativeToActivation(t *testing.T) {
	obs := New(marble.MustCompile("a-(bc)|", nil, nil))
	sch := sim.NewScheduler(0)
	sub := &subscriber{}
	subID := sch.Register(sub)
	sch.At(40, func() {
		_, err := Subscribe(sch, obs, subID)
		require.NoError(t, err)
	})

	require.NoError(t, sch.Run())

	assert.Equal(t, []marble.TimedEvent{
		marble.At(40, marble.Next("a")),
		marble.At(60, marble.Next("b")),
		marble.At(60, marble.Next("c")),
		marble.At(70, marble.Done()),
	}, sub.got)
}

func TestObservable_ErrorStopsReplay(t *testing.T) {
	obs, err := FromDiagram("-a#-b|", nil, "boom")
	require.NoError(t, err)
	sch := sim.NewScheduler(0)
	sub := &subscriber{}
	_, err = Subscribe(sch, obs, sch.Register(sub))
	require.NoError(t, err)

	require.NoError(t, sch.Run())

	assert.Equal(t, []marble.TimedEvent{
		marble.At(10, marble.Next("a")),
		marble.At(20, marble.Error("boom")),
	}, sub.got)
}

func TestObservable_Cancel_ReportsUnsubscription(t *testing.T) {
	// GIVEN a subscription cancelled at frame 25
	rec := trace.NewRecorder()
	obs := New(marble.MustCompile("-a-b-c|", nil, nil), WithSink(rec))
	sch := sim.NewScheduler(0)
	sub := &subscriber{}
	id, err := Subscribe(sch, obs, sch.Register(sub))
	require.NoError(t, err)
	sch.At(25, func() { sch.Cancel(id) })

	// WHEN run
	require.NoError(t, sch.Run())

	// THEN nothing after 25 was delivered and deactivation carries the reason
	assert.Equal(t, []marble.TimedEvent{marble.At(10, marble.Next("a"))}, sub.got)
	assert.Equal(t, []marble.SubscriptionWindow{marble.Window(0, 25)}, rec.Windows("cold"))
	assert.Equal(t, sim.ErrUnsubscribed.Error(), rec.Records[1].Reason)
}

func TestObservable_NeverCompletes_TerminatedAtShutdown(t *testing.T) {
	rec := trace.NewRecorder()
	obs := New(marble.MustCompile("-a--", nil, nil), WithSink(rec))
	sch := sim.NewScheduler(0)
	id, err := Subscribe(sch, obs, sch.Register(&subscriber{}))
	require.NoError(t, err)

	require.NoError(t, sch.Run())
	assert.True(t, sch.Alive(id))
	sch.Shutdown()

	require.Len(t, rec.Records, 2)
	assert.Equal(t, sim.ErrShutdown.Error(), rec.Records[1].Reason)
}

func TestObservable_SnapshotRedactsSubscriber(t *testing.T) {
	rec := trace.NewRecorder()
	obs := New(marble.MustCompile("a|", nil, nil), WithSink(rec), WithName("snap"))
	sch := sim.NewScheduler(0)
	_, err := Subscribe(sch, obs, sch.Register(&subscriber{}))
	require.NoError(t, err)

	snap, ok := rec.Records[0].Snapshot.(Snapshot)
	require.True(t, ok)
	assert.Equal(t, Redacted, snap.StartedBy)
	assert.Equal(t, "snap", snap.Name)
	assert.Equal(t, obs.Events(), snap.Events)
}

func TestObservable_RefusesNonEntitySubscriber(t *testing.T) {
	sch := sim.NewScheduler(0)
	obs := New(nil)

	_, err := sim.Spawn[State](sch, obs, "not an id")
	assert.ErrorIs(t, err, sim.ErrRefused)

	_, err = Subscribe(sch, obs, sim.NoEntity)
	assert.ErrorIs(t, err, sim.ErrRefused)
}

func TestObservable_ReplaysIdenticallyPerActivation(t *testing.T) {
	obs := New(marble.MustCompile("-x|", nil, nil))
	sch := sim.NewScheduler(0)
	first, second := &subscriber{}, &subscriber{}
	_, err := Subscribe(sch, obs, sch.Register(first))
	require.NoError(t, err)
	sch.At(100, func() {
		_, err := Subscribe(sch, obs, sch.Register(second))
		require.NoError(t, err)
	})

	require.NoError(t, sch.Run())

	assert.Equal(t, []marble.TimedEvent{marble.At(10, marble.Next("x")), marble.At(20, marble.Done())}, first.got)
	assert.Equal(t, []marble.TimedEvent{marble.At(110, marble.Next("x")), marble.At(120, marble.Done())}, second.got)
}

func TestFromDiagram_InvalidDiagram(t *testing.T) {
	_, err := FromDiagram("-!-", nil, nil)
	assert.ErrorIs(t, err, marble.ErrInvalidDiagram)
}

func TestObservable_EventsIsACopy(t *testing.T) {
	events := marble.MustCompile("ab", nil, nil)
	obs := New(events)
	events[0] = marble.At(99, marble.Done())

	got := obs.Events()
	got[1] = marble.At(99, marble.Done())

	assert.Equal(t, marble.MustCompile("ab", nil, nil), obs.Events())
}
