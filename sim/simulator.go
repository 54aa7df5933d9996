// sim/simulator.go
package sim

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// EntityError reports an entity that stopped with a non-nil reason.
type EntityError struct {
	ID    EntityID
	Frame int64
	Err   error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("entity %d failed at frame %d: %v", e.ID, e.Frame, e.Err)
}

func (e *EntityError) Unwrap() error { return e.Err }

// process is the type-erased view of a registered entity.
type process interface {
	handle(env Env, payload any) (sends []Send, stop bool, reason error)
	deliver(env Env, from EntityID, body any) (sends []Send, stop bool, reason error)
	terminate(env Env, reason error)
}

type schedulableProcess[S any] struct {
	entity Schedulable[S]
	state  S
}

func (p *schedulableProcess[S]) handle(env Env, payload any) ([]Send, bool, error) {
	res := p.entity.HandleTask(env, payload, p.state)
	p.state = res.state
	return res.sends, res.stop, res.reason
}

func (p *schedulableProcess[S]) deliver(env Env, from EntityID, body any) ([]Send, bool, error) {
	return p.handle(env, Message{From: from, Body: body})
}

func (p *schedulableProcess[S]) terminate(env Env, reason error) {
	p.entity.Terminate(env, reason, p.state)
}

type receiverProcess struct {
	r Receiver
}

func (p receiverProcess) handle(env Env, payload any) ([]Send, bool, error) {
	return p.r.Receive(env, NoEntity, payload), false, nil
}

func (p receiverProcess) deliver(env Env, from EntityID, body any) ([]Send, bool, error) {
	return p.r.Receive(env, from, body), false, nil
}

func (receiverProcess) terminate(Env, error) {}

type entity struct {
	proc     process
	stopping bool
}

// Scheduler is the virtual clock authority. It owns simulated time and a
// single queue of due work, and dispatches that work in ascending
// (frame, submission order). Everything runs on the caller's goroutine;
// a Scheduler must not be shared between goroutines.
type Scheduler struct {
	clock       int64
	horizon     int64
	seq         uint64
	lastID      EntityID
	queue       itemQueue
	entities    map[EntityID]*entity
	deadLetters int
	failure     *EntityError

	// Log receives one debug line per dispatched item.
	Log *logrus.Entry
}

var _ Clock = (*Scheduler)(nil)

// NewScheduler creates a scheduler at frame 0. Work due after horizon is
// never dispatched; horizon <= 0 means no limit.
func NewScheduler(horizon int64) *Scheduler {
	if horizon <= 0 {
		horizon = math.MaxInt64
	}
	return &Scheduler{
		horizon:  horizon,
		queue:    make(itemQueue, 0),
		entities: make(map[EntityID]*entity),
		Log:      logrus.NewEntry(logrus.StandardLogger()),
	}
}

// Now returns the current frame.
func (s *Scheduler) Now() int64 { return s.clock }

// Horizon returns the last frame the scheduler will dispatch.
func (s *Scheduler) Horizon() int64 { return s.horizon }

// Pending returns the number of queued items.
func (s *Scheduler) Pending() int { return len(s.queue) }

// DeadLetters returns how many messages were addressed to entities that were
// unknown or no longer alive when they came due.
func (s *Scheduler) DeadLetters() int { return s.deadLetters }

// Alive reports whether id is registered and has not stopped.
func (s *Scheduler) Alive(id EntityID) bool {
	e, ok := s.entities[id]
	return ok && !e.stopping
}

func (s *Scheduler) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func (s *Scheduler) push(it item) {
	it.seq = s.nextSeq()
	heap.Push(&s.queue, it)
}

func (s *Scheduler) register(p process) EntityID {
	s.lastID++
	s.entities[s.lastID] = &entity{proc: p}
	return s.lastID
}

// Spawn activates a schedulable entity at the current frame. Its Init runs
// immediately and the tasks it returns are submitted relative to Now. An
// entity that ignores activation yields NoEntity and no error.
func Spawn[S any](s *Scheduler, e Schedulable[S], args any) (EntityID, error) {
	if e == nil {
		panic("sim: Spawn called with a nil entity")
	}
	s.lastID++
	id := s.lastID
	res := e.Init(Env{Now: s.clock, Self: id}, args)
	switch res.action {
	case initIgnored:
		s.Log.Debugf("[frame %07d] entity %d ignored activation", s.clock, id)
		return NoEntity, nil
	case initRefused:
		return NoEntity, fmt.Errorf("%w: entity %d: %w", ErrRefused, id, res.reason)
	}
	s.entities[id] = &entity{proc: &schedulableProcess[S]{entity: e, state: res.state}}
	s.Log.Debugf("[frame %07d] entity %d started with %d tasks", s.clock, id, len(res.tasks))
	for _, t := range res.tasks {
		s.Schedule(id, t.Delay, t.Payload)
	}
	return id, nil
}

// Register adds a mailbox entity that only receives messages.
func (s *Scheduler) Register(r Receiver) EntityID {
	if r == nil {
		panic("sim: Register called with a nil receiver")
	}
	return s.register(receiverProcess{r: r})
}

// Schedule submits a task for id, due delay frames from now.
func (s *Scheduler) Schedule(id EntityID, delay int64, payload any) {
	if delay < 0 {
		panic(fmt.Sprintf("sim: negative delay %d", delay))
	}
	s.push(item{due: s.clock + delay, kind: itemTask, to: id, payload: payload})
}

// Send submits a message from one entity to another.
func (s *Scheduler) Send(from EntityID, send Send) {
	if send.Delay < 0 {
		panic(fmt.Sprintf("sim: negative delay %d", send.Delay))
	}
	s.push(item{due: s.clock + send.Delay, kind: itemMessage, to: send.To, from: from, payload: send.Message})
}

// At runs fn when the clock reaches frame. Frames already in the past run
// at the current frame.
func (s *Scheduler) At(frame int64, fn func()) {
	s.push(item{due: max(frame, s.clock), kind: itemCall, fn: fn})
}

// Cancel unsubscribes id: its still-pending tasks and inbound messages are
// discarded and, for a schedulable entity, Terminate runs with
// ErrUnsubscribed before anything else happens. Cancelling an entity that
// is unknown or already stopping does nothing.
func (s *Scheduler) Cancel(id EntityID) {
	e, ok := s.entities[id]
	if !ok || e.stopping {
		return
	}
	s.drop(id)
	delete(s.entities, id)
	s.Log.Debugf("[frame %07d] entity %d cancelled", s.clock, id)
	e.proc.terminate(Env{Now: s.clock, Self: id}, ErrUnsubscribed)
}

func (s *Scheduler) drop(id EntityID) {
	s.queue = s.queue.without(id)
	heap.Init(&s.queue)
}

// Run dispatches queued work until the queue is empty, the horizon is
// passed, or an entity fails. The first failure is returned as an
// *EntityError after that entity has been terminated.
func (s *Scheduler) Run() error {
	return s.runUntil(s.horizon)
}

// AdvanceTo dispatches work due at or before frame and then moves the clock
// to frame. The clock never moves past the horizon.
func (s *Scheduler) AdvanceTo(frame int64) error {
	target := min(frame, s.horizon)
	if err := s.runUntil(target); err != nil {
		return err
	}
	if target > s.clock {
		s.clock = target
	}
	return nil
}

func (s *Scheduler) runUntil(limit int64) error {
	if s.failure != nil {
		return s.failure
	}
	for len(s.queue) > 0 {
		if s.queue[0].due > limit {
			break
		}
		it := heap.Pop(&s.queue).(item)
		s.clock = it.due
		s.Log.Debugf("[frame %07d] dispatching %s to entity %d", s.clock, it.kind, it.to)
		s.dispatch(it)
		if s.failure != nil {
			return s.failure
		}
	}
	return nil
}

func (s *Scheduler) dispatch(it item) {
	if it.kind == itemCall {
		it.fn()
		return
	}

	e, ok := s.entities[it.to]
	env := Env{Now: s.clock, Self: it.to}
	if it.kind == itemTerminate {
		if !ok {
			return
		}
		delete(s.entities, it.to)
		e.proc.terminate(env, it.reason)
		if it.reason != nil {
			s.failure = &EntityError{ID: it.to, Frame: s.clock, Err: it.reason}
		}
		return
	}
	if !ok || e.stopping {
		if it.kind == itemMessage {
			s.deadLetters++
			s.Log.Debugf("[frame %07d] dead letter from entity %d to entity %d: %v", s.clock, it.from, it.to, it.payload)
		}
		return
	}

	var (
		sends  []Send
		stop   bool
		reason error
	)
	if it.kind == itemMessage {
		sends, stop, reason = e.proc.deliver(env, it.from, it.payload)
	} else {
		sends, stop, reason = e.proc.handle(env, it.payload)
	}
	for _, send := range sends {
		s.Send(it.to, send)
	}
	if stop {
		e.stopping = true
		s.drop(it.to)
		s.push(item{due: s.clock, kind: itemTerminate, to: it.to, reason: reason})
	}
}

// Shutdown terminates every entity still alive with ErrShutdown and empties
// the queue. Entities already stopping are terminated with their own reason.
func (s *Scheduler) Shutdown() {
	pending := make(map[EntityID]error)
	for _, it := range s.queue {
		if it.kind == itemTerminate {
			pending[it.to] = it.reason
		}
	}
	s.queue = s.queue[:0]

	ids := make([]EntityID, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		e := s.entities[id]
		delete(s.entities, id)
		reason := ErrShutdown
		if e.stopping {
			reason = pending[id]
		}
		e.proc.terminate(Env{Now: s.clock, Self: id}, reason)
	}
	s.Log.Debugf("[frame %07d] scheduler shut down, %d entities terminated", s.clock, len(ids))
}
