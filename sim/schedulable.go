package sim

import "errors"

// EntityID identifies a registered entity within one Scheduler.
type EntityID uint64

// NoEntity is the zero EntityID; no registered entity ever carries it.
const NoEntity EntityID = 0

var (
	// ErrUnsubscribed is the terminate reason for an entity removed by Cancel.
	ErrUnsubscribed = errors.New("unsubscribed")
	// ErrShutdown is the terminate reason for entities still alive at Shutdown.
	ErrShutdown = errors.New("scheduler shutdown")
	// ErrRefused wraps the reason an entity gave for refusing to start.
	ErrRefused = errors.New("entity refused to start")
)

// Env is what a handler may know about the world: the current frame and
// its own identity.
type Env struct {
	Now  int64
	Self EntityID
}

// Task is a callback payload due Delay frames after the frame it was
// submitted at.
type Task struct {
	Delay   int64
	Payload any
}

// Send is an outbound message effect. Delay 0 delivers at the current frame,
// after the handler that produced it has returned.
type Send struct {
	Delay   int64
	To      EntityID
	Message any
}

// Message wraps a Send delivered to a Schedulable, which sees it as a task
// payload.
type Message struct {
	From EntityID
	Body any
}

type initAction int

const (
	initStarted initAction = iota
	initIgnored
	initRefused
)

// InitResult is the outcome of Schedulable.Init. Build it with Started,
// Ignored or Refused.
type InitResult[S any] struct {
	action initAction
	state  S
	tasks  []Task
	reason error
}

// Started accepts activation with an initial state and tasks to submit at once.
func Started[S any](state S, tasks ...Task) InitResult[S] {
	return InitResult[S]{action: initStarted, state: state, tasks: tasks}
}

// Ignored declines activation without an error. Terminate is not called.
func Ignored[S any]() InitResult[S] {
	return InitResult[S]{action: initIgnored}
}

// Refused declines activation with a reason. Terminate is not called.
func Refused[S any](reason error) InitResult[S] {
	return InitResult[S]{action: initRefused, reason: reason}
}

// Result is the outcome of Schedulable.HandleTask. Build it with Continue or Stop.
type Result[S any] struct {
	state  S
	sends  []Send
	stop   bool
	reason error
}

// Continue keeps the entity alive with a new state and zero or more sends.
func Continue[S any](state S, sends ...Send) Result[S] {
	return Result[S]{state: state, sends: sends}
}

// Stop ends the entity. A nil reason is normal completion; anything else is
// a failure reported by Scheduler.Run. Sends are still delivered, and
// Terminate runs after every same-frame send has been.
func Stop[S any](reason error, state S, sends ...Send) Result[S] {
	return Result[S]{state: state, sends: sends, stop: true, reason: reason}
}

// Schedulable is the lifecycle every time-driven entity implements. The
// scheduler owns the state between calls; handlers never run concurrently.
type Schedulable[S any] interface {
	// Init is called once at activation with the spawn arguments.
	Init(env Env, args any) InitResult[S]
	// HandleTask is called for each due task and for each Message sent to the entity.
	HandleTask(env Env, payload any, state S) Result[S]
	// Terminate is called exactly once after a started entity stops for any reason.
	Terminate(env Env, reason error, state S)
}

// NopTerminate can be embedded by entities with nothing to release.
type NopTerminate[S any] struct{}

// Terminate does nothing.
func (NopTerminate[S]) Terminate(Env, error, S) {}

// Receiver is a plain mailbox entity: a subscriber or a pipeline stage. It
// has no tasks and no lifecycle of its own.
type Receiver interface {
	Receive(env Env, from EntityID, msg any) []Send
}

// ReceiverFunc adapts a function to Receiver.
type ReceiverFunc func(env Env, from EntityID, msg any) []Send

// Receive calls f.
func (f ReceiverFunc) Receive(env Env, from EntityID, msg any) []Send {
	return f(env, from, msg)
}

// Clock is the narrow view of the virtual clock authority that entities
// and harnesses depend on.
type Clock interface {
	Schedule(id EntityID, delay int64, payload any)
	Now() int64
	Cancel(id EntityID)
}
