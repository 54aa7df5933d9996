// Package sim provides the deterministic virtual-time scheduler behind
// marblesim.
//
// # Reading Guide
//
// Start with these three files to understand the kernel:
//   - schedulable.go: the actor contract (Init, HandleTask, Terminate) and its result types
//   - queue.go: the pending-work heap ordered by (frame, submission order)
//   - simulator.go: the Scheduler, its dispatch loop and entity lifecycle
//
// # Architecture
//
// The sim package owns time and identity; everything with marble semantics
// lives in sub-packages:
//   - sim/marble/: diagram compiler, subscription windows and rendering
//   - sim/cold/: cold observables replaying compiled events per subscriber
//   - sim/trace/: activation and deactivation records, log sink, summaries
//   - sim/marbletest/: the test harness tying sources, stages and collectors together
//   - sim/scenario/: YAML scenario files validated against an embedded JSON schema
//
// # Key Interfaces
//
// The extension points are small:
//   - Schedulable[S]: an entity spawned with typed state and driven by its own tasks
//   - Receiver: a stateless message handler registered without a lifecycle
//   - Clock: the scheduling surface an entity needs, satisfied by *Scheduler
//   - trace.Sink: where lifecycle records go
//
// Virtual time only advances when the Scheduler pops the next due item, so a
// run is a pure function of what was spawned and scheduled before Run.
package sim
