// Package schedule provides the engine's two suspension points: a
// frame scheduler that coalesces callbacks onto the next rendering pass,
// and a trailing-edge debounce machine layered on top of it.
//
// The scheduler is passive and single-threaded: a driver (the engine's
// run loop, the simulator, or a test) advances logical time to fire
// quiet-period timers and calls Frame to run a rendering pass. Nothing
// here busy-waits or spawns goroutines; determinism comes from the
// driver owning time.
//
// Debounce is modelled as an explicit three-state machine
// {Idle, Scheduled, Flushed} with cancel-on-reschedule: a fresh trigger
// during the quiet period restarts it, a fresh trigger while a frame
// callback is pending replaces the callback but keeps its slot, so the
// very next frame still fires and a stream of triggers can never starve
// the flush.
package schedule
