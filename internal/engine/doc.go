// Package engine implements the interaction-to-state engine.
//
// The engine takes an ordered list of rule declarations, watches trigger
// conditions (activation gesture, hover, viewport-visibility crossing)
// on resolved trigger elements, and in response adds or removes label
// sets on associated target elements. It never renders or animates: it
// only decides when and which labels change, exposing a post-mutation
// callback for downstream effect code.
//
// ARCHITECTURE:
//
// Single event-loop thread. All trigger callbacks, pool notifications,
// debounce timers, and mutation passes run on one goroutine. External
// callers either invoke the host-facing methods (Activate, HoverEnter,
// HoverLeave, Advance, Frame) from that thread, or Enqueue events from
// anywhere and let Run drain them.
//
// Pipeline per construction:
//  1. rule.Normalize fills defaults and degrades invalid fields
//  2. once the document is ready, rule.Expand produces concrete bindings
//  3. each binding resolves its trigger element exactly once; visibility
//     bindings register with the shared observer pool
//  4. trigger firings request debounced, frame-aligned mutation passes
//  5. the executor re-queries the target sequence at mutation time,
//     applies the selection window, and mutates labels
//
// Mutations are idempotent, so a retired rule's in-flight visibility
// notification is harmless. Every mutation is stamped with a monotonic
// sequence number for traces and the journal.
package engine
