// Package observe shares visibility watchers across rules.
//
// Rules whose computed threshold sets are identical after sorting and
// deduplication share one host watcher, keyed by the canonical signature.
// The pool - not individual rules - owns watcher lifetime; a rule only
// holds its registration for later removal. Each watched element keeps a
// side list of interested subscribers, iterated on every crossing
// notification.
//
// Register/unregister pairing is monotonic and runs on the single event
// loop, so no locking is needed. A notification already in flight when a
// subscriber unregisters may still be delivered once; subscribers must
// tolerate that (the engine does, because label mutations are
// idempotent).
package observe
