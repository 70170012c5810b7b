// Package journal persists mutation records to SQLite for the sim and
// trace tooling.
//
// The journal is strictly a consumer of the engine's observer callback;
// the engine itself has no persistence surface. Rows are keyed by
// (session, seq), so replaying a recorded run is idempotent.
package journal
