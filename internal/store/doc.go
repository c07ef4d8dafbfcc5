// Package store provides the SQLite-backed audit journal of editing sessions.
//
// The journal is append-only:
//   - sessions: one row per session with its canonical seed document
//   - changes: one row per committed edit or restore, keyed by a chained ID
//
// # Critical Patterns
//
// Logical ordering
//   - Changes are ordered by seq (the history index), never by timestamp
//   - UNIQUE(session_id, seq) rejects a second write for the same step
//
// Chained identity
//   - Each change ID is ir.EntryID over the previous ID, seq, op, args and
//     document hash; the first change chains from the seed hash
//   - Rewriting any row changes every later ID, which VerifyChain detects
//
// Append-only enforcement
//   - Triggers abort every UPDATE and DELETE on sessions and changes
//
// The journal does not persist a working document for later editing; it is
// an audit trail that Replay can re-execute and verify.
package store
