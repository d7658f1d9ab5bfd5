// Package partition implements partition identity and lifecycle for
// profile storage.
//
// A partition is an isolated storage scope (cookies, cache, local storage)
// for one profile's embedded web session, living in one directory under
// Partitions/. This package owns:
//
//   - token derivation: mapping a display name to the current-format
//     partition token, plus the ordered table of legacy token candidates a
//     name could have produced under past naming schemes
//   - resolution: picking the effective partition for a profile (stored
//     value first, then legacy directory detection, then fresh derivation)
//   - the pending-delete queue: the durable record of directories whose
//     deletion previously failed and is owed on a future start
//   - the reaper: retriable, crash-safe removal of every directory variant
//     belonging to a retired partition, with a rename-to-trash fallback
//     and the pending queue as the fallback of last resort
//
// The legacy candidate and variant generation is a pinned contract: the
// exact set of historical naming schemes it covers is encoded in the tests,
// and changes here risk orphaning or double-deleting user data.
package partition
