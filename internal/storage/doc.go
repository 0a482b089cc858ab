// Package storage is the durable-write layer under the persistent stores.
//
// A Backend is any synchronous string key/value store (memory, a directory
// of files, or SQLite). The Adapter sits on top and adds:
//   - deterministic JSON encoding (sorted keys, NFC strings; see Encode)
//   - an envelope {"value":..., "time":..., "expire":...} per record
//   - lazy expiry: expired records read as absent but stay in the backend
//     until overwritten, removed or swept
//   - a key namespace so several applications can share one backend
//
// # Error policy
//
// Storage failures never reach store callers. Set, Get and Remove catch
// serialization errors, quota errors and backend failures, log them with
// slog, and behave as a no-op or an absent read. The error-returning forms
// (Put, Lookup, Delete, List) exist for tooling such as the CLI that wants
// to report failures.
//
// Error codes on *OpError:
//
//	SERIALIZE    value could not be encoded (cyclic, NaN, channel...)
//	DESERIALIZE  stored record is corrupt
//	QUOTA        backend is full
//	BACKEND      any other backend failure
package storage
