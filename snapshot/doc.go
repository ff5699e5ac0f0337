// Package snapshot captures a point-in-time view of a scheduler's
// fairness state for debugfs-style introspection, and serializes it for
// transport or storage.
//
//	snap := snapshot.Capture(s)
//	data, _ := snapshot.GetCodec("msgpack").Encode(snap)
//
// Snapshots are observational: virtual-time values are comparable within
// one snapshot but carry no meaning across scheduler instances.
package snapshot
