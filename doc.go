// Package permkit is an in-process authorization kernel: a registry of named,
// bit-tagged permissions, each optionally declaring other permissions it
// transitively grants, plus mask computation over heterogeneous permission
// references (names, instances, static declarations, or raw bit values).
//
// The package is designed for concurrent server workloads: Engine and
// Registry methods are safe to call from multiple goroutines. Registration
// typically happens once at startup; mask computation is the hot path and
// takes only a read lock.
//
// # Architecture boundaries
//
// permkit is the public surface. It exposes [Engine], [Builder], [Config],
// [Registry], and the kernel value types ([Permission], [Mask], [Reference]).
// It performs no I/O of its own except through the optional Redis mask cache
// wired via [Builder.WithRedis].
//
// # What this package must NOT do
//
//   - Persist permission definitions or per-object access-control lists.
//     The Redis cache stores only derived mask values, scoped to a registry
//     version, and every registry mutation invalidates all prior entries.
//   - Expose Redis clients or encoding details in its public API.
//   - Surface unresolved references as errors on the default path: unknown
//     names contribute zero bits. Strict resolution is opt-in via
//     [Engine.MaskStrict] and [Registry.MaskOfStrict].
//
// # Performance contract
//
// MaskOf is the hot path. It must complete without Redis round-trips when
// the cache is disabled and must never allocate proportionally to more than
// the number of permissions reachable from its input.
package permkit
