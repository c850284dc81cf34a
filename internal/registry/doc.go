// Package registry persists message-to-session mappings shared across OS
// processes.
//
// The store is an append-only JSONL log guarded by an exclusive lock file.
// Both live under the state root, which is the only state shared between
// the dispatching CLI process and the reply listener daemon. File order is
// the happens-before order: appends are serialized by the lock, and lookup
// resolves duplicate message ids by taking the last decodable match.
//
// The lock protocol treats owner liveness, not age, as authoritative. A
// lock whose pid is dead is reclaimed immediately regardless of age; a lock
// whose pid is alive is honored and waited out with bounded backoff.
package registry
