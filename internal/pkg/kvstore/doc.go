// Package kvstore is the TTL-capable key-value layer used for one-time codes,
// rate-limit counters and idempotency state.
//
// Two drivers are available:
//
//   - redis: go-redis client. Compound operations run as Lua scripts or
//     MULTI pipelines so each method is a single atomic step on the server.
//   - memory: a mutex guarded map for local development and tests. Each method
//     holds the lock for its whole duration, expired keys are dropped lazily on
//     access and by a janitor goroutine stopped by Close.
//
// Missing keys are reported with ErrNotFound (Get, HIncrBy) or with a zero value
// (HGetAll returns an empty map, Del returns 0).
package kvstore
