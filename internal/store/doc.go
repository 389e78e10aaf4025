// Package store provides SQLite-backed storage for parsed Candid services.
//
// Every successful parse can be archived as a Schema row keyed by the
// canonical hash of the service and the source it was read from.
//
// # Ordering
//
//   - seq INTEGER is a logical clock assigned on insert, never a timestamp
//   - list queries use ORDER BY seq ASC, id COLLATE BINARY ASC
//
// # Idempotency
//
//   - UNIQUE(hash, source): writing the same service from the same source
//     again returns the existing row
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// # Migrations
//
// PRAGMA user_version records the last migration applied. Open runs the
// newer ones in order.
package store
