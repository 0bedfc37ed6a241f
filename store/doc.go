// Package store defines the content record model and the persistence boundary
// the pipeline drives. The pipeline performs read-modify-write through a Store
// with no locking of its own; the store owns consistency.
//
// Two implementations ship: MemoryStore for tests and ephemeral demos, and
// SQLiteStore for durable single-node deployments.
package store
