// Package domain defines the core business entities of the task API: users,
// tasks and their owner snapshots, caller identities, pagination metadata and
// the errors raised when those entities are invalid.
//
// Types in this package carry no persistence or transport concerns beyond
// JSON tags for their outward representation.
package domain
