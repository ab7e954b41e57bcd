// Package memory provides the in-memory key-value store for tinykv.
//
// Entries live in a sharded concurrent map (pkg/cmap). Each entry carries an
// optional absolute expiry time; expired entries are removed lazily, by the
// first Get that observes them. There is no background sweeper.
//
// Thread Safety:
//
// Set and Get are atomic per key. A Get never observes a half-applied Set,
// and the removal of an expired entry only happens if the entry is still
// the expired one when the shard write lock is held.
package memory
