// Package persistence provides storage for tracked items.
// CachedData lives in the items table, IgnoredData and WatchedData share the tracked table
// with a status column, so an item can belong to at most one status partition.
// SQLite runs in WAL mode, every multi-step change is done in a single transaction.
package persistence
