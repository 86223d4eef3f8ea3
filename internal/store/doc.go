// Package store declares the persistence contracts for cards and review logs,
// the shared DBTX abstraction and the errors every store implementation maps
// its driver failures onto. Implementations live under internal/platform.
package store
