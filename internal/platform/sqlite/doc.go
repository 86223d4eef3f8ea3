// Package sqlite provides single-file SQLite implementations of the card and
// review log stores, using the pure-Go modernc.org/sqlite driver.
// Timestamps are stored as fixed-width RFC 3339 text in UTC so they sort lexically.
package sqlite
