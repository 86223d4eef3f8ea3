// Package deck implements the card repository: the single owner and writer of
// every card's scheduling state.
//
// Cards live in memory, keyed by ID and kept in insertion order. An optional
// store.CardStore makes them durable: it is read by Load and written by every
// ApplyGrade before the in-memory copy changes, so a failed write leaves the
// card exactly as it was.
package deck
