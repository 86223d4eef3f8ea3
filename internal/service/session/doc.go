// Package session runs a single study session over a snapshot of due cards.
//
// A Controller moves through Idle, Active and Complete. Start captures the due
// set once; later grades never change which cards the session walks through.
// Grading is delegated to a CardSource, normally a *deck.Repository, which
// remains the only writer of scheduling state.
package session
