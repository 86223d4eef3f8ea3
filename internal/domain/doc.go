// Package domain holds the flashcard model: cards and their scheduling state,
// quality grades and difficulty labels, subjects and review logs. It has no
// dependencies on storage or transport.
package domain
