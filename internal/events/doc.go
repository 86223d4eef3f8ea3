// Package events provides a small in-process publish/subscribe mechanism.
//
// Services emit events without knowing which handlers will process them. The
// deck repository emits a review.recorded event after each committed grade,
// and the review log recorder subscribes to persist it.
package events
