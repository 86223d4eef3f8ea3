// Package api exposes the card repository and review sessions over HTTP.
// Handlers decode and validate requests, call the deck and session services,
// and map service errors to status codes with redacted, trace-tagged bodies.
package api
