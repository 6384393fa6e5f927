// Package common defines shared sentinel errors used across the board core
// and its transports. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrorNotFound = errors.New("not found")

	// Session lifecycle errors.
	ErrSessionClosed = errors.New("session closed")
	ErrLookupTimeout = errors.New("lookup timed out")

	// Event handling errors. These are logged, never sent back to a client.
	ErrUnknownEvent = errors.New("unknown event")
	ErrRedoRejected = errors.New("redo rejected")
	ErrPeerBackedUp = errors.New("peer outbound queue is full")
	ErrPeerClosed   = errors.New("peer closed")
	ErrorBadPayload = errors.New("malformed payload")

	// Export errors.
	ErrExportDisabled = errors.New("export upload is not configured")
)
