package services

import "errors"

// Service error taxonomy. Controllers and the socket gateway map these to
// HTTP statuses / message:error events; anything unrecognized is a 500.
var (
	// ErrUnauthorized - missing/invalid credential, or caller is not a
	// participant of the chat it is addressing.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyDecided - a swipe already exists for the ordered pair.
	ErrAlreadyDecided = errors.New("already swiped on this profile")

	// ErrSelfSwipe - actor and target are the same profile.
	ErrSelfSwipe = errors.New("cannot swipe on your own profile")

	// ErrNotFound - profile, chat, match or media absent.
	ErrNotFound = errors.New("not found")

	// ErrEmptyMessage - a message with neither content nor media.
	ErrEmptyMessage = errors.New("message needs content or media")

	// ErrConflict - lost a concurrent conditional write. Resolved internally
	// by the match engine; only surfaced when a retry fails too.
	ErrConflict = errors.New("conflicting concurrent write")
)
