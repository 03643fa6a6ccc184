package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeValidation  = "validation"
	ErrCodeNotFound    = "not_found"
	ErrCodeConflict    = "conflict"
	ErrCodeRateLimited = "rate_limited"
	ErrCodeInternal    = "internal"
	ErrCodeBadRequest  = "bad_request"
)

// User-facing error messages.
const (
	MsgUsernameTooShort = "Username must be at least 2 characters"
	MsgUsernameTaken    = "Username is already taken in this room"
	MsgAlreadyJoined    = "You have already joined a room"
	MsgMustJoinFirst    = "You must join a room first"
	MsgRateLimited      = "Too many messages. Please slow down."
	MsgRecipientMissing = "Recipient not found"
	MsgInternal         = "Something went wrong"
	MsgUnknownCommand   = "Unknown command"
)

var ErrHubStopped = errors.New("hub stopped")

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
