package access

import "errors"

var (
	// ErrNotFound indicates no document could be resolved.
	ErrNotFound = errors.New("document not found")
	// ErrForbidden indicates access is denied by the resolver rules or
	// by a token-owner mismatch.
	ErrForbidden = errors.New("access denied")
	// ErrInvalidInput indicates malformed or missing input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMailDelivery indicates the invitation email could not be sent.
	// The grant row persists when this is returned; a retried grant
	// reports the share as already standing.
	ErrMailDelivery = errors.New("invitation email delivery failed")
)
