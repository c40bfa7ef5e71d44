package comments

import "errors"

var (
	ErrNotFound     = errors.New("comments: not found")
	ErrForbidden    = errors.New("comments: forbidden")
	ErrInvalidInput = errors.New("comments: invalid input")
)
