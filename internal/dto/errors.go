package dto

import "errors"

var (
	ErrInternalFailure = errors.New("internal failure")
	ErrNotFound        = errors.New("not found")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrOutOfRange      = errors.New("out of range")
	// ErrAlreadyVoted is returned by the vote repository when the pair already has a vote for the day.
	ErrAlreadyVoted = errors.New("already voted today")
)
