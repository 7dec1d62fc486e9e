package runclient

import "errors"

// Sentinel kinds for client errors.
var (
	ErrRunNotFound  = errors.New("run not found")
	ErrBadResponse  = errors.New("unexpected response")
	ErrPollTimeout  = errors.New("run did not finish in time")
	ErrInvalidInput = errors.New("invalid input")
)
