package service

import (
	"errors"

	"github.com/okian/autoapply/internal/adapters/repository"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrInvalidThreshold = errors.New("threshold must be a number between 0 and 1")

	// ErrRunNotFound is returned by Status for unknown run ids.
	ErrRunNotFound = repository.ErrRunNotFound
)
