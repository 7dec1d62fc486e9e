package runclient

import (
	"io"
	"time"
)

// Defaults for the apply command.
const (
	DefaultBaseURL  = "http://localhost:3001"
	DefaultInterval = 2 * time.Second
	DefaultTimeout  = 2 * time.Minute
)

// Config holds what one client-driven run needs.
type Config struct {
	BaseURL   string        // Base URL of the service
	Threshold *float64      // Nil lets the server pick its default
	Interval  time.Duration // Poll interval
	Timeout   time.Duration // Upper bound for the whole run
	Out       io.Writer     // Where snapshots are rendered
}
