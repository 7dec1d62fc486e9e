package scoring

import (
	"time"

	"github.com/okian/autoapply/pkg/logger"
)

// Option applies a configuration option to the Resilient scorer.
type Option func(*Resilient)

// WithTimeout bounds every backend call.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Resilient) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Resilient) {
		if l != nil {
			r.logger = l
		}
	}
}
