package jobsource

import "errors"

// ErrSourceUnavailable marks a job source that could not be read or parsed.
var ErrSourceUnavailable = errors.New("job source unavailable")

// ErrProfileLoad marks a candidate profile file that could not be loaded.
var ErrProfileLoad = errors.New("load profile failed")
