package config

import "errors"

// ErrInvalidConfig marks a setting the service cannot run with, such as a
// threshold outside [0,1] or a sink driver missing its DSN.
var ErrInvalidConfig = errors.New("invalid auto-apply config")

// ErrLoadConfig marks a failure to read a config source: the .env file, the
// YAML file or the environment.
var ErrLoadConfig = errors.New("auto-apply config could not be loaded")
