// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables over those defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"strings"
	"time"
)

// Scorer provider names.
const (
	ProviderHeuristic = "heuristic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// Sink driver names.
const (
	DriverNop       = "nop"
	DriverFirestore = "firestore"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
	DriverRedis     = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":3001".
	Addr string `koanf:"addr"`

	// JobsPath points at a JSON array of postings. Empty uses the built-in fixture.
	JobsPath string `koanf:"jobs_path"`

	// ProfilePath points at a YAML candidate profile. Empty uses the demo profile.
	ProfilePath string `koanf:"profile_path"`

	// DefaultThreshold applies when a start request carries no threshold.
	DefaultThreshold float64 `koanf:"default_threshold"`

	// TopN caps how many ranked matches a run keeps.
	TopN int `koanf:"top_n"`

	// MatchDelay and ApplyDelay pace the two pipeline stages.
	MatchDelay time.Duration `koanf:"match_delay"`
	ApplyDelay time.Duration `koanf:"apply_delay"`

	// ScoringConcurrency bounds parallel scorer calls within one run.
	ScoringConcurrency int `koanf:"scoring_concurrency"`

	// UserID is recorded on every mirrored run.
	UserID string `koanf:"user_id"`

	Scorer ScorerConfig `koanf:"scorer"`
	Sink   SinkConfig   `koanf:"sink"`
}

// ScorerConfig selects and tunes the model-backed scorer.
type ScorerConfig struct {
	Provider     string        `koanf:"provider"`
	OpenAIAPIKey string        `koanf:"openai_api_key"`
	GeminiAPIKey string        `koanf:"gemini_api_key"`
	Model        string        `koanf:"model"`
	Timeout      time.Duration `koanf:"timeout"`
}

// SinkConfig selects the durable mirror and sizes its write queue.
type SinkConfig struct {
	// Driver selects the sink. Empty infers it, see ResolvedDriver.
	Driver string `koanf:"driver"`

	// DSN is the connection string for postgres, sqlite and redis.
	DSN string `koanf:"dsn"`

	// ProjectID and CredentialsFile configure firestore. An empty ProjectID
	// is read from the credentials.
	ProjectID       string `koanf:"project_id"`
	CredentialsFile string `koanf:"credentials_file"`

	// Collection names the firestore collection, postgres table or redis key prefix.
	Collection string `koanf:"collection"`

	QueueSize    int           `koanf:"queue_size"`
	Workers      int           `koanf:"workers"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":3001",
		DefaultThreshold:   0.70,
		TopN:               3,
		MatchDelay:         time.Second,
		ApplyDelay:         500 * time.Millisecond,
		ScoringConcurrency: 8,
		UserID:             "demo-user",
		Scorer: ScorerConfig{
			Timeout: 4 * time.Second,
		},
		Sink: SinkConfig{
			Collection:   "applications",
			QueueSize:    1024,
			Workers:      2,
			WriteTimeout: 5 * time.Second,
		},
	}
}

// ResolvedProvider returns the scorer provider to build. An empty provider is
// inferred from whichever API key is present, OpenAI first.
func (c *Config) ResolvedProvider() string {
	switch {
	case c.Scorer.Provider != "":
		return c.Scorer.Provider
	case c.Scorer.OpenAIAPIKey != "":
		return ProviderOpenAI
	case c.Scorer.GeminiAPIKey != "":
		return ProviderGemini
	default:
		return ProviderHeuristic
	}
}

// ResolvedDriver returns the sink driver to build. An empty driver selects
// firestore when a credentials file is configured and nop otherwise.
func (s SinkConfig) ResolvedDriver() string {
	switch {
	case s.Driver != "":
		return s.Driver
	case s.CredentialsFile != "":
		return DriverFirestore
	default:
		return DriverNop
	}
}

// Port returns the port part of Addr, used in the health report.
func (c *Config) Port() string {
	if i := strings.LastIndexByte(c.Addr, ':'); i >= 0 {
		return c.Addr[i+1:]
	}
	return c.Addr
}
