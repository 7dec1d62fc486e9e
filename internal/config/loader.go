package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "AUTOAPPLY_"
	envConfigPath = "AUTOAPPLY_CONFIG"
	envDotEnvPath = "AUTOAPPLY_ENV_FILE"
)

// legacyEnv maps the environment names the demo backend used to config keys.
var legacyEnv = map[string]string{
	"PORT":                "addr",
	"MIN_MATCH_THRESHOLD": "default_threshold",
	"DEMO_USER_ID":        "user_id",
	"OPENAI_API_KEY":      "scorer.openai_api_key",
	"GEMINI_API_KEY":      "scorer.gemini_api_key",
	"FIREBASE_SA_PATH":    "sink.credentials_file",
}

// Load builds a Config by layering defaults, legacy env names, an optional
// file and prefixed env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. legacy env names (PORT, OPENAI_API_KEY, ...)
//  3. file (YAML) if AUTOAPPLY_CONFIG is set
//  4. env (prefix AUTOAPPLY_, "__" separates nested keys)
//
// A .env file (or AUTOAPPLY_ENV_FILE) is read into the process env first and
// never overrides variables that are already set.
func Load(ctx context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	base := New(ctx)
	k := koanf.New(".")

	legacy := env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		target, ok := legacyEnv[key]
		if !ok || value == "" {
			return "", nil
		}
		if key == "PORT" && !strings.Contains(value, ":") {
			value = ":" + value
		}
		return target, value
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, fmt.Errorf("%w: legacy env: %w", ErrLoadConfig, err)
	}

	if path := os.Getenv(envConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// AUTOAPPLY_SINK__DRIVER -> sink.driver, AUTOAPPLY_TOP_N -> top_n.
	prefixed := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		if s == "CONFIG" || s == "ENV_FILE" {
			return ""
		}
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first setting that cannot run.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DefaultThreshold < 0 || c.DefaultThreshold > 1:
		return fmt.Errorf("%w: default_threshold %v outside [0,1]", ErrInvalidConfig, c.DefaultThreshold)
	case c.TopN <= 0:
		return fmt.Errorf("%w: top_n must be positive", ErrInvalidConfig)
	case c.MatchDelay < 0 || c.ApplyDelay < 0:
		return fmt.Errorf("%w: stage delays must not be negative", ErrInvalidConfig)
	case c.ScoringConcurrency <= 0:
		return fmt.Errorf("%w: scoring_concurrency must be positive", ErrInvalidConfig)
	case c.Sink.QueueSize <= 0 || c.Sink.Workers <= 0:
		return fmt.Errorf("%w: sink queue_size and workers must be positive", ErrInvalidConfig)
	}

	switch c.ResolvedProvider() {
	case ProviderHeuristic:
	case ProviderOpenAI:
		if c.Scorer.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: scorer.openai_api_key required for provider openai", ErrInvalidConfig)
		}
	case ProviderGemini:
		if c.Scorer.GeminiAPIKey == "" {
			return fmt.Errorf("%w: scorer.gemini_api_key required for provider gemini", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown scorer.provider %q", ErrInvalidConfig, c.Scorer.Provider)
	}

	switch driver := c.Sink.ResolvedDriver(); driver {
	case DriverNop:
	case DriverFirestore:
		if c.Sink.ProjectID == "" && c.Sink.CredentialsFile == "" {
			return fmt.Errorf("%w: sink.project_id or sink.credentials_file required for firestore", ErrInvalidConfig)
		}
	case DriverPostgres, DriverSQLite, DriverRedis:
		if c.Sink.DSN == "" {
			return fmt.Errorf("%w: sink.dsn required for %s", ErrInvalidConfig, driver)
		}
	default:
		return fmt.Errorf("%w: unknown sink.driver %q", ErrInvalidConfig, c.Sink.Driver)
	}
	return nil
}

func loadDotEnv() error {
	path := os.Getenv(envDotEnvPath)
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
}
