package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/okian/autoapply/internal/domain/model"
)

// Redis stores each run as a hash; HSET only touches the fields it is given.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects using a redis:// URL. Keys are "<collection>:<runId>".
func NewRedis(ctx context.Context, url, collection string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: redis url: %w", ErrConnect, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping: %w", ErrConnect, err)
	}
	if collection == "" {
		collection = "applications"
	}
	return &Redis{client: client, prefix: collection}, nil
}

// Key returns the hash key for runID.
func (r *Redis) Key(runID string) string {
	return r.prefix + ":" + runID
}

// Upsert implements Sink. Nested values are stored as JSON strings.
func (r *Redis) Upsert(ctx context.Context, rec model.RunRecord) error { //nolint:gocritic // hugeParam: matches Sink
	values, err := hashValues(rec.Fields())
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrWrite, rec.RunID, err)
	}
	if err := r.client.HSet(ctx, r.Key(rec.RunID), values).Err(); err != nil {
		return fmt.Errorf("%w: redis %s: %w", ErrWrite, rec.RunID, err)
	}
	return nil
}

func hashValues(fields map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch v.(type) {
		case string, float64, int64, int, bool:
			out[k] = v
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			out[k] = string(b)
		}
	}
	return out, nil
}

// Name implements Sink.
func (*Redis) Name() string { return "redis" }

// Close implements Sink.
func (r *Redis) Close() error { return r.client.Close() }
