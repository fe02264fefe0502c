package summarycache

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/mliu/tubebrief/internal/domain/transcript"
)

// ValkeyCache keeps generated summaries in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyCache constructs the cache. A zero ttl stores entries without
// expiry; summaries are deterministic per source and style so staleness is
// not a concern.
func NewValkeyCache(client valkey.Client, prefix string, ttl time.Duration) *ValkeyCache {
	if prefix == "" {
		prefix = "tubebrief"
	}
	return &ValkeyCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *ValkeyCache) Get(ctx context.Context, key string) (string, bool, error) {
	cmd := c.client.B().Get().Key(c.prefix + ":" + key).Build()
	value, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (c *ValkeyCache) Set(ctx context.Context, key, value string) error {
	builder := c.client.B().Set().Key(c.prefix + ":" + key).Value(value)
	var cmd valkey.Completed
	if c.ttl > 0 {
		ttl := c.ttl
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

var _ transcript.SummaryCache = (*ValkeyCache)(nil)
