package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache materializes overview reports in Redis. Entries are written with a
// TTL and explicitly invalidated whenever a trade's event log changes, so a
// cached report is never stale relative to the journal.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a report cache. A nil client disables caching; every
// lookup misses and writes become no-ops.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func overviewKey(userID int) string {
	return fmt.Sprintf("reports:overview:%d", userID)
}

// GetOverview returns the cached overview for a user, or false on a miss.
func (c *Cache) GetOverview(ctx context.Context, userID int) (Overview, bool) {
	if c == nil || c.client == nil {
		return Overview{}, false
	}
	data, err := c.client.Get(ctx, overviewKey(userID)).Bytes()
	if err != nil {
		return Overview{}, false
	}
	ov, err := unmarshalOverview(data)
	if err != nil {
		return Overview{}, false
	}
	return ov, true
}

// SetOverview stores a user's overview report.
func (c *Cache) SetOverview(ctx context.Context, userID int, ov Overview) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := marshalOverview(ov)
	if err != nil {
		return fmt.Errorf("failed to marshal overview: %w", err)
	}
	if err := c.client.Set(ctx, overviewKey(userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache overview: %w", err)
	}
	return nil
}

func marshalOverview(ov Overview) ([]byte, error) {
	return json.Marshal(ov)
}

func unmarshalOverview(data []byte) (Overview, error) {
	var ov Overview
	if err := json.Unmarshal(data, &ov); err != nil {
		return Overview{}, err
	}
	return ov, nil
}

// Invalidate drops a user's cached reports.
func (c *Cache) Invalidate(ctx context.Context, userID int) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, overviewKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate overview cache: %w", err)
	}
	return nil
}
