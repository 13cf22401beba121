package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paveL1boyko/MuskEmpireBot/internal/domain"
)

// hintsTTL keeps a day's hints warm long enough for every session cycle
// without outliving the feed's daily rotation.
const hintsTTL = 6 * time.Hour

// HintsCache stores the helper feed's daily answers as JSON at
// "hints:{YYYY-MM-DD}". All accounts in the fleet share one entry per day.
type HintsCache struct {
	rdb *redis.Client
}

// NewHintsCache creates a HintsCache backed by the given Client.
func NewHintsCache(c *Client) *HintsCache {
	return &HintsCache{rdb: c.Underlying()}
}

func hintsKey(day time.Time) string {
	return "hints:" + day.UTC().Format("2006-01-02")
}

// Set stores the hints for a day.
func (hc *HintsCache) Set(ctx context.Context, day time.Time, h domain.Hints) error {
	payload, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("redis: marshal hints: %w", err)
	}
	if err := hc.rdb.Set(ctx, hintsKey(day), payload, hintsTTL).Err(); err != nil {
		return fmt.Errorf("redis: set hints %s: %w", hintsKey(day), err)
	}
	return nil
}

// Get retrieves the hints for a day. It returns domain.ErrNotFound when no
// entry exists.
func (hc *HintsCache) Get(ctx context.Context, day time.Time) (domain.Hints, error) {
	payload, err := hc.rdb.Get(ctx, hintsKey(day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Hints{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Hints{}, fmt.Errorf("redis: get hints %s: %w", hintsKey(day), err)
	}
	var h domain.Hints
	if err := json.Unmarshal(payload, &h); err != nil {
		return domain.Hints{}, fmt.Errorf("redis: decode hints %s: %w", hintsKey(day), err)
	}
	return h, nil
}
