// Package hints fetches the community helper feed: daily quiz and rebus
// answers plus the funds worth backing. The feed is best effort; every error
// degrades to empty hints so sessions keep running without it.
package hints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/paveL1boyko/MuskEmpireBot/internal/domain"
)

// Provider returns the hints published for a given UTC day.
type Provider interface {
	Hints(ctx context.Context, day time.Time) (domain.Hints, error)
}

const feedTimeout = 15 * time.Second

// FeedProvider reads the public JSON feed, an object keyed by "2006-01-02"
// dates.
type FeedProvider struct {
	url    string
	http   *http.Client
	logger *slog.Logger
}

// NewFeedProvider builds a FeedProvider for the given feed URL.
func NewFeedProvider(url string, logger *slog.Logger) *FeedProvider {
	return &FeedProvider{
		url:    url,
		http:   &http.Client{Timeout: feedTimeout},
		logger: logger.With(slog.String("component", "hints_feed")),
	}
}

// Hints downloads the feed and extracts the entry for day. A day missing
// from the feed yields empty hints, not an error.
func (p *FeedProvider) Hints(ctx context.Context, day time.Time) (domain.Hints, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return domain.Hints{}, fmt.Errorf("hints: build request: %w", err)
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return domain.Hints{}, fmt.Errorf("hints: fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Hints{}, fmt.Errorf("hints: feed returned HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Hints{}, fmt.Errorf("hints: read feed: %w", err)
	}

	var feed map[string]domain.Hints
	if err := json.Unmarshal(body, &feed); err != nil {
		return domain.Hints{}, fmt.Errorf("hints: decode feed: %w", err)
	}
	return feed[day.UTC().Format("2006-01-02")], nil
}

// Cache is the subset of the redis hints cache the provider chain needs.
type Cache interface {
	Get(ctx context.Context, day time.Time) (domain.Hints, error)
	Set(ctx context.Context, day time.Time, h domain.Hints) error
}

// Cached decorates a Provider with a shared cache so a fleet of sessions
// downloads the feed once per day. Cache failures fall through to the feed;
// a process-local copy backs the chain when the shared cache is absent.
type Cached struct {
	next   Provider
	cache  Cache
	logger *slog.Logger

	mu         sync.Mutex
	localDay   string
	localHints domain.Hints
	haveLocal  bool
}

// NewCached wraps next with cache. A nil cache leaves only the process-local
// layer.
func NewCached(next Provider, cache Cache, logger *slog.Logger) *Cached {
	return &Cached{
		next:   next,
		cache:  cache,
		logger: logger.With(slog.String("component", "hints_cache")),
	}
}

// Hints serves from cache when possible and refreshes from the feed
// otherwise.
func (c *Cached) Hints(ctx context.Context, day time.Time) (domain.Hints, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dayKey := day.UTC().Format("2006-01-02")
	if c.haveLocal && c.localDay == dayKey {
		return c.localHints, nil
	}

	if c.cache != nil {
		h, err := c.cache.Get(ctx, day)
		if err == nil {
			c.remember(dayKey, h)
			return h, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			c.logger.Warn("hints cache read failed", slog.String("error", err.Error()))
		}
	}

	h, err := c.next.Hints(ctx, day)
	if err != nil {
		return domain.Hints{}, err
	}
	c.remember(dayKey, h)
	if c.cache != nil && !h.Empty() {
		if err := c.cache.Set(ctx, day, h); err != nil {
			c.logger.Warn("hints cache write failed", slog.String("error", err.Error()))
		}
	}
	return h, nil
}

func (c *Cached) remember(dayKey string, h domain.Hints) {
	c.localDay = dayKey
	c.localHints = h
	c.haveLocal = true
}
