// Package respcache is a content-addressed cache of generated answers.
// Keys hash the raw query text; two paraphrases of the same question are
// cache-distinct.
package respcache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/blake3"

	"github.com/seanblong/podsearch/internal/kv"
	"github.com/seanblong/podsearch/pkg/models"
)

// TTL is how long a cached answer stays valid.
const TTL = 24 * time.Hour

// Cache stores completed answers keyed by query hash. A nil store disables
// caching; every operation degrades to a no-op.
type Cache struct {
	store kv.Store
}

func New(store kv.Store) *Cache {
	return &Cache{store: store}
}

// Key returns the deterministic cache key for a query.
func Key(query string) string {
	sum := blake3.Sum256([]byte(query))
	return "cache:" + hex.EncodeToString(sum[:16])
}

// Get returns the cached result for query, or absent. Store failures read
// as a miss.
func (c *Cache) Get(ctx context.Context, query string) (*models.CachedResult, bool) {
	if c.store == nil {
		return nil, false
	}
	raw, ok, err := c.store.Get(ctx, Key(query))
	if err != nil {
		log.Warn().Err(err).Msg("response cache unavailable on read")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var result models.CachedResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		log.Warn().Err(err).Msg("discarding undecodable cache entry")
		return nil, false
	}
	return &result, true
}

// Put stores a completed answer with its sources. Failures are logged and
// swallowed; the caller already has the answer.
func (c *Cache) Put(ctx context.Context, query, response string, sources []models.Source) {
	if c.store == nil {
		return
	}
	raw, err := json.Marshal(models.CachedResult{Response: response, Sources: sources})
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode cache entry")
		return
	}
	if err := c.store.Set(ctx, Key(query), string(raw), TTL); err != nil {
		log.Warn().Err(err).Msg("response cache unavailable on write")
	}
}
