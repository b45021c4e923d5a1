package api

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/andrebq/ticklist/auth"
	"github.com/cespare/xxhash/v2"
)

type (
	// TokenCache remembers principals of already verified tokens so
	// repeat requests skip the signature check.
	TokenCache interface {
		Save(ctx context.Context, token string, p auth.Principal) error
		Lookup(ctx context.Context, token string) (auth.Principal, bool, error)
	}

	memCache struct {
		cache *bigcache.BigCache
	}
)

// InMemoryTokenCache returns a TokenCache that keeps entries for a
// few minutes. Losing an entry is harmless, the token simply gets
// verified again.
func InMemoryTokenCache() TokenCache {
	cache, _ := bigcache.New(context.Background(), bigcache.DefaultConfig(10*time.Minute))
	return &memCache{
		cache: cache,
	}
}

func (m *memCache) Save(ctx context.Context, token string, p auth.Principal) error {
	buf, err := json.Marshal(p)
	if err != nil {
		return err
	}
	m.cache.Set(cacheKey(token), buf)
	return nil
}

func (m *memCache) Lookup(ctx context.Context, token string) (auth.Principal, bool, error) {
	buf, err := m.cache.Get(cacheKey(token))
	if err != nil {
		// miss or eviction, either way not cached
		return auth.Principal{}, false, nil
	}
	var p auth.Principal
	err = json.Unmarshal(buf, &p)
	if err != nil {
		return auth.Principal{}, false, err
	}
	return p, true, nil
}

// cacheKey shortens an arbitrarily long bearer token to a fixed-size
// key, tokens easily run past a hundred bytes.
func cacheKey(token string) string {
	return strconv.FormatUint(xxhash.Sum64String(token), 16)
}
