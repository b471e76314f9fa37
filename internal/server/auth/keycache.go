package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/faithchat/relay/internal/common"
	"github.com/faithchat/relay/internal/logging"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

const (
	DefaultKeyCacheTTL     = time.Hour
	DefaultKeyFetchTimeout = 5 * time.Second

	maxKeySetBytes = 1 << 20
)

// HTTPClient is the subset of *http.Client used to fetch key sets.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// KeyCache holds the external issuer's published key set. Concurrent
// refreshes are not coalesced; the last successful fetch wins.
type KeyCache struct {
	url     string
	ttl     time.Duration
	timeout time.Duration
	client  HTTPClient
	now     func() time.Time
	logger  logging.Logger

	mu        sync.RWMutex
	set       jwk.Set
	fetchedAt time.Time
}

type KeyCacheOption func(*KeyCache)

func WithHTTPClient(c HTTPClient) KeyCacheOption {
	return func(k *KeyCache) { k.client = c }
}

func WithClock(now func() time.Time) KeyCacheOption {
	return func(k *KeyCache) { k.now = now }
}

func WithTTL(ttl time.Duration) KeyCacheOption {
	return func(k *KeyCache) {
		if ttl > 0 {
			k.ttl = ttl
		}
	}
}

func WithFetchTimeout(d time.Duration) KeyCacheOption {
	return func(k *KeyCache) {
		if d > 0 {
			k.timeout = d
		}
	}
}

func WithKeyCacheLogger(l logging.Logger) KeyCacheOption {
	return func(k *KeyCache) { k.logger = l }
}

func NewKeyCache(url string, opts ...KeyCacheOption) *KeyCache {
	k := &KeyCache{
		url:     url,
		ttl:     DefaultKeyCacheTTL,
		timeout: DefaultKeyFetchTimeout,
		client:  http.DefaultClient,
		now:     time.Now,
		logger:  logging.Nop{},
	}
	for _, o := range opts {
		o(k)
	}
	return k
}

// Keys returns the cached key set, fetching it first when it is missing or
// older than the TTL. A failed refresh serves the stale set if there is one.
func (k *KeyCache) Keys(ctx context.Context) (jwk.Set, error) {
	set, fetchedAt := k.snapshot()
	if set != nil && k.now().Sub(fetchedAt) <= k.ttl {
		return set, nil
	}
	return k.refresh(ctx)
}

// Key returns the raw public key for kid. An unknown kid triggers one forced
// refresh before failing with common.ErrUnknownKey.
func (k *KeyCache) Key(ctx context.Context, kid string) (any, error) {
	set, err := k.Keys(ctx)
	if err != nil {
		return nil, err
	}
	if key, ok := lookupKey(set, kid); ok {
		return key, nil
	}

	set, err = k.refresh(ctx)
	if err != nil {
		return nil, err
	}
	if key, ok := lookupKey(set, kid); ok {
		return key, nil
	}

	return nil, fmt.Errorf("%w: kid %q", common.ErrUnknownKey, kid)
}

func (k *KeyCache) snapshot() (jwk.Set, time.Time) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.set, k.fetchedAt
}

func (k *KeyCache) refresh(ctx context.Context) (jwk.Set, error) {
	set, err := k.fetch(ctx)
	if err != nil {
		stale, _ := k.snapshot()
		if stale == nil {
			return nil, fmt.Errorf("%w: %v", common.ErrKeySourceUnavailable, err)
		}
		k.logger.Warn(ctx, "key set refresh failed, serving stale keys", "url", k.url, "error", err)
		return stale, nil
	}

	k.mu.Lock()
	k.set = set
	k.fetchedAt = k.now()
	k.mu.Unlock()

	k.logger.Debug(ctx, "key set refreshed", "url", k.url, "keys", set.Len())
	return set, nil
}

func (k *KeyCache) fetch(ctx context.Context) (jwk.Set, error) {
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build key set request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch key set: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch key set: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxKeySetBytes))
	if err != nil {
		return nil, fmt.Errorf("read key set: %w", err)
	}

	set, err := jwk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse key set: %w", err)
	}
	return set, nil
}

// lookupKey finds kid in set. A token without kid matches a single-key set.
func lookupKey(set jwk.Set, kid string) (any, bool) {
	var key jwk.Key
	if kid == "" {
		if set.Len() != 1 {
			return nil, false
		}
		k, ok := set.Key(0)
		if !ok {
			return nil, false
		}
		key = k
	} else {
		k, ok := set.LookupKeyID(kid)
		if !ok {
			return nil, false
		}
		key = k
	}

	var raw any
	if err := key.Raw(&raw); err != nil {
		return nil, false
	}
	return raw, true
}
