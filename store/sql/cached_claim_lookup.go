package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const claimCacheKeyPrefix = "go-easyship::webhook_claim::v1"

// ClaimReader is satisfied by *DeliveryClaimStore.
type ClaimReader interface {
	Get(ctx context.Context, key string) (Claim, error)
}

// CachedDeliveryLookup serves claim status reads (dashboards, replay
// tooling) from go-repository-cache. Claim and settle writes always go to the
// base store; callers invalidate a key after changing it out of band.
type CachedDeliveryLookup struct {
	base  ClaimReader
	cache repositorycache.CacheService
}

func NewCachedDeliveryLookup(base ClaimReader, cacheService repositorycache.CacheService) (*CachedDeliveryLookup, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base claim reader is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: claim cache service is required")
	}
	return &CachedDeliveryLookup{base: base, cache: cacheService}, nil
}

// ClaimCacheKey returns go-easyship::webhook_claim::v1::<escaped key>.
func ClaimCacheKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("sqlstore: replay key is required")
	}
	return claimCacheKeyPrefix + "::" + url.PathEscape(key), nil
}

func (l *CachedDeliveryLookup) Get(ctx context.Context, key string) (Claim, error) {
	if l == nil || l.base == nil || l.cache == nil {
		return Claim{}, fmt.Errorf("sqlstore: cached claim lookup is not configured")
	}
	cacheKey, err := ClaimCacheKey(key)
	if err != nil {
		return Claim{}, err
	}
	claim, err := repositorycache.GetOrFetch(ctx, l.cache, cacheKey, func(ctx context.Context) (Claim, error) {
		return l.base.Get(ctx, strings.TrimSpace(key))
	})
	if err != nil {
		return Claim{}, err
	}
	return cloneClaim(claim), nil
}

func (l *CachedDeliveryLookup) Invalidate(ctx context.Context, key string) error {
	if l == nil || l.cache == nil {
		return fmt.Errorf("sqlstore: cached claim lookup is not configured")
	}
	cacheKey, err := ClaimCacheKey(key)
	if err != nil {
		return err
	}
	return l.cache.Delete(ctx, cacheKey)
}

func cloneClaim(claim Claim) Claim {
	cloned := claim
	if claim.RetryAt != nil {
		value := claim.RetryAt.UTC()
		cloned.RetryAt = &value
	}
	return cloned
}
