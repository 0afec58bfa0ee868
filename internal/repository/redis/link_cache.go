package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ejtx16/shrink-iq-web-app/internal/domain"
	"github.com/redis/go-redis/v9"
)

// LinkCache keeps resolved links warm for the redirect path. It stores the
// whole link, so expiry is still checked by the service on every hit.
type LinkCache struct {
	client *redis.Client
}

func NewLinkCache(client *redis.Client) *LinkCache {
	return &LinkCache{client: client}
}

func cacheKey(code string) string {
	return fmt.Sprintf("link:%s", code)
}

func (c *LinkCache) GetLink(ctx context.Context, code string) (*domain.Link, error) {
	data, err := c.client.Get(ctx, cacheKey(code)).Result()
	if err != nil {
		return nil, err
	}

	var link domain.Link
	if err := json.Unmarshal([]byte(data), &link); err != nil {
		return nil, err
	}

	return &link, nil
}

func (c *LinkCache) SetLink(ctx context.Context, link *domain.Link, ttl time.Duration) error {
	data, err := json.Marshal(link)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, cacheKey(link.ShortCode), data, ttl).Err()
}

// InvalidateLink drops the cached entries for a link after a delete, both
// the generated code key and the custom slug key when one exists.
func (c *LinkCache) InvalidateLink(ctx context.Context, link *domain.Link) error {
	keys := []string{cacheKey(link.ShortCode)}
	if link.CustomSlug != nil && *link.CustomSlug != link.ShortCode {
		keys = append(keys, cacheKey(*link.CustomSlug))
	}

	return c.client.Del(ctx, keys...).Err()
}
