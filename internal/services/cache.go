package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hirehub/backend/internal/models"
)

// SearchCacheService memoizes candidate-search responses for a short TTL.
// Failures are non-fatal; the matcher treats every miss the same way.
type SearchCacheService interface {
	Get(ctx context.Context, query models.MatchQuery) (*models.SearchResponse, bool)
	Set(ctx context.Context, query models.MatchQuery, response *models.SearchResponse)
}

type searchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSearchCacheService(client *redis.Client, ttl time.Duration) SearchCacheService {
	return &searchCache{client: client, ttl: ttl}
}

func (c *searchCache) key(query models.MatchQuery) string {
	raw, _ := json.Marshal(query)
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("search:candidates:%s", hex.EncodeToString(sum[:16]))
}

// Get implements SearchCacheService.
func (c *searchCache) Get(ctx context.Context, query models.MatchQuery) (*models.SearchResponse, bool) {
	if c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, c.key(query)).Bytes()
	if err != nil {
		return nil, false
	}

	var response models.SearchResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, false
	}
	return &response, true
}

// Set implements SearchCacheService.
func (c *searchCache) Set(ctx context.Context, query models.MatchQuery, response *models.SearchResponse) {
	if c.client == nil {
		return
	}

	raw, err := json.Marshal(response)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(query), raw, c.ttl)
}
