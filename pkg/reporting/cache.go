package reporting

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/erc-insight/platform/pkg/common/models"
	"github.com/redis/go-redis/v9"
)

const narrativeKeyPrefix = "narrative:"

// NarrativeCache stores generated narratives in redis keyed by the hash of
// the canonical payload, so identical clinical pictures never pay for a
// second LLM round trip.
type NarrativeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewNarrativeCache(client *redis.Client, ttl time.Duration) *NarrativeCache {
	return &NarrativeCache{client: client, ttl: ttl}
}

// PayloadKey hashes the canonical JSON encoding of the payload.
func PayloadKey(payload models.ClinicalPayload) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding payload for cache key: %w", err)
	}
	sum := sha256.Sum256(encoded)
	return narrativeKeyPrefix + hex.EncodeToString(sum[:]), nil
}

func (c *NarrativeCache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	narrative, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		logger.Log.WithError(err).Warn("Narrative cache lookup failed")
		return "", false
	}
	return narrative, true
}

func (c *NarrativeCache) Set(ctx context.Context, key, narrative string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, narrative, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).Warn("Narrative cache store failed")
	}
}
