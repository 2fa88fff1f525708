package clinical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/erc-insight/platform/pkg/common/models"
)

// CacheKey derives a stable key from the evaluation inputs. JSON encoding
// sorts map keys, so logically equal inputs hash identically.
func CacheKey(p models.PatientInput, labs map[string]models.LabValue, formula string) (string, error) {
	payload, err := json.Marshal(struct {
		Patient models.PatientInput          `json:"patient"`
		Labs    map[string]models.LabValue   `json:"labs"`
		Formula string                       `json:"formula"`
	}{p, labs, formula})
	if err != nil {
		return "", fmt.Errorf("encoding cache key: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

type cacheEntry struct {
	ready   chan struct{}
	profile models.ClinicalProfile
	err     error
	expires time.Time
}

// ProfileCache memoizes evaluations. Concurrent requests for the same key
// share a single computation; failed computations are not retained.
type ProfileCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	ttl     time.Duration
}

func NewProfileCache(ttl time.Duration) *ProfileCache {
	return &ProfileCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
	}
}

func (c *ProfileCache) Get(key string, compute func() (models.ClinicalProfile, error)) (models.ClinicalProfile, error) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		c.mu.Unlock()
		<-entry.ready
		if entry.err == nil && time.Now().Before(entry.expires) {
			return entry.profile, nil
		}
		// Expired or failed; fall through and recompute.
		c.mu.Lock()
		if c.entries[key] == entry {
			delete(c.entries, key)
		}
	}

	entry := &cacheEntry{ready: make(chan struct{})}
	c.entries[key] = entry
	c.mu.Unlock()

	entry.profile, entry.err = compute()
	entry.expires = time.Now().Add(c.ttl)
	close(entry.ready)

	if entry.err != nil {
		c.mu.Lock()
		if c.entries[key] == entry {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return models.ClinicalProfile{}, entry.err
	}

	return entry.profile, nil
}

// Len reports the number of cached entries, expired ones included.
func (c *ProfileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
