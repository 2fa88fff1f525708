package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/erc-insight/platform/pkg/common/models"
	"github.com/redis/go-redis/v9"
)

const extractionKeyPrefix = "extraction:record:"

var ErrExtractionNotFound = errors.New("extraction result not found")

// ExtractionStore keeps recent extraction results in redis so reports can
// reference them by id. It is fed by the extraction-completed events.
type ExtractionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewExtractionStore(client *redis.Client, ttl time.Duration) *ExtractionStore {
	return &ExtractionStore{client: client, ttl: ttl}
}

func (s *ExtractionStore) Put(ctx context.Context, id string, result models.ExtractionResult) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding extraction result: %w", err)
	}
	if err := s.client.Set(ctx, extractionKeyPrefix+id, encoded, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing extraction result: %w", err)
	}
	return nil
}

func (s *ExtractionStore) Get(ctx context.Context, id string) (models.ExtractionResult, error) {
	encoded, err := s.client.Get(ctx, extractionKeyPrefix+id).Result()
	if err == redis.Nil {
		return models.ExtractionResult{}, ErrExtractionNotFound
	}
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("loading extraction result: %w", err)
	}

	var result models.ExtractionResult
	if err := json.Unmarshal([]byte(encoded), &result); err != nil {
		return models.ExtractionResult{}, fmt.Errorf("decoding extraction result: %w", err)
	}
	return result, nil
}

// HandleEvent ingests an extraction-completed event from the bus.
func (s *ExtractionStore) HandleEvent(ctx context.Context, event models.Event) error {
	recordID, _ := event.Data["record_id"].(string)
	if recordID == "" {
		logger.Log.WithField("event_id", event.ID).Warn("Extraction event without record_id, skipping")
		return nil
	}

	resultData, err := json.Marshal(event.Data["result"])
	if err != nil {
		return fmt.Errorf("re-encoding event result: %w", err)
	}

	var result models.ExtractionResult
	if err := json.Unmarshal(resultData, &result); err != nil {
		logger.Log.WithError(err).WithField("event_id", event.ID).Warn("Malformed extraction event payload, skipping")
		return nil
	}

	if err := s.Put(ctx, recordID, result); err != nil {
		return err
	}

	logger.Log.WithFields(map[string]interface{}{
		"record_id": recordID,
		"analytes":  len(result.Results),
	}).Info("Cached extraction result from event")
	return nil
}
