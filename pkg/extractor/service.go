package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erc-insight/platform/pkg/common/kafka"
	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/erc-insight/platform/pkg/common/models"
	"github.com/google/uuid"
)

const EventExtractionCompleted = "extraction.completed"

type Service struct {
	extractor *Extractor
	repo      *Repository
	producer  *kafka.Producer
	recordTTL time.Duration
}

// NewService wires the extraction pipeline. producer may be nil when the
// event bus is not deployed; persistence still happens.
func NewService(extractor *Extractor, repo *Repository, producer *kafka.Producer, recordTTL time.Duration) *Service {
	return &Service{
		extractor: extractor,
		repo:      repo,
		producer:  producer,
		recordTTL: recordTTL,
	}
}

// Process decodes, extracts, persists and announces one document.
func (s *Service) Process(ctx context.Context, raw []byte) (string, models.ExtractionResult, error) {
	text := DecodeText(raw)
	result := s.extractor.Extract(text)

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", result, fmt.Errorf("encoding extraction result: %w", err)
	}

	now := time.Now().UTC()
	record := &Record{
		ID:           uuid.New().String(),
		Status:       result.Status,
		Message:      result.Message,
		Result:       resultJSON,
		PatientName:  result.PatientData.Name,
		PatientID:    result.PatientData.Identification,
		AnalyteCount: len(result.Results),
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.recordTTL),
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return "", result, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"record_id": record.ID,
		"status":    result.Status,
		"analytes":  record.AnalyteCount,
	}).Info("Extraction completed")

	if s.producer != nil {
		err := s.producer.PublishEvent(ctx, EventExtractionCompleted, "extraction-service", map[string]interface{}{
			"record_id":  record.ID,
			"status":     result.Status,
			"patient_id": record.PatientID,
			"analytes":   record.AnalyteCount,
			"result":     json.RawMessage(resultJSON),
		})
		if err != nil {
			// The record is already durable; event delivery is best effort.
			logger.Log.WithError(err).WithField("record_id", record.ID).Warn("Failed to publish extraction event")
		}
	}

	return record.ID, result, nil
}

// Get loads a previously stored extraction result.
func (s *Service) Get(ctx context.Context, id string) (*Record, models.ExtractionResult, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, models.ExtractionResult{}, err
	}

	var result models.ExtractionResult
	if err := json.Unmarshal(record.Result, &result); err != nil {
		return nil, models.ExtractionResult{}, fmt.Errorf("decoding stored result: %w", err)
	}
	return record, result, nil
}

// CleanupLoop deletes expired records on a fixed cadence until ctx ends.
func (s *Service) CleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.repo.CleanupExpired(ctx, time.Now().UTC())
			if err != nil {
				logger.Log.WithError(err).Error("Extraction record cleanup failed")
				continue
			}
			if deleted > 0 {
				logger.Log.WithField("deleted", deleted).Info("Removed expired extraction records")
			}
		}
	}
}
