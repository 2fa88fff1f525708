package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erc-insight/platform/pkg/clinical"
	"github.com/erc-insight/platform/pkg/common/kafka"
	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/erc-insight/platform/pkg/common/models"
	"github.com/google/uuid"
)

const EventReportGenerated = "report.generated"

// ReportRequest drives one report generation. Extraction data comes either
// inline or by reference to a previously stored extraction.
type ReportRequest struct {
	Patient      models.PatientInput      `json:"paciente"`
	Extraction   *models.ExtractionResult `json:"extraccion,omitempty"`
	ExtractionID string                   `json:"extraccion_id,omitempty"`
	Formula      string                   `json:"formula,omitempty"`
}

type Service struct {
	clinical  *clinical.Service
	narrative *NarrativeClient
	cache     *NarrativeCache
	store     *ExtractionStore
	repo      *Repository
	producer  *kafka.Producer
	now       func() time.Time
}

func NewService(
	clinicalSvc *clinical.Service,
	narrative *NarrativeClient,
	cache *NarrativeCache,
	store *ExtractionStore,
	repo *Repository,
	producer *kafka.Producer,
) *Service {
	return &Service{
		clinical:  clinicalSvc,
		narrative: narrative,
		cache:     cache,
		store:     store,
		repo:      repo,
		producer:  producer,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Generate evaluates the patient, assembles the payload and produces the
// narrative, reusing a cached narrative when the clinical picture is
// unchanged.
func (s *Service) Generate(ctx context.Context, req ReportRequest) (models.NarrativeResponse, models.ClinicalPayload, error) {
	extraction, err := s.resolveExtraction(ctx, req)
	if err != nil {
		return models.NarrativeResponse{}, models.ClinicalPayload{}, err
	}

	profile, err := s.clinical.Evaluate(clinical.EvaluationRequest{
		Patient: req.Patient,
		Labs:    extraction.Results,
		Formula: req.Formula,
	})
	if err != nil {
		return models.NarrativeResponse{}, models.ClinicalPayload{}, err
	}

	generatedAt := s.now()
	payload := BuildPayload(req.Patient, profile, extraction, generatedAt)

	// The timestamp is presentation-only; the cache key covers the
	// clinical content.
	keyPayload := payload
	keyPayload.GeneratedAt = ""
	cacheKey, err := PayloadKey(keyPayload)
	if err != nil {
		return models.NarrativeResponse{}, models.ClinicalPayload{}, err
	}

	narrative, cached := s.cache.Get(ctx, cacheKey)
	modelName := "cache"
	if !cached {
		narrative, modelName, err = s.narrative.Generate(ctx, payload)
		if err != nil {
			return models.NarrativeResponse{}, models.ClinicalPayload{}, err
		}
		s.cache.Set(ctx, cacheKey, narrative)
	}

	record, err := s.persist(ctx, cacheKey, payload, narrative, modelName, cached)
	if err != nil {
		return models.NarrativeResponse{}, models.ClinicalPayload{}, err
	}

	if s.producer != nil {
		err := s.producer.PublishEvent(ctx, EventReportGenerated, "report-service", map[string]interface{}{
			"report_id": record.ID,
			"model":     modelName,
			"cached":    cached,
		})
		if err != nil {
			logger.Log.WithError(err).WithField("report_id", record.ID).Warn("Failed to publish report event")
		}
	}

	return models.NarrativeResponse{
		ReportID:    record.ID,
		Narrative:   narrative,
		Model:       modelName,
		Cached:      cached,
		GeneratedAt: generatedAt,
	}, payload, nil
}

func (s *Service) resolveExtraction(ctx context.Context, req ReportRequest) (models.ExtractionResult, error) {
	switch {
	case req.Extraction != nil:
		return *req.Extraction, nil
	case req.ExtractionID != "":
		return s.store.Get(ctx, req.ExtractionID)
	default:
		// Reports can be generated from structured input alone.
		return models.ExtractionResult{Results: map[string]models.LabValue{}}, nil
	}
}

func (s *Service) persist(ctx context.Context, hash string, payload models.ClinicalPayload, narrative, modelName string, cached bool) (*ReportRecord, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}

	record := &ReportRecord{
		ID:          uuid.New().String(),
		PayloadHash: hash,
		Payload:     payloadJSON,
		Narrative:   narrative,
		Model:       modelName,
		Cached:      cached,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"report_id": record.ID,
		"model":     modelName,
		"cached":    cached,
	}).Info("Report generated")
	return record, nil
}

// GetReport loads a stored report by id.
func (s *Service) GetReport(ctx context.Context, id string) (*ReportRecord, error) {
	return s.repo.GetByID(ctx, id)
}
