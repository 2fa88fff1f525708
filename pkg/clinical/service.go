package clinical

import (
	"time"

	"github.com/erc-insight/platform/pkg/common/models"
)

// EvaluationRequest is the scoring API input: structured patient data plus
// the extracted lab values keyed by analyte.
type EvaluationRequest struct {
	Patient models.PatientInput        `json:"paciente"`
	Labs    map[string]models.LabValue `json:"laboratorios"`
	Formula string                     `json:"formula,omitempty"`
}

// Service fronts the evaluator with a memoizing cache.
type Service struct {
	evaluator *Evaluator
	cache     *ProfileCache
}

func NewService(evaluator *Evaluator, cacheTTL time.Duration) *Service {
	return &Service{
		evaluator: evaluator,
		cache:     NewProfileCache(cacheTTL),
	}
}

// Evaluate computes (or recalls) the clinical profile for the request.
func (s *Service) Evaluate(req EvaluationRequest) (models.ClinicalProfile, error) {
	key, err := CacheKey(req.Patient, req.Labs, req.Formula)
	if err != nil {
		return models.ClinicalProfile{}, err
	}

	return s.cache.Get(key, func() (models.ClinicalProfile, error) {
		return s.evaluator.Evaluate(req.Patient, req.Labs, req.Formula)
	})
}
