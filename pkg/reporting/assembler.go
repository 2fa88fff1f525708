package reporting

import (
	"time"

	"github.com/erc-insight/platform/pkg/clinical"
	"github.com/erc-insight/platform/pkg/common/models"
)

// BuildPayload assembles the narrative-service payload from the clinical
// profile and the extraction output. It is pure: the same inputs always
// yield a byte-identical JSON encoding, which is what the narrative cache
// keys on. Nil slices are normalized to empty ones so the encoding never
// flips between null and [].
func BuildPayload(
	p models.PatientInput,
	profile models.ClinicalProfile,
	extraction models.ExtractionResult,
	generatedAt time.Time,
) models.ClinicalPayload {
	return models.ClinicalPayload{
		DiagnosticEvaluation: models.DiagnosticEvaluation{
			Diagnoses:          nonNil(p.Diagnoses),
			CardiovascularRisk: profile.RiskLevel,
			RiskJustification:  profile.RiskJustification,
			EGFRValue:          profile.EGFR,
			CKDStage:           clinical.StageLabel(profile.Stage),
		},
		GoalCompliance: models.GoalCompliance{
			Goals:            nonNilGoals(profile.Goals),
			AdherenceScore:   profile.CompliancePercent,
			ComplianceStatus: profile.ComplianceStatus,
		},
		PharmacologicPlan: models.PharmacologicPlan{
			Medications: nonNil(p.Medications),
		},
		FollowUpPlan: models.FollowUpPlan{
			ScheduledLabs: nonNilVisits(profile.ScheduledLabs),
			NextVisitDate: profile.NextVisitDate,
			Justification: profile.FollowUpJustification,
		},
		AdditionalData: models.AdditionalData{
			Frail:          profile.Frail,
			Age:            p.Age,
			Sex:            p.Sex,
			WeightKg:       p.WeightKg,
			HeightCm:       p.HeightCm,
			BMI:            clinical.BMI(p.WeightKg, p.HeightCm),
			MeanBP:         clinical.MeanArterialPressure(p.SystolicBP, p.DiastolicBP),
			Comorbidities:  nonNil(p.Comorbidities),
			CriticalValues: profile.CriticalValues,
			LabValues:      extraction.Results,
			Demographics:   extraction.PatientData,
		},
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilGoals(s []models.GoalEvaluation) []models.GoalEvaluation {
	if s == nil {
		return []models.GoalEvaluation{}
	}
	return s
}

func nonNilVisits(s []models.ScheduledVisit) []models.ScheduledVisit {
	if s == nil {
		return []models.ScheduledVisit{}
	}
	return s
}
