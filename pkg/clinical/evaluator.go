package clinical

import (
	"fmt"

	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/erc-insight/platform/pkg/common/models"
	"github.com/erc-insight/platform/pkg/labpatterns"
)

// Evaluator runs the full deterministic clinical assessment. It holds only
// immutable catalogs and is safe for concurrent use.
type Evaluator struct {
	weights             labpatterns.GoalWeights
	targets             labpatterns.Targets
	nextVisitOffsetDays int
}

func NewEvaluator(nextVisitOffsetDays int) *Evaluator {
	return &Evaluator{
		weights:             labpatterns.DefaultGoalWeights(),
		targets:             labpatterns.DefaultTargets(),
		nextVisitOffsetDays: nextVisitOffsetDays,
	}
}

// Evaluate produces the complete clinical profile for one patient. The
// same inputs always produce the same profile.
func (e *Evaluator) Evaluate(p models.PatientInput, labs map[string]models.LabValue, formula string) (models.ClinicalProfile, error) {
	creatinine := 1.0
	if lv, ok := labs[labpatterns.AnalyteCreatinine]; ok {
		creatinine = lv.Value
	} else {
		logger.Log.Warn("Serum creatinine missing, evaluating with neutral 1.0 mg/dL")
	}

	egfr, usedFormula, err := EstimateGFR(formula, creatinine, p)
	if err != nil {
		return models.ClinicalProfile{}, err
	}

	stage := StageForEGFR(egfr)

	var ldl float64
	if lv, ok := labs["colesterol_ldl"]; ok {
		ldl = lv.Value
	}
	risk := AssessCardiovascularRisk(p, egfr, ldl)

	goals := EvaluateGoals(p, labs, risk, stage, e.weights, e.targets)

	base := ParseBaseDate(p.BaseDate)
	visits := ScheduleLabs(base, stage, p.Diabetes, p.PTHIndication)
	nextVisit, justification := NextVisit(base, e.nextVisitOffsetDays, len(visits) > 0)
	justification = fmt.Sprintf("%s (panel de control cada %d días)",
		justification, ControlPanelDays(stage, risk.Level))

	return models.ClinicalProfile{
		EGFR:                  egfr,
		Formula:               usedFormula,
		Stage:                 stage,
		RiskLevel:             risk.Level,
		RiskJustification:     risk.Justification,
		Goals:                 goals.Goals,
		CompliancePercent:     goals.CompliancePercent,
		ComplianceStatus:      goals.ComplianceStatus,
		ScheduledLabs:         visits,
		NextVisitDate:         nextVisit,
		FollowUpJustification: justification,
		Frail:                 IsFrail(p.FriedResponses),
		CriticalValues:        CriticalValues(labs),
	}, nil
}
