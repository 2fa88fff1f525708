package clinical

import (
	"fmt"
	"strconv"

	"github.com/erc-insight/platform/pkg/common/models"
	"github.com/erc-insight/platform/pkg/labpatterns"
)

// GoalResult carries the scored therapeutic goals and the aggregate
// compliance percentage over the goals that could be evaluated.
type GoalResult struct {
	Goals             []models.GoalEvaluation
	CompliancePercent float64
	ComplianceStatus  string
}

type goalScorer struct {
	weights labpatterns.GoalWeights
	targets labpatterns.Targets
	profile labpatterns.Profile

	goals    []models.GoalEvaluation
	obtained float64
	possible float64
}

// EvaluateGoals scores each therapeutic parameter that has data. Scoring is
// all-or-nothing per parameter; parameters without data contribute nothing
// to either side of the percentage.
func EvaluateGoals(
	p models.PatientInput,
	labs map[string]models.LabValue,
	risk RiskAssessment,
	stage models.Stage,
	weights labpatterns.GoalWeights,
	targets labpatterns.Targets,
) GoalResult {
	s := &goalScorer{
		weights: weights,
		targets: targets,
		profile: labpatterns.ProfileFor(stage, p.Diabetes),
	}

	if lv, ok := labs["glucosa"]; ok {
		s.scoreUpperBound("glicemia", "Glicemia", lv.Value, targets.Glucose)
	}

	if lv, ok := labs["colesterol_ldl"]; ok {
		target := targets.LDLDefault
		switch risk.Level {
		case models.RiskVeryHigh:
			target = targets.LDLVeryHighRisk
		case models.RiskHigh:
			target = targets.LDLHighRisk
		}
		s.scoreUpperBound("colesterol_ldl", "Colesterol LDL", lv.Value, target)
	}

	if lv, ok := labs["hdl"]; ok {
		target := targets.HDLMale
		if p.Sex == models.SexFemale {
			target = targets.HDLFemale
		}
		s.scoreLowerBound("hdl", "Colesterol HDL", lv.Value, target)
	}

	if lv, ok := labs["trigliceridos"]; ok {
		s.scoreUpperBound("trigliceridos", "Triglicéridos", lv.Value, targets.Triglycerides)
	}

	if p.SystolicBP > 0 && p.DiastolicBP > 0 {
		s.scoreBloodPressure(p, targets)
	}

	if lv, ok := labs["rac"]; ok {
		s.scoreUpperBound("rac", "Relación Albúmina/Creatinina", lv.Value, targets.RAC)
	}

	if p.WaistCm > 0 {
		target := targets.WaistMale
		if p.Sex == models.SexFemale {
			target = targets.WaistFemale
		}
		s.scoreUpperBound("perimetro_abdominal", "Perímetro Abdominal", p.WaistCm, target)
	}

	if bmi := BMI(p.WeightKg, p.HeightCm); bmi > 0 {
		s.scoreUpperBound("imc", "IMC", bmi, targets.BMI)
	}

	if lv, ok := labs["hba1c"]; ok && p.Diabetes {
		target := targets.HbA1cDefault
		if p.Age > targets.HbA1cRelaxAge || p.EstablishedCVD {
			target = targets.HbA1cRelaxed
		}
		s.scoreUpperBound("hba1c", "HbA1c", lv.Value, target)
	}

	var percent float64
	if s.possible > 0 {
		percent = round1(s.obtained / s.possible * 100)
	}

	return GoalResult{
		Goals:             s.goals,
		CompliancePercent: percent,
		ComplianceStatus:  labpatterns.ComplianceBand(percent),
	}
}

// scoreUpperBound awards the parameter's weight when value <= target.
func (s *goalScorer) scoreUpperBound(key, label string, value, target float64) {
	s.record(key, label, value <= target, formatNumber(value), formatNumber(target))
}

// scoreLowerBound awards the parameter's weight when value >= target.
func (s *goalScorer) scoreLowerBound(key, label string, value, target float64) {
	s.record(key, label, value >= target, formatNumber(value), formatNumber(target))
}

func (s *goalScorer) scoreBloodPressure(p models.PatientInput, targets labpatterns.Targets) {
	systolic, diastolic := targets.SystolicDefault, targets.DiastolicDefault
	if p.Proteinuria || p.Diabetes {
		systolic, diastolic = targets.SystolicStrict, targets.DiastolicStrict
	}

	met := p.SystolicBP <= systolic && p.DiastolicBP <= diastolic
	current := fmt.Sprintf("%s/%s", formatNumber(p.SystolicBP), formatNumber(p.DiastolicBP))
	target := fmt.Sprintf("%s/%s", formatNumber(systolic), formatNumber(diastolic))
	s.record("presion_arterial", "Presión Arterial", met, current, target)
}

func (s *goalScorer) record(key, label string, met bool, current, target string) {
	maxScore := int(s.weights[key][s.profile])
	awarded := 0
	status := "No cumple"
	if met {
		awarded = maxScore
		status = "Cumple"
	}

	s.goals = append(s.goals, models.GoalEvaluation{
		Parameter:    label,
		Status:       status,
		Met:          met,
		CurrentValue: current,
		TargetValue:  target,
		ScoreAwarded: awarded,
		MaxScore:     maxScore,
	})
	s.obtained += float64(awarded)
	s.possible += float64(maxScore)
}

// BMI returns weight/height² rounded to one decimal, or 0 when either
// measurement is missing.
func BMI(weightKg, heightCm float64) float64 {
	if weightKg <= 0 || heightCm <= 0 {
		return 0
	}
	heightM := heightCm / 100
	return round1(weightKg / (heightM * heightM))
}

// MeanArterialPressure returns (systolic + 2·diastolic)/3 rounded to one
// decimal, or 0 when either reading is missing.
func MeanArterialPressure(systolic, diastolic float64) float64 {
	if systolic <= 0 || diastolic <= 0 {
		return 0
	}
	return round1((systolic + 2*diastolic) / 3)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
