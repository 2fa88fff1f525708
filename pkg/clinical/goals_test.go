package clinical

import (
	"testing"

	"github.com/erc-insight/platform/pkg/common/models"
	"github.com/erc-insight/platform/pkg/labpatterns"
)

func lab(analyte string, value float64) models.LabValue {
	return models.LabValue{Analyte: analyte, Value: value}
}

func evaluate(p models.PatientInput, labs map[string]models.LabValue, risk RiskAssessment, stage models.Stage) GoalResult {
	return EvaluateGoals(p, labs, risk, stage, labpatterns.DefaultGoalWeights(), labpatterns.DefaultTargets())
}

func goalByParameter(t *testing.T, goals []models.GoalEvaluation, parameter string) models.GoalEvaluation {
	t.Helper()
	for _, g := range goals {
		if g.Parameter == parameter {
			return g
		}
	}
	t.Fatalf("no goal for parameter %q", parameter)
	return models.GoalEvaluation{}
}

func TestFullComplianceDiabetic(t *testing.T) {
	p := models.PatientInput{
		Age: 60, Sex: models.SexMale, WeightKg: 70, HeightCm: 170,
		Diabetes: true, SystolicBP: 125, DiastolicBP: 75, WaistCm: 90,
	}
	labs := map[string]models.LabValue{
		"glucosa":        lab("glucosa", 120),
		"colesterol_ldl": lab("colesterol_ldl", 95),
		"hdl":            lab("hdl", 45),
		"trigliceridos":  lab("trigliceridos", 140),
		"rac":            lab("rac", 25),
		"hba1c":          lab("hba1c", 6.5),
	}

	result := evaluate(p, labs, RiskAssessment{Level: models.RiskModerate}, models.StageG3a)

	if len(result.Goals) != 9 {
		t.Fatalf("got %d goals, want 9", len(result.Goals))
	}
	if result.CompliancePercent != 100 {
		t.Errorf("compliance = %v, want 100", result.CompliancePercent)
	}
	if result.ComplianceStatus != labpatterns.ComplianceExcellent {
		t.Errorf("status = %s, want Excelente", result.ComplianceStatus)
	}
}

func TestPartialCompliance(t *testing.T) {
	p := models.PatientInput{
		Age: 60, Sex: models.SexMale, WeightKg: 70, HeightCm: 170,
		Diabetes: true, SystolicBP: 140, DiastolicBP: 85, WaistCm: 90,
	}
	labs := map[string]models.LabValue{
		"glucosa":        lab("glucosa", 150),
		"colesterol_ldl": lab("colesterol_ldl", 95),
		"hdl":            lab("hdl", 45),
		"trigliceridos":  lab("trigliceridos", 140),
		"rac":            lab("rac", 25),
		"hba1c":          lab("hba1c", 6.5),
	}

	// Glucose misses (4 points) and blood pressure misses the strict
	// diabetic target (20 points): 76/100.
	result := evaluate(p, labs, RiskAssessment{Level: models.RiskModerate}, models.StageG3a)

	if result.CompliancePercent != 76 {
		t.Errorf("compliance = %v, want 76", result.CompliancePercent)
	}
	if result.ComplianceStatus != labpatterns.ComplianceGood {
		t.Errorf("status = %s, want Bueno", result.ComplianceStatus)
	}

	bp := goalByParameter(t, result.Goals, "Presión Arterial")
	if bp.Met {
		t.Error("blood pressure 140/85 should miss the 130/80 diabetic target")
	}
	if bp.TargetValue != "130/80" {
		t.Errorf("BP target = %q, want 130/80", bp.TargetValue)
	}
}

func TestBloodPressureTargetSelection(t *testing.T) {
	labs := map[string]models.LabValue{}

	// 135/85 passes the default target but not the strict one.
	base := models.PatientInput{Age: 60, Sex: models.SexMale, SystolicBP: 135, DiastolicBP: 85}

	plain := evaluate(base, labs, RiskAssessment{Level: models.RiskModerate}, models.StageG2)
	if bp := goalByParameter(t, plain.Goals, "Presión Arterial"); !bp.Met || bp.TargetValue != "140/90" {
		t.Errorf("non-diabetic BP goal = %+v, want met against 140/90", bp)
	}

	proteinuric := base
	proteinuric.Proteinuria = true
	strict := evaluate(proteinuric, labs, RiskAssessment{Level: models.RiskModerate}, models.StageG2)
	if bp := goalByParameter(t, strict.Goals, "Presión Arterial"); bp.Met || bp.TargetValue != "130/80" {
		t.Errorf("proteinuric BP goal = %+v, want unmet against 130/80", bp)
	}
}

func TestLDLTargetByRisk(t *testing.T) {
	p := models.PatientInput{Age: 60, Sex: models.SexMale}
	labs := map[string]models.LabValue{"colesterol_ldl": lab("colesterol_ldl", 60)}

	cases := []struct {
		level  models.RiskLevel
		target string
		met    bool
	}{
		{models.RiskModerate, "100", true},
		{models.RiskHigh, "70", true},
		{models.RiskVeryHigh, "55", false},
	}
	for _, tc := range cases {
		result := evaluate(p, labs, RiskAssessment{Level: tc.level}, models.StageG2)
		goal := goalByParameter(t, result.Goals, "Colesterol LDL")
		if goal.TargetValue != tc.target || goal.Met != tc.met {
			t.Errorf("risk %s: goal = (target %s, met %v), want (target %s, met %v)",
				tc.level, goal.TargetValue, goal.Met, tc.target, tc.met)
		}
	}
}

func TestHbA1cOnlyForDiabetics(t *testing.T) {
	p := models.PatientInput{Age: 60, Sex: models.SexMale}
	labs := map[string]models.LabValue{"hba1c": lab("hba1c", 6.5)}

	result := evaluate(p, labs, RiskAssessment{Level: models.RiskModerate}, models.StageG2)
	for _, g := range result.Goals {
		if g.Parameter == "HbA1c" {
			t.Fatal("HbA1c scored for a non-diabetic patient")
		}
	}
}

func TestHbA1cRelaxedTarget(t *testing.T) {
	labs := map[string]models.LabValue{"hba1c": lab("hba1c", 7.5)}

	elderly := models.PatientInput{Age: 80, Sex: models.SexMale, Diabetes: true}
	result := evaluate(elderly, labs, RiskAssessment{Level: models.RiskModerate}, models.StageG2)
	goal := goalByParameter(t, result.Goals, "HbA1c")
	if goal.TargetValue != "8" || !goal.Met {
		t.Errorf("elderly diabetic HbA1c goal = %+v, want met against 8", goal)
	}

	withCVD := models.PatientInput{Age: 60, Sex: models.SexMale, Diabetes: true, EstablishedCVD: true}
	result = evaluate(withCVD, labs, RiskAssessment{Level: models.RiskVeryHigh}, models.StageG2)
	goal = goalByParameter(t, result.Goals, "HbA1c")
	if goal.TargetValue != "8" || !goal.Met {
		t.Errorf("CVD diabetic HbA1c goal = %+v, want met against 8", goal)
	}
}

func TestOnlyPresentParametersScore(t *testing.T) {
	p := models.PatientInput{Age: 60, Sex: models.SexMale}
	labs := map[string]models.LabValue{"glucosa": lab("glucosa", 110)}

	result := evaluate(p, labs, RiskAssessment{Level: models.RiskModerate}, models.StageG2)
	if len(result.Goals) != 1 {
		t.Fatalf("got %d goals, want 1", len(result.Goals))
	}
	if result.CompliancePercent != 100 {
		t.Errorf("compliance = %v, want 100 over the single present parameter", result.CompliancePercent)
	}
}

func TestBMI(t *testing.T) {
	if got := BMI(70, 170); got != 24.2 {
		t.Errorf("BMI(70, 170) = %v, want 24.2", got)
	}
	if got := BMI(70, 0); got != 0 {
		t.Errorf("BMI with missing height = %v, want 0", got)
	}
}

func TestMeanArterialPressure(t *testing.T) {
	if got := MeanArterialPressure(120, 80); got != 93.3 {
		t.Errorf("MeanArterialPressure(120, 80) = %v, want 93.3", got)
	}
	if got := MeanArterialPressure(120, 0); got != 0 {
		t.Errorf("MeanArterialPressure with missing diastolic = %v, want 0", got)
	}
}

func TestIsFrail(t *testing.T) {
	frail := map[string]bool{
		"perdida_peso": true, "agotamiento": true, "velocidad_marcha": true,
		"actividad_fisica": false, "fuerza_prension": false,
	}
	if !IsFrail(frail) {
		t.Error("three positive criteria should classify as frail")
	}

	notFrail := map[string]bool{"perdida_peso": true, "agotamiento": true}
	if IsFrail(notFrail) {
		t.Error("two positive criteria should not classify as frail")
	}
	if IsFrail(nil) {
		t.Error("no responses should not classify as frail")
	}
}

func TestCriticalValues(t *testing.T) {
	labs := map[string]models.LabValue{
		"potasio":                      {Analyte: "potasio", Value: 6.5, Unit: "mEq/L"},
		labpatterns.AnalyteCreatinine:  {Analyte: labpatterns.AnalyteCreatinine, Value: 4.5, Unit: "mg/dL"},
		"glucosa":                      {Analyte: "glucosa", Value: 110, Unit: "mg/dL"},
	}

	alerts := CriticalValues(labs)
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts (%v), want 2", len(alerts), alerts)
	}

	// Deterministic ordering.
	again := CriticalValues(labs)
	for i := range alerts {
		if alerts[i] != again[i] {
			t.Fatal("critical value output is not deterministic")
		}
	}
}

func TestNoCriticalValuesInNormalRange(t *testing.T) {
	labs := map[string]models.LabValue{
		"potasio": {Analyte: "potasio", Value: 4.2, Unit: "mEq/L"},
		"sodio":   {Analyte: "sodio", Value: 140, Unit: "mEq/L"},
	}
	if alerts := CriticalValues(labs); len(alerts) != 0 {
		t.Errorf("unexpected alerts: %v", alerts)
	}
}
