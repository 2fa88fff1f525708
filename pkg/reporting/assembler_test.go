package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/erc-insight/platform/pkg/clinical"
	"github.com/erc-insight/platform/pkg/common/config"
	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/erc-insight/platform/pkg/common/models"
	"github.com/erc-insight/platform/pkg/labpatterns"
)

func init() {
	logger.Init()
}

func fixtureInputs(t *testing.T) (models.PatientInput, models.ClinicalProfile, models.ExtractionResult) {
	t.Helper()

	p := models.PatientInput{
		Age: 65, Sex: models.SexMale, WeightKg: 70, HeightCm: 172,
		Diabetes: true, SystolicBP: 128, DiastolicBP: 78,
		Diagnoses:   []string{"ERC estadio 2", "DM2"},
		Medications: []string{"losartán 50 mg", "metformina 850 mg"},
		BaseDate:    "2025-01-01",
	}
	labs := map[string]models.LabValue{
		labpatterns.AnalyteCreatinine: {Analyte: labpatterns.AnalyteCreatinine, Value: 1.2, Unit: "mg/dL"},
		"glucosa":                     {Analyte: "glucosa", Value: 118, Unit: "mg/dL"},
		"hba1c":                       {Analyte: "hba1c", Value: 6.8, Unit: "%"},
	}
	extraction := models.ExtractionResult{
		Results: labs,
		PatientData: models.PatientDemographics{
			Name: "Juan Pérez", Age: 65, Sex: models.SexMale,
		},
		Status:  models.StatusSuccess,
		Message: "extracted 3 laboratory values",
	}

	profile, err := clinical.NewEvaluator(7).Evaluate(p, labs, "")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	return p, profile, extraction
}

func TestBuildPayloadDeterministic(t *testing.T) {
	p, profile, extraction := fixtureInputs(t)
	generatedAt := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)

	first := BuildPayload(p, profile, extraction, generatedAt)
	second := BuildPayload(p, profile, extraction, generatedAt)

	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	secondJSON, err := json.Marshal(second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(firstJSON, secondJSON) {
		t.Error("identical inputs produced different payload encodings")
	}
}

func TestBuildPayloadContents(t *testing.T) {
	p, profile, extraction := fixtureInputs(t)
	generatedAt := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)

	payload := BuildPayload(p, profile, extraction, generatedAt)

	if payload.DiagnosticEvaluation.EGFRValue != 60.76 {
		t.Errorf("eGFR = %v, want 60.76", payload.DiagnosticEvaluation.EGFRValue)
	}
	if payload.DiagnosticEvaluation.CKDStage != "Estadio 2" {
		t.Errorf("stage = %q, want Estadio 2", payload.DiagnosticEvaluation.CKDStage)
	}
	if len(payload.PharmacologicPlan.Medications) != 2 {
		t.Errorf("medications = %v", payload.PharmacologicPlan.Medications)
	}
	if payload.FollowUpPlan.NextVisitDate != profile.NextVisitDate {
		t.Error("follow-up plan does not carry the profile's next visit")
	}
	if payload.AdditionalData.BMI != 23.7 {
		t.Errorf("BMI = %v, want 23.7", payload.AdditionalData.BMI)
	}
	if payload.AdditionalData.MeanBP != 94.7 {
		t.Errorf("mean BP = %v, want 94.7", payload.AdditionalData.MeanBP)
	}
	if payload.AdditionalData.Demographics.Name != "Juan Pérez" {
		t.Errorf("demographics name = %q", payload.AdditionalData.Demographics.Name)
	}
	if payload.GeneratedAt != "2025-01-02T15:04:05Z" {
		t.Errorf("generated at = %q", payload.GeneratedAt)
	}
}

func TestBuildPayloadNormalizesNilSlices(t *testing.T) {
	p := models.PatientInput{Age: 50, Sex: models.SexMale, WeightKg: 70}
	profile, err := clinical.NewEvaluator(7).Evaluate(p, map[string]models.LabValue{
		labpatterns.AnalyteCreatinine: {Value: 1.0},
	}, "")
	if err != nil {
		t.Fatal(err)
	}

	payload := BuildPayload(p, profile, models.ExtractionResult{}, time.Now())

	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(encoded, []byte(`"diagnosticos":null`)) ||
		bytes.Contains(encoded, []byte(`"medicamentos":null`)) ||
		bytes.Contains(encoded, []byte(`"metas":null`)) {
		t.Errorf("payload encodes nil slices as null: %s", encoded)
	}
}

func TestPayloadKeyIgnoresNothingButIsStable(t *testing.T) {
	p, profile, extraction := fixtureInputs(t)
	payload := BuildPayload(p, profile, extraction, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))

	k1, err := PayloadKey(payload)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := PayloadKey(payload)
	if err != nil {
		t.Fatal(err)
	}
	if k1 != k2 {
		t.Error("same payload produced different keys")
	}

	other := payload
	other.GoalCompliance.AdherenceScore++
	k3, err := PayloadKey(other)
	if err != nil {
		t.Fatal(err)
	}
	if k1 == k3 {
		t.Error("different payloads produced the same key")
	}
}

func TestMockNarrativeWithoutAPIKey(t *testing.T) {
	p, profile, extraction := fixtureInputs(t)
	payload := BuildPayload(p, profile, extraction, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))

	client := NewNarrativeClient(&config.Config{LLMModelName: "gemini-1.5-pro"})

	first, model, err := client.Generate(context.Background(), payload)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if model != "mock" {
		t.Errorf("model = %q, want mock", model)
	}
	second, _, err := client.Generate(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("mock narrative is not deterministic")
	}
	if first == "" {
		t.Error("mock narrative is empty")
	}
}
