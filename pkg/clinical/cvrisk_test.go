package clinical

import (
	"strings"
	"testing"

	"github.com/erc-insight/platform/pkg/common/models"
)

func TestVeryHighRiskConditions(t *testing.T) {
	cases := []struct {
		name          string
		patient       models.PatientInput
		egfr          float64
		justification string
	}{
		{
			name:          "established CVD",
			patient:       models.PatientInput{EstablishedCVD: true},
			egfr:          80,
			justification: "enfermedad cardiovascular aterosclerótica establecida",
		},
		{
			name:          "eGFR at 30",
			patient:       models.PatientInput{},
			egfr:          30,
			justification: "TFGe ≤ 30",
		},
		{
			name:          "diabetes with organ damage",
			patient:       models.PatientInput{Diabetes: true, TargetOrganDamage: true},
			egfr:          80,
			justification: "daño de órgano blanco",
		},
		{
			name: "diabetes with three risk factors",
			patient: models.PatientInput{
				Diabetes:    true,
				RiskFactors: []string{"tabaquismo", "obesidad", "dislipidemia"},
			},
			egfr:          80,
			justification: "tres o más factores",
		},
		{
			name:          "longstanding diabetes",
			patient:       models.PatientInput{Diabetes: true, DiabetesDurationYears: 12},
			egfr:          80,
			justification: "duración mayor a 10 años",
		},
		{
			name: "diabetic 75yo counts age as two factors",
			patient: models.PatientInput{
				Diabetes:    true,
				Age:         75,
				RiskFactors: []string{"tabaquismo"},
			},
			egfr:          80,
			justification: "tres o más factores",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AssessCardiovascularRisk(tc.patient, tc.egfr, 0)
			if got.Level != models.RiskVeryHigh {
				t.Fatalf("level = %s, want very_high", got.Level)
			}
			if !strings.Contains(got.Justification, tc.justification) {
				t.Errorf("justification = %q, want it to mention %q", got.Justification, tc.justification)
			}
		})
	}
}

func TestHighRiskConditions(t *testing.T) {
	cases := []struct {
		name    string
		patient models.PatientInput
		egfr    float64
		ldl     float64
	}{
		{"eGFR in 30-60 band", models.PatientInput{}, 50, 0},
		{"severe hypertension", models.PatientInput{SystolicBP: 185, DiastolicBP: 95}, 80, 0},
		{"severe diastolic hypertension", models.PatientInput{SystolicBP: 150, DiastolicBP: 115}, 80, 0},
		{"LDL above 190", models.PatientInput{}, 80, 200},
		{"three risk factors without diabetes", models.PatientInput{
			RiskFactors: []string{"tabaquismo", "obesidad", "sedentarismo"},
		}, 80, 0},
		{"three potentiating factors", models.PatientInput{
			PotentiatingFactors: []string{"a", "b", "c"},
		}, 80, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AssessCardiovascularRisk(tc.patient, tc.egfr, tc.ldl)
			if got.Level != models.RiskHigh {
				t.Errorf("level = %s (%s), want high", got.Level, got.Justification)
			}
		})
	}
}

func TestModerateRisk(t *testing.T) {
	withPotentiators := AssessCardiovascularRisk(models.PatientInput{
		PotentiatingFactors: []string{"inflamación crónica"},
	}, 80, 0)
	if withPotentiators.Level != models.RiskModerate {
		t.Errorf("level = %s, want moderate", withPotentiators.Level)
	}

	baseline := AssessCardiovascularRisk(models.PatientInput{Age: 40}, 95, 100)
	if baseline.Level != models.RiskModerate {
		t.Errorf("baseline level = %s, want moderate", baseline.Level)
	}
	if baseline.Justification == "" {
		t.Error("baseline justification should not be empty")
	}
}

func TestVeryHighTakesPrecedenceOverHigh(t *testing.T) {
	// Both conditions present: established CVD must win over the eGFR band.
	got := AssessCardiovascularRisk(models.PatientInput{EstablishedCVD: true}, 50, 0)
	if got.Level != models.RiskVeryHigh {
		t.Errorf("level = %s, want very_high", got.Level)
	}
}
