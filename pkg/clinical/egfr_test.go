package clinical

import (
	"errors"
	"math"
	"testing"

	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/erc-insight/platform/pkg/common/models"
)

func init() {
	logger.Init()
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestCockcroftGault(t *testing.T) {
	cases := []struct {
		name       string
		creatinine float64
		age        int
		sex        models.Sex
		weight     float64
		want       float64
	}{
		{"middle aged male", 1.2, 50, models.SexMale, 70, 72.92},
		{"older female", 0.9, 65, models.SexFemale, 60, 59.03},
		{"older male", 1.2, 65, models.SexMale, 70, 60.76},
		{"non-positive creatinine substituted", 0, 50, models.SexMale, 70, 87.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CockcroftGault(tc.creatinine, tc.age, tc.sex, tc.weight)
			if err != nil {
				t.Fatalf("CockcroftGault: %v", err)
			}
			if !almostEqual(got, tc.want, 0.01) {
				t.Errorf("eGFR = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCockcroftGaultRejectsInvalidInput(t *testing.T) {
	var vErr *ValidationError

	if _, err := CockcroftGault(1.2, 17, models.SexMale, 70); !errors.As(err, &vErr) {
		t.Errorf("age 17: err = %v, want ValidationError", err)
	} else if vErr.Field != "edad" {
		t.Errorf("field = %s, want edad", vErr.Field)
	}

	if _, err := CockcroftGault(1.2, 50, models.SexMale, 0); !errors.As(err, &vErr) {
		t.Errorf("zero weight: err = %v, want ValidationError", err)
	}
}

func TestCKDEPI(t *testing.T) {
	// Male at the 0.9 mg/dL knot: the creatinine term is exactly 1, so
	// eGFR = 141 * 0.993^age.
	got, err := CKDEPI(0.9, 50, models.SexMale, false)
	if err != nil {
		t.Fatalf("CKDEPI: %v", err)
	}
	if !almostEqual(got, 99.24, 0.05) {
		t.Errorf("male knot eGFR = %v, want ~99.24", got)
	}

	// Low-creatinine female branch.
	gotF, err := CKDEPI(0.6, 40, models.SexFemale, false)
	if err != nil {
		t.Fatalf("CKDEPI: %v", err)
	}
	if !almostEqual(gotF, 114.38, 0.1) {
		t.Errorf("female eGFR = %v, want ~114.38", gotF)
	}
}

func TestCKDEPIRaceMultiplier(t *testing.T) {
	base, err := CKDEPI(1.1, 55, models.SexMale, false)
	if err != nil {
		t.Fatalf("CKDEPI: %v", err)
	}
	flagged, err := CKDEPI(1.1, 55, models.SexMale, true)
	if err != nil {
		t.Fatalf("CKDEPI: %v", err)
	}
	if !almostEqual(flagged, round2(base*1.159), 0.02) {
		t.Errorf("race-flagged eGFR = %v, want %v * 1.159", flagged, base)
	}
}

func TestCKDEPIRejectsMinors(t *testing.T) {
	var vErr *ValidationError
	if _, err := CKDEPI(1.0, 12, models.SexFemale, false); !errors.As(err, &vErr) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestEstimateGFRDispatch(t *testing.T) {
	p := models.PatientInput{Age: 50, Sex: models.SexMale, WeightKg: 70}

	_, formula, err := EstimateGFR("", 1.2, p)
	if err != nil || formula != FormulaCockcroftGault {
		t.Errorf("default dispatch = (%s, %v), want Cockcroft-Gault", formula, err)
	}

	_, formula, err = EstimateGFR(FormulaCKDEPI, 1.2, p)
	if err != nil || formula != FormulaCKDEPI {
		t.Errorf("ckd-epi dispatch = (%s, %v), want ckd-epi", formula, err)
	}
}

func TestEGFRMonotonicInCreatinine(t *testing.T) {
	prev := math.Inf(1)
	for cr := 0.5; cr <= 10; cr += 0.25 {
		got, err := CockcroftGault(cr, 60, models.SexMale, 70)
		if err != nil {
			t.Fatalf("CockcroftGault(%v): %v", cr, err)
		}
		if got > prev {
			t.Fatalf("eGFR increased from %v to %v as creatinine rose to %v", prev, got, cr)
		}
		prev = got
	}
}

func TestStageForEGFR(t *testing.T) {
	cases := []struct {
		egfr float64
		want models.Stage
	}{
		{120, models.StageG1},
		{90, models.StageG1},
		{89.99, models.StageG2},
		{60, models.StageG2},
		{59.99, models.StageG3a},
		{45, models.StageG3a},
		{44.99, models.StageG3b},
		{30, models.StageG3b},
		{29.99, models.StageG4},
		{15, models.StageG4},
		{14.99, models.StageG5},
		{5, models.StageG5},
	}
	for _, tc := range cases {
		if got := StageForEGFR(tc.egfr); got != tc.want {
			t.Errorf("StageForEGFR(%v) = %s, want %s", tc.egfr, got, tc.want)
		}
	}
}

func TestStageLabel(t *testing.T) {
	if got := StageLabel(models.StageG3a); got != "Estadio 3a" {
		t.Errorf("StageLabel(G3a) = %q, want Estadio 3a", got)
	}
	if got := StageLabel(models.StageG5); got != "Estadio 5" {
		t.Errorf("StageLabel(G5) = %q, want Estadio 5", got)
	}
}
