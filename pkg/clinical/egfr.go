package clinical

import (
	"math"

	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/erc-insight/platform/pkg/common/models"
)

const (
	FormulaCockcroftGault = "cockcroft-gault"
	FormulaCKDEPI         = "ckd-epi"
)

// substituteCreatinine replaces non-positive creatinine with a neutral
// default so an obviously broken input degrades instead of dividing by zero.
func substituteCreatinine(creatinine float64) float64 {
	if creatinine <= 0 {
		logger.Log.WithField("creatinine", creatinine).Warn("Non-positive creatinine, substituting 1.0 mg/dL")
		return 1.0
	}
	return creatinine
}

// CockcroftGault estimates GFR in mL/min. Pediatric patients are out of
// scope for the staging protocol, so ages under 18 are rejected.
func CockcroftGault(creatinine float64, age int, sex models.Sex, weightKg float64) (float64, error) {
	if age < 18 {
		return 0, newValidationError("edad", age, "evaluation is defined for adults (18+)")
	}
	if weightKg <= 0 {
		return 0, newValidationError("peso", weightKg, "weight must be positive")
	}

	creatinine = substituteCreatinine(creatinine)

	sexFactor := 1.0
	if sex == models.SexFemale {
		sexFactor = 0.85
	}

	egfr := (float64(140-age) * weightKg * sexFactor) / (72 * creatinine)
	return round2(egfr), nil
}

// CKDEPI estimates GFR in mL/min/1.73m² with the 2009 CKD-EPI creatinine
// equation. The race multiplier is applied only when the caller flags it.
func CKDEPI(creatinine float64, age int, sex models.Sex, blackRace bool) (float64, error) {
	if age < 18 {
		return 0, newValidationError("edad", age, "evaluation is defined for adults (18+)")
	}

	creatinine = substituteCreatinine(creatinine)

	var egfr float64
	if sex == models.SexFemale {
		if creatinine <= 0.7 {
			egfr = 144 * math.Pow(creatinine/0.7, -0.329)
		} else {
			egfr = 144 * math.Pow(creatinine/0.7, -1.209)
		}
	} else {
		if creatinine <= 0.9 {
			egfr = 141 * math.Pow(creatinine/0.9, -0.411)
		} else {
			egfr = 141 * math.Pow(creatinine/0.9, -1.209)
		}
	}

	egfr *= math.Pow(0.993, float64(age))
	if blackRace {
		egfr *= 1.159
	}

	return round2(egfr), nil
}

// EstimateGFR dispatches on the requested formula; Cockcroft-Gault is the
// default. The two estimates are never combined.
func EstimateGFR(formula string, creatinine float64, p models.PatientInput) (float64, string, error) {
	if formula == FormulaCKDEPI {
		egfr, err := CKDEPI(creatinine, p.Age, p.Sex, p.BlackRace)
		return egfr, FormulaCKDEPI, err
	}
	egfr, err := CockcroftGault(creatinine, p.Age, p.Sex, p.WeightKg)
	return egfr, FormulaCockcroftGault, err
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
