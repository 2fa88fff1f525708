package clinical

import (
	"fmt"

	"github.com/erc-insight/platform/pkg/common/models"
)

type RiskAssessment struct {
	Level         models.RiskLevel
	Justification string
}

// riskFactorCount counts declared risk factors plus the age contribution:
// 75 and over counts double, 65-74 counts once.
func riskFactorCount(p models.PatientInput) int {
	count := len(p.RiskFactors)
	switch {
	case p.Age >= 75:
		count += 2
	case p.Age >= 65:
		count++
	}
	return count
}

// AssessCardiovascularRisk runs the staged classification protocol: very
// high risk conditions first, then high risk, then potentiating factors.
// ldl is the measured LDL cholesterol, 0 when not available.
func AssessCardiovascularRisk(p models.PatientInput, egfr float64, ldl float64) RiskAssessment {
	factors := riskFactorCount(p)

	switch {
	case p.EstablishedCVD:
		return RiskAssessment{models.RiskVeryHigh, "enfermedad cardiovascular aterosclerótica establecida"}
	case egfr <= 30:
		return RiskAssessment{models.RiskVeryHigh,
			fmt.Sprintf("ERC con TFGe ≤ 30 ml/min (actual: %g ml/min)", egfr)}
	case p.Diabetes && p.TargetOrganDamage:
		return RiskAssessment{models.RiskVeryHigh, "Diabetes con daño de órgano blanco"}
	case p.Diabetes && factors >= 3:
		return RiskAssessment{models.RiskVeryHigh, "Diabetes con tres o más factores de riesgo adicionales"}
	case p.Diabetes && p.DiabetesDurationYears > 10:
		return RiskAssessment{models.RiskVeryHigh,
			fmt.Sprintf("Diabetes con duración mayor a 10 años (actual: %d años)", p.DiabetesDurationYears)}
	}

	switch {
	case egfr > 30 && egfr <= 60:
		return RiskAssessment{models.RiskHigh,
			fmt.Sprintf("ERC con TFGe entre 30-60 ml/min (actual: %g ml/min)", egfr)}
	case p.SystolicBP >= 180 || p.DiastolicBP >= 110:
		return RiskAssessment{models.RiskHigh,
			fmt.Sprintf("Presión arterial marcadamente elevada: %g/%g mmHg", p.SystolicBP, p.DiastolicBP)}
	case ldl > 190:
		return RiskAssessment{models.RiskHigh,
			fmt.Sprintf("cLDL marcadamente elevado: %g mg/dL", ldl)}
	case factors >= 3:
		return RiskAssessment{models.RiskHigh, "Presencia de 3 o más factores de riesgo adicionales"}
	}

	switch n := len(p.PotentiatingFactors); {
	case n >= 3:
		return RiskAssessment{models.RiskHigh, "Presencia de 3 o más factores potenciadores de riesgo"}
	case n >= 1:
		return RiskAssessment{models.RiskModerate, "Presencia de 1-2 factores potenciadores de riesgo"}
	}

	return RiskAssessment{models.RiskModerate, "Evaluación general de factores de riesgo cardiovascular"}
}
