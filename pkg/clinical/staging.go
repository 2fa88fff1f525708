package clinical

import "github.com/erc-insight/platform/pkg/common/models"

// StageForEGFR maps an eGFR to the KDIGO G stage. Boundaries are inclusive
// on the lower bound of each band.
func StageForEGFR(egfr float64) models.Stage {
	switch {
	case egfr >= 90:
		return models.StageG1
	case egfr >= 60:
		return models.StageG2
	case egfr >= 45:
		return models.StageG3a
	case egfr >= 30:
		return models.StageG3b
	case egfr >= 15:
		return models.StageG4
	default:
		return models.StageG5
	}
}

// StageLabel is the human-readable form used in the narrative payload.
func StageLabel(stage models.Stage) string {
	return "Estadio " + string(stage)[1:]
}
