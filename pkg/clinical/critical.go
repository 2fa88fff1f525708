package clinical

import (
	"fmt"
	"sort"

	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/erc-insight/platform/pkg/common/models"
	"github.com/erc-insight/platform/pkg/labpatterns"
)

// CriticalValues flags lab results outside the immediate-attention ranges.
// The output is sorted so identical inputs always produce identical lists.
func CriticalValues(labs map[string]models.LabValue) []string {
	ranges := labpatterns.DefaultCriticalRanges()

	var alerts []string
	for analyte, cr := range ranges {
		lv, ok := labs[analyte]
		if !ok {
			continue
		}
		if lv.Value < cr.Min || lv.Value > cr.Max {
			alerts = append(alerts, fmt.Sprintf(
				"%s: %s %s fuera del rango seguro [%g - %g]",
				analyte, formatNumber(lv.Value), lv.Unit, cr.Min, cr.Max,
			))
			logger.Log.WithFields(map[string]interface{}{
				"analyte": analyte,
				"value":   lv.Value,
			}).Warn("Critical lab value detected")
		}
	}

	sort.Strings(alerts)
	return alerts
}
