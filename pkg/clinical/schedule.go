package clinical

import (
	"sort"
	"strings"
	"time"

	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/erc-insight/platform/pkg/common/models"
	"github.com/erc-insight/platform/pkg/labpatterns"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const visitDateLayout = "02/01/2006"

var labTitleCaser = cases.Title(language.Spanish)

// ScheduleLabs derives the next due date for every lab in the stage's
// panel, grouped by date. Range-valued intervals schedule at the earliest
// day of the window.
func ScheduleLabs(baseDate time.Time, stage models.Stage, diabetic, pthIndication bool) []models.ScheduledVisit {
	validity, ok := labpatterns.DefaultValidity()[stage]
	if !ok {
		logger.Log.WithField("stage", stage).Warn("Unknown stage for lab validity, falling back to G1")
		validity = labpatterns.DefaultValidity()[models.StageG1]
	}

	byDate := make(map[string][]string)
	for lab, interval := range validity {
		if lab == "pth" && (stage == models.StageG1 || stage == models.StageG2) && !pthIndication {
			continue
		}
		if lab == "hba1c" && !diabetic {
			continue
		}

		due := baseDate.AddDate(0, 0, interval.MinDays).Format(visitDateLayout)
		byDate[due] = append(byDate[due], displayLabName(lab))
	}

	visits := make([]models.ScheduledVisit, 0, len(byDate))
	for date, labs := range byDate {
		sort.Strings(labs)
		visits = append(visits, models.ScheduledVisit{Date: date, Labs: labs})
	}
	sort.Slice(visits, func(i, j int) bool {
		ti, _ := time.Parse(visitDateLayout, visits[i].Date)
		tj, _ := time.Parse(visitDateLayout, visits[j].Date)
		return ti.Before(tj)
	})

	return visits
}

// ControlPanelDays is the periodicity of the full control panel; very high
// cardiovascular risk halves it except in the advanced stages, which are
// already monthly.
func ControlPanelDays(stage models.Stage, risk models.RiskLevel) int {
	base := labpatterns.PanelIntervalDays(stage)
	if risk == models.RiskVeryHigh && stage != models.StageG4 && stage != models.StageG5 {
		return base / 2
	}
	return base
}

// NextVisit returns the follow-up appointment date and its justification.
func NextVisit(baseDate time.Time, offsetDays int, hasScheduledLabs bool) (string, string) {
	date := baseDate.AddDate(0, 0, offsetDays).Format(visitDateLayout)
	if hasScheduledLabs {
		return date, "Seguimiento posterior a toma de exámenes de control"
	}
	return date, "Control médico programado"
}

// ParseBaseDate reads a YYYY-MM-DD scheduling anchor; anything unparseable
// falls back to the current date.
func ParseBaseDate(s string) time.Time {
	if s == "" {
		return time.Now().UTC()
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		logger.Log.WithField("fecha_base", s).Warn("Invalid base date, using current date")
		return time.Now().UTC()
	}
	return t
}

func displayLabName(lab string) string {
	return labTitleCaser.String(strings.ReplaceAll(lab, "_", " "))
}
