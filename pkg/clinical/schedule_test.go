package clinical

import (
	"testing"
	"time"

	"github.com/erc-insight/platform/pkg/common/models"
)

func baseDate(t *testing.T) time.Time {
	t.Helper()
	base, err := time.Parse("2006-01-02", "2025-01-01")
	if err != nil {
		t.Fatal(err)
	}
	return base
}

func findVisit(visits []models.ScheduledVisit, date string) (models.ScheduledVisit, bool) {
	for _, v := range visits {
		if v.Date == date {
			return v, true
		}
	}
	return models.ScheduledVisit{}, false
}

func containsLab(labs []string, name string) bool {
	for _, l := range labs {
		if l == name {
			return true
		}
	}
	return false
}

func TestScheduleLabsStageG5(t *testing.T) {
	visits := ScheduleLabs(baseDate(t), models.StageG5, true, false)
	if len(visits) == 0 {
		t.Fatal("no visits scheduled")
	}

	// The 30-day labs for G5 group on the same date.
	monthly, ok := findVisit(visits, "31/01/2025")
	if !ok {
		t.Fatalf("no visit on 31/01/2025, got %+v", visits)
	}
	for _, name := range []string{"Creatinina", "Glicemia"} {
		if !containsLab(monthly.Labs, name) {
			t.Errorf("30-day visit is missing %s: %v", name, monthly.Labs)
		}
	}

	// Visits come out sorted by date.
	for i := 1; i < len(visits); i++ {
		prev, _ := time.Parse(visitDateLayout, visits[i-1].Date)
		cur, _ := time.Parse(visitDateLayout, visits[i].Date)
		if cur.Before(prev) {
			t.Fatalf("visits are not sorted: %s before %s", visits[i].Date, visits[i-1].Date)
		}
	}
}

func TestScheduleLabsUsesWindowMinimum(t *testing.T) {
	// G3a creatinine has a [90, 121] day window; scheduling uses day 90.
	visits := ScheduleLabs(baseDate(t), models.StageG3a, false, false)

	day90, ok := findVisit(visits, "01/04/2025")
	if !ok || !containsLab(day90.Labs, "Creatinina") {
		t.Errorf("creatinine not scheduled at the window minimum, visits: %+v", visits)
	}
}

func TestScheduleLabsSkipsHbA1cForNonDiabetics(t *testing.T) {
	visits := ScheduleLabs(baseDate(t), models.StageG3a, false, false)
	for _, v := range visits {
		if containsLab(v.Labs, "Hba1c") {
			t.Fatalf("HbA1c scheduled for a non-diabetic: %+v", v)
		}
	}
}

func TestScheduleLabsPTHIndication(t *testing.T) {
	// G2 orders PTH only on explicit indication.
	without := ScheduleLabs(baseDate(t), models.StageG2, false, false)
	for _, v := range without {
		if containsLab(v.Labs, "Pth") {
			t.Fatalf("PTH scheduled without indication in G2: %+v", v)
		}
	}

	with := ScheduleLabs(baseDate(t), models.StageG2, false, true)
	found := false
	for _, v := range with {
		if containsLab(v.Labs, "Pth") {
			found = true
		}
	}
	if !found {
		t.Error("PTH not scheduled despite indication in G2")
	}

	// G4 orders PTH regardless of indication.
	advanced := ScheduleLabs(baseDate(t), models.StageG4, false, false)
	found = false
	for _, v := range advanced {
		if containsLab(v.Labs, "Pth") {
			found = true
		}
	}
	if !found {
		t.Error("PTH not scheduled in G4")
	}
}

func TestControlPanelDays(t *testing.T) {
	cases := []struct {
		stage models.Stage
		risk  models.RiskLevel
		want  int
	}{
		{models.StageG1, models.RiskModerate, 180},
		{models.StageG1, models.RiskVeryHigh, 90},
		{models.StageG3a, models.RiskVeryHigh, 45},
		{models.StageG4, models.RiskVeryHigh, 30},
		{models.StageG5, models.RiskVeryHigh, 30},
	}
	for _, tc := range cases {
		if got := ControlPanelDays(tc.stage, tc.risk); got != tc.want {
			t.Errorf("ControlPanelDays(%s, %s) = %d, want %d", tc.stage, tc.risk, got, tc.want)
		}
	}
}

func TestNextVisit(t *testing.T) {
	date, justification := NextVisit(baseDate(t), 7, true)
	if date != "08/01/2025" {
		t.Errorf("date = %s, want 08/01/2025", date)
	}
	if justification != "Seguimiento posterior a toma de exámenes de control" {
		t.Errorf("justification = %q", justification)
	}

	_, noLabs := NextVisit(baseDate(t), 7, false)
	if noLabs != "Control médico programado" {
		t.Errorf("justification without labs = %q", noLabs)
	}
}

func TestParseBaseDate(t *testing.T) {
	parsed := ParseBaseDate("2025-06-15")
	if parsed.Format("2006-01-02") != "2025-06-15" {
		t.Errorf("parsed = %v", parsed)
	}

	// Invalid input falls back to roughly now.
	fallback := ParseBaseDate("not-a-date")
	if time.Since(fallback) > time.Minute {
		t.Errorf("fallback = %v, want current time", fallback)
	}
}
