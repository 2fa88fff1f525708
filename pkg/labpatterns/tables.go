package labpatterns

import "github.com/erc-insight/platform/pkg/common/models"

// Profile selects a column of the goal weight matrix: disease extent
// (stages 1-3 vs stage 4+) crossed with diabetic status.
type Profile string

const (
	ProfileERC123DM2   Profile = "erc123_dm2"
	ProfileERC123NoDM2 Profile = "erc123_nodm2"
	ProfileERC4DM2     Profile = "erc4_dm2"
	ProfileERC4NoDM2   Profile = "erc4_nodm2"
)

func ProfileFor(stage models.Stage, diabetic bool) Profile {
	advanced := stage == models.StageG4 || stage == models.StageG5
	switch {
	case advanced && diabetic:
		return ProfileERC4DM2
	case advanced:
		return ProfileERC4NoDM2
	case diabetic:
		return ProfileERC123DM2
	default:
		return ProfileERC123NoDM2
	}
}

// GoalWeights maps therapeutic parameter -> profile -> points awarded when
// the goal is met. Each profile column sums to 100.
type GoalWeights map[string]map[Profile]float64

func DefaultGoalWeights() GoalWeights {
	return GoalWeights{
		"glicemia": {
			ProfileERC123DM2: 4, ProfileERC4DM2: 5,
			ProfileERC123NoDM2: 5, ProfileERC4NoDM2: 10,
		},
		"colesterol_ldl": {
			ProfileERC123DM2: 20, ProfileERC4DM2: 0,
			ProfileERC123NoDM2: 25, ProfileERC4NoDM2: 0,
		},
		"hdl": {
			ProfileERC123DM2: 4, ProfileERC4DM2: 5,
			ProfileERC123NoDM2: 5, ProfileERC4NoDM2: 10,
		},
		"trigliceridos": {
			ProfileERC123DM2: 4, ProfileERC4DM2: 5,
			ProfileERC123NoDM2: 5, ProfileERC4NoDM2: 10,
		},
		"presion_arterial": {
			ProfileERC123DM2: 20, ProfileERC4DM2: 30,
			ProfileERC123NoDM2: 25, ProfileERC4NoDM2: 40,
		},
		"rac": {
			ProfileERC123DM2: 20, ProfileERC4DM2: 15,
			ProfileERC123NoDM2: 25, ProfileERC4NoDM2: 10,
		},
		"perimetro_abdominal": {
			ProfileERC123DM2: 4, ProfileERC4DM2: 5,
			ProfileERC123NoDM2: 5, ProfileERC4NoDM2: 10,
		},
		"imc": {
			ProfileERC123DM2: 4, ProfileERC4DM2: 5,
			ProfileERC123NoDM2: 5, ProfileERC4NoDM2: 10,
		},
		"hba1c": {
			ProfileERC123DM2: 20, ProfileERC4DM2: 30,
			ProfileERC123NoDM2: 0, ProfileERC4NoDM2: 0,
		},
	}
}

// Targets groups the therapeutic goal thresholds. Context-dependent
// variants (risk level, sex, age) are resolved by the scoring code.
type Targets struct {
	Glucose          float64
	LDLDefault       float64
	LDLHighRisk      float64
	LDLVeryHighRisk  float64
	HDLMale          float64
	HDLFemale        float64
	Triglycerides    float64
	SystolicDefault  float64
	DiastolicDefault float64
	SystolicStrict   float64
	DiastolicStrict  float64
	RAC              float64
	WaistMale        float64
	WaistFemale      float64
	BMI              float64
	HbA1cDefault     float64
	HbA1cRelaxed     float64
	HbA1cRelaxAge    int
}

func DefaultTargets() Targets {
	return Targets{
		Glucose:          130,
		LDLDefault:       100,
		LDLHighRisk:      70,
		LDLVeryHighRisk:  55,
		HDLMale:          40,
		HDLFemale:        50,
		Triglycerides:    150,
		SystolicDefault:  140,
		DiastolicDefault: 90,
		SystolicStrict:   130,
		DiastolicStrict:  80,
		RAC:              30,
		WaistMale:        94,
		WaistFemale:      90,
		BMI:              25,
		HbA1cDefault:     7.0,
		HbA1cRelaxed:     8.0,
		HbA1cRelaxAge:    75,
	}
}

// ValidityInterval says how long a lab result stays current for a given
// stage. Most labs have a single figure (Min == Max); creatinine in the
// middle stages carries a scheduling window instead.
type ValidityInterval struct {
	MinDays int
	MaxDays int
}

func days(n int) ValidityInterval { return ValidityInterval{MinDays: n, MaxDays: n} }

// DefaultValidity returns the per-stage lab validity catalog. A lab absent
// from a stage's map is not part of that stage's panel (PTH is not ordered
// in G1 unless a bone-mineral indication exists).
func DefaultValidity() map[models.Stage]map[string]ValidityInterval {
	return map[models.Stage]map[string]ValidityInterval{
		models.StageG1: {
			"parcial_orina":    days(180),
			"creatinina":       days(180),
			"glicemia":         days(180),
			"colesterol_total": days(180),
			"colesterol_ldl":   days(180),
			"trigliceridos":    days(180),
			"hba1c":            days(180),
			"microalbuminuria": days(180),
			"hemoglobina":      days(365),
			"hematocrito":      days(365),
			"depuracion_creatinina_24h": days(365),
		},
		models.StageG2: {
			"parcial_orina":    days(180),
			"creatinina":       days(180),
			"glicemia":         days(180),
			"colesterol_total": days(180),
			"colesterol_ldl":   days(180),
			"trigliceridos":    days(180),
			"hba1c":            days(180),
			"microalbuminuria": days(180),
			"hemoglobina":      days(365),
			"hematocrito":      days(365),
			"pth":              days(365),
			"depuracion_creatinina_24h": days(180),
		},
		models.StageG3a: {
			"parcial_orina":    days(180),
			"creatinina":       {MinDays: 90, MaxDays: 121},
			"glicemia":         days(180),
			"colesterol_total": days(180),
			"colesterol_ldl":   days(180),
			"trigliceridos":    days(180),
			"hba1c":            days(180),
			"microalbuminuria": days(180),
			"hemoglobina":      days(365),
			"hematocrito":      days(365),
			"pth":              days(365),
			"depuracion_creatinina_24h": days(180),
		},
		models.StageG3b: {
			"parcial_orina":    days(180),
			"creatinina":       {MinDays: 90, MaxDays: 121},
			"glicemia":         days(180),
			"colesterol_total": days(180),
			"colesterol_ldl":   days(180),
			"trigliceridos":    days(180),
			"hba1c":            days(180),
			"microalbuminuria": days(180),
			"hemoglobina":      days(365),
			"hematocrito":      days(365),
			"pth":              days(365),
			"albumina":         days(365),
			"fosforo":          days(365),
			"depuracion_creatinina_24h": days(180),
		},
		models.StageG4: {
			"parcial_orina":    days(120),
			"creatinina":       {MinDays: 60, MaxDays: 93},
			"glicemia":         days(60),
			"colesterol_total": days(120),
			"colesterol_ldl":   days(180),
			"trigliceridos":    days(120),
			"hba1c":            days(120),
			"microalbuminuria": days(180),
			"hemoglobina":      days(180),
			"hematocrito":      days(180),
			"pth":              days(180),
			"albumina":         days(365),
			"fosforo":          days(365),
			"depuracion_creatinina_24h": days(90),
		},
		models.StageG5: {
			"parcial_orina":    days(90),
			"creatinina":       days(30),
			"glicemia":         days(30),
			"colesterol_total": days(90),
			"colesterol_ldl":   days(180),
			"trigliceridos":    days(90),
			"hba1c":            days(90),
			"microalbuminuria": days(180),
			"hemoglobina":      days(90),
			"hematocrito":      days(90),
			"pth":              days(90),
			"albumina":         days(180),
			"fosforo":          days(180),
			"depuracion_creatinina_24h": days(30),
		},
	}
}

// PanelIntervalDays is the base control-panel periodicity per stage.
func PanelIntervalDays(stage models.Stage) int {
	switch stage {
	case models.StageG4, models.StageG5:
		return 30
	case models.StageG3a, models.StageG3b:
		return 90
	default:
		return 180
	}
}

// Compliance bands over the 0-100 goal score.
const (
	ComplianceExcellent = "Excelente"
	ComplianceGood      = "Bueno"
	ComplianceFair      = "Regular"
	CompliancePoor      = "Deficiente"
)

func ComplianceBand(score float64) string {
	switch {
	case score >= 80:
		return ComplianceExcellent
	case score >= 60:
		return ComplianceGood
	case score >= 40:
		return ComplianceFair
	default:
		return CompliancePoor
	}
}

// CriticalRange flags results that need immediate clinical attention.
type CriticalRange struct {
	Min float64
	Max float64
}

func DefaultCriticalRanges() map[string]CriticalRange {
	return map[string]CriticalRange{
		"potasio":           {Min: 3.0, Max: 6.0},
		"sodio":             {Min: 130, Max: 150},
		"creatinina_serica": {Min: 0, Max: 4.0},
		"glucosa":           {Min: 70, Max: 300},
		"calcio":            {Min: 7.5, Max: 11.0},
	}
}
