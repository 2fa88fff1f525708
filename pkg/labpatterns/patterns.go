package labpatterns

// ValidationRange bounds the physiologically plausible values for an
// analyte. Matches outside the range are discarded, never stored.
type ValidationRange struct {
	Min float64 `yaml:"min_value" json:"min_value"`
	Max float64 `yaml:"max_value" json:"max_value"`
}

func (r ValidationRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// IncludePattern is one way an analyte can appear in report text.
// Qualified marks patterns whose text explicitly names the serum/plasma
// context; those are exempt from exclusion-region suppression because the
// document itself disambiguated them.
type IncludePattern struct {
	ID         string  `yaml:"id" json:"id"`
	Expr       string  `yaml:"expr" json:"expr"`
	Confidence float64 `yaml:"confidence" json:"confidence"`
	Qualified  bool    `yaml:"qualified,omitempty" json:"qualified,omitempty"`
}

// AmbiguousRule is used for analytes whose bare name can refer to more than
// one specimen (serum vs urine creatinine). Exclude patterns mark text
// regions belonging to the competing context; include patterns matched
// inside those regions are rejected.
type AmbiguousRule struct {
	Name       string           `yaml:"name" json:"name"`
	Include    []IncludePattern `yaml:"include" json:"include"`
	Exclude    []string         `yaml:"exclude" json:"exclude"`
	Unit       string           `yaml:"unit" json:"unit"`
	Validation ValidationRange  `yaml:"validation" json:"validation"`
	Priority   string           `yaml:"priority,omitempty" json:"priority,omitempty"`
}

// AnalyteRule covers analytes with a single unambiguous pattern.
type AnalyteRule struct {
	Name       string          `yaml:"name" json:"name"`
	Expr       string          `yaml:"expr" json:"expr"`
	Unit       string          `yaml:"unit" json:"unit"`
	Confidence float64         `yaml:"confidence" json:"confidence"`
	Validation ValidationRange `yaml:"validation" json:"validation"`
}

// DemographicPatterns are best-effort; each list is tried in order and the
// first match wins for its field.
type DemographicPatterns struct {
	Name           []string `yaml:"name" json:"name"`
	Identification []string `yaml:"identification" json:"identification"`
	AgeSex         []string `yaml:"age_sex" json:"age_sex"`
	Age            []string `yaml:"age" json:"age"`
	Sex            []string `yaml:"sex" json:"sex"`
	ReportDate     []string `yaml:"report_date" json:"report_date"`
}

// Library is the full immutable pattern set. It is loaded once at startup
// and injected into the extractor; nothing mutates it afterwards.
type Library struct {
	Creatinine   []AmbiguousRule     `yaml:"creatinine" json:"creatinine"`
	Analytes     []AnalyteRule       `yaml:"analytes" json:"analytes"`
	Demographics DemographicPatterns `yaml:"demographics" json:"demographics"`
}

// AnalyteCreatinine is the canonical result key for serum creatinine shared
// by the extraction and scoring layers.
const AnalyteCreatinine = "creatinina_serica"

const number = `(\d+[.,]\d+|\d+)`

func DefaultLibrary() Library {
	return Library{
		Creatinine: []AmbiguousRule{
			{
				Name:     "creatinina_urgente",
				Priority: PriorityHigh,
				Include: []IncludePattern{
					{
						ID:         "urgent_full",
						Expr:       `(?i)creatinina\s+(?:stat|urg(?:ente)?|emergencia)\s*[:=]?\s*` + number + `\s*mg/d[lL]`,
						Confidence: 0.9,
						Qualified:  true,
					},
					{
						ID:         "urgent_abbrev",
						Expr:       `(?i)\bcr\b\.?\s+(?:stat|urg)\s*[:=]?\s*` + number + `\s*mg/d[lL]`,
						Confidence: 0.85,
					},
				},
				Exclude:    creatinineExclusions(),
				Unit:       "mg/dL",
				Validation: ValidationRange{Min: 0.2, Max: 20.0},
			},
			{
				Name: "creatinina_serica",
				Include: []IncludePattern{
					{
						ID:         "serum_qualified",
						Expr:       `(?i)creatinina\s+(?:s[eé]rica|(?:en\s+)?suero|plasm[aá]tica|plasma|en\s+sangre)\s*[:=]?\s*` + number + `\s*mg/d[lL]`,
						Confidence: 0.95,
						Qualified:  true,
					},
					{
						ID:         "serum_bare",
						Expr:       `(?i)creatinina\s*[:=]?\s*` + number + `\s*mg/d[lL]`,
						Confidence: 0.7,
					},
					{
						ID:         "serum_abbrev",
						Expr:       `(?i)\bcreat\b\.?(?:\s+s[eé]r\.?|\s+suero)?\s*[:=]?\s*` + number + `\s*mg/d[lL]`,
						Confidence: 0.65,
					},
					{
						ID:         "serum_cr",
						Expr:       `(?i)\bcr\b\.?\s*[:=]?\s*` + number + `\s*mg/d[lL]`,
						Confidence: 0.6,
					},
				},
				Exclude:    creatinineExclusions(),
				Unit:       "mg/dL",
				Validation: ValidationRange{Min: 0.2, Max: 20.0},
			},
		},
		Analytes: []AnalyteRule{
			{
				Name:       "glucosa",
				Expr:       `(?i)(?:glucosa|glicemia)(?:\s+en\s+ayunas|\s+basal)?\s*[:=]?\s*` + number + `\s*mg/d[lL]`,
				Unit:       "mg/dL",
				Confidence: 0.8,
				Validation: ValidationRange{Min: 20, Max: 1000},
			},
			{
				Name:       "hba1c",
				Expr:       `(?i)(?:hba1c|\ba1c\b|hemoglobina\s+gl[iu]cosilada)\s*[:=]?\s*` + number + `\s*%`,
				Unit:       "%",
				Confidence: 0.85,
				Validation: ValidationRange{Min: 3, Max: 20},
			},
			{
				Name:       "colesterol_total",
				Expr:       `(?i)colesterol(?:\s+total)?\s*[:=]?\s*` + number + `\s*mg/d[lL]`,
				Unit:       "mg/dL",
				Confidence: 0.8,
				Validation: ValidationRange{Min: 50, Max: 500},
			},
			{
				Name:       "colesterol_ldl",
				Expr:       `(?i)(?:colesterol\s+)?\bldl\b\s*[:=]?\s*` + number + `\s*mg/d[lL]`,
				Unit:       "mg/dL",
				Confidence: 0.8,
				Validation: ValidationRange{Min: 10, Max: 400},
			},
			{
				Name:       "hdl",
				Expr:       `(?i)(?:colesterol\s+)?\bhdl\b\s*[:=]?\s*` + number + `\s*mg/d[lL]`,
				Unit:       "mg/dL",
				Confidence: 0.8,
				Validation: ValidationRange{Min: 5, Max: 150},
			},
			{
				Name:       "trigliceridos",
				Expr:       `(?i)triglic[eé]ridos?\s*[:=]?\s*` + number + `\s*mg/d[lL]`,
				Unit:       "mg/dL",
				Confidence: 0.8,
				Validation: ValidationRange{Min: 20, Max: 2000},
			},
			{
				Name:       "rac",
				Expr:       `(?i)(?:\brac\b|relaci[oó]n\s+alb[uú]mina[/-]creatinina|relaci[oó]n\s+a/c|microalbuminuria[/\s]+creatinina|alb[uú]mina/creatinina)\s*[:=]?\s*` + number + `\s*(?:mg/gr?\b|µg/mg|mcg/mg)`,
				Unit:       "mg/g",
				Confidence: 0.85,
				Validation: ValidationRange{Min: 0, Max: 5000},
			},
			{
				Name:       "potasio",
				Expr:       `(?i)(?:potasio|\bk\+?\b)(?:\s+s[eé]rico)?\s*[:=]?\s*` + number + `\s*(?:mEq/L|mmol/L)`,
				Unit:       "mEq/L",
				Confidence: 0.8,
				Validation: ValidationRange{Min: 1.5, Max: 9},
			},
			{
				Name:       "sodio",
				Expr:       `(?i)sodio\s*[:=]?\s*` + number + `\s*(?:mEq/L|mmol/L)`,
				Unit:       "mEq/L",
				Confidence: 0.8,
				Validation: ValidationRange{Min: 110, Max: 180},
			},
			{
				Name:       "calcio",
				Expr:       `(?i)calcio\s*[:=]?\s*` + number + `\s*mg/d[lL]`,
				Unit:       "mg/dL",
				Confidence: 0.8,
				Validation: ValidationRange{Min: 4, Max: 15},
			},
			{
				Name:       "fosforo",
				Expr:       `(?i)f[oó]sforo\s*[:=]?\s*` + number + `\s*mg/d[lL]`,
				Unit:       "mg/dL",
				Confidence: 0.8,
				Validation: ValidationRange{Min: 0.5, Max: 10},
			},
			{
				Name:       "albumina",
				Expr:       `(?i)alb[uú]mina\s*[:=]?\s*` + number + `\s*g/d[lL]`,
				Unit:       "g/dL",
				Confidence: 0.75,
				Validation: ValidationRange{Min: 1, Max: 6},
			},
			{
				Name:       "pth",
				Expr:       `(?i)(?:\bpth\b|(?:hormona\s+)?paratiroidea)\s*[:=]?\s*` + number + `\s*pg/m[lL]`,
				Unit:       "pg/mL",
				Confidence: 0.8,
				Validation: ValidationRange{Min: 5, Max: 2000},
			},
			{
				Name:       "bun",
				Expr:       `(?i)(?:\bbun\b|nitr[oó]geno\s+ureico)\s*[:=]?\s*` + number + `\s*mg/d[lL]`,
				Unit:       "mg/dL",
				Confidence: 0.8,
				Validation: ValidationRange{Min: 2, Max: 200},
			},
			{
				Name:       "urea",
				Expr:       `(?i)\burea\b\s*[:=]?\s*` + number + `\s*mg/d[lL]`,
				Unit:       "mg/dL",
				Confidence: 0.8,
				Validation: ValidationRange{Min: 5, Max: 400},
			},
			{
				Name:       "acido_urico",
				Expr:       `(?i)[aá]cido\s+[uú]rico\s*[:=]?\s*` + number + `\s*mg/d[lL]`,
				Unit:       "mg/dL",
				Confidence: 0.8,
				Validation: ValidationRange{Min: 1, Max: 20},
			},
			{
				Name:       "hemoglobina",
				Expr:       `(?i)hemoglobina\s*[:=]?\s*` + number + `\s*g/d[lL]`,
				Unit:       "g/dL",
				Confidence: 0.8,
				Validation: ValidationRange{Min: 4, Max: 22},
			},
			{
				Name:       "ferritina",
				Expr:       `(?i)ferritina\s*[:=]?\s*` + number + `\s*ng/m[lL]`,
				Unit:       "ng/mL",
				Confidence: 0.8,
				Validation: ValidationRange{Min: 1, Max: 5000},
			},
		},
		Demographics: DemographicPatterns{
			Name: []string{
				`(?:PACIENTE|Paciente|NOMBRE\s+DEL\s+PACIENTE|Nombre)\s*[:=]\s*([A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+){1,3})`,
			},
			Identification: []string{
				`(?i)(?:identificaci[oó]n|c[eé]dula|\bid\b)\.?\s*[:=]\s*([A-Z]{0,2}\s*\d[\d\s.\-]*\d)`,
			},
			AgeSex: []string{
				`(?i)edad\s*(?:/\s*sexo)?\s*[:=]?\s*(\d{1,3})\s*años?[^FMfm\n]*\b([FMfm])\b`,
			},
			Age: []string{
				`(?i)edad\s*[:=]?\s*(\d{1,3})\s*(?:años|\baa\b)`,
				`(?i)\b(\d{1,3})\s*años\s*(?:de\s*edad)?`,
			},
			Sex: []string{
				`(?i)(?:sexo|g[eé]nero)\s*[:=]?\s*(masculino|femenino|hombre|mujer|\bm\b|\bf\b)`,
			},
			ReportDate: []string{
				`(?i)fecha(?:\s+(?:de\s+)?(?:ingreso|impresi[oó]n|informe|muestra))?\s*[:=]?\s*(\d{4}-\d{2}-\d{2})`,
				`(?i)fecha(?:\s+(?:de\s+)?(?:ingreso|impresi[oó]n|informe|muestra))?\s*[:=]?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			},
		},
	}
}

const PriorityHigh = "high"

// Exclusion patterns shared by the creatinine rules. A match marks the span
// from the match start to the end of its paragraph as urine/clearance
// context; unqualified creatinine matches inside that span are rejected.
func creatinineExclusions() []string {
	return []string{
		`(?i)(?:examen\s+(?:de\s+)?orina|orina\s+espont[aá]nea|parcial\s+de\s+orina|uroan[aá]lisis|microalbuminuria)`,
		`(?i)creatinina\s+(?:en\s+)?(?:orina|urinaria)`,
		`(?i)(?:orina|urinari[ao]|depuraci[oó]n|clearance|aclaramiento|excreci[oó]n|recolecci[oó]n)[^\n]{0,40}creatinina`,
		`(?i)creatinina[^\n]{0,40}(?:orina|urinari[ao]|depuraci[oó]n|clearance)`,
		`(?i)(?:depuraci[oó]n|clearance|aclaramiento)\s+de\s+creatinina`,
		`(?i)(?:mg|µg|mcg)/(?:min|hora|hrs?\b|d[ií]a|day)`,
		`(?i)creatinina\s+u\b`,
		`(?i)24\s*h(?:rs?|oras)?\b`,
	}
}
