package extractor

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/erc-insight/platform/pkg/common/models"
	"github.com/erc-insight/platform/pkg/labpatterns"
)

// CreatinineAnalyte is the canonical result key for serum creatinine,
// regardless of which rule or pattern produced the match.
const CreatinineAnalyte = labpatterns.AnalyteCreatinine

// RAC values above this threshold are assumed to be reported in mg/mg
// instead of mg/g and are divided by the correction divisor.
const (
	RACUnitMismatchThreshold = 1000.0
	RACUnitCorrectionDivisor = 1000.0
)

type Options struct {
	RACUnitCorrection bool
}

type compiledInclude struct {
	id         string
	re         *regexp.Regexp
	confidence float64
	qualified  bool
}

type compiledAmbiguous struct {
	name       string
	includes   []compiledInclude
	excludes   []*regexp.Regexp
	unit       string
	validation labpatterns.ValidationRange
	priority   string
}

type compiledAnalyte struct {
	name       string
	re         *regexp.Regexp
	unit       string
	confidence float64
	validation labpatterns.ValidationRange
}

type compiledDemographics struct {
	name           []*regexp.Regexp
	identification []*regexp.Regexp
	ageSex         []*regexp.Regexp
	age            []*regexp.Regexp
	sex            []*regexp.Regexp
	reportDate     []*regexp.Regexp
}

// Extractor holds the compiled pattern library. It is immutable after New
// and safe for concurrent use.
type Extractor struct {
	creatinine []compiledAmbiguous
	analytes   []compiledAnalyte
	demo       compiledDemographics
	opts       Options
}

func New(lib labpatterns.Library, opts Options) (*Extractor, error) {
	e := &Extractor{opts: opts}

	for _, rule := range lib.Creatinine {
		compiled := compiledAmbiguous{
			name:       rule.Name,
			unit:       rule.Unit,
			validation: rule.Validation,
			priority:   rule.Priority,
		}
		for _, inc := range rule.Include {
			re, err := regexp.Compile(inc.Expr)
			if err != nil {
				return nil, fmt.Errorf("compiling rule %s include %s: %w", rule.Name, inc.ID, err)
			}
			compiled.includes = append(compiled.includes, compiledInclude{
				id:         inc.ID,
				re:         re,
				confidence: inc.Confidence,
				qualified:  inc.Qualified,
			})
		}
		for i, exc := range rule.Exclude {
			re, err := regexp.Compile(exc)
			if err != nil {
				return nil, fmt.Errorf("compiling rule %s exclude[%d]: %w", rule.Name, i, err)
			}
			compiled.excludes = append(compiled.excludes, re)
		}
		e.creatinine = append(e.creatinine, compiled)
	}

	sort.SliceStable(e.creatinine, func(i, j int) bool {
		return e.creatinine[i].priority == labpatterns.PriorityHigh &&
			e.creatinine[j].priority != labpatterns.PriorityHigh
	})

	for _, rule := range lib.Analytes {
		re, err := regexp.Compile(rule.Expr)
		if err != nil {
			return nil, fmt.Errorf("compiling analyte %s: %w", rule.Name, err)
		}
		e.analytes = append(e.analytes, compiledAnalyte{
			name:       rule.Name,
			re:         re,
			unit:       rule.Unit,
			confidence: rule.Confidence,
			validation: rule.Validation,
		})
	}

	var err error
	if e.demo, err = compileDemographics(lib.Demographics); err != nil {
		return nil, err
	}

	return e, nil
}

func compileDemographics(d labpatterns.DemographicPatterns) (compiledDemographics, error) {
	compile := func(exprs []string) ([]*regexp.Regexp, error) {
		out := make([]*regexp.Regexp, 0, len(exprs))
		for _, expr := range exprs {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("compiling demographic pattern %q: %w", expr, err)
			}
			out = append(out, re)
		}
		return out, nil
	}

	var c compiledDemographics
	var err error
	if c.name, err = compile(d.Name); err != nil {
		return c, err
	}
	if c.identification, err = compile(d.Identification); err != nil {
		return c, err
	}
	if c.ageSex, err = compile(d.AgeSex); err != nil {
		return c, err
	}
	if c.age, err = compile(d.Age); err != nil {
		return c, err
	}
	if c.sex, err = compile(d.Sex); err != nil {
		return c, err
	}
	if c.reportDate, err = compile(d.ReportDate); err != nil {
		return c, err
	}
	return c, nil
}

// Extract runs the full pattern library over the report text.
func (e *Extractor) Extract(text string) models.ExtractionResult {
	if strings.TrimSpace(text) == "" {
		return models.ExtractionResult{
			Results: map[string]models.LabValue{},
			Status:  models.StatusError,
			Message: "empty document text",
		}
	}

	results := make(map[string]models.LabValue)

	if lv, ok := e.extractCreatinine(text); ok {
		results[CreatinineAnalyte] = lv
	}

	for _, rule := range e.analytes {
		if lv, ok := e.extractAnalyte(text, rule); ok {
			results[rule.name] = lv
		}
	}

	demographics := e.extractDemographics(text)

	status := models.StatusSuccess
	var notes []string
	if len(results) == 0 {
		status = models.StatusWarning
		notes = append(notes, "no laboratory values extracted")
	}
	if demographics == (models.PatientDemographics{}) {
		status = models.StatusWarning
		notes = append(notes, "no patient demographics extracted")
	}

	message := fmt.Sprintf("extracted %d laboratory values", len(results))
	if len(notes) > 0 {
		message = strings.Join(notes, "; ")
	}

	return models.ExtractionResult{
		Results:     results,
		PatientData: demographics,
		Status:      status,
		Message:     message,
	}
}

type span struct{ start, end int }

// exclusionSpans marks text regions that belong to a competing specimen
// context. Each exclusion match claims from its own start to the end of the
// paragraph it sits in, so a section heading suppresses the values under it.
func exclusionSpans(text string, excludes []*regexp.Regexp) []span {
	var spans []span
	for _, re := range excludes {
		for _, m := range re.FindAllStringIndex(text, -1) {
			end := strings.Index(text[m[0]:], "\n\n")
			if end == -1 {
				end = len(text)
			} else {
				end += m[0]
			}
			spans = append(spans, span{start: m[0], end: end})
		}
	}
	return spans
}

func inSpans(spans []span, start, end int) bool {
	for _, s := range spans {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}

// extractCreatinine resolves the serum/urine ambiguity. Rules run in
// priority order and include patterns in declared preference order; an
// explicitly serum-qualified match is accepted even inside an exclusion
// region because the document itself named the specimen.
func (e *Extractor) extractCreatinine(text string) (models.LabValue, bool) {
	for _, rule := range e.creatinine {
		spans := exclusionSpans(text, rule.excludes)

		for _, inc := range rule.includes {
			for _, m := range inc.re.FindAllStringSubmatchIndex(text, -1) {
				if len(m) < 4 || m[2] < 0 {
					continue
				}
				if !inc.qualified && inSpans(spans, m[0], m[1]) {
					continue
				}

				raw := text[m[2]:m[3]]
				value, err := parseDecimal(raw)
				if err != nil {
					continue
				}
				if !rule.validation.Contains(value) {
					logger.Log.WithFields(map[string]interface{}{
						"rule":  rule.name,
						"value": value,
					}).Warn("Discarding creatinine outside plausible range")
					continue
				}

				return models.LabValue{
					Analyte:       CreatinineAnalyte,
					Value:         value,
					Raw:           raw,
					Unit:          rule.unit,
					Confidence:    inc.confidence,
					SourcePattern: rule.name + "/" + inc.id,
				}, true
			}
		}
	}
	return models.LabValue{}, false
}

func (e *Extractor) extractAnalyte(text string, rule compiledAnalyte) (models.LabValue, bool) {
	for _, m := range rule.re.FindAllStringSubmatchIndex(text, -1) {
		if len(m) < 4 || m[2] < 0 {
			continue
		}
		raw := text[m[2]:m[3]]
		value, err := parseDecimal(raw)
		if err != nil {
			continue
		}
		if !rule.validation.Contains(value) {
			logger.Log.WithFields(map[string]interface{}{
				"analyte": rule.name,
				"value":   value,
			}).Warn("Discarding analyte outside plausible range")
			continue
		}

		lv := models.LabValue{
			Analyte:       rule.name,
			Value:         value,
			Raw:           raw,
			Unit:          rule.unit,
			Confidence:    rule.confidence,
			SourcePattern: rule.name,
		}

		if rule.name == "rac" && e.opts.RACUnitCorrection && value > RACUnitMismatchThreshold {
			corrected := value / RACUnitCorrectionDivisor
			logger.Log.WithFields(map[string]interface{}{
				"raw_value": value,
				"corrected": corrected,
			}).Warn("RAC value above unit-mismatch threshold, applying mg/g correction")
			lv.Value = corrected
			lv.CorrectionNote = fmt.Sprintf("valor original %s dividido por %.0f por presunto error de unidades",
				raw, RACUnitCorrectionDivisor)
		}

		return lv, true
	}
	return models.LabValue{}, false
}

func (e *Extractor) extractDemographics(text string) models.PatientDemographics {
	var d models.PatientDemographics

	if m := firstGroup(e.demo.name, text); m != "" {
		d.Name = strings.Join(strings.Fields(m), " ")
	}
	if m := firstGroup(e.demo.identification, text); m != "" {
		d.Identification = normalizeIdentification(m)
	}

	for _, re := range e.demo.ageSex {
		if m := re.FindStringSubmatch(text); m != nil {
			if age, err := strconv.Atoi(m[1]); err == nil && age > 0 && age <= 120 {
				d.Age = age
			}
			d.Sex = normalizeSex(m[2])
			break
		}
	}
	if d.Age == 0 {
		if m := firstGroup(e.demo.age, text); m != "" {
			if age, err := strconv.Atoi(m); err == nil && age > 0 && age <= 120 {
				d.Age = age
			}
		}
	}
	if d.Sex == "" {
		if m := firstGroup(e.demo.sex, text); m != "" {
			d.Sex = normalizeSex(m)
		}
	}

	if m := firstGroup(e.demo.reportDate, text); m != "" {
		if normalized, ok := normalizeDate(m); ok {
			d.ReportDate = normalized
		}
	}

	return d
}

func firstGroup(res []*regexp.Regexp, text string) string {
	for _, re := range res {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

func parseDecimal(raw string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
}

func normalizeSex(raw string) models.Sex {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "m", "masculino", "hombre":
		return models.SexMale
	case "f", "femenino", "mujer":
		return models.SexFemale
	}
	return ""
}

func normalizeIdentification(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '.' {
			return -1
		}
		return r
	}, raw)
	return strings.TrimSpace(cleaned)
}

// normalizeDate converts report dates to YYYY-MM-DD. Day-first order is
// assumed for slash and dash dates, matching regional lab conventions;
// two-digit years below 50 land in the 2000s.
func normalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)

	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Format("2006-01-02"), true
	}

	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return "", false
	}

	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}

	if year < 100 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return "", false
	}
	return t.Format("2006-01-02"), true
}
