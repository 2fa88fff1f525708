package models

import "time"

type Sex string

const (
	SexMale   Sex = "m"
	SexFemale Sex = "f"
)

// Extraction status values
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

// LabValue is a single analyte extracted from report text. Raw preserves the
// verbatim decimal string as it appeared in the document.
type LabValue struct {
	Analyte        string  `json:"analyte"`
	Value          float64 `json:"value"`
	Raw            string  `json:"raw_value"`
	Unit           string  `json:"unit"`
	Confidence     float64 `json:"confidence"`
	SourcePattern  string  `json:"source_pattern"`
	CorrectionNote string  `json:"correction_note,omitempty"`
}

// PatientDemographics is best-effort; every field may be absent.
type PatientDemographics struct {
	Name           string `json:"nombre,omitempty"`
	Identification string `json:"identificacion,omitempty"`
	Age            int    `json:"edad,omitempty"`
	Sex            Sex    `json:"sexo,omitempty"`
	ReportDate     string `json:"fecha_informe,omitempty"` // YYYY-MM-DD
}

type ExtractionResult struct {
	Results     map[string]LabValue `json:"results"`
	PatientData PatientDemographics `json:"patient_data"`
	Status      string              `json:"status"`
	Message     string              `json:"message"`
}

// PatientInput carries the structured attributes supplied alongside the lab
// document. Field names follow the clinical record conventions of the intake
// forms (Spanish keys on the wire).
type PatientInput struct {
	Age                   int             `json:"edad"`
	Sex                   Sex             `json:"sexo"`
	WeightKg              float64         `json:"peso"`
	HeightCm              float64         `json:"talla"`
	Diabetes              bool            `json:"dm2"`
	DiabetesDurationYears int             `json:"duracion_dm"`
	EstablishedCVD        bool            `json:"ecv_establecida"`
	TargetOrganDamage     bool            `json:"dano_organo_blanco"`
	Proteinuria           bool            `json:"proteinuria"`
	BlackRace             bool            `json:"raza_negra"`
	SystolicBP            float64         `json:"pa_sistolica"`
	DiastolicBP           float64         `json:"pa_diastolica"`
	WaistCm               float64         `json:"perimetro_abdominal"`
	PTHIndication         bool            `json:"indicacion_pth"`
	RiskFactors           []string        `json:"factores_riesgo,omitempty"`
	PotentiatingFactors   []string        `json:"factores_potenciadores,omitempty"`
	FriedResponses        map[string]bool `json:"escala_fried,omitempty"`
	Diagnoses             []string        `json:"diagnosticos,omitempty"`
	Medications           []string        `json:"medicamentos,omitempty"`
	Comorbidities         []string        `json:"comorbilidades,omitempty"`
	BaseDate              string          `json:"fecha_base,omitempty"` // YYYY-MM-DD
}

// CKD stage per KDIGO.
type Stage string

const (
	StageG1  Stage = "G1"
	StageG2  Stage = "G2"
	StageG3a Stage = "G3a"
	StageG3b Stage = "G3b"
	StageG4  Stage = "G4"
	StageG5  Stage = "G5"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// GoalEvaluation scores a single therapeutic parameter. ScoreAwarded is
// either 0 or MaxScore; there is no partial credit.
type GoalEvaluation struct {
	Parameter    string `json:"parametro"`
	Status       string `json:"estado"`
	Met          bool   `json:"cumple"`
	CurrentValue string `json:"valor_actual"`
	TargetValue  string `json:"meta_definida"`
	ScoreAwarded int    `json:"puntaje_obtenido"`
	MaxScore     int    `json:"puntaje_maximo"`
}

type ScheduledVisit struct {
	Date string   `json:"fecha_programada"` // DD/MM/YYYY
	Labs []string `json:"examenes"`
}

type ClinicalProfile struct {
	EGFR                  float64          `json:"tfg"`
	Formula               string           `json:"formula"`
	Stage                 Stage            `json:"erc_estadio"`
	RiskLevel             RiskLevel        `json:"riesgo_cv"`
	RiskJustification     string           `json:"justificacion_riesgo"`
	Goals                 []GoalEvaluation `json:"metas"`
	CompliancePercent     float64          `json:"porcentaje_cumplimiento"`
	ComplianceStatus      string           `json:"estado_cumplimiento"`
	ScheduledLabs         []ScheduledVisit `json:"laboratorios_programados"`
	NextVisitDate         string           `json:"proxima_cita_medica"`
	FollowUpJustification string           `json:"justificacion_seguimiento"`
	Frail                 bool             `json:"es_fragil"`
	CriticalValues        []string         `json:"valores_criticos,omitempty"`
}

// Narrative service payload, shaped for the report generator.
type DiagnosticEvaluation struct {
	Diagnoses          []string  `json:"diagnosticos"`
	CardiovascularRisk RiskLevel `json:"riesgo_cardiovascular"`
	RiskJustification  string    `json:"justificacion_riesgo"`
	EGFRValue          float64   `json:"tfg_valor"`
	CKDStage           string    `json:"erc_estadio"`
}

type GoalCompliance struct {
	Goals            []GoalEvaluation `json:"metas"`
	AdherenceScore   float64          `json:"puntaje_total_adherencia"`
	ComplianceStatus string           `json:"estado_cumplimiento"`
}

type PharmacologicPlan struct {
	Medications []string `json:"medicamentos"`
}

type FollowUpPlan struct {
	ScheduledLabs []ScheduledVisit `json:"laboratorios_programados"`
	NextVisitDate string           `json:"proxima_cita_medica"`
	Justification string           `json:"justificacion_seguimiento"`
}

type AdditionalData struct {
	Frail          bool                `json:"es_fragil"`
	Age            int                 `json:"edad"`
	Sex            Sex                 `json:"sexo"`
	WeightKg       float64             `json:"peso"`
	HeightCm       float64             `json:"talla"`
	BMI            float64             `json:"imc"`
	MeanBP         float64             `json:"presion_arterial_media"`
	Comorbidities  []string            `json:"comorbilidades"`
	CriticalValues []string            `json:"valores_criticos,omitempty"`
	LabValues      map[string]LabValue `json:"laboratorios,omitempty"`
	Demographics   PatientDemographics `json:"datos_paciente"`
}

type ClinicalPayload struct {
	DiagnosticEvaluation DiagnosticEvaluation `json:"evaluacion_diagnosticos"`
	GoalCompliance       GoalCompliance       `json:"cumplimiento_metas"`
	PharmacologicPlan    PharmacologicPlan    `json:"plan_farmacologico"`
	FollowUpPlan         FollowUpPlan         `json:"plan_seguimiento"`
	AdditionalData       AdditionalData       `json:"datos_adicionales"`
	GeneratedAt          string               `json:"fecha_generacion"`
}

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // extraction.completed, report.generated
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

type NarrativeRequest struct {
	Payload ClinicalPayload `json:"payload"`
}

type NarrativeResponse struct {
	ReportID    string    `json:"report_id"`
	Narrative   string    `json:"narrative"`
	Model       string    `json:"model"`
	Cached      bool      `json:"cached"`
	GeneratedAt time.Time `json:"generated_at"`
}
