package extractor

import (
	"time"

	"gorm.io/datatypes"
)

// Record is the persisted form of one extraction run. The full result is
// stored as JSON so schema changes in the pattern library never require a
// table migration.
type Record struct {
	ID          string         `gorm:"primaryKey;type:uuid" json:"id"`
	Status      string         `gorm:"index" json:"status"`
	Message     string         `json:"message"`
	Result      datatypes.JSON `json:"result"`
	PatientName string         `gorm:"index" json:"patient_name,omitempty"`
	PatientID   string         `gorm:"index" json:"patient_id,omitempty"`
	AnalyteCount int           `json:"analyte_count"`
	CreatedAt   time.Time      `json:"created_at"`
	ExpiresAt   time.Time      `gorm:"index" json:"expires_at"`
}

func (Record) TableName() string {
	return "extraction_records"
}
