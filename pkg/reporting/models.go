package reporting

import (
	"time"

	"gorm.io/datatypes"
)

// ReportRecord is one generated narrative with the payload that produced
// it, kept for auditability of what the LLM was shown.
type ReportRecord struct {
	ID          string         `gorm:"primaryKey;type:uuid" json:"id"`
	PayloadHash string         `gorm:"index" json:"payload_hash"`
	Payload     datatypes.JSON `json:"payload"`
	Narrative   string         `gorm:"type:text" json:"narrative"`
	Model       string         `json:"model"`
	Cached      bool           `json:"cached"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (ReportRecord) TableName() string {
	return "report_records"
}
