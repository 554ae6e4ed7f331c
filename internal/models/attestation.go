package models

import (
	"time"
)

// NumericAttestationOutcome records the contract-level result of one
// attestation. Created exactly once, at attestation time, never mutated.
type NumericAttestationOutcome struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	EventID       string    `gorm:"size:255;not null;uniqueIndex" json:"event_id"`
	CombinedScore float64   `gorm:"not null" json:"combined_score"`
	AttestedValue int64     `gorm:"not null" json:"attested_value"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (NumericAttestationOutcome) TableName() string {
	return "numeric_attestation_outcome"
}

// NumericAttestationDataOutcome is the per-parameter audit trail of the
// scoring pipeline, created atomically with its parent outcome.
type NumericAttestationDataOutcome struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	EventID         string    `gorm:"size:255;not null;index" json:"event_id"`
	DataType        string    `gorm:"size:50;not null" json:"data_type"`
	NormalizedValue float64   `gorm:"not null" json:"normalized_value"`
	OriginalValue   float64   `gorm:"not null" json:"original_value"`
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (NumericAttestationDataOutcome) TableName() string {
	return "numeric_attestation_data_outcome"
}

// DataOutcomeResponse is one pipeline intermediate result in API shape.
type DataOutcomeResponse struct {
	EventID         string  `json:"eventId"`
	DataType        string  `json:"dataType"`
	NormalizedValue float64 `json:"normalizedValue"`
	OriginalValue   float64 `json:"originalValue"`
}

// OracleOutcomeResponse is the combined attestation outcome for an event.
type OracleOutcomeResponse struct {
	EventID       string                `json:"eventId"`
	CombinedScore float64               `json:"combinedScore"`
	AttestedValue int64                 `json:"attestedValue"`
	Outcomes      []DataOutcomeResponse `json:"outcomes"`
}
