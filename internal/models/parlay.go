package models

// ParlayContract is the stored scoring contract behind a parlay event. The
// contract id doubles as the oracle event id used for the announcement.
type ParlayContract struct {
	ID                 string           `gorm:"primaryKey;size:255" json:"id"`
	CombinationMethod  string           `gorm:"size:50;not null" json:"combination_method"`
	MaxNormalizedValue int64            `gorm:"not null" json:"max_normalized_value"`
	Parameters         []ParlayParameter `gorm:"foreignKey:ContractID;references:ID;constraint:OnDelete:CASCADE" json:"parameters,omitempty"`
}

func (ParlayContract) TableName() string {
	return "parlay_contracts"
}

// ParlayParameter is one scored observation of a parlay contract, ordered by
// ParameterID within its contract.
type ParlayParameter struct {
	ContractID       string  `gorm:"primaryKey;size:255" json:"contract_id"`
	ParameterID      int     `gorm:"primaryKey;autoIncrement:false" json:"parameter_id"`
	DataType         string  `gorm:"size:50;not null" json:"data_type"`
	Threshold        int64   `gorm:"not null" json:"threshold"`
	Range            int64   `gorm:"column:range;not null" json:"range"`
	IsAboveThreshold bool    `gorm:"not null" json:"is_above_threshold"`
	Transformation   string  `gorm:"size:50;not null" json:"transformation"`
	Weight           float64 `gorm:"not null" json:"weight"`
}

func (ParlayParameter) TableName() string {
	return "parlay_parameters"
}

// ParlayParameterSpec is a parameter as submitted over the API.
type ParlayParameterSpec struct {
	DataType         string  `json:"dataType" binding:"required"`
	Threshold        int64   `json:"threshold"`
	Range            int64   `json:"range" binding:"required"`
	IsAboveThreshold bool    `json:"isAboveThreshold"`
	Transformation   string  `json:"transformation" binding:"required"`
	Weight           float64 `json:"weight"`
}

// CreateEventRequest creates and announces a new oracle event. When
// EventType is set a single-feed numeric event is created; otherwise
// Parameters and CombinationMethod describe a parlay contract.
type CreateEventRequest struct {
	EventType          *string               `json:"eventType"`
	Parameters         []ParlayParameterSpec `json:"parameters"`
	CombinationMethod  string                `json:"combinationMethod"`
	MaxNormalizedValue *int64                `json:"maxNormalizedValue"`
	EventMaturityEpoch uint32                `json:"eventMaturityEpoch" binding:"required"`
}

// ParlayContractResponse is a contract with its parameters in API shape.
type ParlayContractResponse struct {
	ID                 string                `json:"id"`
	Parameters         []ParlayParameterSpec `json:"parameters"`
	CombinationMethod  string                `json:"combinationMethod"`
	MaxNormalizedValue int64                 `json:"maxNormalizedValue"`
}
