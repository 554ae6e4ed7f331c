package models

import (
	"time"
)

type EventStatus string

const (
	EventStatusCreated   EventStatus = "CREATED"
	EventStatusAnnounced EventStatus = "ANNOUNCED"
	EventStatusAttested  EventStatus = "ATTESTED"
)

// Event is one oracle event: a commitment to a future observable outcome.
// Immutable once created except for the announcement payload/signature set at
// announcement time and the back-references set at attestation time.
type Event struct {
	EventID               string      `gorm:"primaryKey;size:255" json:"event_id"`
	AnnouncementSignature []byte      `json:"announcement_signature"`
	OracleEvent           []byte      `json:"oracle_event"`
	Name                  string      `gorm:"size:255;not null" json:"name"`
	IsEnum                bool        `gorm:"not null;default:false" json:"is_enum"`
	Unit                  string      `gorm:"size:50" json:"unit"`
	EventMaturityEpoch    uint32      `gorm:"not null;default:0" json:"event_maturity_epoch"`
	Status                EventStatus `gorm:"size:50;not null;default:CREATED;index" json:"status"`
	AnnouncementEventID   *string     `gorm:"size:255" json:"announcement_event_id"`
	AttestationEventID    *string     `gorm:"size:255" json:"attestation_event_id"`
	Nonces                []EventNonce `gorm:"foreignKey:EventID;references:EventID;constraint:OnDelete:CASCADE" json:"nonces,omitempty"`
	CreatedAt             time.Time   `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Event) TableName() string {
	return "events"
}

// EventNonce is one digit position of a numeric event. The primary key is the
// oracle-wide nonce index the committed point was derived from; Index is the
// digit position within the event. Outcome and Signature stay NULL until the
// event is attested and are always populated together.
type EventNonce struct {
	ID        uint32    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	EventID   string    `gorm:"size:255;not null;uniqueIndex:idx_event_nonces_event_id_index" json:"event_id"`
	Index     int32     `gorm:"column:index;not null;uniqueIndex:idx_event_nonces_event_id_index" json:"index"`
	Nonce     []byte    `gorm:"not null" json:"nonce"`
	Outcome   *string   `gorm:"size:255" json:"outcome"`
	Signature []byte    `json:"signature"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (EventNonce) TableName() string {
	return "event_nonces"
}

// EventTypeTag tags an event with its contract category (currently "parlay").
type EventTypeTag struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	OracleEventID string `gorm:"size:255;not null;index" json:"oracle_event_id"`
	EventType     string `gorm:"size:50;not null;index" json:"event_type"`
}

func (EventTypeTag) TableName() string {
	return "event_types"
}

const EventTypeParlay = "parlay"

// OracleEventPayload is the serialized announcement body signed by the
// oracle's long-term key. Nonce points are hex encoded in digit order.
type OracleEventPayload struct {
	EventID            string   `json:"eventId"`
	Name               string   `json:"name"`
	Unit               string   `json:"unit"`
	IsEnum             bool     `json:"isEnum"`
	Base               int      `json:"base"`
	NbDigits           int      `json:"nbDigits"`
	EventMaturityEpoch uint32   `json:"eventMaturityEpoch"`
	Nonces             []string `json:"nonces"`
}

// AnnouncementResponse is the announcement as served over the API.
type AnnouncementResponse struct {
	EventID               string             `json:"eventId"`
	OraclePublicKey       string             `json:"oraclePublicKey"`
	AnnouncementSignature string             `json:"announcementSignature"`
	OracleEvent           OracleEventPayload `json:"oracleEvent"`
}

// AttestationResponse is the full attestation for a signed event.
type AttestationResponse struct {
	EventID         string   `json:"eventId"`
	OraclePublicKey string   `json:"oraclePublicKey"`
	Outcomes        []string `json:"outcomes"`
	Signatures      []string `json:"signatures"`
}

// OracleInfoResponse describes the oracle itself.
type OracleInfoResponse struct {
	Pubkey string `json:"pubkey"`
	Name   string `json:"name"`
}
