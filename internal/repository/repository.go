package repository

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/ernest-money/ernest-oracle/internal/models"

	"gorm.io/gorm"
)

// ErrNonceAlreadyFilled is returned when a nonce row already has an outcome
// and signature. Nonce rows are write-once after announcement.
var ErrNonceAlreadyFilled = errors.New("repository: nonce already has an outcome")

type Repository struct {
	db *gorm.DB
	// nextNonceIndex is the oracle-wide nonce counter, shared across
	// transaction-scoped copies of the repository.
	nextNonceIndex *atomic.Uint32
}

// New builds a repository and seeds the nonce counter from the highest nonce
// index already committed.
func New(db *gorm.DB) (*Repository, error) {
	var maxIndex int64
	err := db.Model(&models.EventNonce{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&maxIndex).Error
	if err != nil {
		return nil, err
	}

	counter := &atomic.Uint32{}
	counter.Store(uint32(maxIndex) + 1)
	return &Repository{db: db, nextNonceIndex: counter}, nil
}

// Transaction runs fn against a repository bound to a single database
// transaction.
func (r *Repository) Transaction(ctx context.Context, fn func(*Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx, nextNonceIndex: r.nextNonceIndex})
	})
}

// NextNonceIndexes reserves num consecutive oracle-wide nonce indexes.
func (r *Repository) NextNonceIndexes(num int) []uint32 {
	first := r.nextNonceIndex.Add(uint32(num)) - uint32(num)
	indexes := make([]uint32, num)
	for i := range indexes {
		indexes[i] = first + uint32(i)
	}
	return indexes
}

// CreateEvent inserts a new event row.
func (r *Repository) CreateEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetEvent retrieves an event by its id.
func (r *Repository) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents retrieves all events.
func (r *Repository) ListEvents(ctx context.Context) ([]*models.Event, error) {
	var events []*models.Event
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ListEventsByStatus retrieves all events in the given lifecycle state.
func (r *Repository) ListEventsByStatus(ctx context.Context, status models.EventStatus) ([]*models.Event, error) {
	var events []*models.Event
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ListEventsByType retrieves all events tagged with the given contract
// category.
func (r *Repository) ListEventsByType(ctx context.Context, eventType string) ([]*models.Event, error) {
	var events []*models.Event
	err := r.db.WithContext(ctx).
		Joins("JOIN event_types ON event_types.oracle_event_id = events.event_id").
		Where("event_types.event_type = ?", eventType).
		Order("events.created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateEvent persists changed event fields.
func (r *Repository) UpdateEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// CreateEventNonces inserts the committed nonce rows for an event.
func (r *Repository) CreateEventNonces(ctx context.Context, nonces []models.EventNonce) error {
	return r.db.WithContext(ctx).Create(&nonces).Error
}

// GetEventNonces retrieves the nonce rows for an event in digit order.
func (r *Repository) GetEventNonces(ctx context.Context, eventID string) ([]models.EventNonce, error) {
	var nonces []models.EventNonce
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("\"index\" ASC").
		Find(&nonces).Error
	if err != nil {
		return nil, err
	}
	return nonces, nil
}

// FillNonce sets the outcome and signature on a nonce row. The update only
// applies while the outcome is still NULL, so a re-attestation attempt can
// never overwrite a signature.
func (r *Repository) FillNonce(ctx context.Context, id uint32, outcome string, signature []byte) error {
	result := r.db.WithContext(ctx).
		Model(&models.EventNonce{}).
		Where("id = ? AND outcome IS NULL", id).
		Updates(map[string]interface{}{
			"outcome":   outcome,
			"signature": signature,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNonceAlreadyFilled
	}
	return nil
}

// CreateEventTypeTag tags an event with a contract category.
func (r *Repository) CreateEventTypeTag(ctx context.Context, tag *models.EventTypeTag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

// CreateContract inserts a parlay contract and its parameters.
func (r *Repository) CreateContract(ctx context.Context, contract *models.ParlayContract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

// GetContract retrieves a parlay contract with its parameters in order.
func (r *Repository) GetContract(ctx context.Context, id string) (*models.ParlayContract, error) {
	var contract models.ParlayContract
	err := r.db.WithContext(ctx).
		Preload("Parameters", func(db *gorm.DB) *gorm.DB {
			return db.Order("parameter_id ASC")
		}).
		Where("id = ?", id).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// CreateAttestationOutcome inserts the contract-level outcome row.
func (r *Repository) CreateAttestationOutcome(ctx context.Context, outcome *models.NumericAttestationOutcome) error {
	return r.db.WithContext(ctx).Create(outcome).Error
}

// CreateAttestationDataOutcomes inserts the per-parameter audit rows.
func (r *Repository) CreateAttestationDataOutcomes(ctx context.Context, outcomes []models.NumericAttestationDataOutcome) error {
	return r.db.WithContext(ctx).Create(&outcomes).Error
}

// GetAttestationOutcome retrieves the contract-level outcome for an event.
func (r *Repository) GetAttestationOutcome(ctx context.Context, eventID string) (*models.NumericAttestationOutcome, error) {
	var outcome models.NumericAttestationOutcome
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&outcome).Error
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

// GetAttestationDataOutcomes retrieves the per-parameter audit rows for an
// event.
func (r *Repository) GetAttestationDataOutcomes(ctx context.Context, eventID string) ([]models.NumericAttestationDataOutcome, error) {
	var outcomes []models.NumericAttestationDataOutcome
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("id ASC").
		Find(&outcomes).Error
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}
