package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"

	"github.com/ernest-money/ernest-oracle/internal/metrics"
	"github.com/ernest-money/ernest-oracle/internal/models"
	"github.com/ernest-money/ernest-oracle/internal/parlay"
	"github.com/ernest-money/ernest-oracle/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultMaxNormalizedValue bounds the quantized outcome when a contract does
// not set its own.
const DefaultMaxNormalizedValue = 1000

// FeedSource provides the raw observed value for a data type at attestation
// time.
type FeedSource interface {
	ValueFor(ctx context.Context, dataType parlay.DataType) (float64, error)
}

// Oracle owns the event/nonce lifecycle: creation, announcement and
// attestation, each of which happens exactly once per event.
type Oracle struct {
	repo     *repository.Repository
	signer   *Signer
	name     string
	base     int
	nbDigits int
}

func New(repo *repository.Repository, signer *Signer, name string, base, nbDigits int) *Oracle {
	return &Oracle{
		repo:     repo,
		signer:   signer,
		name:     name,
		base:     base,
		nbDigits: nbDigits,
	}
}

// PublicKeyHex returns the oracle's x-only public key as hex.
func (o *Oracle) PublicKeyHex() string {
	return o.signer.PublicKeyHex()
}

// Name returns the oracle's display name.
func (o *Oracle) Name() string {
	return o.name
}

// CreateNumericEvent allocates a single-feed numeric event with committed
// nonces. The event starts in the created state and still needs announcing.
func (o *Oracle) CreateNumericEvent(ctx context.Context, eventID string, unit parlay.DataType, maturity uint32) (*models.Event, error) {
	if eventID == "" {
		eventID = uuid.New().String()
	}
	var event *models.Event
	err := o.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		event, err = o.createEventWithNonces(ctx, tx, eventID, string(unit), maturity)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.EventsCreated.Inc()
	return event, nil
}

// CreateParlayEvent allocates a parlay event: the scoring contract, its
// parameters, the event row and one committed nonce per outcome digit, all in
// one transaction.
func (o *Oracle) CreateParlayEvent(ctx context.Context, req *models.CreateEventRequest) (*models.Event, error) {
	if len(req.Parameters) == 0 {
		return nil, parlay.ErrEmptyContract
	}
	if _, err := parlay.ParseCombinationMethod(req.CombinationMethod); err != nil {
		return nil, err
	}
	params := make([]models.ParlayParameter, 0, len(req.Parameters))
	for i, spec := range req.Parameters {
		if _, err := parlay.ParseDataType(spec.DataType); err != nil {
			return nil, err
		}
		if _, err := parlay.ParseTransformation(spec.Transformation); err != nil {
			return nil, err
		}
		if spec.Range <= 0 {
			return nil, fmt.Errorf("%w: range=%d", parlay.ErrInvalidParameter, spec.Range)
		}
		params = append(params, models.ParlayParameter{
			ParameterID:      i + 1,
			DataType:         spec.DataType,
			Threshold:        spec.Threshold,
			Range:            spec.Range,
			IsAboveThreshold: spec.IsAboveThreshold,
			Transformation:   spec.Transformation,
			Weight:           spec.Weight,
		})
	}

	maxNormalized := int64(DefaultMaxNormalizedValue)
	if req.MaxNormalizedValue != nil {
		maxNormalized = *req.MaxNormalizedValue
	}
	if maxNormalized <= 0 {
		return nil, fmt.Errorf("%w: maxNormalizedValue=%d", parlay.ErrInvalidParameter, maxNormalized)
	}

	eventID := uuid.New().String()
	var event *models.Event
	err := o.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		event, err = o.createEventWithNonces(ctx, tx, eventID, "", req.EventMaturityEpoch)
		if err != nil {
			return err
		}
		contract := &models.ParlayContract{
			ID:                 eventID,
			CombinationMethod:  req.CombinationMethod,
			MaxNormalizedValue: maxNormalized,
			Parameters:         params,
		}
		if err := tx.CreateContract(ctx, contract); err != nil {
			return err
		}
		return tx.CreateEventTypeTag(ctx, &models.EventTypeTag{
			OracleEventID: eventID,
			EventType:     models.EventTypeParlay,
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.EventsCreated.Inc()
	return event, nil
}

func (o *Oracle) createEventWithNonces(ctx context.Context, tx *repository.Repository, eventID, unit string, maturity uint32) (*models.Event, error) {
	event := &models.Event{
		EventID:            eventID,
		Name:               eventID,
		IsEnum:             false,
		Unit:               unit,
		EventMaturityEpoch: maturity,
		Status:             models.EventStatusCreated,
	}
	// The primary key constraint decides duplicates so concurrent creates of
	// the same event id cannot race a separate existence check.
	if err := tx.CreateEvent(ctx, event); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEvent, eventID)
		}
		return nil, err
	}

	indexes := tx.NextNonceIndexes(o.nbDigits)
	nonces := make([]models.EventNonce, 0, o.nbDigits)
	for digit, index := range indexes {
		nonces = append(nonces, models.EventNonce{
			ID:      index,
			EventID: eventID,
			Index:   int32(digit),
			Nonce:   o.signer.NoncePoint(index),
		})
	}
	if err := tx.CreateEventNonces(ctx, nonces); err != nil {
		return nil, err
	}
	return event, nil
}

// AnnounceEvent signs the serialized announcement payload with the oracle's
// long-term key and moves the event to the announced state. Only valid from
// the created state.
func (o *Oracle) AnnounceEvent(ctx context.Context, eventID string) (*models.Event, error) {
	var event *models.Event
	err := o.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		event, err = tx.GetEvent(ctx, eventID)
		if err != nil {
			return mapNotFound(err)
		}
		if event.Status != models.EventStatusCreated {
			return fmt.Errorf("%w: %s", ErrAlreadyAnnounced, eventID)
		}

		nonces, err := tx.GetEventNonces(ctx, eventID)
		if err != nil {
			return err
		}
		payload := buildPayload(event, nonces, o.base)
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		signature, err := o.signer.SignMessage(sha256.Sum256(raw))
		if err != nil {
			return err
		}

		event.OracleEvent = raw
		event.AnnouncementSignature = signature
		event.Status = models.EventStatusAnnounced
		return tx.UpdateEvent(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	metrics.EventsAnnounced.Inc()
	log.Printf("Announced event. event_id=%s nonces=%d", eventID, o.nbDigits)
	return event, nil
}

// AttestEvent signs the digit decomposition of value with the event's
// committed nonces and moves the event to the terminal attested state. Only
// valid from the announced state; a second call fails with ErrAlreadyAttested
// and leaves the prior signatures untouched.
func (o *Oracle) AttestEvent(ctx context.Context, eventID string, value int64) (*models.AttestationResponse, error) {
	var attestation *models.AttestationResponse
	err := o.repo.Transaction(ctx, func(tx *repository.Repository) error {
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return mapNotFound(err)
		}
		attestation, err = o.attestInTx(ctx, tx, event, value)
		return err
	})
	if err != nil {
		metrics.AttestationFailures.Inc()
		return nil, err
	}
	metrics.EventsAttested.Inc()
	log.Printf("Attested event. event_id=%s outcome=%d", eventID, value)
	return attestation, nil
}

// AttestParlayEvent evaluates the event's contract against the given
// observations and persists the outcome rows, the audit trail and every digit
// signature as one atomic unit.
func (o *Oracle) AttestParlayEvent(ctx context.Context, eventID string, observations map[parlay.DataType]float64) (*models.OracleOutcomeResponse, error) {
	contract, err := o.ParlayContract(ctx, eventID)
	if err != nil {
		return nil, err
	}
	evaluation, err := contract.Evaluate(observations)
	if err != nil {
		metrics.AttestationFailures.Inc()
		return nil, err
	}

	err = o.repo.Transaction(ctx, func(tx *repository.Repository) error {
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return mapNotFound(err)
		}
		if _, err := o.attestInTx(ctx, tx, event, evaluation.AttestedValue); err != nil {
			return err
		}
		outcome := &models.NumericAttestationOutcome{
			EventID:       eventID,
			CombinedScore: evaluation.CombinedScore,
			AttestedValue: evaluation.AttestedValue,
		}
		if err := tx.CreateAttestationOutcome(ctx, outcome); err != nil {
			return err
		}
		dataOutcomes := make([]models.NumericAttestationDataOutcome, 0, len(evaluation.Parameters))
		for _, result := range evaluation.Parameters {
			dataOutcomes = append(dataOutcomes, models.NumericAttestationDataOutcome{
				EventID:         eventID,
				DataType:        string(result.DataType),
				NormalizedValue: result.NormalizedValue,
				OriginalValue:   result.OriginalValue,
			})
		}
		return tx.CreateAttestationDataOutcomes(ctx, dataOutcomes)
	})
	if err != nil {
		metrics.AttestationFailures.Inc()
		return nil, err
	}
	metrics.EventsAttested.Inc()
	log.Printf("Attested parlay event. event_id=%s combined_score=%f outcome=%d",
		eventID, evaluation.CombinedScore, evaluation.AttestedValue)

	return o.outcomeResponse(eventID, evaluation), nil
}

// AttestMaturedEvent fetches the raw observations for an event from the feed
// source and attests it, dispatching between parlay and single-feed events.
func (o *Oracle) AttestMaturedEvent(ctx context.Context, eventID string, src FeedSource) error {
	contract, err := o.repo.GetContract(ctx, eventID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Single-feed numeric event.
		event, err := o.repo.GetEvent(ctx, eventID)
		if err != nil {
			return mapNotFound(err)
		}
		unit, err := parlay.ParseDataType(event.Unit)
		if err != nil {
			return err
		}
		value, err := src.ValueFor(ctx, unit)
		if err != nil {
			metrics.FeedErrors.Inc()
			return err
		}
		_, err = o.AttestEvent(ctx, eventID, int64(math.Ceil(value)))
		return err
	}
	if err != nil {
		return err
	}

	observations := make(map[parlay.DataType]float64)
	for _, param := range contract.Parameters {
		dataType, err := parlay.ParseDataType(param.DataType)
		if err != nil {
			return err
		}
		if _, ok := observations[dataType]; ok {
			continue
		}
		value, err := src.ValueFor(ctx, dataType)
		if err != nil {
			metrics.FeedErrors.Inc()
			return err
		}
		observations[dataType] = value
	}
	_, err = o.AttestParlayEvent(ctx, eventID, observations)
	return err
}

// attestInTx performs the digit decomposition and signing inside the caller's
// transaction. Every nonce row is filled write-once; the transaction aborts
// on any partial failure so partial attestations are never observable.
func (o *Oracle) attestInTx(ctx context.Context, tx *repository.Repository, event *models.Event, value int64) (*models.AttestationResponse, error) {
	if event.IsEnum {
		return nil, fmt.Errorf("%w: %s", ErrCannotSignEnum, event.EventID)
	}
	switch event.Status {
	case models.EventStatusAttested:
		return nil, fmt.Errorf("%w: %s", ErrAlreadyAttested, event.EventID)
	case models.EventStatusCreated:
		return nil, fmt.Errorf("%w: %s", ErrNotAnnounced, event.EventID)
	}

	nonces, err := tx.GetEventNonces(ctx, event.EventID)
	if err != nil {
		return nil, err
	}
	// Decompose at the configured width; the committed nonce count must agree
	// with it, or the oracle was reconfigured after announcement.
	digits, err := DecomposeValue(value, o.base, o.nbDigits)
	if err != nil {
		return nil, err
	}
	if len(digits) != len(nonces) {
		return nil, fmt.Errorf("%w: %d digits, %d nonces", ErrNonceCountMismatch, len(digits), len(nonces))
	}

	attestation := &models.AttestationResponse{
		EventID:         event.EventID,
		OraclePublicKey: o.signer.PublicKeyHex(),
		Outcomes:        make([]string, 0, len(digits)),
		Signatures:      make([]string, 0, len(digits)),
	}
	for i, nonce := range nonces {
		outcome := strconv.Itoa(digits[i])
		signature, err := o.signer.SignWithNonce(nonce.ID, sha256.Sum256([]byte(outcome)))
		if err != nil {
			return nil, err
		}
		if err := tx.FillNonce(ctx, nonce.ID, outcome, signature); err != nil {
			if errors.Is(err, repository.ErrNonceAlreadyFilled) {
				return nil, fmt.Errorf("%w: %s", ErrAlreadyAttested, event.EventID)
			}
			return nil, err
		}
		attestation.Outcomes = append(attestation.Outcomes, outcome)
		attestation.Signatures = append(attestation.Signatures, hex.EncodeToString(signature))
	}

	event.Status = models.EventStatusAttested
	if err := tx.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}
	return attestation, nil
}

// GetAnnouncement returns the signed announcement for an event.
func (o *Oracle) GetAnnouncement(ctx context.Context, eventID string) (*models.AnnouncementResponse, error) {
	event, err := o.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if event.Status == models.EventStatusCreated {
		return nil, fmt.Errorf("%w: %s", ErrNotAnnounced, eventID)
	}
	var payload models.OracleEventPayload
	if err := json.Unmarshal(event.OracleEvent, &payload); err != nil {
		return nil, err
	}
	return &models.AnnouncementResponse{
		EventID:               event.EventID,
		OraclePublicKey:       o.signer.PublicKeyHex(),
		AnnouncementSignature: hex.EncodeToString(event.AnnouncementSignature),
		OracleEvent:           payload,
	}, nil
}

// GetAttestation returns the digit outcomes and signatures for an attested
// event.
func (o *Oracle) GetAttestation(ctx context.Context, eventID string) (*models.AttestationResponse, error) {
	event, err := o.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if event.Status != models.EventStatusAttested {
		return nil, fmt.Errorf("%w: %s", ErrNotAttested, eventID)
	}
	nonces, err := o.repo.GetEventNonces(ctx, eventID)
	if err != nil {
		return nil, err
	}
	attestation := &models.AttestationResponse{
		EventID:         eventID,
		OraclePublicKey: o.signer.PublicKeyHex(),
	}
	for _, nonce := range nonces {
		if nonce.Outcome == nil || nonce.Signature == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotAttested, eventID)
		}
		attestation.Outcomes = append(attestation.Outcomes, *nonce.Outcome)
		attestation.Signatures = append(attestation.Signatures, hex.EncodeToString(nonce.Signature))
	}
	return attestation, nil
}

// GetOutcome returns the persisted pipeline outcome for an attested parlay
// event.
func (o *Oracle) GetOutcome(ctx context.Context, eventID string) (*models.OracleOutcomeResponse, error) {
	outcome, err := o.repo.GetAttestationOutcome(ctx, eventID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	dataOutcomes, err := o.repo.GetAttestationDataOutcomes(ctx, eventID)
	if err != nil {
		return nil, err
	}
	response := &models.OracleOutcomeResponse{
		EventID:       eventID,
		CombinedScore: outcome.CombinedScore,
		AttestedValue: outcome.AttestedValue,
	}
	for _, data := range dataOutcomes {
		response.Outcomes = append(response.Outcomes, models.DataOutcomeResponse{
			EventID:         data.EventID,
			DataType:        data.DataType,
			NormalizedValue: data.NormalizedValue,
			OriginalValue:   data.OriginalValue,
		})
	}
	return response, nil
}

// ParlayContract loads an event's contract and converts the stored enum
// strings into their typed variants once, at the boundary.
func (o *Oracle) ParlayContract(ctx context.Context, eventID string) (*parlay.Contract, error) {
	stored, err := o.repo.GetContract(ctx, eventID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	method, err := parlay.ParseCombinationMethod(stored.CombinationMethod)
	if err != nil {
		return nil, err
	}
	contract := &parlay.Contract{
		ID:                 stored.ID,
		CombinationMethod:  method,
		MaxNormalizedValue: stored.MaxNormalizedValue,
	}
	for _, param := range stored.Parameters {
		dataType, err := parlay.ParseDataType(param.DataType)
		if err != nil {
			return nil, err
		}
		transformation, err := parlay.ParseTransformation(param.Transformation)
		if err != nil {
			return nil, err
		}
		contract.Parameters = append(contract.Parameters, parlay.Parameter{
			DataType:         dataType,
			Threshold:        param.Threshold,
			Range:            param.Range,
			IsAboveThreshold: param.IsAboveThreshold,
			Transformation:   transformation,
			Weight:           param.Weight,
		})
	}
	return contract, nil
}

// ListEvents returns all events.
func (o *Oracle) ListEvents(ctx context.Context) ([]*models.Event, error) {
	return o.repo.ListEvents(ctx)
}

// ListEventsByType returns all events tagged with a contract category.
func (o *Oracle) ListEventsByType(ctx context.Context, eventType string) ([]*models.Event, error) {
	return o.repo.ListEventsByType(ctx, eventType)
}

// ListAnnouncedEvents returns events waiting for attestation.
func (o *Oracle) ListAnnouncedEvents(ctx context.Context) ([]*models.Event, error) {
	return o.repo.ListEventsByStatus(ctx, models.EventStatusAnnounced)
}

// GetEvent returns a single event row.
func (o *Oracle) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := o.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return event, nil
}

func (o *Oracle) outcomeResponse(eventID string, evaluation *parlay.Evaluation) *models.OracleOutcomeResponse {
	response := &models.OracleOutcomeResponse{
		EventID:       eventID,
		CombinedScore: evaluation.CombinedScore,
		AttestedValue: evaluation.AttestedValue,
	}
	for _, result := range evaluation.Parameters {
		response.Outcomes = append(response.Outcomes, models.DataOutcomeResponse{
			EventID:         eventID,
			DataType:        string(result.DataType),
			NormalizedValue: result.NormalizedValue,
			OriginalValue:   result.OriginalValue,
		})
	}
	return response
}

func buildPayload(event *models.Event, nonces []models.EventNonce, base int) models.OracleEventPayload {
	payload := models.OracleEventPayload{
		EventID:            event.EventID,
		Name:               event.Name,
		Unit:               event.Unit,
		IsEnum:             event.IsEnum,
		Base:               base,
		NbDigits:           len(nonces),
		EventMaturityEpoch: event.EventMaturityEpoch,
		Nonces:             make([]string, 0, len(nonces)),
	}
	for _, nonce := range nonces {
		payload.Nonces = append(payload.Nonces, hex.EncodeToString(nonce.Nonce))
	}
	return payload
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrEventNotFound
	}
	return err
}
