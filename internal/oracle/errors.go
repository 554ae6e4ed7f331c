package oracle

import "errors"

var (
	// ErrDuplicateEvent is returned when an event id already exists.
	ErrDuplicateEvent = errors.New("oracle: event already exists")
	// ErrEventNotFound is returned when an event id is unknown.
	ErrEventNotFound = errors.New("oracle: event not found")
	// ErrAlreadyAnnounced is returned when announcing an event that has left
	// the created state.
	ErrAlreadyAnnounced = errors.New("oracle: event already announced")
	// ErrAlreadyAttested is returned when attesting an event that was already
	// attested. The prior outcome rows are left untouched.
	ErrAlreadyAttested = errors.New("oracle: event already attested")
	// ErrNotAnnounced is returned when attesting an event that has no signed
	// announcement yet.
	ErrNotAnnounced = errors.New("oracle: event not announced")
	// ErrNotAttested is returned when requesting an attestation for an event
	// that has not been signed.
	ErrNotAttested = errors.New("oracle: event not attested")
	// ErrNonceCountMismatch is returned when the digit decomposition does not
	// line up with the committed nonce count.
	ErrNonceCountMismatch = errors.New("oracle: digit count does not match committed nonces")
	// ErrDigitOverflow is returned when an outcome needs more digits than
	// nonces were committed.
	ErrDigitOverflow = errors.New("oracle: outcome does not fit committed digits")
	// ErrCannotSignEnum is returned when numeric signing is requested for an
	// enumerated-outcome event.
	ErrCannotSignEnum = errors.New("oracle: cannot sign enum event")
)
