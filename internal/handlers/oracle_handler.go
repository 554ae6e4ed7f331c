package handlers

import (
	"errors"
	"net/http"

	"github.com/ernest-money/ernest-oracle/internal/models"
	"github.com/ernest-money/ernest-oracle/internal/oracle"
	"github.com/ernest-money/ernest-oracle/internal/parlay"

	"github.com/gin-gonic/gin"
)

type OracleHandler struct {
	oracle *oracle.Oracle
	feeds  oracle.FeedSource
}

func NewOracleHandler(o *oracle.Oracle, feeds oracle.FeedSource) *OracleHandler {
	return &OracleHandler{oracle: o, feeds: feeds}
}

// Info returns the oracle's public key and name
func (h *OracleHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, models.OracleInfoResponse{
		Pubkey: h.oracle.PublicKeyHex(),
		Name:   h.oracle.Name(),
	})
}

// AvailableEvents lists the data types the oracle can observe
func (h *OracleHandler) AvailableEvents(c *gin.Context) {
	c.JSON(http.StatusOK, parlay.AvailableDataTypes())
}

// ListEvents returns all oracle events
func (h *OracleHandler) ListEvents(c *gin.Context) {
	var (
		events []*models.Event
		err    error
	)
	if eventType := c.Query("eventType"); eventType != "" {
		events, err = h.oracle.ListEventsByType(c.Request.Context(), eventType)
	} else {
		events, err = h.oracle.ListEvents(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}
	c.JSON(http.StatusOK, events)
}

// CreateEvent creates and announces a new oracle event
func (h *OracleHandler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var (
		event *models.Event
		err   error
	)
	if req.EventType != nil {
		dataType, parseErr := parlay.ParseDataType(*req.EventType)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": parseErr.Error()})
			return
		}
		event, err = h.oracle.CreateNumericEvent(ctx, "", dataType, req.EventMaturityEpoch)
	} else {
		event, err = h.oracle.CreateParlayEvent(ctx, &req)
	}
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if _, err := h.oracle.AnnounceEvent(ctx, event.EventID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	announcement, err := h.oracle.GetAnnouncement(ctx, event.EventID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, announcement)
}

// GetEvent returns the announcement for one event
func (h *OracleHandler) GetEvent(c *gin.Context) {
	eventID := c.Query("eventId")
	if eventID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventId is required"})
		return
	}
	announcement, err := h.oracle.GetAnnouncement(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, announcement)
}

// SignEvent fetches the current feed values and attests the event
func (h *OracleHandler) SignEvent(c *gin.Context) {
	var req struct {
		EventID string `json:"eventId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.oracle.AttestMaturedEvent(ctx, req.EventID, h.feeds); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	attestation, err := h.oracle.GetAttestation(ctx, req.EventID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, attestation)
}

// GetAttestation returns the digit outcomes and signatures for a signed event
func (h *OracleHandler) GetAttestation(c *gin.Context) {
	eventID := c.Query("eventId")
	if eventID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventId is required"})
		return
	}
	attestation, err := h.oracle.GetAttestation(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, attestation)
}

// GetAttestationOutcome returns the pipeline outcome for an attested event
func (h *OracleHandler) GetAttestationOutcome(c *gin.Context) {
	eventID := c.Query("eventId")
	if eventID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventId is required"})
		return
	}
	outcome, err := h.oracle.GetOutcome(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// GetParlayContract returns the scoring contract behind a parlay event
func (h *OracleHandler) GetParlayContract(c *gin.Context) {
	eventID := c.Query("eventId")
	if eventID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventId is required"})
		return
	}
	contract, err := h.oracle.ParlayContract(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	response := models.ParlayContractResponse{
		ID:                 contract.ID,
		CombinationMethod:  string(contract.CombinationMethod),
		MaxNormalizedValue: contract.MaxNormalizedValue,
	}
	for _, param := range contract.Parameters {
		response.Parameters = append(response.Parameters, models.ParlayParameterSpec{
			DataType:         string(param.DataType),
			Threshold:        param.Threshold,
			Range:            param.Range,
			IsAboveThreshold: param.IsAboveThreshold,
			Transformation:   string(param.Transformation),
			Weight:           param.Weight,
		})
	}
	c.JSON(http.StatusOK, response)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, oracle.ErrEventNotFound), errors.Is(err, oracle.ErrNotAttested):
		return http.StatusNotFound
	case errors.Is(err, oracle.ErrDuplicateEvent),
		errors.Is(err, oracle.ErrAlreadyAnnounced),
		errors.Is(err, oracle.ErrAlreadyAttested):
		return http.StatusConflict
	case errors.Is(err, oracle.ErrNotAnnounced),
		errors.Is(err, oracle.ErrDigitOverflow),
		errors.Is(err, oracle.ErrNonceCountMismatch),
		errors.Is(err, oracle.ErrCannotSignEnum),
		errors.Is(err, parlay.ErrInvalidParameter),
		errors.Is(err, parlay.ErrEmptyContract),
		errors.Is(err, parlay.ErrInvalidScore),
		errors.Is(err, parlay.ErrMissingInput),
		errors.Is(err, parlay.ErrUnsupportedDataType),
		errors.Is(err, parlay.ErrUnsupportedTransformation),
		errors.Is(err, parlay.ErrUnsupportedCombinationMethod):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
