package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"freight/internal/domain"
	"freight/internal/lifecycle"
	"freight/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	coordinator *service.TripCoordinator
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(coordinator *service.TripCoordinator) *TripHandler {
	return &TripHandler{coordinator: coordinator}
}

// LocationBody is a coordinate in a request body.
type LocationBody struct {
	Lat       float64    `json:"lat"`
	Lng       float64    `json:"lng"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
	Speed     *float64   `json:"speed,omitempty"`
	Heading   *float64   `json:"heading,omitempty"`
}

func (b *LocationBody) toDomain() domain.GeoLocation {
	at := time.Now().UTC()
	if b.Timestamp != nil {
		at = b.Timestamp.UTC()
	}
	return domain.GeoLocation{
		Latitude:  b.Lat,
		Longitude: b.Lng,
		Timestamp: at,
		Accuracy:  b.Accuracy,
		Speed:     b.Speed,
		Heading:   b.Heading,
	}
}

// MoneyBody is an amount in a request body. Amount is a decimal string.
type MoneyBody struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// TransitionRequest is the HTTP request body for a trip transition.
type TransitionRequest struct {
	ActorID     string        `json:"actor_id"`
	TargetState string        `json:"target_state"`
	Location    *LocationBody `json:"location,omitempty"`
	Reason      string        `json:"reason,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	ActualPrice *MoneyBody    `json:"actual_price,omitempty"`
}

// MoneyResponse is a monetary amount in a response.
type MoneyResponse struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func moneyResponse(m domain.Money) MoneyResponse {
	return MoneyResponse{Amount: m.Amount.StringFixed(domain.MinorUnitPlaces), Currency: m.Currency}
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	TripID       string           `json:"trip_id"`
	CargoID      string           `json:"cargo_id"`
	DriverID     string           `json:"driver_id,omitempty"`
	Status       string           `json:"status"`
	CargoStatus  string           `json:"cargo_status"`
	AgreedPrice  MoneyResponse    `json:"agreed_price"`
	ActualPrice  *MoneyResponse   `json:"actual_price,omitempty"`
	AcceptedAt   string           `json:"accepted_at,omitempty"`
	PickedUpAt   string           `json:"picked_up_at,omitempty"`
	DeliveredAt  string           `json:"delivered_at,omitempty"`
	CompletedAt  string           `json:"completed_at,omitempty"`
	CancelledAt  string           `json:"cancelled_at,omitempty"`
	CancelReason string           `json:"cancel_reason,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	Version      int              `json:"version"`
	Payment      *PaymentResponse `json:"payment,omitempty"`
}

// ProgressResponse is the HTTP response for trip progress.
type ProgressResponse struct {
	TripID              string        `json:"trip_id"`
	Status              string        `json:"status"`
	Percent             float64       `json:"percent"`
	TotalDistanceKm     float64       `json:"total_distance_km"`
	RemainingDistanceKm float64       `json:"remaining_distance_km"`
	CurrentLocation     *LocationBody `json:"current_location,omitempty"`
	EtaMinutes          *float64      `json:"eta_minutes,omitempty"`
	ETAUnavailable      bool          `json:"eta_unavailable"`
}

// RequestTransition handles POST /v1/trips/:id/transitions
func (h *TripHandler) RequestTransition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.ActorID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "actor_id is required"})
		return
	}

	target, err := lifecycle.Parse(req.TargetState)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	payload := service.TransitionPayload{
		Reason: req.Reason,
		Notes:  req.Notes,
	}

	if req.Location != nil {
		loc := req.Location.toDomain()
		payload.Location = &loc
	}

	if req.ActualPrice != nil {
		amount, err := decimal.NewFromString(req.ActualPrice.Amount)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "actual_price.amount must be a decimal string"})
			return
		}
		price, err := domain.NewMoney(amount, req.ActualPrice.Currency)
		if err != nil {
			respondError(c, err)
			return
		}
		payload.ActualPrice = &price
	}

	snap, err := h.coordinator.RequestTransition(c.Request.Context(), c.Param("id"), req.ActorID, target, payload)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(snap))
}

// GetProgress handles GET /v1/trips/:id/progress
func (h *TripHandler) GetProgress(c *gin.Context) {
	p, err := h.coordinator.GetProgress(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := ProgressResponse{
		TripID:              p.TripID,
		Status:              string(p.Status),
		Percent:             p.Percent,
		TotalDistanceKm:     p.TotalDistanceKm,
		RemainingDistanceKm: p.RemainingDistanceKm,
		EtaMinutes:          p.EtaMinutes,
		ETAUnavailable:      p.ETAUnavailable,
	}
	if p.CurrentLocation != nil {
		ts := p.CurrentLocation.Timestamp
		resp.CurrentLocation = &LocationBody{
			Lat:       p.CurrentLocation.Latitude,
			Lng:       p.CurrentLocation.Longitude,
			Timestamp: &ts,
			Speed:     p.CurrentLocation.Speed,
			Heading:   p.CurrentLocation.Heading,
		}
	}

	respondJSON(c, http.StatusOK, resp)
}

func toTripResponse(snap *service.TripSnapshot) TripResponse {
	t := snap.Trip
	resp := TripResponse{
		TripID:       t.ID,
		CargoID:      t.CargoID,
		DriverID:     t.DriverID,
		Status:       string(t.Status),
		CargoStatus:  string(snap.Cargo.Status),
		AgreedPrice:  moneyResponse(t.AgreedPrice),
		AcceptedAt:   formatTime(t.AcceptedAt),
		PickedUpAt:   formatTime(t.PickedUpAt),
		DeliveredAt:  formatTime(t.DeliveredAt),
		CompletedAt:  formatTime(t.CompletedAt),
		CancelledAt:  formatTime(t.CancelledAt),
		CancelReason: t.CancelReason,
		Notes:        t.Notes,
		Version:      t.Version,
	}

	if t.ActualPrice != nil {
		actual := moneyResponse(*t.ActualPrice)
		resp.ActualPrice = &actual
	}

	if snap.Payment != nil {
		p := toPaymentResponse(snap.Payment)
		resp.Payment = &p
	}

	return resp
}
