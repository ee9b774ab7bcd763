package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freight/internal/domain"
	"freight/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PaymentResponse is the HTTP response for payment operations.
type PaymentResponse struct {
	ID               string        `json:"id"`
	TripID           string        `json:"trip_id"`
	PayerID          string        `json:"payer_id"`
	PayeeID          string        `json:"payee_id"`
	Amount           MoneyResponse `json:"amount"`
	CommissionAmount MoneyResponse `json:"commission_amount"`
	NetAmount        MoneyResponse `json:"net_amount"`
	CommissionRate   string        `json:"commission_rate_pct"`
	Status           string        `json:"status"`
	CreatedAt        string        `json:"created_at"`
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		TripID:           p.TripID,
		PayerID:          p.PayerID,
		PayeeID:          p.PayeeID,
		Amount:           moneyResponse(p.Amount),
		CommissionAmount: moneyResponse(p.CommissionAmount),
		NetAmount:        moneyResponse(p.NetAmount),
		CommissionRate:   p.CommissionRate.String(),
		Status:           string(p.Status),
		CreatedAt:        formatTime(&p.CreatedAt),
	}
}

// GetTripPayment handles GET /v1/trips/:id/payment
func (h *PaymentHandler) GetTripPayment(c *gin.Context) {
	payment, err := h.paymentService.GetTripPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}
