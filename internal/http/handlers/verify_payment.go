package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jumlamart.com/app/internal/modules/orders"
	"jumlamart.com/app/internal/modules/payments"
)

// VerifyService is the slice of payments.Service the HTTP layer consumes.
type VerifyService interface {
	VerifyPayment(ctx context.Context, reference string) (orders.Order, error)
}

type VerifyPaymentHandler struct {
	Logger *slog.Logger
	Svc    VerifyService
}

func NewVerifyPaymentHandler(logger *slog.Logger, svc VerifyService) *VerifyPaymentHandler {
	return &VerifyPaymentHandler{Logger: logger, Svc: svc}
}

// GET /api/verify-payment?reference=<string>
func (h *VerifyPaymentHandler) Get(c *gin.Context) {
	reference := strings.TrimSpace(c.Query("reference"))
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"isSuccess": false, "error": "No reference provided"})
		return
	}

	o, err := h.Svc.VerifyPayment(c.Request.Context(), reference)
	if err != nil {
		status, msg := verifyErrorResponse(err)
		h.Logger.Warn("payment verification rejected", "reference", reference, "status", status, "err", err)
		c.JSON(status, gin.H{"isSuccess": false, "error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"isSuccess": true, "order": o})
}

func verifyErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, payments.ErrMissingReference):
		return http.StatusBadRequest, "No reference provided"
	case errors.Is(err, payments.ErrVerificationFailed):
		return http.StatusBadRequest, "Verification failed"
	case errors.Is(err, orders.ErrNotFound):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, payments.ErrGatewayUnreachable):
		return http.StatusBadGateway, "Payment verification API failed"
	case errors.Is(err, payments.ErrMalformedGatewayResponse):
		return http.StatusBadGateway, "Invalid response from payment gateway"
	default:
		return http.StatusInternalServerError, "Server error"
	}
}
