package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jumlamart.com/app/internal/http/middleware"
	"jumlamart.com/app/internal/http/validation"
	"jumlamart.com/app/internal/modules/orders"
	"jumlamart.com/app/internal/modules/payments"
	"jumlamart.com/app/internal/shared/apperr"
)

type CheckoutHandler struct {
	Logger  *slog.Logger
	PaySvc  *payments.Service
	BaseURL string
}

func NewCheckoutHandler(logger *slog.Logger, paySvc *payments.Service, baseURL string) *CheckoutHandler {
	return &CheckoutHandler{Logger: logger, PaySvc: paySvc, BaseURL: baseURL}
}

type payInput struct {
	// Optional payer email override; guest orders without an email need one.
	Email   string `form:"email" binding:"omitempty,email,max=255"`
	IdemKey string `form:"idempotency_key" binding:"omitempty,max=64"`
}

// POST /checkout/:id/pay
// Opens a Paystack checkout and sends the browser to the hosted payment page.
func (h *CheckoutHandler) Pay(c *gin.Context) {
	orderID := c.Param("id")

	var in payInput
	if err := c.ShouldBind(&in); err != nil {
		errs := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Invalid payment details.", errs))
		return
	}

	idem := strings.TrimSpace(in.IdemKey)
	if idem == "" {
		idem = randHex(16)
	}

	res, err := h.PaySvc.StartPayment(c.Request.Context(), payments.StartPaymentInput{
		OrderID:        orderID,
		Email:          in.Email,
		IdempotencyKey: idem,
		CallbackURL:    h.BaseURL + "/checkout/" + orderID + "/payment-success",
	})
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			middleware.Fail(c, apperr.NotFoundErr("Order not found."))
		case errors.Is(err, payments.ErrOrderNotPayable):
			middleware.Fail(c, apperr.ConflictErr("Order is not payable."))
		case errors.Is(err, payments.ErrMissingPayerEmail):
			middleware.Fail(c, apperr.InvalidErr("An email address is required to pay this order.", nil))
		case errors.Is(err, payments.ErrGatewayUnreachable), errors.Is(err, payments.ErrMalformedGatewayResponse):
			middleware.Fail(c, apperr.UpstreamErr("Could not reach the payment gateway. Please try again.", err))
		default:
			middleware.Fail(c, apperr.Wrap(err))
		}
		return
	}

	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{
			"checkoutUrl": res.CheckoutURL,
			"reference":   res.Reference,
			"paymentId":   res.PaymentID,
		})
		return
	}

	c.Redirect(http.StatusSeeOther, res.CheckoutURL)
}
