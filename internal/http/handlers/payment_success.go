package handlers

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"jumlamart.com/app/internal/modules/orders"
	"jumlamart.com/app/internal/modules/payments"
)

const (
	defaultVerifyAttempts = 3
	defaultRetryDelay     = 500 * time.Millisecond
)

// PaymentSuccessHandler is the landing page Paystack redirects the shopper to
// after checkout. It re-verifies the reference with bounded retries to absorb
// the lag between the gateway marking the charge and the webhook landing.
type PaymentSuccessHandler struct {
	Logger *slog.Logger
	Svc    VerifyService

	MaxAttempts int
	RetryDelay  time.Duration
}

func NewPaymentSuccessHandler(logger *slog.Logger, svc VerifyService) *PaymentSuccessHandler {
	return &PaymentSuccessHandler{
		Logger:      logger,
		Svc:         svc,
		MaxAttempts: defaultVerifyAttempts,
		RetryDelay:  defaultRetryDelay,
	}
}

// GET /checkout/:id/payment-success?reference=<string>
func (h *PaymentSuccessHandler) Get(c *gin.Context) {
	orderID := c.Param("id")
	reference := c.Query("reference")

	if reference == "" {
		h.Logger.Warn("payment success page hit without a reference", "order_id", orderID)
		h.redirectWithError(c, orderID, "No payment reference provided.")
		return
	}

	for attempt := 1; attempt <= h.MaxAttempts; attempt++ {
		o, err := h.Svc.VerifyPayment(c.Request.Context(), reference)

		switch {
		case err == nil && o.ID == orderID && o.IsPaid:
			h.renderConfirmation(c, orderID)
			return

		case err == nil:
			// Success-shaped response for the wrong order, or the paid flag
			// has not landed yet. Soft failure, worth another attempt.
			h.Logger.Warn("verification returned a non-matching order",
				"order_id", orderID, "got_order_id", o.ID, "is_paid", o.IsPaid, "attempt", attempt)

		case isSoftVerifyError(err):
			h.Logger.Warn("verification not confirmed yet",
				"order_id", orderID, "reference", reference, "attempt", attempt, "err", err)

		default:
			// Transport-class failure: no point retrying.
			h.Logger.Error("payment verification failed hard",
				"order_id", orderID, "reference", reference, "err", err)
			h.redirectWithError(c, orderID, "An unexpected error occurred during payment verification.")
			return
		}

		if attempt < h.MaxAttempts {
			select {
			case <-time.After(h.RetryDelay):
			case <-c.Request.Context().Done():
				// Client is gone; nobody is waiting for the verdict.
				return
			}
		}
	}

	h.Logger.Error("payment verification failed after all retries", "order_id", orderID, "reference", reference)
	h.redirectWithError(c, orderID, "Payment verification failed after multiple attempts. Please contact support.")
}

// isSoftVerifyError reports whether an attempt should consume a retry rather
// than abort: the gateway answered, it just did not confirm the payment yet.
func isSoftVerifyError(err error) bool {
	return errors.Is(err, payments.ErrVerificationFailed) || errors.Is(err, orders.ErrNotFound)
}

func (h *PaymentSuccessHandler) redirectWithError(c *gin.Context, orderID, msg string) {
	c.Redirect(http.StatusFound, "/checkout/"+url.PathEscape(orderID)+"?error="+url.QueryEscape(msg))
}

func (h *PaymentSuccessHandler) renderConfirmation(c *gin.Context, orderID string) {
	safeID := html.EscapeString(orderID)
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, fmt.Sprintf(`<html><body>
<h1>Thanks for your purchase</h1>
<p>We are now processing your order.</p>
<p><a href="/account/orders/%s">View order</a></p>
</body></html>`, safeID))
}
