package payments

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"jumlamart.com/app/internal/modules/orders"
)

// Gateway is the slice of the Paystack client the service consumes.
type Gateway interface {
	VerifyTransaction(ctx context.Context, reference string) (VerifyData, error)
	InitializeTransaction(ctx context.Context, in InitializeRequest) (InitializeData, error)
}

// ReceiptSender delivers a purchase receipt for a paid order. Delivery is
// best-effort; the service never fails reconciliation on a send error.
type ReceiptSender interface {
	SendPurchaseReceipt(ctx context.Context, o orders.Order) error
}

type Service struct {
	checkouts checkoutStore
	store     orders.Store
	gateway   Gateway
	receipts  ReceiptSender
	logger    *slog.Logger
}

func NewService(db *gorm.DB, store orders.Store, gw Gateway, receipts ReceiptSender) *Service {
	s := &Service{store: store, gateway: gw, receipts: receipts, logger: slog.Default()}
	if db != nil {
		s.checkouts = &gormCheckoutStore{db: db}
	}
	return s
}

func (s *Service) SetLogger(logger *slog.Logger) { s.logger = logger }

// VerifyPayment reconciles one payment reference: gateway verify, conditional
// order update, best-effort receipt. Failure paths perform no writes.
func (s *Service) VerifyPayment(ctx context.Context, reference string) (orders.Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return orders.Order{}, ErrMissingReference
	}

	data, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		s.logger.ErrorContext(ctx, "gateway verify call failed", "reference", reference, "err", err)
		return orders.Order{}, err
	}

	if data.Status != GatewaySuccess {
		s.logger.WarnContext(ctx, "gateway reported non-success status", "reference", reference, "status", data.Status)
		return orders.Order{}, ErrVerificationFailed
	}

	res := orders.PaymentResult{
		Ref:       reference,
		Status:    data.Status,
		Email:     data.CustomerEmail,
		PricePaid: PriceFromMinorUnits(data.Amount),
	}
	return s.applyPaid(ctx, data.OrderID, res)
}

// applyPaid is write-then-notify: MarkPaid commits the paid state before any
// receipt goes out, and only the call that actually flipped the flag sends
// one. Shared with the webhook path.
func (s *Service) applyPaid(ctx context.Context, orderID string, res orders.PaymentResult) (orders.Order, error) {
	if orderID == "" {
		return orders.Order{}, orders.ErrNotFound
	}

	o, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return orders.Order{}, err
	}
	if o.IsPaid {
		// Idempotent short-circuit: no write, no second receipt.
		return o, nil
	}

	o, updated, err := s.store.MarkPaid(ctx, orderID, res, time.Now())
	if err != nil {
		return orders.Order{}, err
	}
	if !updated {
		// Lost the race to a concurrent verification; that call owns the receipt.
		return o, nil
	}

	s.markPaymentSucceeded(ctx, orderID, res.Ref)

	if s.receipts != nil {
		if err := s.receipts.SendPurchaseReceipt(ctx, o); err != nil {
			s.logger.WarnContext(ctx, "purchase receipt delivery failed", "order_id", o.ID, "err", err)
		}
	}

	s.logger.InfoContext(ctx, "order reconciled as paid",
		"order_id", o.ID, "reference", res.Ref, "price_paid", res.PricePaid)
	return o, nil
}

// markPaymentSucceeded flips the matching payments row, if StartPayment
// created one. A missing row is fine: the checkout may have been initiated
// outside this process.
func (s *Service) markPaymentSucceeded(ctx context.Context, orderID, ref string) {
	if s.checkouts == nil {
		return
	}
	if err := s.checkouts.markSucceeded(ctx, orderID, ref); err != nil {
		s.logger.WarnContext(ctx, "failed to update payment row", "order_id", orderID, "reference", ref, "err", err)
	}
}

// PriceFromMinorUnits renders a gateway minor-unit amount as a decimal string
// with two fractional digits, e.g. 150000 -> "1500.00".
func PriceFromMinorUnits(amount int64) string {
	return decimal.NewFromInt(amount).Shift(-2).StringFixed(2)
}

type StartPaymentInput struct {
	OrderID        string
	Email          string // optional payer email override
	IdempotencyKey string
	CallbackURL    string
}

type StartPaymentResult struct {
	OrderID     string
	PaymentID   string
	Reference   string
	CheckoutURL string
	Idempotent  bool
}

// StartPayment opens a Paystack checkout for an unpaid order. Phase 1 locks
// the order and records an initiated payment under the idempotency key, phase
// 2 calls the gateway outside the transaction, phase 3 finalizes the payment
// row.
func (s *Service) StartPayment(ctx context.Context, in StartPaymentInput) (StartPaymentResult, error) {
	if in.OrderID == "" || in.IdempotencyKey == "" {
		return StartPaymentResult{}, ErrOrderNotPayable
	}
	if s.checkouts == nil {
		return StartPaymentResult{}, errors.New("payments: no checkout store configured")
	}

	created, ord, err := s.checkouts.beginCheckout(ctx, in.OrderID, in.IdempotencyKey)
	if err != nil {
		return StartPaymentResult{}, err
	}

	// Idempotent replay with a checkout already opened.
	if created.CheckoutURL != nil && *created.CheckoutURL != "" {
		ref := ""
		if created.ProviderRef != nil {
			ref = *created.ProviderRef
		}
		return StartPaymentResult{
			OrderID:     ord.ID,
			PaymentID:   created.ID,
			Reference:   ref,
			CheckoutURL: *created.CheckoutURL,
			Idempotent:  true,
		}, nil
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		email = ord.ReceiptEmail()
	}
	if email == "" {
		return StartPaymentResult{}, ErrMissingPayerEmail
	}

	data, initErr := s.gateway.InitializeTransaction(ctx, InitializeRequest{
		OrderID:     ord.ID,
		Email:       email,
		AmountCents: ord.TotalCents,
		Currency:    ord.Currency,
		CallbackURL: in.CallbackURL,
	})

	var errMsg *string
	if initErr != nil {
		msg := truncate(initErr.Error(), 250)
		errMsg = &msg
	}
	if err := s.checkouts.finalizeCheckout(ctx, created.ID, data, errMsg); err != nil {
		return StartPaymentResult{}, err
	}
	if initErr != nil {
		return StartPaymentResult{}, initErr
	}

	return StartPaymentResult{
		OrderID:     ord.ID,
		PaymentID:   created.ID,
		Reference:   data.Reference,
		CheckoutURL: data.AuthorizationURL,
	}, nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
