package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jumlamart.com/app/internal/mailer"
	"jumlamart.com/app/internal/modules/orders"
)

func paidOrder() orders.Order {
	email := "shopper@example.com"
	price := "1500.00"
	ref := "ref_abc"
	now := time.Now()
	return orders.Order{
		ID:           "order_1",
		Status:       "paid",
		Currency:     "NGN",
		IsPaid:       true,
		PaidAt:       &now,
		PaymentRef:   &ref,
		PaymentEmail: &email,
		PricePaid:    &price,
	}
}

func TestSendPurchaseReceipt(t *testing.T) {
	mock := &mailer.Mock{}
	r := NewReceipts(mock, "no-reply@jumlamart.com", "Jumlamart", "https://jumlamart.com")

	require.NoError(t, r.SendPurchaseReceipt(context.Background(), paidOrder()))
	require.Equal(t, 1, mock.SentCount())

	e := mock.Sent[0]
	assert.Equal(t, []string{"shopper@example.com"}, e.To)
	assert.Equal(t, "no-reply@jumlamart.com", e.From)
	assert.Equal(t, "Your Jumlamart receipt", e.Subject)
	assert.Contains(t, e.TextBody, "#order_1")
	assert.Contains(t, e.TextBody, "1500.00 NGN")
	assert.Contains(t, e.TextBody, "https://jumlamart.com/account/orders/order_1")
	assert.Contains(t, e.HTMLBody, "1500.00 NGN")
}

func TestSendPurchaseReceipt_GuestEmailFallback(t *testing.T) {
	mock := &mailer.Mock{}
	r := NewReceipts(mock, "no-reply@jumlamart.com", "Jumlamart", "https://jumlamart.com")

	o := paidOrder()
	o.PaymentEmail = nil
	guest := "guest@example.com"
	o.GuestEmail = &guest

	require.NoError(t, r.SendPurchaseReceipt(context.Background(), o))
	require.Equal(t, 1, mock.SentCount())
	assert.Equal(t, []string{"guest@example.com"}, mock.Sent[0].To)
}

func TestSendPurchaseReceipt_NoAddress(t *testing.T) {
	mock := &mailer.Mock{}
	r := NewReceipts(mock, "no-reply@jumlamart.com", "Jumlamart", "https://jumlamart.com")

	o := paidOrder()
	o.PaymentEmail = nil
	o.GuestEmail = nil

	err := r.SendPurchaseReceipt(context.Background(), o)
	assert.Error(t, err)
	assert.Equal(t, 0, mock.SentCount())
}

func TestSendPurchaseReceipt_MailerError(t *testing.T) {
	mock := &mailer.Mock{Err: errors.New("smtp down")}
	r := NewReceipts(mock, "no-reply@jumlamart.com", "Jumlamart", "https://jumlamart.com")

	err := r.SendPurchaseReceipt(context.Background(), paidOrder())
	assert.Error(t, err)
}
