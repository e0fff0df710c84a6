package email

import (
	"context"
	"fmt"

	"jumlamart.com/app/internal/mailer"
	"jumlamart.com/app/internal/modules/orders"
)

// Receipts sends purchase receipts for paid orders. Implements
// payments.ReceiptSender.
type Receipts struct {
	mailer   mailer.Service
	fromAddr string
	fromName string
	baseURL  string
}

func NewReceipts(m mailer.Service, fromAddr, fromName, baseURL string) *Receipts {
	return &Receipts{mailer: m, fromAddr: fromAddr, fromName: fromName, baseURL: baseURL}
}

func (r *Receipts) SendPurchaseReceipt(ctx context.Context, o orders.Order) error {
	to := o.ReceiptEmail()
	if to == "" {
		return fmt.Errorf("order %s has no receipt email", o.ID)
	}

	price := ""
	if o.PricePaid != nil {
		price = *o.PricePaid + " " + o.Currency
	}
	orderURL := r.baseURL + "/account/orders/" + o.ID

	subject := "Your Jumlamart receipt"
	textBody := "Thanks for your purchase!\n\n" +
		"Order: #" + o.ID + "\n" +
		"Amount paid: " + price + "\n\n" +
		"View your order: " + orderURL + "\n\n" +
		"The Jumlamart team"

	htmlBody := `
<html>
  <body style="font-family: sans-serif;">
    <h2>Thanks for your purchase!</h2>
    <p>We received your payment and are now processing your order.</p>
    <p><strong>Order:</strong> #` + o.ID + `</p>
    <p><strong>Amount paid:</strong> ` + price + `</p>
    <p><a href="` + orderURL + `">View order</a></p>
    <p>The Jumlamart team</p>
  </body>
</html>
`

	return r.mailer.Send(ctx, mailer.Email{
		From:     r.fromAddr,
		FromName: r.fromName,
		To:       []string{to},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	})
}
