package main

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"jumlamart.com/app/internal/modules/payments"
)

// Sends a signed Paystack-style webhook to a local server, for testing the
// webhook path without real gateway traffic.

type chargeData struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Metadata  struct {
		OrderID string `json:"orderId"`
	} `json:"metadata"`
	Customer struct {
		Email string `json:"email"`
	} `json:"customer"`
}

type webhookPayload struct {
	Event string     `json:"event"`
	Data  chargeData `json:"data"`
}

func main() {
	url := flag.String("url", "http://localhost:8080/webhooks/paystack", "Webhook URL")
	secret := flag.String("secret", os.Getenv("PAYSTACK_SECRET_KEY"), "Paystack secret key")
	event := flag.String("event", "charge.success", "Event type")
	reference := flag.String("reference", "ref_"+randomHex(8), "Transaction reference")
	orderID := flag.String("order-id", "", "Order ID (metadata.orderId)")
	email := flag.String("email", "shopper@example.com", "Customer email")
	amount := flag.Int64("amount", 150000, "Amount in minor units")
	currency := flag.String("currency", "NGN", "Currency")
	dryRun := flag.Bool("dry-run", false, "Only print signature header, don't send")

	flag.Parse()

	if *secret == "" {
		fmt.Fprintf(os.Stderr, "Error: secret not provided and PAYSTACK_SECRET_KEY not set\n")
		os.Exit(1)
	}

	payload := webhookPayload{Event: *event}
	payload.Data.Status = "success"
	payload.Data.Reference = *reference
	payload.Data.Amount = *amount
	payload.Data.Currency = *currency
	payload.Data.Metadata.OrderID = *orderID
	payload.Data.Customer.Email = *email

	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling payload: %v\n", err)
		os.Exit(1)
	}

	sig := payments.Signature(*secret, body)

	fmt.Printf("%s: %s\n", payments.SignatureHeader, sig)
	fmt.Printf("Body: %s\n", string(body))

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	fmt.Printf("\nSending to %s...\n", *url)
	req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating request: %v\n", err)
		os.Exit(1)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(payments.SignatureHeader, sig)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d\n", resp.StatusCode)
	fmt.Printf("Response: %s\n", string(respBody))

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
