package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jumlamart.com/app/internal/config"
)

func testClient(srvURL string) *Client {
	return NewClient(config.PaystackConfig{BaseURL: srvURL, SecretKey: "sk_test_secret"})
}

func TestVerifyTransaction_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/ref_abc", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {
				"status": "success",
				"reference": "ref_abc",
				"amount": 150000,
				"currency": "NGN",
				"metadata": {"orderId": "order_1"},
				"customer": {"email": "shopper@example.com"}
			}
		}`))
	}))
	defer srv.Close()

	data, err := testClient(srv.URL).VerifyTransaction(context.Background(), "ref_abc")
	require.NoError(t, err)
	assert.Equal(t, "success", data.Status)
	assert.Equal(t, "ref_abc", data.Reference)
	assert.Equal(t, int64(150000), data.Amount)
	assert.Equal(t, "NGN", data.Currency)
	assert.Equal(t, "order_1", data.OrderID)
	assert.Equal(t, "shopper@example.com", data.CustomerEmail)
}

func TestVerifyTransaction_NonSuccessStatusBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": true, "data": {"status": "failed", "reference": "ref_abc", "amount": 150000}}`))
	}))
	defer srv.Close()

	data, err := testClient(srv.URL).VerifyTransaction(context.Background(), "ref_abc")
	require.NoError(t, err)
	assert.Equal(t, "failed", data.Status)
}

func TestVerifyTransaction_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status": false, "message": "Transaction reference not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).VerifyTransaction(context.Background(), "ref_missing")
	assert.ErrorIs(t, err, ErrGatewayUnreachable)
}

func TestVerifyTransaction_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := testClient(srv.URL).VerifyTransaction(context.Background(), "ref_abc")
	assert.ErrorIs(t, err, ErrGatewayUnreachable)
}

func TestVerifyTransaction_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).VerifyTransaction(context.Background(), "ref_abc")
	assert.ErrorIs(t, err, ErrMalformedGatewayResponse)
}

func TestInitializeTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		var payload struct {
			Email       string            `json:"email"`
			Amount      int               `json:"amount"`
			Currency    string            `json:"currency"`
			CallbackURL string            `json:"callback_url"`
			Metadata    map[string]string `json:"metadata"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "shopper@example.com", payload.Email)
		assert.Equal(t, 150000, payload.Amount)
		assert.Equal(t, "NGN", payload.Currency)
		assert.Equal(t, "https://shop.example/checkout/order_1/payment-success", payload.CallbackURL)
		assert.Equal(t, "order_1", payload.Metadata["orderId"])

		w.Write([]byte(`{
			"status": true,
			"data": {
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code": "abc123",
				"reference": "ref_new"
			}
		}`))
	}))
	defer srv.Close()

	data, err := testClient(srv.URL).InitializeTransaction(context.Background(), InitializeRequest{
		OrderID:     "order_1",
		Email:       "shopper@example.com",
		AmountCents: 150000,
		Currency:    "NGN",
		CallbackURL: "https://shop.example/checkout/order_1/payment-success",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc123", data.AuthorizationURL)
	assert.Equal(t, "ref_new", data.Reference)
}

func TestInitializeTransaction_MissingAuthorizationURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": true, "data": {}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).InitializeTransaction(context.Background(), InitializeRequest{OrderID: "order_1"})
	assert.ErrorIs(t, err, ErrMalformedGatewayResponse)
}

func TestParseWebhook(t *testing.T) {
	c := testClient("http://unused")
	body := []byte(`{"event":"charge.success","data":{"status":"success","reference":"ref_abc","amount":150000,"metadata":{"orderId":"order_1"},"customer":{"email":"shopper@example.com"}}}`)

	h := http.Header{}
	h.Set(SignatureHeader, Signature("sk_test_secret", body))

	ev, err := c.ParseWebhook(h, body)
	require.NoError(t, err)
	assert.Equal(t, "charge.success", ev.Event)
	assert.Equal(t, "charge.success:ref_abc", ev.EventID())
	assert.Equal(t, "order_1", ev.VerifyData().OrderID)
	assert.Equal(t, int64(150000), ev.VerifyData().Amount)
}

func TestParseWebhook_BadSignature(t *testing.T) {
	c := testClient("http://unused")
	body := []byte(`{"event":"charge.success","data":{"reference":"ref_abc"}}`)

	h := http.Header{}
	h.Set(SignatureHeader, Signature("wrong_secret", body))
	_, err := c.ParseWebhook(h, body)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = c.ParseWebhook(http.Header{}, body)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseWebhook_MalformedBody(t *testing.T) {
	c := testClient("http://unused")
	body := []byte(`not json`)

	h := http.Header{}
	h.Set(SignatureHeader, Signature("sk_test_secret", body))

	_, err := c.ParseWebhook(h, body)
	assert.ErrorIs(t, err, ErrMalformedGatewayResponse)
}

func TestSignature(t *testing.T) {
	// HMAC-SHA512 is deterministic for a fixed key and body.
	s1 := Signature("secret", []byte("body"))
	s2 := Signature("secret", []byte("body"))
	assert.Equal(t, s1, s2)
	assert.Len(t, s1, 128)
	assert.NotEqual(t, s1, Signature("other", []byte("body")))
}
