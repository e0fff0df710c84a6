package payments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jumlamart.com/app/internal/modules/orders"
)

type fakeStore struct {
	mu            sync.Mutex
	orders        map[string]orders.Order
	markPaidCalls int
	findErr       error
}

func newFakeStore(seed ...orders.Order) *fakeStore {
	s := &fakeStore{orders: map[string]orders.Order{}}
	for _, o := range seed {
		s.orders[o.ID] = o
	}
	return s
}

func (s *fakeStore) FindByID(ctx context.Context, id string) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return orders.Order{}, s.findErr
	}
	o, ok := s.orders[id]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	return o, nil
}

func (s *fakeStore) MarkPaid(ctx context.Context, id string, res orders.PaymentResult, paidAt time.Time) (orders.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return orders.Order{}, false, orders.ErrNotFound
	}
	if o.IsPaid {
		return o, false, nil
	}
	o.IsPaid = true
	o.Status = "paid"
	o.PaidAt = &paidAt
	o.PaymentRef = &res.Ref
	o.PaymentStatus = &res.Status
	o.PaymentEmail = &res.Email
	o.PricePaid = &res.PricePaid
	s.orders[id] = o
	s.markPaidCalls++
	return o, true, nil
}

type fakeGateway struct {
	data    VerifyData
	err     error
	calls   int
	lastRef string

	initData  InitializeData
	initErr   error
	initCalls int
	lastInit  InitializeRequest
}

func (g *fakeGateway) VerifyTransaction(ctx context.Context, reference string) (VerifyData, error) {
	g.calls++
	g.lastRef = reference
	if g.err != nil {
		return VerifyData{}, g.err
	}
	return g.data, nil
}

func (g *fakeGateway) InitializeTransaction(ctx context.Context, in InitializeRequest) (InitializeData, error) {
	g.initCalls++
	g.lastInit = in
	if g.initErr != nil {
		return InitializeData{}, g.initErr
	}
	return g.initData, nil
}

type fakeReceipts struct {
	mu       sync.Mutex
	received []orders.Order
	err      error
}

func (r *fakeReceipts) SendPurchaseReceipt(ctx context.Context, o orders.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.received = append(r.received, o)
	return nil
}

func (r *fakeReceipts) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.received)
}

func unpaidOrder(id string) orders.Order {
	return orders.Order{
		ID:         id,
		Status:     "created",
		Currency:   "NGN",
		TotalCents: 150000,
	}
}

func successVerify(reference, orderID string, amount int64) VerifyData {
	return VerifyData{
		Status:        GatewaySuccess,
		Reference:     reference,
		Amount:        amount,
		Currency:      "NGN",
		OrderID:       orderID,
		CustomerEmail: "shopper@example.com",
	}
}

func TestVerifyPayment_MarksOrderPaid(t *testing.T) {
	store := newFakeStore(unpaidOrder("order_1"))
	gw := &fakeGateway{data: successVerify("ref_abc", "order_1", 150000)}
	receipts := &fakeReceipts{}
	svc := NewService(nil, store, gw, receipts)

	o, err := svc.VerifyPayment(context.Background(), "ref_abc")
	require.NoError(t, err)

	assert.True(t, o.IsPaid)
	assert.Equal(t, "order_1", o.ID)
	require.NotNil(t, o.PricePaid)
	assert.Equal(t, "1500.00", *o.PricePaid)
	require.NotNil(t, o.PaymentRef)
	assert.Equal(t, "ref_abc", *o.PaymentRef)
	require.NotNil(t, o.PaymentStatus)
	assert.Equal(t, "success", *o.PaymentStatus)
	require.NotNil(t, o.PaymentEmail)
	assert.Equal(t, "shopper@example.com", *o.PaymentEmail)
	require.NotNil(t, o.PaidAt)

	assert.Equal(t, "ref_abc", gw.lastRef)
	assert.Equal(t, 1, receipts.count())
	// receipt carries the already-persisted paid state (write-then-notify)
	assert.True(t, receipts.received[0].IsPaid)
}

func TestVerifyPayment_MissingReference(t *testing.T) {
	store := newFakeStore(unpaidOrder("order_1"))
	gw := &fakeGateway{}
	svc := NewService(nil, store, gw, &fakeReceipts{})

	_, err := svc.VerifyPayment(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrMissingReference)
	assert.Equal(t, 0, gw.calls)
}

func TestVerifyPayment_GatewayFailedStatus_NoWrite(t *testing.T) {
	store := newFakeStore(unpaidOrder("order_1"))
	gw := &fakeGateway{data: VerifyData{Status: "failed", OrderID: "order_1", Amount: 150000}}
	receipts := &fakeReceipts{}
	svc := NewService(nil, store, gw, receipts)

	_, err := svc.VerifyPayment(context.Background(), "ref_abc")
	assert.ErrorIs(t, err, ErrVerificationFailed)

	assert.Equal(t, 0, store.markPaidCalls)
	assert.Equal(t, 0, receipts.count())
	o, _ := store.FindByID(context.Background(), "order_1")
	assert.False(t, o.IsPaid)
}

func TestVerifyPayment_OrderNotFound_NoWrite(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{data: successVerify("ref_abc", "order_missing", 5000)}
	receipts := &fakeReceipts{}
	svc := NewService(nil, store, gw, receipts)

	_, err := svc.VerifyPayment(context.Background(), "ref_abc")
	assert.ErrorIs(t, err, orders.ErrNotFound)
	assert.Equal(t, 0, store.markPaidCalls)
	assert.Equal(t, 0, receipts.count())
}

func TestVerifyPayment_EmptyOrderIDInMetadata(t *testing.T) {
	store := newFakeStore(unpaidOrder("order_1"))
	gw := &fakeGateway{data: successVerify("ref_abc", "", 5000)}
	svc := NewService(nil, store, gw, &fakeReceipts{})

	_, err := svc.VerifyPayment(context.Background(), "ref_abc")
	assert.ErrorIs(t, err, orders.ErrNotFound)
	assert.Equal(t, 0, store.markPaidCalls)
}

func TestVerifyPayment_GatewayErrorPropagates(t *testing.T) {
	store := newFakeStore(unpaidOrder("order_1"))
	gw := &fakeGateway{err: ErrGatewayUnreachable}
	receipts := &fakeReceipts{}
	svc := NewService(nil, store, gw, receipts)

	_, err := svc.VerifyPayment(context.Background(), "ref_abc")
	assert.ErrorIs(t, err, ErrGatewayUnreachable)
	assert.Equal(t, 0, store.markPaidCalls)
	assert.Equal(t, 0, receipts.count())
}

func TestVerifyPayment_Idempotent(t *testing.T) {
	store := newFakeStore(unpaidOrder("order_1"))
	gw := &fakeGateway{data: successVerify("ref_abc", "order_1", 150000)}
	receipts := &fakeReceipts{}
	svc := NewService(nil, store, gw, receipts)

	first, err := svc.VerifyPayment(context.Background(), "ref_abc")
	require.NoError(t, err)

	second, err := svc.VerifyPayment(context.Background(), "ref_abc")
	require.NoError(t, err)

	// one write, one receipt, unchanged payment result
	assert.Equal(t, 1, store.markPaidCalls)
	assert.Equal(t, 1, receipts.count())
	assert.Equal(t, *first.PaidAt, *second.PaidAt)
	assert.Equal(t, *first.PricePaid, *second.PricePaid)
	assert.Equal(t, *first.PaymentRef, *second.PaymentRef)
}

func TestVerifyPayment_ReceiptFailureIsSwallowed(t *testing.T) {
	store := newFakeStore(unpaidOrder("order_1"))
	gw := &fakeGateway{data: successVerify("ref_abc", "order_1", 150000)}
	receipts := &fakeReceipts{err: errors.New("smtp down")}
	svc := NewService(nil, store, gw, receipts)

	o, err := svc.VerifyPayment(context.Background(), "ref_abc")
	require.NoError(t, err)
	assert.True(t, o.IsPaid)
	assert.Equal(t, 1, store.markPaidCalls)
}

func TestPriceFromMinorUnits(t *testing.T) {
	assert.Equal(t, "1500.00", PriceFromMinorUnits(150000))
	assert.Equal(t, "0.05", PriceFromMinorUnits(5))
	assert.Equal(t, "0.00", PriceFromMinorUnits(0))
	assert.Equal(t, "19.99", PriceFromMinorUnits(1999))
}
