package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingModel "busticket-backend/internal/domains/booking/model"
	couponModel "busticket-backend/internal/domains/coupon/model"
	"busticket-backend/internal/domains/payment/gateway/vnpay"
	"busticket-backend/internal/domains/payment/model"
)

// =====================================================
// FAKES
// =====================================================

type fakeReconcileRepo struct {
	orders       map[uuid.UUID]*bookingModel.Order
	ticketStates map[uuid.UUID]bookingModel.TicketStatus // by order id
	transactions []*model.Transaction
	expiredIDs   []uuid.UUID
	commits      int
}

func newFakeReconcileRepo(orders ...*bookingModel.Order) *fakeReconcileRepo {
	repo := &fakeReconcileRepo{
		orders:       make(map[uuid.UUID]*bookingModel.Order),
		ticketStates: make(map[uuid.UUID]bookingModel.TicketStatus),
	}
	for _, o := range orders {
		repo.orders[o.ID] = o
		repo.ticketStates[o.ID] = bookingModel.TicketStatusPending
	}
	return repo
}

func (f *fakeReconcileRepo) BeginTx(ctx context.Context) (pgx.Tx, error)     { return nil, nil }
func (f *fakeReconcileRepo) CommitTx(ctx context.Context, tx pgx.Tx) error   { f.commits++; return nil }
func (f *fakeReconcileRepo) RollbackTx(ctx context.Context, tx pgx.Tx) error { return nil }

func (f *fakeReconcileRepo) GetOrderForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*bookingModel.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeReconcileRepo) UpdateOrderStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status bookingModel.OrderStatus) error {
	f.orders[orderID].Status = status
	return nil
}

func (f *fakeReconcileRepo) UpdateTicketStatusByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, from, to bookingModel.TicketStatus) error {
	if f.ticketStates[orderID] == from {
		f.ticketStates[orderID] = to
	}
	return nil
}

func (f *fakeReconcileRepo) InsertTransaction(ctx context.Context, tx pgx.Tx, txn *model.Transaction) error {
	f.transactions = append(f.transactions, txn)
	return nil
}

func (f *fakeReconcileRepo) ListExpiredPendingOrders(ctx context.Context, olderThan time.Time, limit int) ([]uuid.UUID, error) {
	return f.expiredIDs, nil
}

type fakeLedger struct {
	recorded []uuid.UUID // order ids
	reversed []uuid.UUID // order ids
}

func (f *fakeLedger) Validate(ctx context.Context, couponID, customerID uuid.UUID) error { return nil }

func (f *fakeLedger) Apply(ctx context.Context, couponID, customerID uuid.UUID, origin decimal.Decimal) (*couponModel.ApplyResult, error) {
	return nil, nil
}

func (f *fakeLedger) Preview(ctx context.Context, customerID uuid.UUID, req couponModel.PreviewRequest) (*couponModel.PreviewResponse, error) {
	return nil, nil
}

func (f *fakeLedger) RecordUsage(ctx context.Context, tx pgx.Tx, customerID, couponID, orderID uuid.UUID) error {
	f.recorded = append(f.recorded, orderID)
	return nil
}

func (f *fakeLedger) ReverseUsage(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, couponID *uuid.UUID) error {
	f.reversed = append(f.reversed, orderID)
	return nil
}

func (f *fakeLedger) ReleaseSlot(ctx context.Context, couponID uuid.UUID) error { return nil }

// =====================================================
// FIXTURE
// =====================================================

const testHashSecret = "RECONCILESECRET99"

var fixtureNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newFixtureGateway(t *testing.T) *vnpay.Gateway {
	t.Helper()
	gw, err := vnpay.NewGateway(vnpay.NewConfig(
		"TESTTMN1",
		testHashSecret,
		"https://sandbox.vnpayment.vn/paymentv2",
		"http://localhost:8080/api/v1/payments/vnpay/return",
	))
	require.NoError(t, err)
	return gw
}

func pendingOrder(finalAmount int64, couponID *uuid.UUID) *bookingModel.Order {
	return &bookingModel.Order{
		ID:           uuid.New(),
		CustomerID:   uuid.New(),
		CouponID:     couponID,
		OriginAmount: decimal.NewFromInt(finalAmount),
		FinalAmount:  decimal.NewFromInt(finalAmount),
		Status:       bookingModel.OrderStatusPending,
	}
}

func newReconcileFixture(t *testing.T, orders ...*bookingModel.Order) (*reconcileService, *fakeReconcileRepo, *fakeLedger) {
	repo := newFakeReconcileRepo(orders...)
	ledger := &fakeLedger{}
	svc := &reconcileService{
		repo:            repo,
		coupons:         ledger,
		gateway:         newFixtureGateway(t),
		pendingOrderTTL: 15 * time.Minute,
		sweepBatchSize:  100,
		now:             func() time.Time { return fixtureNow },
	}
	return svc, repo, ledger
}

// callbackFor signs a callback for the order with the given response code
func callbackFor(order *bookingModel.Order, responseCode string) url.Values {
	params := map[string]string{
		"vnp_TxnRef":        order.ID.String(),
		"vnp_Amount":        order.FinalAmount.Mul(decimal.NewFromInt(100)).StringFixed(0),
		"vnp_ResponseCode":  responseCode,
		"vnp_TransactionNo": "14226112",
	}
	params["vnp_SecureHash"] = vnpay.Sign(params, testHashSecret)

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values
}

// =====================================================
// TESTS
// =====================================================

func TestProcessCallback_SuccessSettlesOrder(t *testing.T) {
	couponID := uuid.New()
	order := pendingOrder(550000, &couponID)
	svc, repo, ledger := newReconcileFixture(t, order)

	result, err := svc.ProcessCallback(context.Background(), callbackFor(order, "00"))
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeCompleted, result.Outcome)
	assert.Equal(t, "completed", result.FinalStatus)
	assert.Equal(t, bookingModel.OrderStatusCompleted, order.Status)
	assert.Equal(t, bookingModel.TicketStatusValid, repo.ticketStates[order.ID])

	require.Len(t, repo.transactions, 1)
	assert.Equal(t, order.ID, repo.transactions[0].OrderID)
	assert.Equal(t, "vnpay", repo.transactions[0].PaymentMethod)
	assert.True(t, repo.transactions[0].Amount.Equal(order.FinalAmount))

	assert.Equal(t, []uuid.UUID{order.ID}, ledger.recorded)
	assert.Empty(t, ledger.reversed)
}

func TestProcessCallback_DeclinedFailsOrder(t *testing.T) {
	couponID := uuid.New()
	order := pendingOrder(550000, &couponID)
	svc, repo, ledger := newReconcileFixture(t, order)

	result, err := svc.ProcessCallback(context.Background(), callbackFor(order, "24"))
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeFailed, result.Outcome)
	assert.Equal(t, bookingModel.OrderStatusFailed, order.Status)
	assert.Equal(t, bookingModel.TicketStatusCancelled, repo.ticketStates[order.ID])
	assert.Empty(t, repo.transactions, "a failed payment never writes a transaction")
	assert.Equal(t, []uuid.UUID{order.ID}, ledger.reversed)
}

func TestProcessCallback_DuplicateDeliveryIsNoop(t *testing.T) {
	order := pendingOrder(550000, nil)
	svc, repo, ledger := newReconcileFixture(t, order)

	_, err := svc.ProcessCallback(context.Background(), callbackFor(order, "00"))
	require.NoError(t, err)

	// Second delivery of the same success
	result, err := svc.ProcessCallback(context.Background(), callbackFor(order, "00"))
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeAlreadyProcessed, result.Outcome)
	assert.Equal(t, "completed", result.FinalStatus)
	assert.Len(t, repo.transactions, 1, "duplicate delivery must not write a second transaction")
	assert.Empty(t, ledger.reversed)
}

func TestProcessCallback_FailureAfterSuccessIsNoop(t *testing.T) {
	order := pendingOrder(550000, nil)
	svc, repo, _ := newReconcileFixture(t, order)

	_, err := svc.ProcessCallback(context.Background(), callbackFor(order, "00"))
	require.NoError(t, err)

	// A late failure delivery cannot flip a completed order
	result, err := svc.ProcessCallback(context.Background(), callbackFor(order, "24"))
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeAlreadyProcessed, result.Outcome)
	assert.Equal(t, bookingModel.OrderStatusCompleted, order.Status)
	assert.Equal(t, bookingModel.TicketStatusValid, repo.ticketStates[order.ID])
}

func TestProcessCallback_BadSignatureRejectedBeforeAnyWrite(t *testing.T) {
	order := pendingOrder(550000, nil)
	svc, repo, _ := newReconcileFixture(t, order)

	values := callbackFor(order, "00")
	values.Set("vnp_Amount", "1") // tamper after signing

	_, err := svc.ProcessCallback(context.Background(), values)
	assert.ErrorIs(t, err, vnpay.ErrInvalidSignature)

	assert.Equal(t, bookingModel.OrderStatusPending, order.Status)
	assert.Zero(t, repo.commits, "a forged callback must not reach the storage layer")
}

func TestProcessCallback_UnknownOrder(t *testing.T) {
	svc, _, _ := newReconcileFixture(t)

	ghost := pendingOrder(1000, nil)
	_, err := svc.ProcessCallback(context.Background(), callbackFor(ghost, "00"))
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestProcessCallback_NonUUIDOrderRef(t *testing.T) {
	svc, _, _ := newReconcileFixture(t)

	params := map[string]string{
		"vnp_TxnRef":       "not-an-order",
		"vnp_Amount":       "100000",
		"vnp_ResponseCode": "00",
	}
	params["vnp_SecureHash"] = vnpay.Sign(params, testHashSecret)
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	_, err := svc.ProcessCallback(context.Background(), values)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestExpireOrder_FailsPendingOrder(t *testing.T) {
	couponID := uuid.New()
	order := pendingOrder(550000, &couponID)
	svc, repo, ledger := newReconcileFixture(t, order)

	result, err := svc.ExpireOrder(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeFailed, result.Outcome)
	assert.Equal(t, bookingModel.OrderStatusFailed, order.Status)
	assert.Equal(t, bookingModel.TicketStatusCancelled, repo.ticketStates[order.ID])
	assert.Equal(t, []uuid.UUID{order.ID}, ledger.reversed)
}

func TestSweepExpired(t *testing.T) {
	stale1 := pendingOrder(1000, nil)
	stale2 := pendingOrder(2000, nil)
	settled := pendingOrder(3000, nil)
	settled.Status = bookingModel.OrderStatusCompleted

	svc, repo, _ := newReconcileFixture(t, stale1, stale2, settled)
	// The query would only return pending rows; the settled one models
	// an order that completed between listing and locking.
	repo.expiredIDs = []uuid.UUID{stale1.ID, stale2.ID, settled.ID}

	expired, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, expired)
	assert.Equal(t, bookingModel.OrderStatusFailed, stale1.Status)
	assert.Equal(t, bookingModel.OrderStatusFailed, stale2.Status)
	assert.Equal(t, bookingModel.OrderStatusCompleted, settled.Status,
		"a terminal order is left untouched by the sweep")
}
