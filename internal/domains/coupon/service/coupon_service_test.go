package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busticket-backend/internal/domains/coupon/model"
)

// fakeCouponRepo is an in-memory CouponRepository. Transactions are
// represented by a nil pgx.Tx; the fake applies writes immediately,
// which is enough for the single-goroutine service tests.
type fakeCouponRepo struct {
	coupons map[uuid.UUID]*model.Coupon
	usages  []*model.CouponUsage

	incrementCalls int
	decrementCalls int
	failIncrement  error
}

func newFakeCouponRepo(coupons ...*model.Coupon) *fakeCouponRepo {
	repo := &fakeCouponRepo{coupons: make(map[uuid.UUID]*model.Coupon)}
	for _, c := range coupons {
		repo.coupons[c.ID] = c
	}
	return repo
}

func (f *fakeCouponRepo) BeginTx(ctx context.Context) (pgx.Tx, error)     { return nil, nil }
func (f *fakeCouponRepo) CommitTx(ctx context.Context, tx pgx.Tx) error   { return nil }
func (f *fakeCouponRepo) RollbackTx(ctx context.Context, tx pgx.Tx) error { return nil }

func (f *fakeCouponRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	c, ok := f.coupons[id]
	if !ok {
		return nil, model.ErrCouponNotFound
	}
	return c, nil
}

func (f *fakeCouponRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Coupon, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeCouponRepo) IncrementUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	if f.failIncrement != nil {
		return false, f.failIncrement
	}
	f.incrementCalls++
	c, ok := f.coupons[id]
	if !ok {
		return false, model.ErrCouponNotFound
	}
	if c.UsedCount >= c.MaxUses {
		return false, nil
	}
	c.UsedCount++
	return true, nil
}

func (f *fakeCouponRepo) DecrementUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	f.decrementCalls++
	c, ok := f.coupons[id]
	if !ok {
		return model.ErrCouponNotFound
	}
	if c.UsedCount > 0 {
		c.UsedCount--
	}
	return nil
}

func (f *fakeCouponRepo) HasActiveUsage(ctx context.Context, customerID, couponID uuid.UUID) (bool, error) {
	for _, u := range f.usages {
		if u.IsActive && u.CustomerID == customerID && u.CouponID == couponID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCouponRepo) InsertUsage(ctx context.Context, tx pgx.Tx, usage *model.CouponUsage) error {
	f.usages = append(f.usages, usage)
	return nil
}

func (f *fakeCouponRepo) GetActiveUsageByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.CouponUsage, error) {
	for _, u := range f.usages {
		if u.IsActive && u.OrderID == orderID {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeCouponRepo) DeactivateUsage(ctx context.Context, tx pgx.Tx, usageID uuid.UUID) error {
	for _, u := range f.usages {
		if u.ID == usageID {
			u.IsActive = false
			return nil
		}
	}
	return errors.New("usage not found")
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *fakeCouponRepo) *couponService {
	return &couponService{
		repo: repo,
		now:  func() time.Time { return testNow },
	}
}

func percentCoupon(value int64, cap *decimal.Decimal) *model.Coupon {
	return &model.Coupon{
		ID:               uuid.New(),
		Code:             "SUMMER10",
		DiscountType:     model.DiscountTypePercent,
		DiscountValue:    decimal.NewFromInt(value),
		MaxDiscountValue: cap,
		MaxUses:          100,
		ValidFrom:        testNow.Add(-24 * time.Hour),
		ValidTo:          testNow.Add(24 * time.Hour),
		Status:           model.CouponStatusActive,
	}
}

func TestApply_PercentWithCap(t *testing.T) {
	cap := decimal.NewFromInt(50000)
	coupon := percentCoupon(10, &cap)
	repo := newFakeCouponRepo(coupon)
	svc := newTestService(repo)

	// 10% of 600000 is 60000, capped at 50000
	result, err := svc.Apply(context.Background(), coupon.ID, uuid.New(), decimal.NewFromInt(600000))
	require.NoError(t, err)

	assert.True(t, result.DiscountAmount.Equal(decimal.NewFromInt(50000)),
		"discount = %s", result.DiscountAmount)
	assert.True(t, result.FinalAmount.Equal(decimal.NewFromInt(550000)),
		"final = %s", result.FinalAmount)
	assert.Equal(t, 1, coupon.UsedCount)
}

func TestApply_FixedNeverExceedsOrigin(t *testing.T) {
	coupon := percentCoupon(0, nil)
	coupon.DiscountType = model.DiscountTypeFixed
	coupon.DiscountValue = decimal.NewFromInt(80000)
	repo := newFakeCouponRepo(coupon)
	svc := newTestService(repo)

	result, err := svc.Apply(context.Background(), coupon.ID, uuid.New(), decimal.NewFromInt(60000))
	require.NoError(t, err)

	assert.True(t, result.DiscountAmount.Equal(decimal.NewFromInt(60000)))
	assert.True(t, result.FinalAmount.IsZero())
}

func TestApply_NegativeAmount(t *testing.T) {
	coupon := percentCoupon(10, nil)
	svc := newTestService(newFakeCouponRepo(coupon))

	_, err := svc.Apply(context.Background(), coupon.ID, uuid.New(), decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, model.ErrInvalidAmount)
}

func TestApply_UnknownCoupon(t *testing.T) {
	svc := newTestService(newFakeCouponRepo())

	_, err := svc.Apply(context.Background(), uuid.New(), uuid.New(), decimal.NewFromInt(100000))
	assert.ErrorIs(t, err, model.ErrCouponNotFound)
}

func TestApply_InactiveCouponReadsAsNotFound(t *testing.T) {
	coupon := percentCoupon(10, nil)
	coupon.Status = model.CouponStatusInactive
	svc := newTestService(newFakeCouponRepo(coupon))

	_, err := svc.Apply(context.Background(), coupon.ID, uuid.New(), decimal.NewFromInt(100000))
	assert.ErrorIs(t, err, model.ErrCouponNotFound)
}

func TestApply_OutsideValidityWindow(t *testing.T) {
	coupon := percentCoupon(10, nil)
	coupon.ValidTo = testNow.Add(-time.Hour)
	svc := newTestService(newFakeCouponRepo(coupon))

	_, err := svc.Apply(context.Background(), coupon.ID, uuid.New(), decimal.NewFromInt(100000))
	assert.ErrorIs(t, err, model.ErrCouponExpired)
}

func TestApply_LimitReached(t *testing.T) {
	coupon := percentCoupon(10, nil)
	coupon.MaxUses = 2
	coupon.UsedCount = 2
	repo := newFakeCouponRepo(coupon)
	svc := newTestService(repo)

	_, err := svc.Apply(context.Background(), coupon.ID, uuid.New(), decimal.NewFromInt(100000))
	assert.ErrorIs(t, err, model.ErrCouponLimitReached)
	assert.Equal(t, 2, coupon.UsedCount, "a rejected apply must not consume a slot")
}

func TestApply_AlreadyUsedByCustomer(t *testing.T) {
	coupon := percentCoupon(10, nil)
	customerID := uuid.New()
	repo := newFakeCouponRepo(coupon)
	repo.usages = append(repo.usages, &model.CouponUsage{
		ID:         uuid.New(),
		CustomerID: customerID,
		CouponID:   coupon.ID,
		OrderID:    uuid.New(),
		IsActive:   true,
	})
	svc := newTestService(repo)

	_, err := svc.Apply(context.Background(), coupon.ID, customerID, decimal.NewFromInt(100000))
	assert.ErrorIs(t, err, model.ErrCouponAlreadyUsed)

	// A different customer is unaffected
	_, err = svc.Apply(context.Background(), coupon.ID, uuid.New(), decimal.NewFromInt(100000))
	assert.NoError(t, err)
}

func TestApply_ZeroOriginYieldsZeroDiscount(t *testing.T) {
	coupon := percentCoupon(10, nil)
	svc := newTestService(newFakeCouponRepo(coupon))

	result, err := svc.Apply(context.Background(), coupon.ID, uuid.New(), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, result.DiscountAmount.IsZero())
	assert.True(t, result.FinalAmount.IsZero())
}

func TestReverseUsage_DeactivatesAndRestoresSlot(t *testing.T) {
	coupon := percentCoupon(10, nil)
	coupon.UsedCount = 1
	orderID := uuid.New()
	repo := newFakeCouponRepo(coupon)
	repo.usages = append(repo.usages, &model.CouponUsage{
		ID:       uuid.New(),
		CouponID: coupon.ID,
		OrderID:  orderID,
		IsActive: true,
	})
	svc := newTestService(repo)

	require.NoError(t, svc.ReverseUsage(context.Background(), nil, orderID, nil))
	assert.Equal(t, 0, coupon.UsedCount)
	assert.False(t, repo.usages[0].IsActive)

	// Second call finds no active usage and changes nothing
	require.NoError(t, svc.ReverseUsage(context.Background(), nil, orderID, nil))
	assert.Equal(t, 0, coupon.UsedCount)
}

func TestReverseUsage_ReleasesReservationWithoutUsageRow(t *testing.T) {
	coupon := percentCoupon(10, nil)
	coupon.UsedCount = 1 // reserved at apply time, never settled
	repo := newFakeCouponRepo(coupon)
	svc := newTestService(repo)

	require.NoError(t, svc.ReverseUsage(context.Background(), nil, uuid.New(), &coupon.ID))
	assert.Equal(t, 0, coupon.UsedCount)
}

func TestReverseUsage_NoCouponIsNoop(t *testing.T) {
	repo := newFakeCouponRepo()
	svc := newTestService(repo)

	require.NoError(t, svc.ReverseUsage(context.Background(), nil, uuid.New(), nil))
	assert.Zero(t, repo.decrementCalls)
}

func TestRecordUsage_InsertsActiveRow(t *testing.T) {
	coupon := percentCoupon(10, nil)
	repo := newFakeCouponRepo(coupon)
	svc := newTestService(repo)

	customerID, orderID := uuid.New(), uuid.New()
	require.NoError(t, svc.RecordUsage(context.Background(), nil, customerID, coupon.ID, orderID))

	require.Len(t, repo.usages, 1)
	assert.True(t, repo.usages[0].IsActive)
	assert.Equal(t, orderID, repo.usages[0].OrderID)
	assert.Equal(t, testNow, repo.usages[0].UsedAt)
}

func TestPreview_ReportsReasonWithoutSideEffects(t *testing.T) {
	coupon := percentCoupon(10, nil)
	coupon.ValidTo = testNow.Add(-time.Hour)
	repo := newFakeCouponRepo(coupon)
	svc := newTestService(repo)

	resp, err := svc.Preview(context.Background(), uuid.New(), model.PreviewRequest{
		CouponID:    coupon.ID.String(),
		OrderAmount: decimal.NewFromInt(100000),
	})
	require.NoError(t, err)
	assert.False(t, resp.Usable)
	assert.Equal(t, "EXPIRED", resp.Reason)
	assert.Zero(t, repo.incrementCalls)
}

func TestPreview_UsableComputesAmounts(t *testing.T) {
	cap := decimal.NewFromInt(50000)
	coupon := percentCoupon(10, &cap)
	repo := newFakeCouponRepo(coupon)
	svc := newTestService(repo)

	resp, err := svc.Preview(context.Background(), uuid.New(), model.PreviewRequest{
		CouponID:    coupon.ID.String(),
		OrderAmount: decimal.NewFromInt(600000),
	})
	require.NoError(t, err)
	assert.True(t, resp.Usable)
	require.NotNil(t, resp.DiscountAmount)
	assert.True(t, resp.DiscountAmount.Equal(decimal.NewFromInt(50000)))
	assert.True(t, resp.FinalAmount.Equal(decimal.NewFromInt(550000)))
	assert.Zero(t, repo.incrementCalls, "preview must not reserve a slot")
}

func TestReleaseSlot_RestoresReservation(t *testing.T) {
	coupon := percentCoupon(10, nil)
	coupon.UsedCount = 3
	repo := newFakeCouponRepo(coupon)
	svc := newTestService(repo)

	require.NoError(t, svc.ReleaseSlot(context.Background(), coupon.ID))
	assert.Equal(t, 2, coupon.UsedCount)
}
