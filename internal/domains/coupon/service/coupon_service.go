package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"busticket-backend/internal/domains/coupon/model"
	"busticket-backend/internal/domains/coupon/repository"
	"busticket-backend/pkg/logger"
)

// =====================================================
// COUPON LEDGER IMPLEMENTATION
// =====================================================
type couponService struct {
	repo repository.CouponRepository
	now  func() time.Time
}

func NewCouponService(repo repository.CouponRepository) Service {
	return &couponService{
		repo: repo,
		now:  time.Now,
	}
}

// checkCoupon applies every local rule except the per-customer one.
// All checks are local; violated invariants come back as typed errors.
func (s *couponService) checkCoupon(coupon *model.Coupon) error {
	if coupon.Status != model.CouponStatusActive {
		return model.ErrCouponNotFound
	}
	if !coupon.IsWithinWindow(s.now()) {
		return model.ErrCouponExpired
	}
	if coupon.UsedCount >= coupon.MaxUses {
		return model.ErrCouponLimitReached
	}
	return nil
}

func (s *couponService) Validate(ctx context.Context, couponID, customerID uuid.UUID) error {
	coupon, err := s.repo.GetByID(ctx, couponID)
	if err != nil {
		return err
	}

	if err := s.checkCoupon(coupon); err != nil {
		return err
	}

	used, err := s.repo.HasActiveUsage(ctx, customerID, couponID)
	if err != nil {
		return fmt.Errorf("failed to check coupon usage: %w", err)
	}
	if used {
		return model.ErrCouponAlreadyUsed
	}

	return nil
}

// Apply re-runs validation under a row lock, then reserves the slot
// with the guarded increment. The increment happens at booking time,
// before payment succeeds; reconciliation either makes it permanent
// (RecordUsage) or gives it back (ReverseUsage).
func (s *couponService) Apply(
	ctx context.Context,
	couponID, customerID uuid.UUID,
	originAmount decimal.Decimal,
) (*model.ApplyResult, error) {
	if originAmount.IsNegative() {
		return nil, model.ErrInvalidAmount
	}

	used, err := s.repo.HasActiveUsage(ctx, customerID, couponID)
	if err != nil {
		return nil, fmt.Errorf("failed to check coupon usage: %w", err)
	}
	if used {
		return nil, model.ErrCouponAlreadyUsed
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.repo.RollbackTx(ctx, tx)

	coupon, err := s.repo.GetByIDForUpdate(ctx, tx, couponID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCoupon(coupon); err != nil {
		return nil, err
	}

	ok, err := s.repo.IncrementUsage(ctx, tx, couponID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race for the last slot
		return nil, model.ErrCouponLimitReached
	}

	if err := s.repo.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	discount := coupon.Discount(originAmount)

	return &model.ApplyResult{
		CouponID:       couponID,
		DiscountAmount: discount,
		FinalAmount:    originAmount.Sub(discount),
	}, nil
}

func (s *couponService) Preview(
	ctx context.Context,
	customerID uuid.UUID,
	req model.PreviewRequest,
) (*model.PreviewResponse, error) {
	couponID, err := uuid.Parse(req.CouponID)
	if err != nil {
		return nil, model.ErrCouponNotFound
	}

	if err := s.Validate(ctx, couponID, customerID); err != nil {
		if reason := model.Reason(err); reason != "" {
			return &model.PreviewResponse{Usable: false, Reason: reason}, nil
		}
		return nil, err
	}

	coupon, err := s.repo.GetByID(ctx, couponID)
	if err != nil {
		return nil, err
	}

	discount := coupon.Discount(req.OrderAmount)
	final := req.OrderAmount.Sub(discount)

	return &model.PreviewResponse{
		Usable:         true,
		DiscountAmount: &discount,
		FinalAmount:    &final,
	}, nil
}

func (s *couponService) RecordUsage(ctx context.Context, tx pgx.Tx, customerID, couponID, orderID uuid.UUID) error {
	usage := &model.CouponUsage{
		ID:         uuid.New(),
		CustomerID: customerID,
		CouponID:   couponID,
		OrderID:    orderID,
		UsedAt:     s.now(),
		IsActive:   true,
	}
	return s.repo.InsertUsage(ctx, tx, usage)
}

// ReverseUsage is guarded by is_active: the second call finds no active
// usage and decrements nothing.
func (s *couponService) ReverseUsage(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, couponID *uuid.UUID) error {
	usage, err := s.repo.GetActiveUsageByOrder(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if usage == nil {
		if couponID == nil {
			// No coupon on this order, or usage already reversed
			return nil
		}
		// The order reserved a slot at Apply time but never settled,
		// so there is no usage row to deactivate. Give the slot back.
		if err := s.repo.DecrementUsage(ctx, tx, *couponID); err != nil {
			return err
		}
		logger.Info("Coupon reservation released", map[string]interface{}{
			"order_id":  orderID,
			"coupon_id": *couponID,
		})
		return nil
	}

	if err := s.repo.DeactivateUsage(ctx, tx, usage.ID); err != nil {
		return err
	}
	if err := s.repo.DecrementUsage(ctx, tx, usage.CouponID); err != nil {
		return err
	}

	logger.Info("Coupon usage reversed", map[string]interface{}{
		"order_id":  orderID,
		"coupon_id": usage.CouponID,
	})
	return nil
}

func (s *couponService) ReleaseSlot(ctx context.Context, couponID uuid.UUID) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.repo.RollbackTx(ctx, tx)

	if err := s.repo.DecrementUsage(ctx, tx, couponID); err != nil {
		return err
	}

	return s.repo.CommitTx(ctx, tx)
}

// IsBusinessError reports whether the error is an expected ledger
// rejection as opposed to a storage failure.
func IsBusinessError(err error) bool {
	return errors.Is(err, model.ErrCouponNotFound) ||
		errors.Is(err, model.ErrCouponExpired) ||
		errors.Is(err, model.ErrCouponLimitReached) ||
		errors.Is(err, model.ErrCouponAlreadyUsed) ||
		errors.Is(err, model.ErrInvalidAmount)
}
