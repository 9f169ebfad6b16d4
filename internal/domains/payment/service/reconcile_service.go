package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	bookingModel "busticket-backend/internal/domains/booking/model"
	couponService "busticket-backend/internal/domains/coupon/service"
	"busticket-backend/internal/domains/payment/gateway"
	"busticket-backend/internal/domains/payment/model"
	"busticket-backend/internal/domains/payment/repository"
	"busticket-backend/pkg/logger"
)

// =====================================================
// RECONCILIATION STATE MACHINE
// =====================================================
//
// Order:  pending -> {completed, failed}   (terminal)
// Ticket: pending -> {valid, cancelled}
//
// Every transition runs inside one storage transaction with the order
// row locked, so a redelivered callback observes the terminal state
// and backs off without writing anything.
type reconcileService struct {
	repo            repository.ReconciliationRepository
	coupons         couponService.Service
	gateway         gateway.PaymentGateway
	pendingOrderTTL time.Duration
	sweepBatchSize  int
	now             func() time.Time
}

func NewReconcileService(
	repo repository.ReconciliationRepository,
	coupons couponService.Service,
	gw gateway.PaymentGateway,
	pendingOrderTTL time.Duration,
) Service {
	return &reconcileService{
		repo:            repo,
		coupons:         coupons,
		gateway:         gw,
		pendingOrderTTL: pendingOrderTTL,
		sweepBatchSize:  100,
		now:             time.Now,
	}
}

// ProcessCallback verifies, then transitions.
//
// The signature check happens before any other field is read: a forged
// callback must not be able to fail (or complete) anyone's order.
func (s *reconcileService) ProcessCallback(ctx context.Context, params url.Values) (*model.ReconcileResult, error) {
	cb, err := s.gateway.VerifyCallback(params)
	if err != nil {
		logger.Warn("Rejected gateway callback", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	orderID, err := uuid.Parse(cb.OrderRef)
	if err != nil {
		return nil, fmt.Errorf("invalid order reference %q: %w", cb.OrderRef, model.ErrOrderNotFound)
	}

	if cb.Success {
		return s.reconcile(ctx, orderID, func(ctx context.Context, tx pgx.Tx, order *bookingModel.Order) error {
			return s.applySuccess(ctx, tx, order, cb)
		}, model.OutcomeCompleted)
	}

	logger.Info("Gateway reported payment failure", map[string]interface{}{
		"order_id":      orderID,
		"response_code": cb.ResponseCode,
	})
	return s.reconcile(ctx, orderID, s.applyFailure, model.OutcomeFailed)
}

func (s *reconcileService) ExpireOrder(ctx context.Context, orderID uuid.UUID) (*model.ReconcileResult, error) {
	return s.reconcile(ctx, orderID, s.applyFailure, model.OutcomeFailed)
}

func (s *reconcileService) SweepExpired(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.pendingOrderTTL)
	ids, err := s.repo.ListExpiredPendingOrders(ctx, cutoff, s.sweepBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		if _, err := s.ExpireOrder(ctx, id); err != nil {
			logger.ErrorWithFields("Failed to expire pending order", err, map[string]interface{}{
				"order_id": id,
			})
			continue
		}
		expired++
	}
	return expired, nil
}

type transition func(ctx context.Context, tx pgx.Tx, order *bookingModel.Order) error

// reconcile runs one transition under the order row lock. Terminal
// orders short-circuit before any write, which is what makes duplicate
// deliveries harmless.
func (s *reconcileService) reconcile(
	ctx context.Context,
	orderID uuid.UUID,
	apply transition,
	outcome model.ReconcileOutcome,
) (*model.ReconcileResult, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.repo.RollbackTx(ctx, tx)

	order, err := s.repo.GetOrderForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if order.IsTerminal() {
		return &model.ReconcileResult{
			OrderID:     order.ID,
			Outcome:     model.OutcomeAlreadyProcessed,
			FinalStatus: string(order.Status),
		}, nil
	}

	if err := apply(ctx, tx, order); err != nil {
		return nil, err
	}

	if err := s.repo.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit reconciliation: %w", err)
	}

	final := bookingModel.OrderStatusCompleted
	if outcome == model.OutcomeFailed {
		final = bookingModel.OrderStatusFailed
	}

	logger.Info("Order reconciled", map[string]interface{}{
		"order_id": order.ID,
		"status":   final,
	})

	return &model.ReconcileResult{
		OrderID:     order.ID,
		Outcome:     outcome,
		FinalStatus: string(final),
	}, nil
}

// applySuccess settles the order: completed order, valid tickets, one
// transaction row, and the permanent coupon usage if one was applied.
func (s *reconcileService) applySuccess(ctx context.Context, tx pgx.Tx, order *bookingModel.Order, cb *gateway.CallbackData) error {
	if !cb.Amount.Equal(order.FinalAmount) {
		logger.Warn("Callback amount differs from order amount", map[string]interface{}{
			"order_id":        order.ID,
			"callback_amount": cb.Amount,
			"order_amount":    order.FinalAmount,
		})
	}

	if err := s.repo.UpdateOrderStatus(ctx, tx, order.ID, bookingModel.OrderStatusCompleted); err != nil {
		return err
	}
	if err := s.repo.UpdateTicketStatusByOrder(ctx, tx, order.ID, bookingModel.TicketStatusPending, bookingModel.TicketStatusValid); err != nil {
		return err
	}

	txn := &model.Transaction{
		ID:            uuid.New(),
		OrderID:       order.ID,
		Amount:        order.FinalAmount,
		PaymentMethod: s.gateway.Name(),
		Status:        model.TransactionStatusCompleted,
	}
	if err := s.repo.InsertTransaction(ctx, tx, txn); err != nil {
		return err
	}

	if order.CouponID != nil {
		if err := s.coupons.RecordUsage(ctx, tx, order.CustomerID, *order.CouponID, order.ID); err != nil {
			return err
		}
	}
	return nil
}

// applyFailure cancels the order and gives back the coupon slot.
// ReverseUsage is unconditional; it no-ops when there is nothing to
// reverse.
func (s *reconcileService) applyFailure(ctx context.Context, tx pgx.Tx, order *bookingModel.Order) error {
	if err := s.repo.UpdateOrderStatus(ctx, tx, order.ID, bookingModel.OrderStatusFailed); err != nil {
		return err
	}
	if err := s.repo.UpdateTicketStatusByOrder(ctx, tx, order.ID, bookingModel.TicketStatusPending, bookingModel.TicketStatusCancelled); err != nil {
		return err
	}
	return s.coupons.ReverseUsage(ctx, tx, order.ID, order.CouponID)
}
