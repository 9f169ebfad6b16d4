package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"busticket-backend/internal/domains/booking/model"
	"busticket-backend/internal/domains/booking/repository"
	couponService "busticket-backend/internal/domains/coupon/service"
	"busticket-backend/internal/domains/payment/gateway"
	"busticket-backend/internal/shared/middleware"
	"busticket-backend/pkg/logger"
)

// =====================================================
// BOOKING WRITER IMPLEMENTATION
// =====================================================
type bookingService struct {
	repo       repository.BookingRepository
	coupons    couponService.Service
	gateway    gateway.PaymentGateway
	seatLocker SeatLocker
}

func NewBookingService(
	repo repository.BookingRepository,
	coupons couponService.Service,
	gw gateway.PaymentGateway,
	seatLocker SeatLocker,
) Service {
	return &bookingService{
		repo:       repo,
		coupons:    coupons,
		gateway:    gw,
		seatLocker: seatLocker,
	}
}

// CreateBooking persists the Order and its Tickets in one storage
// transaction, all-or-nothing.
//
// Flow:
//  1. Validate and normalize the seat selection
//  2. Take short-lived advisory locks per (trip, seat)
//  3. Apply the coupon (reserves the usage slot optimistically)
//  4. Insert Order (pending) + one Ticket per seat (pending)
//  5. Build the signed gateway redirect URL
//
// If step 4 fails after step 3 reserved a slot, the slot is released
// so the optimistic increment cannot leak.
func (s *bookingService) CreateBooking(
	ctx context.Context,
	customerID uuid.UUID,
	req model.CreateBookingRequest,
) (*model.CreateBookingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewBookingError("VALIDATION_ERROR", "Invalid booking request", err)
	}

	seats, err := normalizeSeats(req.Seats)
	if err != nil {
		return nil, err
	}

	tripID, _ := uuid.Parse(req.TripID)
	pickupID, _ := uuid.Parse(req.PickupPointID)
	dropoffID, _ := uuid.Parse(req.DropoffPointID)

	orderID := uuid.New()

	// Step 2: advisory locks, released on every exit path
	conflict, err := s.seatLocker.LockSeats(ctx, tripID, seats, orderID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to lock seats: %w", err)
	}
	if conflict != "" {
		return nil, fmt.Errorf("seat %s: %w", conflict, model.ErrSeatTaken)
	}
	defer s.seatLocker.UnlockSeats(ctx, tripID, seats, orderID.String())

	// Step 3: optional coupon
	originAmount := req.TotalPrice
	finalAmount := originAmount
	discountAmount := decimal.Zero
	var couponID *uuid.UUID

	if req.CouponID != nil {
		id, parseErr := uuid.Parse(*req.CouponID)
		if parseErr != nil {
			return nil, model.NewBookingError("VALIDATION_ERROR", "Invalid coupon id", parseErr)
		}
		applied, applyErr := s.coupons.Apply(ctx, id, customerID, originAmount)
		if applyErr != nil {
			return nil, applyErr
		}
		couponID = &id
		discountAmount = applied.DiscountAmount
		finalAmount = applied.FinalAmount
	}

	// Step 4: persist the aggregate
	order := &model.Order{
		ID:           orderID,
		CustomerID:   customerID,
		CouponID:     couponID,
		OriginAmount: originAmount,
		FinalAmount:  finalAmount,
		Status:       model.OrderStatusPending,
	}

	tickets, err := buildTickets(order, tripID, seats, pickupID, dropoffID)
	if err != nil {
		s.releaseCouponSlot(ctx, couponID)
		return nil, err
	}

	if err := s.persistBooking(ctx, order, tickets); err != nil {
		s.releaseCouponSlot(ctx, couponID)
		return nil, err
	}

	// Step 5: gateway redirect. The order is already durable; if URL
	// generation fails the expiry sweep will reconcile it as failed.
	paymentURL, err := s.gateway.BuildPaymentURL(ctx, gateway.PaymentURLRequest{
		OrderID:   order.ID.String(),
		Amount:    order.FinalAmount,
		OrderInfo: fmt.Sprintf("Bus ticket order %s", order.ID),
		ClientIP:  middleware.GetClientIPFromContext(ctx),
	})
	if err != nil {
		logger.ErrorWithFields("Failed to build payment URL", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return nil, fmt.Errorf("failed to build payment URL: %w", err)
	}

	logger.Info("Booking created", map[string]interface{}{
		"order_id":    order.ID,
		"customer_id": customerID,
		"trip_id":     tripID,
		"seats":       seats,
	})

	return &model.CreateBookingResponse{
		OrderID:        order.ID.String(),
		Status:         string(order.Status),
		OriginAmount:   originAmount,
		DiscountAmount: discountAmount,
		FinalAmount:    finalAmount,
		Tickets:        ticketSummaries(tickets),
		PaymentURL:     paymentURL,
		CreatedAt:      order.CreatedAt,
	}, nil
}

func (s *bookingService) persistBooking(ctx context.Context, order *model.Order, tickets []*model.Ticket) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.repo.RollbackTx(ctx, tx)

	// Fast pre-check inside the transaction; the unique index still
	// backs it up against inserts we cannot see yet.
	taken, err := s.repo.TakenSeats(ctx, tx, tickets[0].TripID, seatCodes(tickets))
	if err != nil {
		return err
	}
	if len(taken) > 0 {
		return fmt.Errorf("seat %s: %w", taken[0], model.ErrSeatTaken)
	}

	if err := s.repo.CreateOrder(ctx, tx, order); err != nil {
		return err
	}
	if err := s.repo.CreateTickets(ctx, tx, tickets); err != nil {
		return err
	}

	if err := s.repo.CommitTx(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil
}

func (s *bookingService) releaseCouponSlot(ctx context.Context, couponID *uuid.UUID) {
	if couponID == nil {
		return
	}
	if err := s.coupons.ReleaseSlot(ctx, *couponID); err != nil {
		logger.ErrorWithFields("Failed to release coupon slot", err, map[string]interface{}{
			"coupon_id": *couponID,
		})
	}
}

func (s *bookingService) GetOrderStatus(ctx context.Context, customerID, orderID uuid.UUID) (*model.OrderStatusResponse, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, model.ErrUnauthorized
	}

	tickets, err := s.repo.GetTicketsByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &model.OrderStatusResponse{
		OrderID:     order.ID.String(),
		Status:      string(order.Status),
		FinalAmount: order.FinalAmount,
		Tickets:     ticketSummaries(tickets),
		CreatedAt:   order.CreatedAt,
	}, nil
}

// =====================================================
// HELPERS
// =====================================================

func normalizeSeats(raw []string) ([]string, error) {
	seats := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, seat := range raw {
		seat = strings.ToUpper(strings.TrimSpace(seat))
		if seat == "" {
			continue
		}
		if seen[seat] {
			return nil, fmt.Errorf("seat %s: %w", seat, model.ErrDuplicateSeat)
		}
		seen[seat] = true
		seats = append(seats, seat)
	}
	if len(seats) == 0 {
		return nil, model.ErrNoSeats
	}
	return seats, nil
}

func buildTickets(order *model.Order, tripID uuid.UUID, seats []string, pickupID, dropoffID uuid.UUID) ([]*model.Ticket, error) {
	tickets := make([]*model.Ticket, 0, len(seats))
	for _, seat := range seats {
		code, err := model.NewTicketCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate ticket code: %w", err)
		}
		tickets = append(tickets, &model.Ticket{
			ID:             uuid.New(),
			Code:           code,
			OrderID:        order.ID,
			TripID:         tripID,
			SeatCode:       seat,
			PickupPointID:  pickupID,
			DropoffPointID: dropoffID,
			QRPayload:      model.QRPayloadFor(code),
			Status:         model.TicketStatusPending,
		})
	}
	return tickets, nil
}

func seatCodes(tickets []*model.Ticket) []string {
	codes := make([]string, 0, len(tickets))
	for _, t := range tickets {
		codes = append(codes, t.SeatCode)
	}
	return codes
}

func ticketSummaries(tickets []*model.Ticket) []model.TicketSummary {
	summaries := make([]model.TicketSummary, 0, len(tickets))
	for _, t := range tickets {
		summaries = append(summaries, model.TicketSummary{
			ID:        t.ID.String(),
			Code:      t.Code,
			SeatCode:  t.SeatCode,
			QRPayload: t.QRPayload,
			Status:    string(t.Status),
		})
	}
	return summaries
}

// IsBusinessError reports whether the error is an expected booking
// rejection rather than a storage failure.
func IsBusinessError(err error) bool {
	return errors.Is(err, model.ErrSeatTaken) ||
		errors.Is(err, model.ErrNoSeats) ||
		errors.Is(err, model.ErrDuplicateSeat)
}
