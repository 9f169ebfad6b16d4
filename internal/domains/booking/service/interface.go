package service

import (
	"context"

	"github.com/google/uuid"

	"busticket-backend/internal/domains/booking/model"
)

// Service is the Booking Writer: it turns a seat selection and an
// optional coupon into a durably persisted pending order plus a signed
// payment redirect.
type Service interface {
	CreateBooking(ctx context.Context, customerID uuid.UUID, req model.CreateBookingRequest) (*model.CreateBookingResponse, error)
	GetOrderStatus(ctx context.Context, customerID, orderID uuid.UUID) (*model.OrderStatusResponse, error)
}
