package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
)

// CreateBookingRequest is the inbound booking payload. The customer
// identity comes from the verified caller context, never the body.
type CreateBookingRequest struct {
	TripID         string          `json:"trip_id"`
	Seats          []string        `json:"seats"`
	PickupPointID  string          `json:"pickup_point_id"`
	DropoffPointID string          `json:"dropoff_point_id"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	CouponID       *string         `json:"coupon_id,omitempty"`
}

func (r CreateBookingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TripID, validation.Required, is.UUID),
		validation.Field(&r.Seats, validation.Required, validation.Length(1, 45),
			validation.Each(validation.Required, validation.Length(1, 8))),
		validation.Field(&r.PickupPointID, validation.Required, is.UUID),
		validation.Field(&r.DropoffPointID, validation.Required, is.UUID),
		validation.Field(&r.TotalPrice, validation.By(nonNegativeAmount)),
		validation.Field(&r.CouponID, is.UUID),
	)
}

func nonNegativeAmount(value interface{}) error {
	amount, ok := value.(decimal.Decimal)
	if !ok || amount.IsNegative() {
		return validation.NewError("validation_amount", "total price must be non-negative")
	}
	return nil
}

// TicketSummary is the slim per-seat view in the booking response
type TicketSummary struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	SeatCode  string `json:"seat_code"`
	QRPayload string `json:"qr_payload"`
	Status    string `json:"status"`
}

// CreateBookingResponse carries everything the client needs to send
// the customer to the payment gateway.
type CreateBookingResponse struct {
	OrderID        string          `json:"order_id"`
	Status         string          `json:"status"`
	OriginAmount   decimal.Decimal `json:"origin_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	Tickets        []TicketSummary `json:"tickets"`
	PaymentURL     string          `json:"payment_url"`
	CreatedAt      time.Time       `json:"created_at"`
}

// OrderStatusResponse backs the polling endpoint
type OrderStatusResponse struct {
	OrderID     string          `json:"order_id"`
	Status      string          `json:"status"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	Tickets     []TicketSummary `json:"tickets"`
	CreatedAt   time.Time       `json:"created_at"`
}
