package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketDetail is the read projection returned by lookup endpoints.
// It denormalizes the ticket with its order, payment and coupon so a
// single query answers the whole receipt.
type TicketDetail struct {
	TicketID       uuid.UUID  `json:"ticket_id"`
	Code           string     `json:"code"`
	TripID         uuid.UUID  `json:"trip_id"`
	SeatCode       string     `json:"seat_code"`
	PickupPointID  uuid.UUID  `json:"pickup_point_id"`
	DropoffPointID uuid.UUID  `json:"dropoff_point_id"`
	QRPayload      string     `json:"qr_payload"`
	Status         string     `json:"status"`
	PurchasedAt    time.Time  `json:"purchased_at"`
	CheckedInAt    *time.Time `json:"checked_in_at,omitempty"`

	Order       OrderSummary        `json:"order"`
	Transaction *TransactionSummary `json:"transaction,omitempty"`
	Coupon      *CouponSummary      `json:"coupon,omitempty"`
}

// OrderSummary is the order slice of the projection
type OrderSummary struct {
	OrderID      uuid.UUID       `json:"order_id"`
	Status       string          `json:"status"`
	OriginAmount decimal.Decimal `json:"origin_amount"`
	FinalAmount  decimal.Decimal `json:"final_amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TransactionSummary is present once the order has settled
type TransactionSummary struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	PaidAt        time.Time       `json:"paid_at"`
}

// CouponSummary is present when a coupon was applied to the order
type CouponSummary struct {
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// TicketOwner holds the contact fields the public lookup matches
// against. Loaded alongside the detail so the service can decide
// authorization without a second query.
type TicketOwner struct {
	CustomerID uuid.UUID
	Email      string
	Phone      string
}
