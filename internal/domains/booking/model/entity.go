package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// ORDER AGGREGATE
// =====================================================

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
)

// Order is the purchase aggregate grouping the tickets of one booking
// and, after settlement, one transaction. Created by the Booking
// Writer; mutated only by reconciliation afterwards.
type Order struct {
	ID           uuid.UUID       `json:"id"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CouponID     *uuid.UUID      `json:"coupon_id,omitempty"`
	OriginAmount decimal.Decimal `json:"origin_amount"`
	FinalAmount  decimal.Decimal `json:"final_amount"`
	Status       OrderStatus     `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// IsTerminal reports whether the order has been reconciled
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusFailed
}

type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "pending"
	TicketStatusValid     TicketStatus = "valid"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusCheckedIn TicketStatus = "checked_in"
)

// Ticket is a single seat reservation belonging to an order. The pair
// (TripID, SeatCode) is unique among non-cancelled tickets.
type Ticket struct {
	ID             uuid.UUID    `json:"id"`
	Code           string       `json:"code"`
	OrderID        uuid.UUID    `json:"order_id"`
	TripID         uuid.UUID    `json:"trip_id"`
	SeatCode       string       `json:"seat_code"`
	PickupPointID  uuid.UUID    `json:"pickup_point_id"`
	DropoffPointID uuid.UUID    `json:"dropoff_point_id"`
	QRPayload      string       `json:"qr_payload"`
	Status         TicketStatus `json:"status"`
	PurchasedAt    time.Time    `json:"purchased_at"`
	CheckedInAt    *time.Time   `json:"checked_in_at,omitempty"`
	CheckedInBy    *uuid.UUID   `json:"checked_in_by,omitempty"`
}

// ticketCodeEncoding drops the easily-confused characters 0/1/O/I
var ticketCodeEncoding = base32.NewEncoding("ABCDEFGHJKLMNPQRSTUVWXYZ23456789").WithPadding(base32.NoPadding)

// NewTicketCode generates a human-readable, collision-resistant code
func NewTicketCode() (string, error) {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "TKT-" + ticketCodeEncoding.EncodeToString(b), nil
}

// QRPayloadFor derives the scannable payload deterministically from the
// ticket code, so re-rendering a ticket never changes its QR.
func QRPayloadFor(code string) string {
	sum := sha256.Sum256([]byte("busticket:" + code))
	return code + "." + base64.RawURLEncoding.EncodeToString(sum[:])
}
