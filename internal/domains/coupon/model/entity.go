package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// COUPON ENTITIES
// =====================================================

type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "active"
	CouponStatusInactive CouponStatus = "inactive"
)

// Coupon is a shared discount instrument with a usage cap and a validity
// window. used_count is mutated only by the Ledger, always under a
// storage transaction.
type Coupon struct {
	ID               uuid.UUID        `json:"id"`
	Code             string           `json:"code"`
	CompanyID        *uuid.UUID       `json:"company_id,omitempty"` // nil = platform-wide
	DiscountType     DiscountType     `json:"discount_type"`
	DiscountValue    decimal.Decimal  `json:"discount_value"`
	MaxDiscountValue *decimal.Decimal `json:"max_discount_value,omitempty"` // percent only
	MaxUses          int              `json:"max_uses"`
	UsedCount        int              `json:"used_count"`
	ValidFrom        time.Time        `json:"valid_from"`
	ValidTo          time.Time        `json:"valid_to"`
	Status           CouponStatus     `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
}

// IsWithinWindow reports whether now falls inside [ValidFrom, ValidTo]
func (c *Coupon) IsWithinWindow(now time.Time) bool {
	return !now.Before(c.ValidFrom) && !now.After(c.ValidTo)
}

// Discount computes the discount for the given original amount, rounded
// to the nearest integer currency unit. Percent coupons are capped at
// MaxDiscountValue when set; fixed coupons never exceed the original.
func (c *Coupon) Discount(origin decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal

	switch c.DiscountType {
	case DiscountTypePercent:
		discount = origin.Mul(c.DiscountValue).Div(decimal.NewFromInt(100)).Round(0)
		if c.MaxDiscountValue != nil && discount.GreaterThan(*c.MaxDiscountValue) {
			discount = *c.MaxDiscountValue
		}
	case DiscountTypeFixed:
		discount = c.DiscountValue
		if discount.GreaterThan(origin) {
			discount = origin
		}
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

// CouponUsage is the permanent record that a customer consumed a coupon
// for a specific order. Flipped inactive (and the coupon slot restored)
// if the order later fails.
type CouponUsage struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	CouponID   uuid.UUID `json:"coupon_id"`
	OrderID    uuid.UUID `json:"order_id"`
	UsedAt     time.Time `json:"used_at"`
	IsActive   bool      `json:"is_active"`
}

// ApplyResult carries the amounts computed by a successful Apply
type ApplyResult struct {
	CouponID       uuid.UUID       `json:"coupon_id"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
}
