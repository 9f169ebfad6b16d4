package service

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"busticket-backend/internal/domains/payment/model"
)

// Service is the Reconciliation State Machine. It interprets verified
// gateway callbacks and drives orders from pending into their terminal
// state; callbacks on an already-terminal order are no-ops.
type Service interface {
	// ProcessCallback authenticates the callback and applies the
	// success or failure transition atomically. Safe to call more than
	// once for the same delivery.
	ProcessCallback(ctx context.Context, params url.Values) (*model.ReconcileResult, error)

	// ExpireOrder reconciles one abandoned pending order as a failure
	ExpireOrder(ctx context.Context, orderID uuid.UUID) (*model.ReconcileResult, error)

	// SweepExpired finds pending orders older than the configured TTL
	// and expires them. Returns how many orders were reconciled.
	SweepExpired(ctx context.Context) (int, error)
}
