package model

import (
	"github.com/google/uuid"
)

// ReconcileOutcome reports what a callback delivery did to the order
type ReconcileOutcome string

const (
	// OutcomeCompleted: order settled, tickets valid, transaction written
	OutcomeCompleted ReconcileOutcome = "completed"
	// OutcomeFailed: order failed, tickets cancelled, coupon slot restored
	OutcomeFailed ReconcileOutcome = "failed"
	// OutcomeAlreadyProcessed: the order was already terminal; nothing changed
	OutcomeAlreadyProcessed ReconcileOutcome = "already_processed"
)

// ReconcileResult is returned to the callback handlers so the browser
// redirect and the IPN response can be built from one source.
type ReconcileResult struct {
	OrderID uuid.UUID        `json:"order_id"`
	Outcome ReconcileOutcome `json:"outcome"`
	// FinalStatus is the order status after (or despite) this delivery
	FinalStatus string `json:"final_status"`
}
