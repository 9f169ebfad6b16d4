package job

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"busticket-backend/internal/domains/payment/service"
	"busticket-backend/pkg/logger"
)

// ExpirePendingOrdersPayload carries the sweep parameters. All fields
// are optional; the service falls back to its configured defaults.
type ExpirePendingOrdersPayload struct {
	Limit int `json:"limit,omitempty"`
}

// ExpirePendingOrdersHandler fails pending orders whose payment never
// arrived, releasing their seats and coupon slots.
type ExpirePendingOrdersHandler struct {
	reconcileService service.Service
}

func NewExpirePendingOrdersHandler(reconcileService service.Service) *ExpirePendingOrdersHandler {
	return &ExpirePendingOrdersHandler{
		reconcileService: reconcileService,
	}
}

func (h *ExpirePendingOrdersHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload ExpirePendingOrdersPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("Failed to unmarshal expire payload", err)
		return err
	}

	log.Info().Msg("Starting expiry sweep of pending orders")

	expired, err := h.reconcileService.SweepExpired(ctx)
	if err != nil {
		logger.Error("Expiry sweep failed", err)
		return err
	}

	log.Info().
		Int("orders_expired", expired).
		Msg("Expiry sweep finished")
	return nil
}
