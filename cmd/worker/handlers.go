package main

import (
	"github.com/hibiken/asynq"

	paymentJob "busticket-backend/internal/domains/payment/job"
	"busticket-backend/internal/shared"
	"busticket-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	expirePendingOrders *paymentJob.ExpirePendingOrdersHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		expirePendingOrders: paymentJob.NewExpirePendingOrdersHandler(c.ReconcileService),
	}
}

func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeExpirePendingOrders, h.expirePendingOrders.ProcessTask)
}
