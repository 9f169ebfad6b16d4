package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"busticket-backend/internal/domains/ticket/model"
	"busticket-backend/internal/domains/ticket/service"
	"busticket-backend/internal/shared/middleware"
	"busticket-backend/internal/shared/response"
	"busticket-backend/pkg/logger"
)

type TicketHandler struct {
	ticketService service.Service
}

func NewTicketHandler(ticketService service.Service) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// Lookup resolves a ticket for an unauthenticated caller
// POST /api/v1/tickets/lookup
func (h *TicketHandler) Lookup(c *gin.Context) {
	var req model.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	detail, err := h.ticketService.Lookup(c.Request.Context(), req)
	if err != nil {
		var valErrs validation.Errors
		switch {
		case errors.As(err, &valErrs):
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid lookup request", valErrs)
		case errors.Is(err, model.ErrTicketNotFound):
			response.NotFound(c, "Ticket not found")
		case errors.Is(err, model.ErrUnauthorized):
			response.ErrorResponse(c, http.StatusForbidden, model.ErrCodeUnauthorized, "Contact details do not match")
		default:
			logger.Error("Ticket lookup failed", err)
			response.InternalError(c)
		}
		return
	}

	response.Success(c, http.StatusOK, detail)
}

// MyTickets lists the authenticated customer's tickets
// GET /api/v1/tickets/mine?page=1&limit=10
func (h *TicketHandler) MyTickets(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var q model.MyTicketsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid pagination parameters")
		return
	}
	q.Normalize()

	details, total, err := h.ticketService.MyTickets(c.Request.Context(), customerID, q.Page, q.Limit)
	if err != nil {
		logger.Error("Failed to list tickets", err)
		response.InternalError(c)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, details, &response.Meta{
		Page:  q.Page,
		Limit: q.Limit,
		Total: int(total),
	})
}
