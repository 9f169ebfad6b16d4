package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"busticket-backend/internal/domains/booking/model"
	"busticket-backend/internal/domains/booking/service"
	couponModel "busticket-backend/internal/domains/coupon/model"
	couponService "busticket-backend/internal/domains/coupon/service"
	"busticket-backend/internal/shared/middleware"
	"busticket-backend/internal/shared/response"
	"busticket-backend/pkg/logger"
)

type BookingHandler struct {
	bookingService service.Service
}

func NewBookingHandler(bookingService service.Service) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBooking creates a pending order and returns the payment URL
// POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.bookingService.CreateBooking(c.Request.Context(), customerID, req)
	if err != nil {
		h.writeBookingError(c, customerID, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// GetOrderStatus is the post-redirect polling endpoint
// GET /api/v1/bookings/:order_id
func (h *BookingHandler) GetOrderStatus(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		response.BadRequest(c, "Invalid order id")
		return
	}

	resp, err := h.bookingService.GetOrderStatus(c.Request.Context(), customerID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrOrderNotFound):
			response.NotFound(c, "Order not found")
		case errors.Is(err, model.ErrUnauthorized):
			response.Forbidden(c, "Order belongs to another customer")
		default:
			logger.ErrorWithFields("Failed to get order status", err, map[string]interface{}{
				"order_id": orderID,
			})
			response.InternalError(c)
		}
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *BookingHandler) writeBookingError(c *gin.Context, customerID uuid.UUID, err error) {
	var bkgErr *model.BookingError
	switch {
	case errors.Is(err, model.ErrSeatTaken):
		response.Conflict(c, "SEAT_TAKEN", err.Error())
	case errors.Is(err, model.ErrNoSeats):
		response.UnprocessableEntity(c, model.ErrCodeNoSeats, err.Error())
	case errors.Is(err, model.ErrDuplicateSeat):
		response.UnprocessableEntity(c, model.ErrCodeDuplicateSeat, err.Error())
	case couponService.IsBusinessError(err):
		response.UnprocessableEntity(c, "COUPON_"+couponModel.Reason(err), err.Error())
	case errors.As(err, &bkgErr) && bkgErr.Code == "VALIDATION_ERROR":
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking request", bkgErr.Err.Error())
	default:
		logger.ErrorWithFields("Booking failed", err, map[string]interface{}{
			"customer_id": customerID,
		})
		response.InternalError(c)
	}
}
