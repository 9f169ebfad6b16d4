package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"busticket-backend/internal/domains/coupon/model"
	"busticket-backend/internal/domains/coupon/service"
	"busticket-backend/internal/shared/middleware"
	"busticket-backend/internal/shared/response"
	"busticket-backend/pkg/logger"
)

type CouponHandler struct {
	couponService service.Service
}

func NewCouponHandler(couponService service.Service) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// Preview prices an order against a coupon without consuming anything
// POST /api/v1/coupons/preview
func (h *CouponHandler) Preview(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", err)
		return
	}

	resp, err := h.couponService.Preview(c.Request.Context(), customerID, req)
	if err != nil {
		logger.ErrorWithFields("Coupon preview failed", err, map[string]interface{}{
			"coupon_id":   req.CouponID,
			"customer_id": customerID,
		})
		response.InternalError(c)
		return
	}

	response.Success(c, http.StatusOK, resp)
}
