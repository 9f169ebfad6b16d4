package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"busticket-backend/internal/domains/payment/gateway/vnpay"
	"busticket-backend/internal/domains/payment/model"
	"busticket-backend/internal/domains/payment/service"
	"busticket-backend/internal/shared/response"
	"busticket-backend/pkg/logger"
)

// IPN response codes expected by the gateway
const (
	ipnCodeSuccess          = "00"
	ipnCodeOrderNotFound    = "01"
	ipnCodeAlreadyConfirmed = "02"
	ipnCodeInvalidSignature = "97"
	ipnCodeUnknownError     = "99"
)

type ipnResponse struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

type PaymentHandler struct {
	reconcileService service.Service
	resultPageURL    string
}

func NewPaymentHandler(reconcileService service.Service, resultPageURL string) *PaymentHandler {
	return &PaymentHandler{
		reconcileService: reconcileService,
		resultPageURL:    resultPageURL,
	}
}

// VNPayReturn handles the browser redirect back from the gateway.
// GET /api/v1/payments/vnpay/return
//
// The callback is verified and reconciled here too, because the IPN is
// not guaranteed to arrive first. The customer is then redirected to
// the frontend result page with the outcome in the query string.
func (h *PaymentHandler) VNPayReturn(c *gin.Context) {
	result, err := h.reconcileService.ProcessCallback(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		switch {
		case errors.Is(err, vnpay.ErrInvalidSignature):
			response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidSignature, "Invalid payment signature")
		case errors.Is(err, vnpay.ErrMalformedCallback):
			response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeMalformedCallback, "Malformed payment callback")
		case errors.Is(err, model.ErrOrderNotFound):
			response.NotFound(c, "Order not found")
		default:
			logger.Error("Failed to reconcile payment return", err)
			response.InternalError(c)
		}
		return
	}

	c.Redirect(http.StatusFound, h.resultURL(result))
}

// VNPayIPN handles the server-to-server instant payment notification.
// GET /api/v1/payments/vnpay/ipn
//
// The gateway retries until it receives RspCode "00", so every outcome
// it can act on maps to a concrete code here. Redelivery of a callback
// for an already-terminal order answers "02" without touching the order.
func (h *PaymentHandler) VNPayIPN(c *gin.Context) {
	result, err := h.reconcileService.ProcessCallback(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		switch {
		case errors.Is(err, vnpay.ErrInvalidSignature):
			c.JSON(http.StatusOK, ipnResponse{RspCode: ipnCodeInvalidSignature, Message: "Invalid signature"})
		case errors.Is(err, vnpay.ErrMalformedCallback):
			c.JSON(http.StatusOK, ipnResponse{RspCode: ipnCodeInvalidSignature, Message: "Invalid request"})
		case errors.Is(err, model.ErrOrderNotFound):
			c.JSON(http.StatusOK, ipnResponse{RspCode: ipnCodeOrderNotFound, Message: "Order not found"})
		default:
			logger.Error("Failed to reconcile payment IPN", err)
			c.JSON(http.StatusOK, ipnResponse{RspCode: ipnCodeUnknownError, Message: "Unknown error"})
		}
		return
	}

	if result.Outcome == model.OutcomeAlreadyProcessed {
		c.JSON(http.StatusOK, ipnResponse{RspCode: ipnCodeAlreadyConfirmed, Message: "Order already confirmed"})
		return
	}
	c.JSON(http.StatusOK, ipnResponse{RspCode: ipnCodeSuccess, Message: "Confirm success"})
}

func (h *PaymentHandler) resultURL(result *model.ReconcileResult) string {
	q := url.Values{}
	q.Set("order_id", result.OrderID.String())
	q.Set("status", result.FinalStatus)
	return fmt.Sprintf("%s?%s", h.resultPageURL, q.Encode())
}
