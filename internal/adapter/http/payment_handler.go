package http

import (
	"errors"
	"log"
	"net/http"

	appDomain "empowerment-loans-api/internal/domain/application"
	"empowerment-loans-api/internal/gateway/daraja"
	paymentUC "empowerment-loans-api/internal/usecase/payment"
	reconcileUC "empowerment-loans-api/internal/usecase/reconcile"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	payments  *paymentUC.Usecase
	reconcile *reconcileUC.Usecase
}

func NewPaymentHandler(payments *paymentUC.Usecase, rec *reconcileUC.Usecase) *PaymentHandler {
	return &PaymentHandler{payments: payments, reconcile: rec}
}

type initiatePaymentReq struct {
	ApplicationID string `json:"applicationId" validate:"required"`
	PhoneNumber   string `json:"phoneNumber"   validate:"required"`
}

func (h *PaymentHandler) InitiatePayment(c echo.Context) error {
	var req initiatePaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Details: "Application ID and phone number are required.",
		})
	}

	dto, err := h.payments.Initiate(c.Request().Context(), req.ApplicationID, req.PhoneNumber)
	if err != nil {
		return paymentError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Payment initiated successfully. Please check your phone for M-Pesa prompt.",
		"success": true,
		"data":    dto,
	})
}

func paymentError(c echo.Context, err error) error {
	var rej *daraja.RejectedError
	switch {
	case errors.Is(err, appDomain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not Found", Details: "Loan application not found."})
	case errors.Is(err, appDomain.ErrAlreadyPaid):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Payment already completed",
			Details: "This loan application has already been paid for.",
		})
	case errors.Is(err, paymentUC.ErrInvalidPhone):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid phone number",
			Details: "Please enter a valid Kenyan phone number (9 digits like 713159136 or full format 254713159136)",
		})
	case errors.Is(err, daraja.ErrTimeout):
		return c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error:   "Request Timeout",
			Details: "Payment request timed out. Please try again.",
		})
	case errors.As(err, &rej):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Payment Error", Details: rej.Error()})
	default:
		log.Printf("initiate payment failed: %v", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Server Error",
			Details: "Failed to initiate payment. Please try again later.",
		})
	}
}

// Callback body shape is fixed by the provider.
type stkCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
}

type mpesaCallbackReq struct {
	Body struct {
		STKCallback *stkCallback `json:"stkCallback"`
	} `json:"Body"`
}

func (h *PaymentHandler) MpesaCallback(c echo.Context) error {
	var req mpesaCallbackReq
	if err := c.Bind(&req); err != nil || req.Body.STKCallback == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid callback data"})
	}
	cb := req.Body.STKCallback
	log.Printf("mpesa callback received: ref=%s code=%d desc=%q", cb.CheckoutRequestID, cb.ResultCode, cb.ResultDesc)

	_, err := h.reconcile.ApplyResult(c.Request().Context(), cb.CheckoutRequestID, cb.ResultCode, cb.ResultDesc)
	if err != nil {
		if errors.Is(err, reconcileUC.ErrUnknownCallback) {
			log.Printf("no application for CheckoutRequestID %s", cb.CheckoutRequestID)
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Application not found"})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process callback"})
	}
	// Always acknowledge once matched, duplicates included, or the gateway
	// keeps redelivering.
	return c.JSON(http.StatusOK, map[string]string{"message": "Callback processed successfully"})
}
