package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"empowerment-loans-api/internal/gateway/daraja"

	"github.com/labstack/echo/v4"
)

// GatewayOps is the slice of the Daraja client the pass-through endpoints use.
type GatewayOps interface {
	B2CPayment(ctx context.Context, phone string, amount int64, remarks string) (daraja.GenericResponse, error)
	TransactionStatus(ctx context.Context, transactionID string) (daraja.GenericResponse, error)
	AccountBalance(ctx context.Context) (daraja.GenericResponse, error)
	ReverseTransaction(ctx context.Context, transactionID string, amount int64, receiverParty string) (daraja.GenericResponse, error)
	StandingOrder(ctx context.Context, in daraja.StandingOrderInput) (daraja.GenericResponse, error)
	C2BSimulate(ctx context.Context, shortCode string, amount int64, msisdn, billRefNumber string) (daraja.GenericResponse, error)
	C2BRegisterURLs(ctx context.Context, shortCode, responseType, confirmationURL, validationURL string) (daraja.GenericResponse, error)
	PullRegister(ctx context.Context, shortCode, requestType, nominatedNumber, callbackURL string) (daraja.GenericResponse, error)
	PullQuery(ctx context.Context, shortCode, startDate, endDate, offsetValue string) (daraja.GenericResponse, error)
	B2BPayment(ctx context.Context, in daraja.B2BInput) (daraja.GenericResponse, error)
}

// GatewayHandler exposes the secondary provider operations as thin
// request-forward-response wrappers. No application state is touched here.
type GatewayHandler struct{ gw GatewayOps }

func NewGatewayHandler(gw GatewayOps) *GatewayHandler { return &GatewayHandler{gw: gw} }

func (h *GatewayHandler) respond(c echo.Context, message string, res daraja.GenericResponse, err error) error {
	if err != nil {
		return gatewayError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": message,
		"data":    res,
	})
}

func gatewayError(c echo.Context, err error) error {
	var rej *daraja.RejectedError
	switch {
	case errors.Is(err, daraja.ErrTimeout):
		return c.JSON(http.StatusRequestTimeout, ErrorResponse{Error: "Request Timeout", Details: "Gateway request timed out. Please try again."})
	case errors.As(err, &rej):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Gateway Error", Details: rej.Error()})
	default:
		log.Printf("gateway operation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Server Error", Details: "Gateway request failed. Please try again later."})
	}
}

type b2cReq struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Amount      int64  `json:"amount"      validate:"required"`
	Remarks     string `json:"remarks"     validate:"required"`
}

// B2CPayment disburses a loan to the customer phone.
func (h *GatewayHandler) B2CPayment(c echo.Context) error {
	var req b2cReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: "Phone number, amount, and remarks are required"})
	}
	res, err := h.gw.B2CPayment(c.Request().Context(), req.PhoneNumber, req.Amount, req.Remarks)
	return h.respond(c, "Loan disbursement initiated successfully", res, err)
}

// B2CResult and B2CTimeout just acknowledge the provider's async B2C notifications.
func (h *GatewayHandler) B2CResult(c echo.Context) error {
	log.Printf("b2c result callback received")
	return c.JSON(http.StatusOK, map[string]string{"message": "B2C result received"})
}

func (h *GatewayHandler) B2CTimeout(c echo.Context) error {
	log.Printf("b2c timeout callback received")
	return c.JSON(http.StatusOK, map[string]string{"message": "B2C timeout received"})
}

type transactionStatusReq struct {
	TransactionID string `json:"transactionId" validate:"required"`
}

func (h *GatewayHandler) TransactionStatus(c echo.Context) error {
	var req transactionStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: "Transaction ID is required"})
	}
	res, err := h.gw.TransactionStatus(c.Request().Context(), req.TransactionID)
	return h.respond(c, "Transaction status query initiated", res, err)
}

func (h *GatewayHandler) AccountBalance(c echo.Context) error {
	res, err := h.gw.AccountBalance(c.Request().Context())
	return h.respond(c, "Account balance query initiated", res, err)
}

type reversalReq struct {
	TransactionID string `json:"transactionId" validate:"required"`
	Amount        int64  `json:"amount"        validate:"required"`
	ReceiverParty string `json:"receiverParty" validate:"required"`
}

func (h *GatewayHandler) ReverseTransaction(c echo.Context) error {
	var req reversalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: "Transaction ID, amount, and receiver party are required"})
	}
	res, err := h.gw.ReverseTransaction(c.Request().Context(), req.TransactionID, req.Amount, req.ReceiverParty)
	return h.respond(c, "Transaction reversal initiated", res, err)
}

type standingOrderReq struct {
	PhoneNumber      string `json:"phoneNumber"      validate:"required"`
	Amount           int64  `json:"amount"           validate:"required"`
	Frequency        string `json:"frequency"        validate:"required,oneof=DAILY WEEKLY MONTHLY"`
	StartDate        string `json:"startDate"        validate:"required"`
	EndDate          string `json:"endDate"          validate:"required"`
	AccountReference string `json:"accountReference" validate:"required"`
}

func (h *GatewayHandler) StandingOrder(c echo.Context) error {
	var req standingOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: "All fields are required for standing order"})
	}
	res, err := h.gw.StandingOrder(c.Request().Context(), daraja.StandingOrderInput{
		PhoneNumber:      req.PhoneNumber,
		Amount:           req.Amount,
		Frequency:        req.Frequency,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		AccountReference: req.AccountReference,
	})
	return h.respond(c, "Standing order created successfully", res, err)
}

type c2bSimulateReq struct {
	ShortCode     string `json:"shortCode"     validate:"required"`
	Amount        int64  `json:"amount"        validate:"required"`
	Msisdn        string `json:"msisdn"        validate:"required"`
	BillRefNumber string `json:"billRefNumber" validate:"required"`
}

func (h *GatewayHandler) C2BSimulate(c echo.Context) error {
	var req c2bSimulateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: "ShortCode, amount, MSISDN, and BillRefNumber are required"})
	}
	res, err := h.gw.C2BSimulate(c.Request().Context(), req.ShortCode, req.Amount, req.Msisdn, req.BillRefNumber)
	return h.respond(c, "C2B payment simulated successfully", res, err)
}

type c2bRegisterReq struct {
	ShortCode       string `json:"shortCode"       validate:"required"`
	ResponseType    string `json:"responseType"    validate:"required"`
	ConfirmationURL string `json:"confirmationUrl" validate:"required"`
	ValidationURL   string `json:"validationUrl"   validate:"required"`
}

func (h *GatewayHandler) C2BRegisterURLs(c echo.Context) error {
	var req c2bRegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: "ShortCode, ResponseType, ConfirmationURL, and ValidationURL are required"})
	}
	res, err := h.gw.C2BRegisterURLs(c.Request().Context(), req.ShortCode, req.ResponseType, req.ConfirmationURL, req.ValidationURL)
	return h.respond(c, "C2B URLs registered successfully", res, err)
}

type pullRegisterReq struct {
	ShortCode       string `json:"shortCode"       validate:"required"`
	RequestType     string `json:"requestType"     validate:"required"`
	NominatedNumber string `json:"nominatedNumber" validate:"required"`
	CallBackURL     string `json:"callBackURL"     validate:"required"`
}

func (h *GatewayHandler) PullRegister(c echo.Context) error {
	var req pullRegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: "ShortCode, RequestType, NominatedNumber, and CallBackURL are required"})
	}
	res, err := h.gw.PullRegister(c.Request().Context(), req.ShortCode, req.RequestType, req.NominatedNumber, req.CallBackURL)
	return h.respond(c, "Pull transactions URL registered successfully", res, err)
}

type pullQueryReq struct {
	ShortCode   string `json:"shortCode"   validate:"required"`
	StartDate   string `json:"startDate"   validate:"required"`
	EndDate     string `json:"endDate"     validate:"required"`
	OffSetValue string `json:"offSetValue"`
}

func (h *GatewayHandler) PullQuery(c echo.Context) error {
	var req pullQueryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: "ShortCode, StartDate, and EndDate are required"})
	}
	res, err := h.gw.PullQuery(c.Request().Context(), req.ShortCode, req.StartDate, req.EndDate, req.OffSetValue)
	return h.respond(c, "Pull transactions query successful", res, err)
}

func (h *GatewayHandler) B2BPayment(c echo.Context) error {
	var req daraja.B2BInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: "All B2B payment fields are required"})
	}
	res, err := h.gw.B2BPayment(c.Request().Context(), req)
	return h.respond(c, "B2B payment initiated successfully", res, err)
}
