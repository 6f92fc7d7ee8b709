package http

import (
	"errors"
	"net/http"

	appDomain "empowerment-loans-api/internal/domain/application"
	appUC "empowerment-loans-api/internal/usecase/application"

	"github.com/labstack/echo/v4"
)

type ApplicationHandler struct{ uc *appUC.Usecase }

func NewApplicationHandler(uc *appUC.Usecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

type submitApplicationReq struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
	Phone     string `json:"phone"     validate:"required"`
	Amount    int64  `json:"amount"    validate:"required,gte=1000,lte=50000"`
	Purpose   string `json:"purpose"   validate:"required"`
}

func (h *ApplicationHandler) SubmitApplication(c echo.Context) error {
	var req submitApplicationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		fields := ToFieldErrors(err)
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Details: fieldErrorSummary(fields),
			Fields:  fields,
		})
	}

	dto, err := h.uc.Submit(c.Request().Context(), appUC.SubmitInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Amount:    req.Amount,
		Purpose:   req.Purpose,
	})
	if err != nil {
		if errors.Is(err, appUC.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Server Error", Details: "Failed to submit application"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":       "Application submitted successfully!",
		"applicationId": dto.ApplicationID,
	})
}

func (h *ApplicationHandler) GetApplication(c echo.Context) error {
	applicationID := c.Param("application_id")
	dto, err := h.uc.Get(c.Request().Context(), applicationID)
	if err != nil {
		if errors.Is(err, appDomain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not Found", Details: "Loan application not found."})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Server Error"})
	}
	return c.JSON(http.StatusOK, dto)
}
