package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const serviceName = "Empowerment Loan API"

type Handler struct{ environment string }

func NewHandler(environment string) *Handler { return &Handler{environment: environment} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "OK",
		"service":     serviceName,
		"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
		"environment": h.environment,
	})
}

// NotFoundJSON replaces echo's default error page with the JSON 404 surface
// the frontend expects.
func NotFoundJSON(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
	}
	if code == http.StatusNotFound {
		_ = c.JSON(code, ErrorResponse{Error: "Not Found", Details: "The requested resource does not exist."})
		return
	}
	_ = c.JSON(code, ErrorResponse{Error: "Internal Server Error", Details: "An unexpected error occurred. Please try again later."})
}
