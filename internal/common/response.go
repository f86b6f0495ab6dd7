package common

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the JSON envelope for every failed request
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError reports a single malformed request field
func SendValidationError(c echo.Context, field, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", map[string]string{field: message}))
}

func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// ErrorCauseKey holds the full error behind a 5xx response. The request
// logger reads it because the handler itself returns nil.
const ErrorCauseKey = "error_cause"

// SendError maps a service error onto the matching status code and envelope.
// Only the public message is sent. For server errors the full chain is kept
// under ErrorCauseKey for the request logger.
func SendError(c echo.Context, err error) error {
	msg := PublicMessage(err)
	switch {
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", msg, nil))
	case errors.Is(err, ErrValidation):
		return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", msg, nil))
	case errors.Is(err, ErrBusinessRule):
		return c.JSON(http.StatusBadRequest, CreateErrorResponse("BUSINESS_RULE_VIOLATION", msg, nil))
	case errors.Is(err, ErrConflict):
		return c.JSON(http.StatusConflict, CreateErrorResponse("CONFLICT", msg, nil))
	default:
		c.Set(ErrorCauseKey, err)
		return SendServerError(c, msg)
	}
}
