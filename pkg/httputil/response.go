package httputil

import (
	goerrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medisync/hms-api/internal/billing"
	"github.com/medisync/hms-api/internal/scheduling"
	"github.com/medisync/hms-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, Response{Status: "success", Data: data})
}

// RespondWithError translates domain and application errors into client
// responses. Domain validation failures are never surfaced as server faults.
func RespondWithError(c *gin.Context, err error) {
	var conflict *scheduling.ConflictError
	switch {
	case goerrors.As(err, &conflict):
		c.JSON(http.StatusConflict, Response{Status: "error", Message: conflict.Error()})
		return
	case goerrors.Is(err, billing.ErrInvalidTransition):
		c.JSON(http.StatusConflict, Response{Status: "error", Message: err.Error()})
		return
	case goerrors.Is(err, scheduling.ErrInvalidInterval),
		goerrors.Is(err, billing.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, Response{Status: "error", Message: err.Error()})
		return
	}

	var appErr *errors.AppError
	if goerrors.As(err, &appErr) {
		c.JSON(statusFor(appErr.Code), Response{Status: "error", Message: appErr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, Response{Status: "error", Message: "internal server error"})
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrBadRequest:
		return http.StatusBadRequest
	case errors.ErrUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrForbidden:
		return http.StatusForbidden
	case errors.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
