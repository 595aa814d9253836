package handlers

import (
	"errors"
	"net/http"

	"prediction-wallet-service/internal/services"
	"prediction-wallet-service/pkg/common"

	"github.com/gin-gonic/gin"
)

// statusFor maps service-level errors onto HTTP statuses. Anything
// unrecognized is a 500 so internals never leak as client errors.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrSignatureInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrMarketNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnknownEvent):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrRemoteUnavailable), errors.Is(err, services.ErrRemoteRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	c.JSON(status, common.NewErrorResponse(message, nil, status))
}

func respondOK(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, common.NewSuccessResponse(data, message))
}
