package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"cryptosim/internal/domain"
)

// statusFor maps ledger errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidSide):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuthFailure):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrQuoteUnavailable):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientHoldings),
		errors.Is(err, domain.ErrPriceMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSnapshotUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// LedgerErrorResponse sends the response matching a ledger error. Server
// side failures hide the cause behind message.
func LedgerErrorResponse(c echo.Context, message string, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.Logger().Errorf("%s: %v", message, err)
		return InternalServerErrorResponse(c, message, nil)
	}
	return ErrorResponse(c, status, err.Error(), nil)
}
