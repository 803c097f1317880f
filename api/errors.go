package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rustyeddy/tradereflex/feed"
	"github.com/rustyeddy/tradereflex/ledger"
	"github.com/rustyeddy/tradereflex/market"
	"github.com/rustyeddy/tradereflex/session"
	"github.com/rustyeddy/tradereflex/sim"
)

// AppError represents an application error with an HTTP status.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Field   string `json:"field,omitempty"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func BadRequestError(message string) *AppError {
	return NewAppError("ERR_BAD_REQUEST", message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError("ERR_NOT_FOUND", message, http.StatusNotFound)
}

func InternalError() *AppError {
	return NewAppError("ERR_INTERNAL", "Something went wrong", http.StatusInternalServerError)
}

// errorMappings is checked in order; the first match wins.
var errorMappings = []struct {
	target error
	code   string
	status int
}{
	{sim.ErrNoPriceAvailable, "ERR_NO_PRICE", http.StatusBadRequest},
	{sim.ErrInvalidOrder, "ERR_INVALID_ORDER", http.StatusBadRequest},
	{session.ErrInvalidUser, "ERR_INVALID_USER", http.StatusBadRequest},
	{ledger.ErrInsufficientFunds, "ERR_INSUFFICIENT_FUNDS", http.StatusBadRequest},
	{ledger.ErrInsufficientPosition, "ERR_INSUFFICIENT_POSITION", http.StatusBadRequest},
	{ledger.ErrSessionNotFound, "ERR_SESSION_NOT_FOUND", http.StatusNotFound},
	{market.ErrUnknownSymbol, "ERR_UNKNOWN_SYMBOL", http.StatusNotFound},
	{feed.ErrProviderError, "ERR_PROVIDER", http.StatusBadGateway},
	{feed.ErrDataUnavailable, "ERR_DATA_UNAVAILABLE", http.StatusServiceUnavailable},
	{context.DeadlineExceeded, "ERR_TIMEOUT", http.StatusGatewayTimeout},
}

// FromError converts a domain error into an AppError. Unknown errors
// become a 500 that does not leak the cause.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return NewAppError(m.code, err.Error(), m.status).WithError(err)
		}
	}
	return InternalError().WithError(err)
}
