package entity

import (
	"net/http"

	"github.com/sangkips/bartab-api/pkg/apperror"
)

// Settlement and tab errors. Callers wrap them with detail using %w.
var (
	ErrInvalidPaymentSum  = apperror.NewAppError(http.StatusUnprocessableEntity, "Payment total does not match tab total")
	ErrNoPayments         = apperror.NewAppError(http.StatusUnprocessableEntity, "At least one payment is required")
	ErrInvalidPayment     = apperror.NewAppError(http.StatusUnprocessableEntity, "Payment has an invalid method or a negative amount")
	ErrEmptyTab           = apperror.NewAppError(http.StatusUnprocessableEntity, "Tab has no items to settle")
	ErrMissingTabOpenTime = apperror.NewAppError(http.StatusInternalServerError, "Tab has items but no opening time")
)
