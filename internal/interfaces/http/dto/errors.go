package dto

import (
	"net/http"

	"github.com/pos/backend/internal/domain/shared"
)

// Error codes carried in the response envelope. The domain codes are reused
// as-is so clients see the same code the ledger raised.
const (
	ErrCodeNotFound          = shared.CodeNotFound
	ErrCodeValidation        = shared.CodeValidation
	ErrCodeConflict          = shared.CodeConflict
	ErrCodeInsufficientStock = shared.CodeInsufficientStock
	ErrCodeInvalidInput      = shared.CodeInvalidInput

	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge  = "REQUEST_TOO_LARGE"
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeConflict:          http.StatusConflict,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeInvalidInput:      http.StatusBadRequest,

	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeRateLimited:      http.StatusTooManyRequests,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeDuplicateRequest: http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
