package dto

import "net/http"

// Error codes returned by the API. Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation  = "ERR_VALIDATION"
	ErrCodeBadRequest  = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	ErrCodeInvalidID   = "ERR_INVALID_ID"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeLocked              = "ERR_LOCKED"

	ErrCodeInvalidInput         = "ERR_INVALID_INPUT"
	ErrCodeInvalidState         = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock    = "ERR_INSUFFICIENT_STOCK"
	ErrCodeEmptyCart            = "ERR_EMPTY_CART"
	ErrCodeProductUnavailable   = "ERR_PRODUCT_UNAVAILABLE"
	ErrCodeInvalidOrderStatus   = "ERR_INVALID_ORDER_STATUS"
	ErrCodeInvalidPaymentStatus = "ERR_INVALID_PAYMENT_STATUS"
	ErrCodeBusinessRule         = "ERR_BUSINESS_RULE"

	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenMaxRefresh    = "ERR_TOKEN_MAX_REFRESH"
	ErrCodeAccountInactive    = "ERR_ACCOUNT_INACTIVE"
	ErrCodeInvalidPassword    = "ERR_INVALID_PASSWORD"
	ErrCodeInvalidEmail       = "ERR_INVALID_EMAIL"

	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodePDFUnavailable  = "ERR_PDF_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	ErrCodeInvalidID:   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeLocked:              http.StatusLocked,

	ErrCodeInvalidInput:         http.StatusBadRequest,
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:    http.StatusUnprocessableEntity,
	ErrCodeEmptyCart:            http.StatusUnprocessableEntity,
	ErrCodeProductUnavailable:   http.StatusUnprocessableEntity,
	ErrCodeInvalidOrderStatus:   http.StatusBadRequest,
	ErrCodeInvalidPaymentStatus: http.StatusBadRequest,
	ErrCodeBusinessRule:         http.StatusUnprocessableEntity,

	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenMaxRefresh:    http.StatusUnauthorized,
	ErrCodeAccountInactive:    http.StatusForbidden,
	ErrCodeInvalidPassword:    http.StatusBadRequest,
	ErrCodeInvalidEmail:       http.StatusBadRequest,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodePDFUnavailable:  http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodes maps shared.DomainError codes to API codes
var domainCodes = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"ALREADY_EXISTS":         ErrCodeAlreadyExists,
	"INVALID_INPUT":          ErrCodeInvalidInput,
	"INVALID_STATE":          ErrCodeInvalidState,
	"FORBIDDEN":              ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,
	"LOCKED":                 ErrCodeLocked,
	"INSUFFICIENT_STOCK":     ErrCodeInsufficientStock,
	"EMPTY_CART":             ErrCodeEmptyCart,
	"PRODUCT_UNAVAILABLE":    ErrCodeProductUnavailable,
	"INVALID_ORDER_STATUS":   ErrCodeInvalidOrderStatus,
	"INVALID_PAYMENT_STATUS": ErrCodeInvalidPaymentStatus,
	"VALIDATION_ERROR":       ErrCodeValidation,
	"INVALID_CREDENTIALS":    ErrCodeInvalidCredentials,
	"TOKEN_EXPIRED":          ErrCodeTokenExpired,
	"TOKEN_INVALID":          ErrCodeTokenInvalid,
	"TOKEN_MAX_REFRESH":      ErrCodeTokenMaxRefresh,
	"ACCOUNT_INACTIVE":       ErrCodeAccountInactive,
	"INVALID_PASSWORD":       ErrCodeInvalidPassword,
	"INVALID_EMAIL":          ErrCodeInvalidEmail,
	"PDF_UNAVAILABLE":        ErrCodePDFUnavailable,
}

// NormalizeErrorCode converts a domain error code to its API code. Codes
// already in API form or unknown domain codes become ERR_<code>.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodes[code]; ok {
		return apiCode
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return "ERR_" + code
}
