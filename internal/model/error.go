package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string       `json:"error"`
	Message       string       `json:"message"`
	Details       []FieldError `json:"details,omitempty"`
	CorrelationID string       `json:"correlationId,omitempty"`
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeAddressNotFound    = "ADDRESS_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidOTP         = "INVALID_OTP"
	ErrCodeOTPExpired         = "OTP_EXPIRED"
	ErrCodeInvalidResetToken  = "INVALID_RESET_TOKEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeStorageUnavailable = "STORAGE_UNAVAILABLE"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
	Details []FieldError
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrInsufficientStock  = NewDomainError(ErrCodeInsufficientStock, "Not enough stock for one or more products")
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrEmailTaken         = NewDomainError(ErrCodeEmailTaken, "An account with this email already exists")
	ErrUserNotFound       = NewDomainError(ErrCodeUserNotFound, "User not found")
	ErrAddressNotFound    = NewDomainError(ErrCodeAddressNotFound, "Address not found")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidStatus      = NewDomainError(ErrCodeInvalidStatus, "Unknown order status")
	ErrInvalidCredentials = NewDomainError(ErrCodeInvalidCredentials, "Invalid email or password")
	ErrInvalidOTP         = NewDomainError(ErrCodeInvalidOTP, "Invalid verification code")
	ErrOTPExpired         = NewDomainError(ErrCodeOTPExpired, "Verification code has expired")
	ErrInvalidResetToken  = NewDomainError(ErrCodeInvalidResetToken, "Reset link is invalid or has expired")
	ErrForbidden          = NewDomainError(ErrCodeForbidden, "You do not have access to this resource")
	ErrNotPersisted       = NewDomainError(ErrCodeStorageUnavailable, "Storage is unavailable, the change was not saved")
)
