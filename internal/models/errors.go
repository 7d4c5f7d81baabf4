package models

import "fmt"

// AppError is the rejection type surfaced by all domain operations.
// Code distinguishes rejection reasons; Status is the HTTP status the
// handler layer maps it to.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

func ErrServerClosed() *AppError {
	return &AppError{Code: "SERVER_CLOSED", Message: "server is closed", Status: 403}
}

func ErrMaintenance() *AppError {
	return &AppError{Code: "MAINTENANCE", Message: "maintenance in progress", Status: 403}
}

func ErrCooldown() *AppError {
	return &AppError{Code: "COOLDOWN", Message: "click cooldown active", Status: 429}
}

func ErrBanned() *AppError {
	return &AppError{Code: "BANNED", Message: "account is banned", Status: 403}
}

func ErrChatBanned() *AppError {
	return &AppError{Code: "CHAT_BANNED", Message: "chat access is blocked", Status: 403}
}

func ErrDailyLimit() *AppError {
	return &AppError{Code: "DAILY_LIMIT", Message: "daily limit exceeded", Status: 400}
}

func ErrInsufficientBalance() *AppError {
	return &AppError{Code: "INSUFFICIENT_BALANCE", Message: "insufficient balance", Status: 400}
}

func ErrBelowMinimum(min float64) *AppError {
	return &AppError{Code: "BELOW_MINIMUM", Message: fmt.Sprintf("minimum withdrawal is %s", FormatMoney(min)), Status: 400}
}

func ErrInvalidIBAN() *AppError {
	return &AppError{Code: "INVALID_IBAN", Message: "invalid IBAN", Status: 400}
}

func ErrCouponNotFound() *AppError {
	return &AppError{Code: "COUPON_NOT_FOUND", Message: "coupon not found", Status: 404}
}

func ErrCouponExhausted() *AppError {
	return &AppError{Code: "COUPON_EXHAUSTED", Message: "coupon has no uses left", Status: 400}
}

func ErrCouponInvalid(msg string) *AppError {
	return &AppError{Code: "COUPON_INVALID", Message: msg, Status: 400}
}

func ErrStorage(msg string, cause error) *AppError {
	return &AppError{Code: "STORAGE_ERROR", Message: msg, Status: 502, Cause: cause}
}
