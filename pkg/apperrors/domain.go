package apperrors

import (
	"net/http"
)

// Factories for wrapping lower-layer errors.

// ErrNotFound converts a repository miss (gorm.ErrRecordNotFound and
// friends) into a 404.
func ErrNotFound(err error, message string) *AppError {
	return Wrap(err, CodeNotFound, "resource", message, http.StatusNotFound)
}

// ErrAlreadyExists converts a uniqueness violation into a 409.
func ErrAlreadyExists(err error, message string) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", message, http.StatusConflict)
}

// ErrUpstream marks a third-party call failure (payment provider, drive).
// Timeouts land here too: the caller may retry.
func ErrUpstream(err error, domain, message string) *AppError {
	return Wrap(err, CodeExternalServiceError, domain, message, http.StatusBadGateway)
}

// Predefined errors for frequent static cases.

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Incorrect email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid token, please sign in again",
	http.StatusUnauthorized,
)

var ErrTokenExpired = New(
	CodeTokenExpired,
	"auth",
	"Your token has expired. Please sign in again",
	http.StatusUnauthorized,
)

// ErrStaleToken rejects tokens issued before the user's last password
// change. Enforced by timestamp comparison, not revocation.
var ErrStaleToken = New(
	CodeStaleToken,
	"auth",
	"User recently changed password. Please sign in again",
	http.StatusUnauthorized,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"You do not have permission to perform this action",
	http.StatusForbidden,
)

var ErrUserNameAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"User with this name already exists",
	http.StatusConflict,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"User with this email already exists. Please sign in instead",
	http.StatusConflict,
)

var ErrWrongAdminKey = New(
	CodeUnauthorized,
	"auth",
	"Wrong admin key",
	http.StatusUnauthorized,
)

// Password reset

var ErrResetCodeExpired = New(
	CodeInvalidOperation,
	"auth",
	"Code has expired. Please request a new one",
	http.StatusBadRequest,
)

var ErrInvalidResetCode = New(
	CodeInvalidOperation,
	"auth",
	"Invalid code. Please try again",
	http.StatusBadRequest,
)

// Purchases & payments

var ErrCourseAlreadyPurchased = New(
	CodeConflict,
	"purchase",
	"Course already purchased",
	http.StatusConflict,
)

// ErrPaymentIncomplete answers a webhook whose invoice is not final yet.
// 202: the provider is expected to deliver the callback again.
var ErrPaymentIncomplete = New(
	CodePaymentIncomplete,
	"payment",
	"Payment is not completed yet",
	http.StatusAccepted,
)

var ErrPaymentProvider = New(
	CodeExternalServiceError,
	"payment",
	"Payment provider error",
	http.StatusBadGateway,
)

var ErrEntitlementFailed = New(
	CodeExternalServiceError,
	"entitlement",
	"Failed to grant access to course content",
	http.StatusBadGateway,
)
