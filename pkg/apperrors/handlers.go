package apperrors

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorResponse is the uniform error envelope:
// {"status": "error", "error": {code, domain, message, details}}.
type ErrorResponse struct {
	Status string    `json:"status"`
	Error  *AppError `json:"error"`
}

// GinErrorHandler normalizes any error into an ErrorResponse. With Debug
// off, non-operational errors are replaced with a generic message so
// programmer faults never leak to clients.
type GinErrorHandler struct {
	Debug bool
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = translateKnownError(err)
	}

	if !h.Debug && !IsOperational(appErr) {
		appErr = New(appErr.Code, appErr.Domain, "Something went wrong!", appErr.HTTPCode)
	}

	c.JSON(appErr.HTTPCode, ErrorResponse{Status: "error", Error: appErr})
}

// debugMode is set once at startup from the server environment.
var debugMode = true

// SetDebug switches the package-level normalizer between development
// (full messages) and production (generic message for internal faults).
func SetDebug(debug bool) {
	debugMode = debug
}

// HandleError is the shortcut used by handlers.
func HandleError(c *gin.Context, err error) {
	handler := &GinErrorHandler{Debug: debugMode}
	handler.HandleGinError(c, err)
}

// AsAppError tries to interpret err as *AppError.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// translateKnownError maps known database-level failures to operational
// errors before falling back to InternalError.
func translateKnownError(err error) *AppError {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound(err, "Resource not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrAlreadyExists(err, "Duplicate value")
	case errors.Is(err, gorm.ErrInvalidData):
		return NewBadRequestError("Invalid input data")
	}
	return InternalError(err)
}
