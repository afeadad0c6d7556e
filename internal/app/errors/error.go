package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/sirupsen/logrus"
)

// Stable machine-readable error codes. Clients key behaviour off these,
// never off Message.
const (
	CodeNotFound                = "NOT_FOUND"
	CodeInvalidData             = "INVALID_DATA"
	CodeValidationError         = "VALIDATION_ERROR"
	CodeInvalidAction           = "INVALID_ACTION"
	CodeInvalidStatus           = "INVALID_STATUS"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeAlreadySubmitted        = "ALREADY_SUBMITTED"
	CodeAlreadyProcessed        = "ALREADY_PROCESSED"
	CodeApplicationPending      = "APPLICATION_PENDING"
	CodeAlreadyVerifiedGuide    = "ALREADY_VERIFIED_GUIDE"
	CodeDependentRecords        = "DEPENDENT_RECORDS"
	CodeConflict                = "CONFLICT"
	CodeTooManyRequests         = "TOO_MANY_REQUESTS"
	CodeInternalError           = "INTERNAL_ERROR"
)

type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Retryable  bool
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

func NewInvalidDataError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidData, message)
}

func NewValidationError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidationError, message)
}

func NewUnauthorizedError(message ...string) *AppError {
	if len(message) > 0 {
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message[0])
	}
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
}

// NewForbiddenOwnershipError is UNAUTHORIZED for an authenticated principal
// that does not hold the resource (booking guide/traveler checks).
func NewForbiddenOwnershipError(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeUnauthorized, message)
}

func NewInsufficientPermissionsError(message ...string) *AppError {
	if len(message) > 0 {
		return NewAppError(http.StatusForbidden, CodeInsufficientPermissions, message[0])
	}
	return NewAppError(http.StatusForbidden, CodeInsufficientPermissions, "Insufficient permissions")
}

func NewInvalidActionError(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeInvalidAction, message)
}

func NewInvalidStatusError(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeInvalidStatus, message)
}

func NewAlreadySubmittedError(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeAlreadySubmitted, message)
}

func NewAlreadyProcessedError(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeAlreadyProcessed, message)
}

func NewApplicationPendingError(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeApplicationPending, message)
}

func NewAlreadyVerifiedGuideError(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeAlreadyVerifiedGuide, message)
}

func NewDependentRecordsError(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeDependentRecords, message)
}

// NewConflictError marks a lost race on a concurrent transition. Safe to retry
// after refreshing the entity.
func NewConflictError(message string) *AppError {
	err := NewAppError(http.StatusConflict, CodeConflict, message)
	err.Retryable = true
	return err
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message)
}

func NewTooManyRequestsError(message string, limit int, reset int64) *AppError {
	return NewAppError(http.StatusTooManyRequests, CodeTooManyRequests, fmt.Sprintf("%s (limit %d, resets at %d)", message, limit, reset))
}

func NewInternalServerError(originalError error, message string) *AppError {
	if originalError != nil {
		logrus.Errorf("[%s] %s", reflect.TypeOf(originalError).String(), originalError)
	}
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message)
}

// CodeOf returns the taxonomy code carried by err, or INTERNAL_ERROR when err
// is not an AppError.
func CodeOf(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return CodeInternalError
}

// As unwraps err into an *AppError.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stdErrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
