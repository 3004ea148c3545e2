package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "VALIDATION_ERROR"
	ErrorTypeIllegalTransition ErrorType = "ILLEGAL_TRANSITION"
	ErrorTypeNotFound          ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized      ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden         ErrorType = "FORBIDDEN"
	ErrorTypeInternal          ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrCodeRejectionReasonMissing ErrorCode = "REJECTION_REASON_REQUIRED"
	ErrCodeInvalidHours           ErrorCode = "INVALID_HOURS"
	ErrCodeInvalidAction          ErrorCode = "INVALID_ACTION"

	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodeNotEntityOwner    ErrorCode = "NOT_ENTITY_OWNER"
	ErrCodeStaleTransition   ErrorCode = "STALE_TRANSITION"

	ErrCodeTimesheetNotFound     ErrorCode = "TIMESHEET_NOT_FOUND"
	ErrCodeExpenseReportNotFound ErrorCode = "EXPENSE_REPORT_NOT_FOUND"
	ErrCodeExpenseLineNotFound   ErrorCode = "EXPENSE_LINE_NOT_FOUND"
	ErrCodeNotificationNotFound  ErrorCode = "NOTIFICATION_NOT_FOUND"
	ErrCodeUserNotFound          ErrorCode = "USER_NOT_FOUND"

	ErrCodeInvalidToken  ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired  ErrorCode = "TOKEN_EXPIRED"
	ErrCodeRoleForbidden ErrorCode = "ROLE_FORBIDDEN"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on Type and Code so that freshly built errors compare equal to the
// package-level sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

// NewIllegalTransitionError reports an action that is not permitted from state.
func NewIllegalTransitionError(state, action string) *AppError {
	return &AppError{
		Type:       ErrorTypeIllegalTransition,
		Code:       ErrCodeInvalidTransition,
		Message:    fmt.Sprintf("action %q is not permitted from status %q", action, state),
		StatusCode: http.StatusBadRequest,
		Details:    map[string]string{"state": state, "action": action},
	}
}

// NewForbiddenTransitionError reports an actor lacking the relationship the
// action requires (for example a non-owner submitting a timesheet).
func NewForbiddenTransitionError(state, action string) *AppError {
	return &AppError{
		Type:       ErrorTypeIllegalTransition,
		Code:       ErrCodeNotEntityOwner,
		Message:    fmt.Sprintf("action %q on status %q is reserved for the owner", action, state),
		StatusCode: http.StatusForbidden,
		Details:    map[string]string{"state": state, "action": action},
	}
}

// NewStaleTransitionError reports a row whose status changed between the read and
// the conditional write.
func NewStaleTransitionError(state string) *AppError {
	return &AppError{
		Type:       ErrorTypeIllegalTransition,
		Code:       ErrCodeStaleTransition,
		Message:    fmt.Sprintf("status %q changed concurrently, reload and retry", state),
		StatusCode: http.StatusBadRequest,
		Details:    map[string]string{"state": state},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrTimesheetNotFound     = NewNotFoundError("timesheet not found", ErrCodeTimesheetNotFound)
	ErrExpenseReportNotFound = NewNotFoundError("expense report not found", ErrCodeExpenseReportNotFound)
	ErrExpenseLineNotFound   = NewNotFoundError("expense line not found", ErrCodeExpenseLineNotFound)
	ErrNotificationNotFound  = NewNotFoundError("notification not found", ErrCodeNotificationNotFound)
	ErrUserNotFound          = NewNotFoundError("user not found", ErrCodeUserNotFound)

	ErrInvalidToken  = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired  = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
	ErrRoleForbidden = NewForbiddenError("role is not allowed to perform this action", ErrCodeRoleForbidden)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsValidation(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == ErrorTypeValidation
}

func IsIllegalTransition(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == ErrorTypeIllegalTransition
}

func IsNotFound(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == ErrorTypeNotFound
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
