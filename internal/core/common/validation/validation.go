package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	errors "github.com/frahmantamala/workforce-portal/internal"
	"github.com/shopspring/decimal"
)

const (
	MaxRejectionReasonLength = 1000
	MaxTimesheetHours        = 744 // 31 days
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

// NotBlank fails for strings that are empty once surrounding whitespace is removed.
func (fv *FieldValidator) NotBlank(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case *string:
			if v != nil {
				s = *v
			}
		}
		if strings.TrimSpace(s) == "" {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if utf8.RuneCountInString(v) > max {
				message := fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max)
				return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

// DecimalRange checks min <= value <= max for decimal values.
func (fv *FieldValidator) DecimalRange(min, max decimal.Decimal, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(decimal.Decimal)
		if !ok {
			return nil
		}
		if v.LessThan(min) || v.GreaterThan(max) {
			message := fmt.Sprintf("%s must be between %s and %s", fv.FieldName, min.String(), max.String())
			return errors.NewValidationFieldError(fv.FieldName, message, code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
				continue
			}
			validationErrors = append(validationErrors, errors.ValidationError{
				Field:   field.FieldName,
				Message: appErr.Message,
				Code:    string(appErr.Code),
			})
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

// ValidateRejectionReason requires a reason with visible content.
func ValidateRejectionReason(reason string) *errors.AppError {
	validator := NewValidator()
	validator.Field("rejection_reason", reason).
		NotBlank(errors.ErrCodeRejectionReasonMissing).
		MaxLength(MaxRejectionReasonLength)
	return validator.Validate()
}

func ValidateTotalHours(hours decimal.Decimal) *errors.AppError {
	validator := NewValidator()
	validator.Field("total_hours", hours).
		DecimalRange(decimal.Zero, decimal.NewFromInt(MaxTimesheetHours), errors.ErrCodeInvalidHours)
	return validator.Validate()
}
