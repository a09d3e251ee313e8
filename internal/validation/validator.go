// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/goodwatch/goodwatch/internal/engine"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single field validation failure.
type FieldError struct {
	field   string
	tag     string
	param   string
	value   any
	message string
}

// Field returns the struct field name that failed validation.
func (e *FieldError) Field() string { return e.field }

// Tag returns the validation tag that failed.
func (e *FieldError) Tag() string { return e.tag }

// Param returns the tag parameter, e.g. "128" for max=128.
func (e *FieldError) Param() string { return e.param }

// Value returns the value that failed validation.
func (e *FieldError) Value() any { return e.value }

// Error returns the human-readable message.
func (e *FieldError) Error() string { return e.message }

// RequestValidationError collects the field failures of one request.
type RequestValidationError struct {
	errors []FieldError
}

// Errors returns the field failures.
func (ve *RequestValidationError) Errors() []FieldError {
	return ve.errors
}

// Error implements the error interface with a combined message.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errors))
	for i, err := range ve.errors {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// APIError is the error envelope the HTTP layer serializes. It mirrors
// the api package's shape to avoid an import cycle.
type APIError struct {
	Code    string
	Message string
	Details map[string]any
}

// ToAPIError converts the failures to the API error envelope.
func (ve *RequestValidationError) ToAPIError() *APIError {
	if len(ve.errors) == 0 {
		return &APIError{
			Code:    "VALIDATION_ERROR",
			Message: "Validation failed",
		}
	}

	if len(ve.errors) == 1 {
		err := ve.errors[0]
		return &APIError{
			Code:    "VALIDATION_ERROR",
			Message: err.message,
			Details: map[string]any{
				"field": err.field,
				"tag":   err.tag,
				"value": err.value,
			},
		}
	}

	fields := make([]map[string]any, len(ve.errors))
	messages := make([]string, len(ve.errors))
	for i, err := range ve.errors {
		fields[i] = map[string]any{
			"field":   err.field,
			"tag":     err.tag,
			"message": err.message,
		}
		messages[i] = fmt.Sprintf("%s: %s", err.field, err.message)
	}
	return &APIError{
		Code:    "VALIDATION_ERROR",
		Message: strings.Join(messages, "; "),
		Details: map[string]any{
			"fields": fields,
		},
	}
}

// GetValidator returns the singleton validator. Thread-safe; struct
// info is cached after the first validation of each type.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		must := func(err error) {
			if err != nil {
				panic(fmt.Sprintf("register validator: %v", err))
			}
		}
		must(validate.RegisterValidation("mood", validMood))
		must(validate.RegisterValidation("contenttype", validContentType))
		must(validate.RegisterValidation("eventkind", validEventKind))
		must(validate.RegisterValidation("flowevent", validFlowEvent))
	})
	return validate
}

func validMood(fl validator.FieldLevel) bool {
	return engine.Mood(fl.Field().String()).Valid()
}

func validContentType(fl validator.FieldLevel) bool {
	switch engine.ContentType(fl.Field().String()) {
	case engine.ContentMovie, engine.ContentSeries:
		return true
	default:
		return false
	}
}

func validEventKind(fl validator.FieldLevel) bool {
	_, ok := engine.ParseEventKind(fl.Field().String())
	return ok
}

var flowEvents = map[engine.FlowEvent]struct{}{
	engine.FlowStart:       {},
	engine.FlowCalibrate:   {},
	engine.FlowResume:      {},
	engine.FlowInputsValid: {},
	engine.FlowShowPick:    {},
	engine.FlowAccept:      {},
	engine.FlowAlreadySeen: {},
	engine.FlowReject:      {},
	engine.FlowRetry:       {},
	engine.FlowReplace:     {},
	engine.FlowReset:       {},
	engine.FlowExit:        {},
}

func validFlowEvent(fl validator.FieldLevel) bool {
	_, ok := flowEvents[engine.FlowEvent(fl.Field().String())]
	return ok
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil on success, *RequestValidationError otherwise.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []FieldError{
				{field: "unknown", tag: "unknown", message: err.Error()},
			},
		}
	}

	fieldErrors := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fieldErrors[i] = FieldError{
			field:   fe.Field(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: translateError(fe),
		}
	}
	return &RequestValidationError{errors: fieldErrors}
}

var errorMessageTemplates = map[string]string{
	"required":    "%s is required",
	"mood":        "%s must be a valid mood (tired, upbeat, focused, adventurous, surprise_me)",
	"contenttype": "%s must be movie or series",
	"eventkind":   "%s must be a valid interaction event kind",
	"flowevent":   "%s must be a valid flow event",
	"datetime":    "%s must be a valid date/time in RFC3339 format",
	"uuid":        "%s must be a valid UUID",
}

var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}
	return translateMinMax(fe, field, tag, param)
}

func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	isString := fe.Kind().String() == "string"

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
