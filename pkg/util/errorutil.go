package util

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/jackc/pgx/v5"
)

// Error codes shared by every layer. Handlers and middleware switch on these,
// never on message text.
const (
	CodeValidation              = "VALIDATION_FAILED"
	CodeInvalidID               = "INVALID_ID"
	CodeNotFound                = "NOT_FOUND"
	CodeConflict                = "CONFLICT"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeForbidden               = "FORBIDDEN"
	CodeInternal                = "INTERNAL_ERROR"
	CodeRateLimited             = "RATE_LIMITED"
	CodeInvalidCredentialFormat = "INVALID_CREDENTIALS_FORMAT"
	CodeAccountNotFound         = "ACCOUNT_NOT_FOUND"
	CodePasswordMismatch        = "PASSWORD_MISMATCH"
	CodeInvalidToken            = "INVALID_TOKEN"
	CodeSessionExpired          = "SESSION_EXPIRED"
	CodeInvalidSession          = "INVALID_SESSION"
	CodeEmptyCart               = "EMPTY_CART"
	CodeDelistedItem            = "DELISTED_ITEM"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

// NewBadRequest reports a rejected business rule with its own code.
func NewBadRequest(code, message string) error {
	return NewDomainError(code, message, http.StatusBadRequest, nil)
}

func NewInvalidID(resource string) error {
	return NewDomainError(CodeInvalidID, fmt.Sprintf("invalid %s id", resource), http.StatusBadRequest, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewAuthRejection reports a rejected login or session with a specific reason code.
func NewAuthRejection(code, message string) error {
	return NewDomainError(code, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// FromValidation converts ozzo-validation field errors into a VALIDATION_FAILED
// error whose message is the first failing field in name order. Internal
// validator faults stay internal.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return NewInternalError(err)
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return NewValidationError(err.Error(), nil)
	}
	keys := make([]string, 0, len(fieldErrs))
	for key, fieldErr := range fieldErrs {
		if fieldErr != nil {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	details := make(map[string]any, len(keys))
	for _, key := range keys {
		details[key] = fieldErrs[key].Error()
	}
	return NewValidationError(fieldErrs[keys[0]].Error(), details)
}

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
