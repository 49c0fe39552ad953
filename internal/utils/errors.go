package utils

import (
	"errors"
	"fmt"
)

// Error kinds shared by services and handlers. Match with errors.Is.
var (
	ErrValidation          = errors.New("VALIDATION_ERROR")
	ErrNotFound            = errors.New("NOT_FOUND")
	ErrForbidden           = errors.New("FORBIDDEN")
	ErrPersistence         = errors.New("PERSISTENCE_ERROR")
	ErrPartialProvisioning = errors.New("PARTIAL_PROVISIONING")
	ErrInsufficientCredit  = errors.New("INSUFFICIENT_CREDIT")
	ErrInvalidCredentials  = errors.New("INVALID_CREDENTIALS")
	ErrInactiveAccount     = errors.New("ACCOUNT_INACTIVE")
	ErrUpstream            = errors.New("UPSTREAM_ERROR")
	ErrInvalidToken        = errors.New("INVALID_TOKEN")
)

// AppError carries an error kind plus the context a caller needs to act on
// the failure: a specific code, the order involved and the failing stage.
type AppError struct {
	Kind    error
	Code    string
	Message string
	Stage   string
	OrderID int
	Err     error
}

func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.OrderID != 0 {
		msg = fmt.Sprintf("order %d: %s", e.OrderID, msg)
	}
	if e.Stage != "" {
		msg = fmt.Sprintf("%s (stage: %s)", msg, e.Stage)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause.
func (e *AppError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ForOrder attaches the order id.
func (e *AppError) ForOrder(id int) *AppError {
	e.OrderID = id
	return e
}

// AtStage attaches the failing stage.
func (e *AppError) AtStage(stage string) *AppError {
	e.Stage = stage
	return e
}

// Wrap attaches the underlying cause.
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// NewError builds an AppError of the given kind.
func NewError(kind error, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func ValidationError(code, message string) *AppError {
	return NewError(ErrValidation, code, message)
}

func NotFoundError(code, message string) *AppError {
	return NewError(ErrNotFound, code, message)
}

func ForbiddenError(message string) *AppError {
	return NewError(ErrForbidden, "FORBIDDEN", message)
}

// PersistenceError reports a failed store operation at the given stage.
func PersistenceError(stage string, err error) *AppError {
	return NewError(ErrPersistence, "PERSISTENCE_ERROR", "storage operation failed").AtStage(stage).Wrap(err)
}

// CodeOf returns the specific code of err, or the kind text when err is
// not an AppError.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Code != "" {
			return appErr.Code
		}
		return appErr.Kind.Error()
	}
	return "INTERNAL_ERROR"
}

// KindOf returns the kind of err, or nil when err is not an AppError.
func KindOf(err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return nil
}
