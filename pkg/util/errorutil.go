package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes shared by the services and the HTTP adapter.
const (
	CodeValidation           = "VALIDATION_FAILED"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeWorkerNotFound       = "WORKER_NOT_FOUND"
	CodeTransitionInProgress = "TRANSITION_IN_PROGRESS"
	CodeSimulatedFailure     = "SIMULATED_FAILURE"
	CodeAuthFailed           = "AUTH_FAILED"
	CodeNotFound             = "NOT_FOUND"
	CodeConflict             = "CONFLICT"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeInternal             = "INTERNAL_ERROR"
)

// AuthFailedMessage is the only message an authentication failure carries.
const AuthFailedMessage = "Invalid credentials. Please check your email and password."

// Sentinels for errors.Is matching; comparison is by code.
var (
	ErrValidation           = &DomainError{Code: CodeValidation}
	ErrInvalidTransition    = &DomainError{Code: CodeInvalidTransition}
	ErrWorkerNotFound       = &DomainError{Code: CodeWorkerNotFound}
	ErrTransitionInProgress = &DomainError{Code: CodeTransitionInProgress}
	ErrSimulatedFailure     = &DomainError{Code: CodeSimulatedFailure}
	ErrAuthFailed           = &DomainError{Code: CodeAuthFailed}
	ErrNotFound             = &DomainError{Code: CodeNotFound}
	ErrConflict             = &DomainError{Code: CodeConflict}
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

// Is matches another DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewInvalidTransition(from, trigger string) error {
	return NewDomainError(CodeInvalidTransition,
		fmt.Sprintf("cannot %s a task that is %s", trigger, from),
		http.StatusConflict,
		map[string]any{"status": from, "trigger": trigger})
}

func NewWorkerNotFound(workerID string) error {
	return NewDomainError(CodeWorkerNotFound, "worker not found",
		http.StatusNotFound, map[string]any{"worker_id": workerID})
}

func NewTransitionInProgress(taskID string) error {
	return NewDomainError(CodeTransitionInProgress, "another update for this task is still in progress",
		http.StatusConflict, map[string]any{"task_id": taskID})
}

func NewSimulatedFailure(operation string) error {
	return NewDomainError(CodeSimulatedFailure, "remote service unavailable",
		http.StatusServiceUnavailable, map[string]any{"operation": operation})
}

// NewAuthError never says which of the credentials was wrong.
func NewAuthError() error {
	return NewDomainError(CodeAuthFailed, AuthFailedMessage, http.StatusUnauthorized, nil)
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

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		if domainErr.HTTPStatus == 0 {
			domainErr.HTTPStatus = http.StatusInternalServerError
		}
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
