/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package extract

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput marks a client upload that cannot be forwarded.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstreamProtocol marks an extraction response that is not JSON.
	ErrUpstreamProtocol = errors.New("upstream protocol error")
	// ErrUpstreamUnavailable marks a failure to reach the extraction service.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrInternal marks any other proxy failure.
	ErrInternal = errors.New("internal error")
)

// Error is a proxy failure with the message and details shown to clients
type Error struct {
	Kind    error
	Message string
	Details string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Kind.Error() + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Status maps the error kind to the HTTP status returned to clients.
func (e *Error) Status() int {
	switch {
	case errors.Is(e.Kind, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(e.Kind, ErrUpstreamProtocol):
		return http.StatusBadGateway
	case errors.Is(e.Kind, ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Body is the JSON error body for clients.
func (e *Error) Body() map[string]string {
	body := map[string]string{"error": e.Message}
	if e.Details != "" {
		body["details"] = e.Details
	}
	return body
}

// AsError converts err into an *Error, classifying unknown errors as internal.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{
		Kind:    ErrInternal,
		Message: "Internal server error",
		Details: err.Error(),
		Cause:   err,
	}
}
