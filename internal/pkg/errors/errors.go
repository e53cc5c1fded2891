// Package errors renders API failures as the JSON error envelope.
package errors

import (
	"encoding/json"
	"net/http"
)

// Code is the machine-readable error code sent to clients.
type Code string

const (
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeGone         Code = "GONE"
	CodeRateLimited  Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// Status is the HTTP status a code is served with.
func (c Code) Status() int {
	switch c {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeGone:
		return http.StatusGone
	case CodeRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// Error is an API failure with optional string details.
type Error struct {
	Code    Code
	Message string
	Details map[string]string
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// With adds a detail and returns e.
func (e *Error) With(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

type response struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Code    Code              `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// Write sends e with the status its code maps to.
func Write(w http.ResponseWriter, e *Error) {
	status := e.Code.Status()
	WriteJSON(w, status, response{
		Error:   http.StatusText(status),
		Message: e.Message,
		Code:    e.Code,
		Details: e.Details,
	})
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
