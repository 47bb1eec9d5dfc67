package domain

import (
	"errors"
	"net/http"
)

// AppError es un error operacional: esperado, con mensaje seguro para el cliente y código HTTP.
// Todo error que no sea AppError se considera de programación/infraestructura.
type AppError struct {
	StatusCode int
	Message    string
	cause      error
}

// NewAppError construye un error operacional.
func NewAppError(message string, statusCode int) *AppError {
	return &AppError{StatusCode: statusCode, Message: message}
}

// WrapAppError construye un error operacional conservando la causa original (para logs y modo development).
func WrapAppError(cause error, message string, statusCode int) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, cause: cause}
}

// NotFound 404 operacional; errors.Is(err, ErrNotFound) lo reconoce.
func NotFound(message string) *AppError {
	return WrapAppError(ErrNotFound, message, http.StatusNotFound)
}

// BadRequest 400 operacional.
func BadRequest(message string) *AppError {
	return NewAppError(message, http.StatusBadRequest)
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.cause }

// Status devuelve "fail" para 4xx y "error" para el resto.
func (e *AppError) Status() string {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return "fail"
	}
	return "error"
}

// AsAppError extrae el *AppError de la cadena de err, o nil si no hay ninguno.
func AsAppError(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
