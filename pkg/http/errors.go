package http

import (
	"fmt"
	"net/http"
)

// Error codes returned in AppError.Code.
const (
	CodeBadRequest    = "ERR_BAD_REQUEST"
	CodeNotFound      = "ERR_NOT_FOUND"
	CodeUnprocessable = "ERR_UNPROCESSABLE"
	CodeUpstream      = "ERR_UPSTREAM"
	CodeInternal      = "ERR_INTERNAL"
)

// AppError is an error that knows its HTTP status. Err stays server side.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// WithField names the query parameter at fault.
func (e *AppError) WithField(field string) *AppError {
	e.Field = field
	return e
}

func newAppError(status int, code, format string, a ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, a...), Status: status}
}

func BadRequestErrorf(format string, a ...interface{}) *AppError {
	return newAppError(http.StatusBadRequest, CodeBadRequest, format, a...)
}

// NotFoundErrorf is used when the provider has no candles for a symbol.
func NotFoundErrorf(format string, a ...interface{}) *AppError {
	return newAppError(http.StatusNotFound, CodeNotFound, format, a...)
}

// UnprocessableErrorf is used when fetched candles are malformed.
func UnprocessableErrorf(format string, a ...interface{}) *AppError {
	return newAppError(http.StatusUnprocessableEntity, CodeUnprocessable, format, a...)
}

// BadGatewayErrorf is used when the market-data provider fails.
func BadGatewayErrorf(format string, a ...interface{}) *AppError {
	return newAppError(http.StatusBadGateway, CodeUpstream, format, a...)
}

func InternalErrorf(format string, a ...interface{}) *AppError {
	return newAppError(http.StatusInternalServerError, CodeInternal, format, a...)
}
