package errors

import (
	"encoding/json"
	"net/http"
)

func New(httpStatus int, code, errType, message string) *APIError {
	return &APIError{HTTPStatus: httpStatus, Code: code, Type: errType, Message: message}
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) WithDetails(details map[string]interface{}) *APIError {
	e.Details = details
	return e
}

func (e *APIError) ToJSON(format ErrorFormat) ([]byte, error) {
	switch format {
	case FormatDetailed:
		errObj := DetailedError{}
		errObj.Error.Message = e.Message
		errObj.Error.Type = e.Type
		errObj.Error.Code = e.Code
		errObj.Error.Details = e.Details
		return json.Marshal(errObj)
	default:
		return json.Marshal(SimpleError{Error: e.Message, Code: e.Code, Details: e.Details})
	}
}

// BadRequest reports an invalid request body or parameter.
func BadRequest(message string) *APIError {
	return New(http.StatusBadRequest, "invalid_request", "invalid_request_error", message)
}

// NotFound reports an unknown route or resource.
func NotFound(message string) *APIError {
	return New(http.StatusNotFound, "not_found", "invalid_request_error", message)
}

// TooLarge reports a body over the accepted size.
func TooLarge(message string) *APIError {
	return New(http.StatusRequestEntityTooLarge, "payload_too_large", "invalid_request_error", message)
}

// Unavailable reports a dependency that is not configured or reachable.
func Unavailable(message string) *APIError {
	return New(http.StatusServiceUnavailable, "service_unavailable", "server_error", message)
}

// Internal reports an unexpected failure.
func Internal(message string) *APIError {
	return New(http.StatusInternalServerError, "server_error", "server_error", message)
}

// RateLimited reports a rejected request from the limiter.
func RateLimited() *APIError {
	return New(http.StatusTooManyRequests, "rate_limit_exceeded", "rate_limit_error", "Rate limit exceeded")
}
