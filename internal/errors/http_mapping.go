package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"learnify-go/internal/agent"
	"learnify-go/internal/diagram"
	"learnify-go/internal/streaming"
)

// MapStatus maps an HTTP status to a standardized error.
func MapStatus(statusCode int, message string) *APIError {
	switch statusCode {
	case http.StatusBadRequest:
		return BadRequest(firstNonEmpty(message, "Invalid request"))
	case http.StatusNotFound:
		return NotFound(firstNonEmpty(message, "Resource not found"))
	case http.StatusRequestEntityTooLarge:
		return TooLarge(firstNonEmpty(message, "Request body too large"))
	case http.StatusTooManyRequests:
		return RateLimited()
	case http.StatusServiceUnavailable:
		return Unavailable(firstNonEmpty(message, "Service temporarily unavailable"))
	case http.StatusInternalServerError:
		return Internal(firstNonEmpty(message, "Internal server error"))
	default:
		return New(statusCode, "unknown_error", "server_error", firstNonEmpty(message, fmt.Sprintf("HTTP %d error", statusCode)))
	}
}

// MapStreamError maps a failure that happened before any envelope was
// written. Failures after that point travel as error envelopes instead.
func MapStreamError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	switch {
	case stderrors.As(err, &apiErr):
		return apiErr
	case stderrors.Is(err, agent.ErrNotConfigured):
		return Unavailable("Tutor agent is not configured")
	case stderrors.Is(err, diagram.ErrRendererUnavailable):
		return Unavailable("Diagram renderer is unavailable")
	case stderrors.Is(err, diagram.ErrEmptySource):
		return BadRequest("Diagram source is required")
	case stderrors.Is(err, context.DeadlineExceeded):
		return New(http.StatusGatewayTimeout, "timeout", "timeout_error", "Request timeout")
	case stderrors.Is(err, streaming.ErrTransportClosed), stderrors.Is(err, context.Canceled):
		return New(499, "client_closed", "client_error", "Client closed the connection")
	default:
		return Internal("Failed to process streaming response")
	}
}

func firstNonEmpty(strs ...string) string {
	for _, s := range strs {
		if s != "" {
			return s
		}
	}
	return ""
}
