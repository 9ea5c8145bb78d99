package httpformat

import (
	"net/http"
	"strings"

	apperrors "learnify-go/internal/errors"
	"github.com/gin-gonic/gin"
)

// ContextKey holds the server-wide error format on the gin context.
const ContextKey = "error_format"

// HeaderName lets a client ask for a specific error shape.
const HeaderName = "X-Error-Format"

// Parse maps a configured format name to an ErrorFormat; unknown names
// fall back to the simple shape.
func Parse(name string) apperrors.ErrorFormat {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case string(apperrors.FormatDetailed):
		return apperrors.FormatDetailed
	default:
		return apperrors.FormatSimple
	}
}

// Middleware stores the configured format for later error responses.
func Middleware(format apperrors.ErrorFormat) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKey, format)
		c.Next()
	}
}

// DetectFromContext determines the error format for a request. A request
// header wins over the configured default.
func DetectFromContext(c *gin.Context) apperrors.ErrorFormat {
	if c == nil {
		return apperrors.FormatSimple
	}
	if f := DetectFromRequest(c.Request); f != "" {
		return f
	}
	if v, ok := c.Get(ContextKey); ok {
		if f, ok := v.(apperrors.ErrorFormat); ok && f != "" {
			return f
		}
	}
	return apperrors.FormatSimple
}

// DetectFromRequest reads the format header; it returns "" when absent.
func DetectFromRequest(r *http.Request) apperrors.ErrorFormat {
	if r == nil {
		return ""
	}
	h := r.Header.Get(HeaderName)
	if h == "" {
		return ""
	}
	return Parse(h)
}

// Abort serializes err in the detected format and aborts the request.
func Abort(c *gin.Context, err *apperrors.APIError) {
	if err == nil {
		err = apperrors.Internal("unknown error")
	}
	status := err.HTTPStatus
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	payload, marshalErr := err.ToJSON(DetectFromContext(c))
	if marshalErr != nil {
		c.AbortWithStatusJSON(status, gin.H{"error": err.Message})
		return
	}
	c.Data(status, "application/json", payload)
	c.Abort()
}
