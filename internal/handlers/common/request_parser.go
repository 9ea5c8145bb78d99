package common

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "learnify-go/internal/errors"
	"github.com/gin-gonic/gin"
)

// BindJSON decodes the request body into dst. Bodies larger than maxBytes
// are rejected with 413; an empty body leaves dst untouched so routes that
// take no input still accept a bare POST.
func BindJSON(c *gin.Context, dst any, maxBytes int64) *apperrors.APIError {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}
	dec := json.NewDecoder(c.Request.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.As(err, &tooLarge):
			return apperrors.TooLarge("Request body too large").WithDetails(map[string]interface{}{"limit_bytes": tooLarge.Limit})
		default:
			return apperrors.BadRequest("Invalid JSON body")
		}
	}
	return nil
}
