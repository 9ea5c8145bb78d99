package common

import (
	apperrors "learnify-go/internal/errors"
	"learnify-go/internal/httpformat"
	"github.com/gin-gonic/gin"
)

// AbortWithAPIError serializes the provided APIError using the detected error format and aborts the request.
func AbortWithAPIError(c *gin.Context, err *apperrors.APIError) {
	httpformat.Abort(c, err)
}

// AbortWithError maps a domain error to its HTTP status and aborts. It must
// only be used before the first envelope is written.
func AbortWithError(c *gin.Context, err error) {
	AbortWithAPIError(c, apperrors.MapStreamError(err))
}
