// Package ginmw adapts middleware.Validate to gin.
package ginmw

import (
	"github.com/gin-gonic/gin"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/middleware"
)

// Validate decodes the request body into a T and stores it for Get. On
// failure it aborts with the issues document.
func Validate[T any, PT interface {
	*T
	wc.Unmarshaler
}](formats []wc.Format, opt wc.DecodeOpt) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, f, err := middleware.Decode[T, PT](c.Request, formats, opt)
		if err != nil {
			status, ct, body := middleware.Failure(f, err)
			c.Data(status, ct, body)
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithDecoded(c.Request.Context(), v))
		c.Next()
	}
}

// Get fetches the decoded body from gin.Context.
func Get[T any](c *gin.Context) (*T, bool) {
	return middleware.DecodedFromContext[T](c.Request.Context())
}
