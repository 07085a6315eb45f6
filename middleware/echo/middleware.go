// Package echomw adapts middleware.Decode to echo.
package echomw

import (
	"github.com/labstack/echo/v4"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/middleware"
)

// Validate decodes the request body into a T in one of formats and stores it
// for Get, or answers with the issues document when decoding fails.
func Validate[T any, PT interface {
	*T
	wc.Unmarshaler
}](formats []wc.Format, opt wc.DecodeOpt) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v, f, err := middleware.Decode[T, PT](c.Request(), formats, opt)
			if err != nil {
				status, ct, body := middleware.Failure(f, err)
				return c.Blob(status, ct, body)
			}
			c.SetRequest(c.Request().WithContext(middleware.ContextWithDecoded(c.Request().Context(), v)))
			return next(c)
		}
	}
}

// Get fetches the decoded body from echo.Context.
func Get[T any](c echo.Context) (*T, bool) {
	return middleware.DecodedFromContext[T](c.Request().Context())
}
