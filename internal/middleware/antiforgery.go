package middleware

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// AntiForgery binds every mutating request to a token issued in the _csrf
// cookie; the token must come back in the form field or header.
func AntiForgery() echo.MiddlewareFunc {
	return echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup:    "form:_csrf,header:X-CSRF-Token",
		CookieName:     "_csrf",
		CookieHTTPOnly: false,
		CookiePath:     "/",
	})
}
