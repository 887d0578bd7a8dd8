package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/funneltrack/pkg/identity"
	"github.com/jordanlanch/funneltrack/pkg/tracking"
)

// HeaderDocumentReferrer carries document.referrer of the funnel page. The
// Referer header of an API call is the funnel page itself.
const HeaderDocumentReferrer = "X-Document-Referrer"

const sessionContextKey = "tracking_session"

// Session resolves the session cookie, creating it on first contact, and
// stores the request's tracking.Session on the echo context
func Session(provider *identity.Provider, cookie identity.CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			storage := identity.NewCookieStorage(c, cookie)

			c.Set(sessionContextKey, tracking.Session{
				ID:        provider.GetOrCreate(storage),
				UserAgent: req.UserAgent(),
				IPAddress: c.RealIP(),
				PageURL:   req.Referer(),
				Referrer:  req.Header.Get(HeaderDocumentReferrer),
			})
			return next(c)
		}
	}
}

// SessionFrom returns the tracking session stored by Session. Requests that
// did not pass through it get a session with an empty id.
func SessionFrom(c echo.Context) tracking.Session {
	if sess, ok := c.Get(sessionContextKey).(tracking.Session); ok {
		return sess
	}
	return tracking.Session{
		UserAgent: c.Request().UserAgent(),
		IPAddress: c.RealIP(),
	}
}
