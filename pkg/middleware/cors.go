package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4/middleware"
)

// AllowedMethods are the methods the funnel pages call
var AllowedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPatch,
}

// CORSConfig returns the CORS configuration for the funnel origins. The
// session cookie travels cross-origin, so credentials are allowed and
// origins must be listed explicitly.
func CORSConfig(origins []string) middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     AllowedMethods,
		AllowCredentials: true,
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			HeaderDocumentReferrer,
		},
	}
}
