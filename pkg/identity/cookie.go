package identity

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CookieConfig holds the attributes of the session cookie
type CookieConfig struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

// CookieStorage keeps each key in its own cookie on the current request.
// Values set during the request are visible to later Gets.
type CookieStorage struct {
	c      echo.Context
	cfg    CookieConfig
	values map[string]string
}

// NewCookieStorage binds storage to an echo request
func NewCookieStorage(c echo.Context, cfg CookieConfig) *CookieStorage {
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 365 * 24 * time.Hour
	}
	return &CookieStorage{c: c, cfg: cfg, values: make(map[string]string)}
}

func (s *CookieStorage) Get(key string) (string, bool) {
	if v, ok := s.values[key]; ok {
		return v, true
	}
	cookie, err := s.c.Cookie(key)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (s *CookieStorage) Set(key, value string) error {
	s.values[key] = value
	s.c.SetCookie(&http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		Domain:   s.cfg.Domain,
		MaxAge:   int(s.cfg.MaxAge.Seconds()),
		Secure:   s.cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
