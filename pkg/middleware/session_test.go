package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/funneltrack/pkg/identity"
	"github.com/jordanlanch/funneltrack/pkg/tracking"
)

func TestSession_CreatesCookieAndContext(t *testing.T) {
	e := echo.New()
	provider := identity.NewProvider(identity.DefaultKey, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/track/page-views", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 Firefox/121.0")
	req.Header.Set("Referer", "https://funnel.example.com/quiz?utm_source=tiktok")
	req.Header.Set(HeaderDocumentReferrer, "https://www.tiktok.com/")
	req.Header.Set(echo.HeaderXRealIP, "198.51.100.4")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got tracking.Session
	handler := Session(provider, identity.CookieConfig{})(func(c echo.Context) error {
		got = SessionFrom(c)
		return c.NoContent(http.StatusAccepted)
	})
	require.NoError(t, handler(c))

	assert.Regexp(t, `^session_\d+_[a-z0-9]{9}$`, got.ID)
	assert.Equal(t, "Mozilla/5.0 Firefox/121.0", got.UserAgent)
	assert.Equal(t, "198.51.100.4", got.IPAddress)
	assert.Equal(t, "/quiz", got.PagePath())
	assert.Equal(t, "tiktok", got.UTM().Source)
	assert.Equal(t, "https://www.tiktok.com/", got.Referrer)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, identity.DefaultKey, cookies[0].Name)
	assert.Equal(t, got.ID, cookies[0].Value)
}

func TestSession_ReusesExistingCookie(t *testing.T) {
	e := echo.New()
	provider := identity.NewProvider(identity.DefaultKey, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.AddCookie(&http.Cookie{Name: identity.DefaultKey, Value: "session_1700000000000_abcdefghi"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got tracking.Session
	handler := Session(provider, identity.CookieConfig{})(func(c echo.Context) error {
		got = SessionFrom(c)
		return nil
	})
	require.NoError(t, handler(c))

	assert.Equal(t, "session_1700000000000_abcdefghi", got.ID)
	assert.Empty(t, rec.Result().Cookies(), "existing cookie is not rewritten")
}

func TestSessionFrom_WithoutMiddleware(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "curl/8.0")

	sess := SessionFrom(e.NewContext(req, httptest.NewRecorder()))

	assert.Empty(t, sess.ID)
	assert.Equal(t, "curl/8.0", sess.UserAgent)
}
