package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	require.Failf(t, "cookie not set", "cookie %s missing", name)
	return nil
}

func TestStateCookie(t *testing.T) {
	jar := Jar{Secure: true}

	rec := httptest.NewRecorder()
	jar.SetState(rec, "abc")
	c := findCookie(t, rec, StateCookie)
	assert.Equal(t, "abc", c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, 600, c.MaxAge)
	assert.Equal(t, "/", c.Path)

	rec = httptest.NewRecorder()
	jar.ClearState(rec)
	c = findCookie(t, rec, StateCookie)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
}

func TestRefreshCookieSecure(t *testing.T) {
	jar := Jar{Secure: true}

	rec := httptest.NewRecorder()
	jar.SetRefresh(rec, "refresh")
	c := findCookie(t, rec, RefreshCookie)
	assert.Equal(t, "refresh", c.Value)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)

	rec = httptest.NewRecorder()
	jar.ClearRefresh(rec)
	c = findCookie(t, rec, RefreshCookie)
	assert.Equal(t, -1, c.MaxAge)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
}

func TestRefreshCookieInsecure(t *testing.T) {
	rec := httptest.NewRecorder()
	Jar{}.SetRefresh(rec, "refresh")

	c := findCookie(t, rec, RefreshCookie)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "r"})
	req.AddCookie(&http.Cookie{Name: StateCookie, Value: ""})

	v, ok := Get(req, RefreshCookie)
	assert.True(t, ok)
	assert.Equal(t, "r", v)

	_, ok = Get(req, StateCookie)
	assert.False(t, ok)

	_, ok = Get(req, "other")
	assert.False(t, ok)
}
