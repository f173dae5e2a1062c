// Package cookie sets and clears the two cookies the auth flow relies on.
package cookie

import (
	"net/http"
	"time"
)

// Cookie names used by the auth flow
const (
	StateCookie   = "spotify_auth_state"
	RefreshCookie = "refresh_key"
)

// StateMaxAge bounds how long a login may take before the callback.
const StateMaxAge = 10 * time.Minute

// Jar writes cookies with consistent attributes. When Secure is set the
// refresh cookie is sent cross-site (SameSite=None; Secure), which browsers
// only accept over https.
type Jar struct {
	Secure bool
}

// SetState stores the anti-forgery state for the pending login
func (j Jar) SetState(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(StateMaxAge.Seconds()),
	})
}

// ClearState removes the state cookie
func (j Jar) ClearState(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// SetRefresh stores the refresh token
func (j Jar) SetRefresh(w http.ResponseWriter, value string) {
	http.SetCookie(w, j.refresh(value, 0))
}

// ClearRefresh removes the refresh token. The attributes must match the ones
// used by SetRefresh or browsers keep the original cookie.
func (j Jar) ClearRefresh(w http.ResponseWriter) {
	http.SetCookie(w, j.refresh("", -1))
}

func (j Jar) refresh(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     RefreshCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   maxAge,
		SameSite: http.SameSiteLaxMode,
	}
	if j.Secure {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

// Get retrieves a non-empty cookie value from the request
func Get(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
