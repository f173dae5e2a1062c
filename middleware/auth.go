package middleware

import (
	"net/http"

	"github.com/blogem/spotify-auth-proxy/cookie"
	"github.com/blogem/spotify-auth-proxy/response"
	"github.com/blogem/spotify-auth-proxy/userctx"
)

// RequireRefreshToken ensures the request carries the refresh cookie.
// Without it the request is rejected with 400; with it the token is added
// to the request context for the handler.
func RequireRefreshToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshToken, ok := cookie.Get(r, cookie.RefreshCookie)
		if !ok {
			response.Error(w, http.StatusBadRequest, response.CodeMissingRefreshToken, "no refresh token cookie present")
			return
		}

		ctx := userctx.SetRefreshToken(r.Context(), refreshToken)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
