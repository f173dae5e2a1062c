package authenticator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	server      *httptest.Server
	clientCalls atomic.Int32
	lastForm    url.Values
}

func newFakeAccounts(t *testing.T) *fakeAccounts {
	fa := &fakeAccounts{}
	fa.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/token" {
			http.NotFound(w, r)
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}

		require.NoError(t, r.ParseForm())
		fa.lastForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		switch r.PostForm.Get("grant_type") {
		case "authorization_code":
			if r.PostForm.Get("code") != "good-code" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid authorization code"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "user-access",
				"refresh_token": "user-refresh",
				"token_type":    "Bearer",
				"expires_in":    3600,
			})
		case "refresh_token":
			switch r.PostForm.Get("refresh_token") {
			case "rotate-me":
				_ = json.NewEncoder(w).Encode(map[string]any{
					"access_token":  "fresh-access",
					"refresh_token": "rotated-refresh",
					"token_type":    "Bearer",
					"expires_in":    3600,
				})
			case "keep-me":
				_ = json.NewEncoder(w).Encode(map[string]any{
					"access_token": "fresh-access",
					"token_type":   "Bearer",
					"expires_in":   3600,
				})
			default:
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid refresh token"}`))
			}
		case "client_credentials":
			fa.clientCalls.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "app-access",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"unsupported_grant_type"}`))
		}
	}))
	t.Cleanup(fa.server.Close)
	return fa
}

func newTestProvider(t *testing.T, accountsURL string) *SpotifyProvider {
	p, err := NewSpotifyProvider(SpotifyConfig{
		AccountsURL:  accountsURL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "http://localhost:4000/api/callback",
	})
	require.NoError(t, err)
	return p
}

func TestNewSpotifyProviderValidation(t *testing.T) {
	_, err := NewSpotifyProvider(SpotifyConfig{AccountsURL: "https://accounts.example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client ID")
}

func TestAuthCodeURL(t *testing.T) {
	p := newTestProvider(t, "https://accounts.example.com")

	raw := p.AuthCodeURL("abc123")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "accounts.example.com", u.Host)
	assert.Equal(t, "/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost:4000/api/callback", q.Get("redirect_uri"))
	assert.Equal(t, "abc123", q.Get("state"))
	assert.Equal(t, "true", q.Get("show_dialog"))
	assert.Equal(t, strings.Join(Scopes, " "), q.Get("scope"))
}

func TestExchangeCode(t *testing.T) {
	fa := newFakeAccounts(t)
	p := newTestProvider(t, fa.server.URL)

	token, err := p.ExchangeCode(context.Background(), "good-code")
	require.NoError(t, err)

	assert.Equal(t, "user-access", token.AccessToken)
	assert.Equal(t, "user-refresh", token.RefreshToken)
	assert.NotZero(t, token.Expiry)
	assert.Equal(t, "http://localhost:4000/api/callback", fa.lastForm.Get("redirect_uri"))
}

func TestExchangeCodeRejected(t *testing.T) {
	fa := newFakeAccounts(t)
	p := newTestProvider(t, fa.server.URL)

	_, err := p.ExchangeCode(context.Background(), "bad-code")
	require.Error(t, err)

	var te *TokenError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusBadRequest, te.StatusCode)
	assert.Equal(t, "invalid_grant", te.Code)
	assert.Equal(t, "Invalid authorization code", te.Description)
}

func TestRefresh(t *testing.T) {
	fa := newFakeAccounts(t)
	p := newTestProvider(t, fa.server.URL)

	t.Run("rotated", func(t *testing.T) {
		token, err := p.Refresh(context.Background(), "rotate-me")
		require.NoError(t, err)
		assert.Equal(t, "fresh-access", token.AccessToken)
		assert.Equal(t, "rotated-refresh", token.RefreshToken)
	})

	t.Run("not rotated keeps input", func(t *testing.T) {
		token, err := p.Refresh(context.Background(), "keep-me")
		require.NoError(t, err)
		assert.Equal(t, "fresh-access", token.AccessToken)
		assert.Equal(t, "keep-me", token.RefreshToken)
	})

	t.Run("rejected", func(t *testing.T) {
		_, err := p.Refresh(context.Background(), "revoked")
		var te *TokenError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "invalid_grant", te.Code)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := p.Refresh(context.Background(), "")
		require.Error(t, err)
	})
}

func TestClientTokenSourceIsCached(t *testing.T) {
	fa := newFakeAccounts(t)
	p := newTestProvider(t, fa.server.URL)

	for range 3 {
		tok, err := p.ClientTokenSource().Token()
		require.NoError(t, err)
		assert.Equal(t, "app-access", tok.AccessToken)
	}

	assert.Equal(t, int32(1), fa.clientCalls.Load())
}

func TestTransportErrorIsNotTokenError(t *testing.T) {
	fa := newFakeAccounts(t)
	target := fa.server.URL
	fa.server.Close()

	p := newTestProvider(t, target)
	_, err := p.ExchangeCode(context.Background(), "good-code")
	require.Error(t, err)

	var te *TokenError
	assert.False(t, errors.As(err, &te))
}

func TestNonJSONErrorGetsDefaultCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("<html>down</html>"))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)
	_, err := p.Refresh(context.Background(), "anything")

	var te *TokenError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
	assert.Equal(t, "token_request_failed", te.Code)
}
