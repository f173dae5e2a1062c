package controllers

import (
	"crypto/rand"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/blogem/spotify-auth-proxy/authenticator"
	"github.com/blogem/spotify-auth-proxy/cookie"
	"github.com/blogem/spotify-auth-proxy/models"
	"github.com/blogem/spotify-auth-proxy/response"
	"github.com/blogem/spotify-auth-proxy/userctx"
)

// Callback error tags read by the front end
const (
	errStateMismatch = "state_mismatch"
	errInvalidToken  = "invalid_token"
)

const (
	stateLength   = 16
	stateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// AuthController handles the authorization-code flow
type AuthController struct {
	provider    authenticator.Provider
	jar         cookie.Jar
	frontEndURI string
	logger      *log.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(provider authenticator.Provider, jar cookie.Jar, frontEndURI string, logger *log.Logger) *AuthController {
	return &AuthController{
		provider:    provider,
		jar:         jar,
		frontEndURI: frontEndURI,
		logger:      logger,
	}
}

// Login handles GET /login
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	// Generate random state
	state, err := generateRandomState()
	if err != nil {
		ac.logger.Error("failed to generate state", "err", err)
		response.Error(w, http.StatusInternalServerError, response.CodeInternal, "failed to start login")
		return
	}

	// Save the state in a cookie to validate in callback
	ac.jar.SetState(w, state)

	http.Redirect(w, r, ac.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /callback
func (ac *AuthController) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	state := query.Get("state")
	storedState, _ := cookie.Get(r, cookie.StateCookie)

	// The state is single use whatever happens next
	ac.jar.ClearState(w)

	// Verify state
	if state == "" || state != storedState {
		ac.logger.Warn("callback state mismatch", "has_cookie", storedState != "", "has_state", state != "")
		ac.redirectQuery(w, r, url.Values{"error": {errStateMismatch}})
		return
	}

	// The user declined or the provider failed before issuing a code
	if providerErr := query.Get("error"); providerErr != "" {
		ac.logger.Info("authorization not granted", "error", providerErr)
		ac.redirectFragment(w, r, url.Values{"error": {providerErr}})
		return
	}

	code := query.Get("code")
	if code == "" {
		ac.logger.Warn("callback without code")
		ac.redirectFragment(w, r, url.Values{"error": {errInvalidToken}})
		return
	}

	// Exchange the code for a token
	token, err := ac.provider.ExchangeCode(r.Context(), code)
	if err != nil {
		ac.logger.Error("failed to exchange authorization code", "err", err)
		ac.redirectFragment(w, r, url.Values{"error": {errInvalidToken}})
		return
	}

	// Without a refresh token the session cannot be renewed later
	if token.AccessToken == "" || token.RefreshToken == "" {
		ac.logger.Error("token response is missing tokens", "has_access", token.AccessToken != "", "has_refresh", token.RefreshToken != "")
		ac.redirectFragment(w, r, url.Values{"error": {errInvalidToken}})
		return
	}

	ac.jar.SetRefresh(w, token.RefreshToken)

	ac.redirectFragment(w, r, url.Values{
		"access_token":  {token.AccessToken},
		"refresh_token": {token.RefreshToken},
	})
}

// RefreshToken handles GET /refresh_token. The refresh cookie is required
// by middleware.RequireRefreshToken.
func (ac *AuthController) RefreshToken(w http.ResponseWriter, r *http.Request) {
	refreshToken := userctx.GetRefreshToken(r.Context())
	if refreshToken == "" {
		response.Error(w, http.StatusBadRequest, response.CodeMissingRefreshToken, "no refresh token cookie present")
		return
	}

	token, err := ac.provider.Refresh(r.Context(), refreshToken)
	if err != nil {
		var te *authenticator.TokenError
		if errors.As(err, &te) {
			ac.logger.Warn("refresh rejected by provider", "error", te.Code, "status", te.StatusCode)
			response.Error(w, http.StatusBadRequest, te.Code, te.Description)
			return
		}

		ac.logger.Error("failed to refresh token", "err", err)
		response.Error(w, http.StatusBadRequest, response.CodeRefreshFailed, "could not reach the token service")
		return
	}

	// in case a new refresh token is sent back
	if token.RefreshToken != "" && token.RefreshToken != refreshToken {
		ac.jar.SetRefresh(w, token.RefreshToken)
	}

	_ = response.JSON(w, http.StatusOK, models.AccessTokenResponse{
		AccessToken: token.AccessToken,
		ExpiresIn:   expiresIn(token.Expiry, time.Now()),
	})
}

// Logout handles GET /logout
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	ac.jar.ClearRefresh(w)
	response.Text(w, http.StatusOK, "logged out")
}

func (ac *AuthController) redirectQuery(w http.ResponseWriter, r *http.Request, params url.Values) {
	http.Redirect(w, r, ac.frontEndURI+"/?"+params.Encode(), http.StatusFound)
}

func (ac *AuthController) redirectFragment(w http.ResponseWriter, r *http.Request, params url.Values) {
	http.Redirect(w, r, ac.frontEndURI+"/#"+params.Encode(), http.StatusFound)
}

// expiresIn converts an absolute expiry into seconds from now. Zero means
// unknown or already expired.
func expiresIn(expiry int64, now time.Time) int64 {
	if expiry == 0 {
		return 0
	}
	return max(expiry-now.Unix(), 0)
}

// generateRandomState generates a random alphanumeric state value for CSRF protection
func generateRandomState() (string, error) {
	// 248 is the largest multiple of len(stateAlphabet) below 256; bytes
	// above it are rejected to keep the distribution uniform.
	const limit = 256 - 256%len(stateAlphabet)

	state := make([]byte, 0, stateLength)
	buf := make([]byte, stateLength*2)
	for len(state) < stateLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			state = append(state, stateAlphabet[int(b)%len(stateAlphabet)])
			if len(state) == stateLength {
				break
			}
		}
	}
	return string(state), nil
}
