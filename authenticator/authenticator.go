package authenticator

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// Token represents the token pair issued to a user
type Token struct {
	AccessToken  string
	RefreshToken string
	// Expiry of the access token in unix seconds, zero when unknown
	Expiry int64
}

// Provider interface abstracts OAuth provider operations
type Provider interface {
	// AuthCodeURL returns the URL the browser is sent to for consent.
	AuthCodeURL(state string) string
	// ExchangeCode trades an authorization code for a token pair.
	ExchangeCode(ctx context.Context, code string) (*Token, error)
	// Refresh mints a new access token. The returned RefreshToken is the
	// rotated one, or the input when the provider did not rotate it.
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
	// ClientTokenSource returns the cached client-credentials token source.
	ClientTokenSource() oauth2.TokenSource
}

// TokenError is returned when the token endpoint rejects a request.
type TokenError struct {
	StatusCode  int
	Code        string
	Description string
	err         error
}

func (e *TokenError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("token endpoint: %s: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("token endpoint: %s", e.Code)
}

func (e *TokenError) Unwrap() error {
	return e.err
}

// asTokenError converts an oauth2 retrieve error into a *TokenError. Other
// errors (transport failures, timeouts) are returned wrapped as-is.
func asTokenError(op string, err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return fmt.Errorf("%s: %w", op, err)
	}

	te := &TokenError{
		Code:        re.ErrorCode,
		Description: re.ErrorDescription,
		err:         err,
	}
	if re.Response != nil {
		te.StatusCode = re.Response.StatusCode
	}
	// Non-JSON error bodies carry no code
	if te.Code == "" {
		te.Code = "token_request_failed"
	}
	return te
}
