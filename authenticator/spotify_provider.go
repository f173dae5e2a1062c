package authenticator

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Scopes requested at login. The front end needs all of them.
var Scopes = []string{
	"user-read-private",
	"user-read-playback-state",
	"streaming",
	"user-modify-playback-state",
	"playlist-modify-public",
	"user-library-modify",
	"user-top-read",
	"user-read-currently-playing",
	"playlist-read-private",
	"user-follow-read",
	"user-read-recently-played",
	"playlist-modify-private",
	"user-follow-modify",
	"user-library-read",
	"user-read-email",
}

// SpotifyProvider implements the Provider interface for the Spotify accounts service
type SpotifyProvider struct {
	config     oauth2.Config
	clientTS   oauth2.TokenSource
	httpClient *http.Client
}

// SpotifyConfig holds Spotify-specific configuration
type SpotifyConfig struct {
	AccountsURL  string
	ClientID     string
	ClientSecret string
	CallbackURL  string
	// HTTPClient is used for every call to the token endpoint. Its Timeout
	// bounds each call.
	HTTPClient *http.Client
}

// NewSpotifyProvider creates a new Spotify provider with the given configuration
func NewSpotifyProvider(cfg SpotifyConfig) (*SpotifyProvider, error) {
	// Validate required configuration
	if cfg.AccountsURL == "" {
		return nil, errors.New("accounts URL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.CallbackURL == "" {
		return nil, errors.New("callback URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	tokenURL := cfg.AccountsURL + "/api/token"

	conf := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.CallbackURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.AccountsURL + "/authorize",
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		Scopes: Scopes,
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	// The client-credentials source outlives any single request, so it gets
	// a background context carrying only the HTTP client.
	bg := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)

	return &SpotifyProvider{
		config:     conf,
		clientTS:   cc.TokenSource(bg),
		httpClient: httpClient,
	}, nil
}

// AuthCodeURL returns the authorization URL. The consent dialog is always shown.
func (p *SpotifyProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// ExchangeCode exchanges an authorization code for tokens
func (p *SpotifyProvider) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	oauth2Token, err := p.config.Exchange(p.withClient(ctx), code)
	if err != nil {
		return nil, asTokenError("exchange code", err)
	}

	return toToken(oauth2Token), nil
}

// Refresh exchanges a refresh token for a new access token
func (p *SpotifyProvider) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, errors.New("refresh token is required")
	}

	// An empty access token is never valid, so Token() always hits the
	// token endpoint. oauth2 keeps the old refresh token when none is returned.
	ts := p.config.TokenSource(p.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	oauth2Token, err := ts.Token()
	if err != nil {
		return nil, asTokenError("refresh token", err)
	}

	return toToken(oauth2Token), nil
}

// ClientTokenSource returns the cached client-credentials token source
func (p *SpotifyProvider) ClientTokenSource() oauth2.TokenSource {
	return p.clientTS
}

func (p *SpotifyProvider) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// toToken converts oauth2.Token to our Token type
func toToken(t *oauth2.Token) *Token {
	token := &Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}
	if !t.Expiry.IsZero() {
		token.Expiry = t.Expiry.Unix()
	}
	return token
}
