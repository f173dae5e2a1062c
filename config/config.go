package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the process configuration. It is read once at startup and
// never mutated afterwards.
type Config struct {
	ClientID     string `env:"CLIENT_ID,required"`
	ClientSecret string `env:"CLIENT_SECRET,required"`
	RedirectURI  string `env:"RE_URI,required"`
	FrontEndURI  string `env:"FRONT_URI,required"`
	ExtraOrigin  string `env:"REXP"`

	Port      string `env:"PORT" envDefault:"4000"`
	StaticDir string `env:"STATIC_DIR" envDefault:"client/build"`

	// SecureCookies marks the refresh cookie SameSite=None; Secure.
	// Browsers drop such cookies on plain http, so disable it in development.
	SecureCookies bool `env:"COOKIE_SECURE" envDefault:"true"`

	AccountsURL         string        `env:"ACCOUNTS_URL" envDefault:"https://accounts.spotify.com"`
	ForwardAllowedHosts []string      `env:"FORWARD_ALLOWED_HOSTS" envDefault:"api.spotify.com" envSeparator:","`
	ForwardRateLimit    float64       `env:"FORWARD_RATE_LIMIT" envDefault:"10"`
	HTTPTimeout         time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`

	AuditDBPath string `env:"AUDIT_DB_PATH"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the configuration from the given key/value pairs instead of
// the process environment.
func LoadFrom(environment map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.FrontEndURI = strings.TrimRight(cfg.FrontEndURI, "/")
	cfg.AccountsURL = strings.TrimRight(cfg.AccountsURL, "/")
	cfg.ForwardAllowedHosts = normalizeHosts(cfg.ForwardAllowedHosts)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	urls := []struct{ name, value string }{
		{"RE_URI", c.RedirectURI},
		{"FRONT_URI", c.FrontEndURI},
		{"ACCOUNTS_URL", c.AccountsURL},
	}
	for _, u := range urls {
		if err := validateAbsoluteURL(u.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", u.name, err))
		}
	}

	if c.ForwardRateLimit < 0 {
		errs = append(errs, errors.New("FORWARD_RATE_LIMIT must not be negative"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// AllowedOrigins returns the cross-origin allow-list: the front end and the
// optional extra origin.
func (c *Config) AllowedOrigins() []string {
	origins := []string{c.FrontEndURI}
	if extra := strings.TrimRight(strings.TrimSpace(c.ExtraOrigin), "/"); extra != "" {
		origins = append(origins, extra)
	}
	return origins
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func validateAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// normalizeHosts lower-cases hosts and drops empty entries
func normalizeHosts(hosts []string) []string {
	result := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			result = append(result, h)
		}
	}
	return result
}
