package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// maxForwardBody caps how much of an upstream body is relayed.
const maxForwardBody = 10 << 20

// ForwardResult is the relayed upstream response
type ForwardResult struct {
	ContentType string
	Body        []byte
}

// ForwardService defines the interface for forwarding calls to the resource API
type ForwardService interface {
	Forward(ctx context.Context, endpoint string) (*ForwardResult, error)
}

// ForwardOptions configures a ForwardService
type ForwardOptions struct {
	// AllowedHosts restricts which hosts may be called. "*" allows any host.
	AllowedHosts []string
	// RateLimit is the number of outbound calls per second. Zero disables limiting.
	RateLimit float64
	// Timeout bounds each outbound call.
	Timeout time.Duration
}

type forwardService struct {
	tokens       oauth2.TokenSource
	httpClient   *http.Client
	allowedHosts []string
	allowAny     bool
	limiter      *rate.Limiter
	timeout      time.Duration
}

// NewForwardService creates a new forward service. tokens supplies the
// client-credentials access token attached to each call.
func NewForwardService(tokens oauth2.TokenSource, httpClient *http.Client, opts ForwardOptions) ForwardService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	s := &forwardService{
		tokens:       tokens,
		httpClient:   httpClient,
		allowedHosts: opts.AllowedHosts,
		allowAny:     slices.Contains(opts.AllowedHosts, "*"),
		timeout:      opts.Timeout,
	}

	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return s
}

// Forward performs an authenticated GET against endpoint and returns the body
func (s *forwardService) Forward(ctx context.Context, endpoint string) (*ForwardResult, error) {
	target, err := s.validateEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}

	token, err := s.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	token.SetAuthHeader(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxForwardBody))
		return nil, &UpstreamStatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxForwardBody+1))
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("%w: reading body: %v", ErrUpstreamUnreachable, err)
	}
	if len(body) > maxForwardBody {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrUpstreamTooLarge, maxForwardBody)
	}

	return &ForwardResult{
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// validateEndpoint requires an absolute http(s) URL on an allowed host.
// Listed hosts must be called over https unless they are loopback
// addresses, so the app token never crosses the network in cleartext.
func (s *forwardService) validateEndpoint(endpoint string) (*url.URL, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrInvalidEndpoint)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https", ErrInvalidEndpoint)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidEndpoint)
	}

	if !s.allowAny && !slices.Contains(s.allowedHosts, strings.ToLower(u.Hostname())) {
		return nil, fmt.Errorf("%w: %s", ErrEndpointNotAllowed, u.Hostname())
	}
	if !s.allowAny && u.Scheme != "https" && !isLoopback(u.Hostname()) {
		return nil, fmt.Errorf("%w: %s", ErrInsecureEndpoint, u.Hostname())
	}

	return u, nil
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
