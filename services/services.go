package services

import (
	"net/http"

	"github.com/blogem/spotify-auth-proxy/authenticator"
	"github.com/blogem/spotify-auth-proxy/config"
)

// Services holds all service instances
type Services struct {
	Forward ForwardService
}

// NewServices creates and initializes all service instances
func NewServices(cfg *config.Config, provider authenticator.Provider, httpClient *http.Client) *Services {
	return &Services{
		Forward: NewForwardService(provider.ClientTokenSource(), httpClient, ForwardOptions{
			AllowedHosts: cfg.ForwardAllowedHosts,
			RateLimit:    cfg.ForwardRateLimit,
			Timeout:      cfg.HTTPTimeout,
		}),
	}
}
