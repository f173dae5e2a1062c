package controllers

import (
	"github.com/charmbracelet/log"

	"github.com/blogem/spotify-auth-proxy/authenticator"
	"github.com/blogem/spotify-auth-proxy/config"
	"github.com/blogem/spotify-auth-proxy/cookie"
	"github.com/blogem/spotify-auth-proxy/services"
)

// Controllers holds all controller instances
type Controllers struct {
	Auth  *AuthController
	Proxy *ProxyController
	SPA   *SPAHandler
}

// NewControllers creates and initializes all controller instances
func NewControllers(cfg *config.Config, provider authenticator.Provider, services *services.Services, logger *log.Logger) *Controllers {
	return &Controllers{
		Auth:  NewAuthController(provider, cookie.Jar{Secure: cfg.SecureCookies}, cfg.FrontEndURI, logger),
		Proxy: NewProxyController(services, logger),
		SPA:   NewSPAHandler(cfg.StaticDir),
	}
}
