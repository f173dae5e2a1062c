package controllers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/blogem/spotify-auth-proxy/models"
	"github.com/blogem/spotify-auth-proxy/response"
	"github.com/blogem/spotify-auth-proxy/services"
)

// maxRequestBody caps the forward request body.
const maxRequestBody = 1 << 20

// ProxyController forwards calls to the resource API
type ProxyController struct {
	services *services.Services
	logger   *log.Logger
}

// NewProxyController creates a new proxy controller
func NewProxyController(services *services.Services, logger *log.Logger) *ProxyController {
	return &ProxyController{
		services: services,
		logger:   logger,
	}
}

// Forward handles POST /
func (c *ProxyController) Forward(w http.ResponseWriter, r *http.Request) {
	req, err := decodeForwardRequest(w, r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, err.Error())
		return
	}

	if errs := req.Validate(); errs.HasErrors() {
		response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, strings.Join(errs.GetMessages(), "; "))
		return
	}

	result, err := c.services.Forward.Forward(r.Context(), req.Endpoint)
	if err != nil {
		c.writeForwardError(w, err)
		return
	}

	contentType := result.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Body)
}

// writeForwardError maps service errors to a status and a redacted message
func (c *ProxyController) writeForwardError(w http.ResponseWriter, err error) {
	var statusErr *services.UpstreamStatusError

	switch {
	case errors.Is(err, services.ErrInvalidEndpoint):
		response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, "endpoint must be an absolute http(s) URL")
	case errors.Is(err, services.ErrInsecureEndpoint):
		response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, "endpoint must use https")
	case errors.Is(err, services.ErrEndpointNotAllowed):
		response.Error(w, http.StatusForbidden, response.CodeForbiddenEndpoint, "endpoint host is not allowed")
	case errors.Is(err, services.ErrRateLimited):
		response.Error(w, http.StatusTooManyRequests, response.CodeRateLimited, "too many forwarded requests")
	case errors.Is(err, services.ErrUpstreamAuth):
		c.logger.Error("client credentials token failed", "err", err)
		response.Error(w, http.StatusBadGateway, response.CodeUpstreamAuthFailed, "could not authenticate with the provider")
	case errors.Is(err, services.ErrUpstreamTimeout):
		c.logger.Warn("forward timed out", "err", err)
		response.Error(w, http.StatusGatewayTimeout, response.CodeUpstreamTimeout, "provider did not respond in time")
	case errors.Is(err, services.ErrUpstreamUnreachable):
		c.logger.Warn("forward failed", "err", err)
		response.Error(w, http.StatusBadGateway, response.CodeUpstreamUnreachable, "provider could not be reached")
	case errors.Is(err, services.ErrUpstreamTooLarge):
		c.logger.Warn("forward body exceeded limit", "err", err)
		response.Error(w, http.StatusBadGateway, response.CodeUpstreamError, "upstream response too large")
	case errors.As(err, &statusErr):
		c.logger.Info("forward returned error status", "status", statusErr.StatusCode)
		response.Error(w, http.StatusBadGateway, response.CodeUpstreamError, statusErr.Error())
	default:
		c.logger.Error("forward failed", "err", err)
		response.Error(w, http.StatusInternalServerError, response.CodeInternal, "internal server error")
	}
}

// decodeForwardRequest reads a JSON or urlencoded body
func decodeForwardRequest(w http.ResponseWriter, r *http.Request) (models.ForwardRequest, error) {
	var req models.ForwardRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, errors.New("request body must be a JSON object")
		}
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			return req, errors.New("failed to parse form body")
		}
		req.Endpoint = r.PostFormValue("endpoint")
	default:
		return req, errors.New("unsupported content type")
	}

	return req, nil
}
