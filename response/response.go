// Package response writes JSON and plain-text API responses.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/blogem/spotify-auth-proxy/models"
)

// Error codes carried in the error envelope
const (
	CodeInvalidRequest      = "invalid_request"
	CodeMissingRefreshToken = "missing_refresh_token"
	CodeRefreshFailed       = "refresh_failed"
	CodeForbiddenEndpoint   = "forbidden_endpoint"
	CodeUpstreamAuthFailed  = "upstream_auth_failed"
	CodeUpstreamUnreachable = "upstream_unreachable"
	CodeUpstreamTimeout     = "upstream_timeout"
	CodeUpstreamError       = "upstream_error"
	CodeRateLimited         = "rate_limited"
	CodeNotFound            = "not_found"
	CodeInternal            = "internal_server_error"
)

// JSON writes data as a JSON response with the given status code
func JSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(data)
}

// Error writes the error envelope
func Error(w http.ResponseWriter, statusCode int, code, message string) {
	// Headers are already sent when encoding fails, so the error is dropped.
	_ = JSON(w, statusCode, models.ErrorResponse{Error: code, Message: message})
}

// Text writes a plain-text response
func Text(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}
