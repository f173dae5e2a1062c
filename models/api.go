package models

import "strings"

// ErrorResponse is the error envelope returned by every API endpoint
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AccessTokenResponse is returned by the refresh endpoint
type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

// ForwardRequest is the body accepted by the generic forward endpoint
type ForwardRequest struct {
	Endpoint string `json:"endpoint"`
}

// Validate returns validation errors for the request
func (r ForwardRequest) Validate() ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(r.Endpoint) == "" {
		errs = append(errs, ValidationError{Field: "endpoint", Message: "endpoint is required"})
	}
	return errs
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
