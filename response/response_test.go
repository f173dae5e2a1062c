package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blogem/spotify-auth-proxy/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadGateway, CodeUpstreamError, "upstream responded with status 500")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeUpstreamError, body.Error)
	assert.Equal(t, "upstream responded with status 500", body.Message)
}

func TestErrorOmitsEmptyMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadRequest, CodeMissingRefreshToken, "")

	assert.JSONEq(t, `{"error":"missing_refresh_token"}`, rec.Body.String())
}

func TestText(t *testing.T) {
	rec := httptest.NewRecorder()
	Text(rec, http.StatusOK, "logged out")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "logged out", rec.Body.String())
}
