package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows credentialed cross-origin requests from the given origins only.
// Requests from other origins get no Access-Control-Allow-Origin header.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "X-Requested-With", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
