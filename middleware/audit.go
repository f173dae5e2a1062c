package middleware

import (
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/blogem/spotify-auth-proxy/models"
	"github.com/blogem/spotify-auth-proxy/repositories"
)

// AuditLogger middleware records every request once the handler has finished.
// Each write is tracked in pending so shutdown can wait for it before the
// database is closed.
func AuditLogger(auditRepo repositories.AuditRepository, pending *sync.WaitGroup, logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			entry := &models.AuditLogEntry{
				RequestID: chimiddleware.GetReqID(r.Context()),
				Method:    r.Method,
				Path:      r.URL.Path,
				Status:    status,
				Origin:    r.Header.Get("Origin"),
				UserAgent: r.UserAgent(),
				IPAddress: getIPAddress(r),
			}

			// Log asynchronously to avoid blocking request
			pending.Add(1)
			go func() {
				defer pending.Done()
				if err := auditRepo.Create(entry); err != nil {
					logger.Error("failed to create audit log", "err", err, "path", entry.Path)
				}
			}()
		})
	}
}

// getIPAddress extracts IP address from request, checking X-Forwarded-For first
func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header (proxy/load balancer)
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		// Take first IP if multiple
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}

	// Check X-Real-IP header
	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	// Fall back to RemoteAddr
	ip := r.RemoteAddr
	// Remove port if present
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
