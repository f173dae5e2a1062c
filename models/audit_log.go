package models

import "time"

// AuditLogEntry represents a single request handled by the proxy.
// It never carries tokens, cookies or request bodies.
type AuditLogEntry struct {
	ID        int64
	Timestamp time.Time
	RequestID string
	Method    string
	Path      string
	Status    int
	Origin    string
	UserAgent string
	IPAddress string
}
