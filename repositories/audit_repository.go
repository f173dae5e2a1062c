package repositories

import (
	"database/sql"
	"time"

	"github.com/blogem/spotify-auth-proxy/models"
)

// AuditRepository handles audit log persistence
type AuditRepository interface {
	Create(entry *models.AuditLogEntry) error
	Recent(limit int) ([]models.AuditLogEntry, error)
}

type sqliteAuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &sqliteAuditRepository{db: db}
}

// Create inserts a new audit log entry
func (r *sqliteAuditRepository) Create(entry *models.AuditLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_log (timestamp, request_id, method, path, status, origin, user_agent, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(
		query,
		entry.Timestamp,
		entry.RequestID,
		entry.Method,
		entry.Path,
		entry.Status,
		entry.Origin,
		entry.UserAgent,
		entry.IPAddress,
	)
	if err != nil {
		return err
	}

	entry.ID, err = result.LastInsertId()
	return err
}

// Recent returns the newest entries first
func (r *sqliteAuditRepository) Recent(limit int) ([]models.AuditLogEntry, error) {
	query := `
		SELECT id, timestamp, request_id, method, path, status, origin, user_agent, ip_address
		FROM audit_log
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditLogEntry
	for rows.Next() {
		var e models.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.RequestID, &e.Method, &e.Path, &e.Status, &e.Origin, &e.UserAgent, &e.IPAddress); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
