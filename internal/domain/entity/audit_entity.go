package entity

import "time"

// AuditEntry records an authentication event. Metadata must never contain secrets.
type AuditEntry struct {
	UserID    string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
	CreatedAt time.Time
}
