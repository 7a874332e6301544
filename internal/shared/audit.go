package shared

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLog captures an admin action for the audit trail.
type AuditLog struct {
	Actor    string
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
}

// AuditLogger persists audit entries to Postgres. A nil logger is a no-op so
// services can run without the audit store in tests.
type AuditLogger struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewAuditLogger constructs the audit logger.
func NewAuditLogger(pool *pgxpool.Pool, logger *slog.Logger) *AuditLogger {
	return &AuditLogger{pool: pool, logger: logger}
}

// Record writes one audit entry. Failures are logged, never surfaced.
func (a *AuditLogger) Record(ctx context.Context, entry AuditLog) {
	if a == nil || a.pool == nil {
		return
	}
	meta, err := json.Marshal(entry.Meta)
	if err != nil {
		meta = []byte("{}")
	}
	_, err = a.pool.Exec(ctx,
		`INSERT INTO audit_logs (actor, action, entity, entity_id, meta, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.Actor, entry.Action, entry.Entity, entry.EntityID, meta, time.Now().UTC(),
	)
	if err != nil && a.logger != nil {
		a.logger.Warn("audit record", slog.Any("error", err), slog.String("action", entry.Action))
	}
}
