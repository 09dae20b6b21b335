// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"civreply_server/core/port/out"
	"civreply_server/pkg/apperr"
)

// AuditAdapter implements out.AuditRepository using PostgreSQL.
type AuditAdapter struct {
	db *sqlx.DB
}

// NewAuditAdapter creates a new AuditAdapter.
func NewAuditAdapter(db *sqlx.DB) *AuditAdapter {
	return &AuditAdapter{db: db}
}

// auditRow represents the database row for one pipeline decision.
type auditRow struct {
	ID          uuid.UUID      `db:"id"`
	MessageID   string         `db:"message_id"`
	CouncilID   string         `db:"council_id"`
	Topics      pq.StringArray `db:"topics"`
	RiskTier    string         `db:"risk_tier"`
	RiskReasons pq.StringArray `db:"risk_reasons"`
	Autosend    bool           `db:"autosend"`
	Action      string         `db:"action"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r *auditRow) toRecord() *out.AuditRecord {
	return &out.AuditRecord{
		ID:          r.ID,
		MessageID:   r.MessageID,
		CouncilID:   r.CouncilID,
		Topics:      r.Topics,
		RiskTier:    r.RiskTier,
		RiskReasons: r.RiskReasons,
		Autosend:    r.Autosend,
		Action:      r.Action,
		CreatedAt:   r.CreatedAt,
	}
}

// EnsureSchema creates the audit table if it does not exist.
func (a *AuditAdapter) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS reply_audit (
			id           UUID PRIMARY KEY,
			message_id   TEXT NOT NULL,
			council_id   TEXT NOT NULL,
			topics       TEXT[] NOT NULL DEFAULT '{}',
			risk_tier    TEXT NOT NULL,
			risk_reasons TEXT[] NOT NULL DEFAULT '{}',
			autosend     BOOLEAN NOT NULL DEFAULT FALSE,
			action       TEXT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_reply_audit_created_at ON reply_audit (created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_reply_audit_message_id ON reply_audit (message_id);
	`
	if _, err := a.db.ExecContext(ctx, ddl); err != nil {
		return apperr.DatabaseError("ensure audit schema", err)
	}
	return nil
}

// Insert stores one decision record.
func (a *AuditAdapter) Insert(ctx context.Context, rec *out.AuditRecord) error {
	const query = `
		INSERT INTO reply_audit (id, message_id, council_id, topics, risk_tier, risk_reasons, autosend, action, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	id := rec.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := a.db.ExecContext(ctx, query,
		id, rec.MessageID, rec.CouncilID,
		pq.StringArray(rec.Topics), rec.RiskTier, pq.StringArray(rec.RiskReasons),
		rec.Autosend, rec.Action, createdAt,
	)
	if err != nil {
		return apperr.DatabaseError("insert audit record", err)
	}
	return nil
}

// ListRecent returns the newest records first.
func (a *AuditAdapter) ListRecent(ctx context.Context, limit int) ([]*out.AuditRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	const query = `
		SELECT id, message_id, council_id, topics, risk_tier, risk_reasons, autosend, action, created_at
		FROM reply_audit
		ORDER BY created_at DESC
		LIMIT $1
	`

	var rows []auditRow
	if err := a.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, apperr.DatabaseError("list audit records", err)
	}

	records := make([]*out.AuditRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toRecord())
	}
	return records, nil
}
