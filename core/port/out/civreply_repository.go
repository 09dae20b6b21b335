package out

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Processed Store Port
// =============================================================================

// ProcessedStore records message IDs the worker has already handled.
// Membership must survive restarts; the worker drops any message whose
// ID is already present.
type ProcessedStore interface {
	Contains(ctx context.Context, messageID string) (bool, error)
	Add(ctx context.Context, messageID string) error
}

// =============================================================================
// Audit Repository Port
// =============================================================================

// AuditRepository persists one record per pipeline decision.
type AuditRepository interface {
	Insert(ctx context.Context, rec *AuditRecord) error
	ListRecent(ctx context.Context, limit int) ([]*AuditRecord, error)
}

// AuditRecord captures what the pipeline decided for one enquiry.
type AuditRecord struct {
	ID          uuid.UUID `json:"id" db:"id"`
	MessageID   string    `json:"message_id" db:"message_id"`
	CouncilID   string    `json:"council_id" db:"council_id"`
	Topics      []string  `json:"topics" db:"topics"`
	RiskTier    string    `json:"risk_tier" db:"risk_tier"`
	RiskReasons []string  `json:"risk_reasons" db:"risk_reasons"`
	Autosend    bool      `json:"autosend" db:"autosend"`
	Action      string    `json:"action" db:"action"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Audit actions.
const (
	AuditActionSent    = "sent"
	AuditActionDrafted = "drafted"
	AuditActionSkipped = "skipped"
)

// =============================================================================
// Reply Archive Port
// =============================================================================

// ReplyArchive stores full composed reply bodies. Bodies are large and
// append-only, so they live in a document store rather than the audit
// table.
type ReplyArchive interface {
	Save(ctx context.Context, doc *ReplyDocument) error
}

// ReplyDocument is one archived reply body.
type ReplyDocument struct {
	MessageID string    `bson:"message_id" json:"message_id"`
	CouncilID string    `bson:"council_id" json:"council_id"`
	Topics    []string  `bson:"topics" json:"topics"`
	HTML      string    `bson:"html" json:"html"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
