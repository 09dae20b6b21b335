// Package out defines outbound ports (driven ports) for the application.
package out

import (
	"context"
	"time"
)

// =============================================================================
// Mail Provider Port (Microsoft Graph, Gmail)
// =============================================================================

// MailProviderPort is the outbound port for the council mailbox. The
// worker drives it with a single service account; there is no per-user
// token plumbing.
type MailProviderPort interface {
	// GetProviderType returns "graph" or "gmail".
	GetProviderType() string

	MailReader
	MailReplier
	MailModifier
}

// MailReader lists and fetches inbound messages.
type MailReader interface {
	ListUnread(ctx context.Context, max int) ([]*MailMessage, error)
	GetMessage(ctx context.Context, messageID string) (*MailMessage, error)
}

// MailReplier creates and sends reply drafts in the original thread.
type MailReplier interface {
	// CreateReplyDraft creates a draft reply to the given message and
	// returns the draft's provider ID. The draft stays in the mailbox
	// until sent or reviewed by a staff member.
	CreateReplyDraft(ctx context.Context, messageID, htmlBody string) (string, error)

	// SendDraft sends a previously created draft.
	SendDraft(ctx context.Context, draftID string) error
}

// MailModifier mutates message state after processing.
type MailModifier interface {
	MarkRead(ctx context.Context, messageID string) error

	// AddCategory tags the message ("AutoReplied", "Needs review").
	// Providers without categories map this to labels.
	AddCategory(ctx context.Context, messageID, category string) error
}

// MailMessage is one message as seen by the worker.
type MailMessage struct {
	ID       string    `json:"id"`
	Subject  string    `json:"subject"`
	Sender   string    `json:"sender"`
	BodyText string    `json:"body_text"`
	BodyHTML string    `json:"body_html"`
	Received time.Time `json:"received"`
}

// =============================================================================
// Provider Error
// =============================================================================

// ProviderErrorCode represents error codes.
type ProviderErrorCode string

const (
	ProviderErrAuth      ProviderErrorCode = "auth_error"
	ProviderErrRateLimit ProviderErrorCode = "rate_limit"
	ProviderErrNotFound  ProviderErrorCode = "not_found"
	ProviderErrNetwork   ProviderErrorCode = "network_error"
	ProviderErrServer    ProviderErrorCode = "server_error"
)

// ProviderError represents a provider error.
type ProviderError struct {
	Provider  string
	Code      ProviderErrorCode
	Message   string
	Err       error
	Retryable bool
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new provider error.
func NewProviderError(provider string, code ProviderErrorCode, message string, err error, retryable bool) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Code:      code,
		Message:   message,
		Err:       err,
		Retryable: retryable,
	}
}
