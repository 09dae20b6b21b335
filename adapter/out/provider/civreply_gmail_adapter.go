package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"civreply_server/core/port/out"
	"civreply_server/pkg/logger"
)

// =============================================================================
// Gmail Adapter
// =============================================================================

// GmailAdapter implements out.MailProviderPort for a Google Workspace
// mailbox, authenticated with a service account and domain-wide
// delegation. Categories map to Gmail labels.
type GmailAdapter struct {
	svc     *gmail.Service
	mailbox string
	log     *logger.Logger

	labelMu sync.Mutex
	labels  map[string]string // name -> label ID
}

// GmailConfig holds the service-account credentials and mailbox.
type GmailConfig struct {
	CredentialsFile string
	Mailbox         string
}

// NewGmailAdapter creates the adapter.
func NewGmailAdapter(ctx context.Context, cfg GmailConfig) (*GmailAdapter, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}

	jwtCfg, err := google.JWTConfigFromJSON(data, gmail.GmailModifyScope, gmail.GmailComposeScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}
	jwtCfg.Subject = cfg.Mailbox

	svc, err := gmail.NewService(ctx, option.WithTokenSource(jwtCfg.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	return &GmailAdapter{
		svc:     svc,
		mailbox: cfg.Mailbox,
		log:     logger.Default().WithField("component", "gmail-adapter"),
		labels:  make(map[string]string),
	}, nil
}

// GetProviderType returns the provider name.
func (a *GmailAdapter) GetProviderType() string { return "gmail" }

// ListUnread lists unread inbox messages with headers only.
func (a *GmailAdapter) ListUnread(ctx context.Context, max int) ([]*out.MailMessage, error) {
	if max <= 0 {
		max = 15
	}

	list, err := a.svc.Users.Messages.List("me").
		Q("is:unread in:inbox").
		MaxResults(int64(max)).
		Context(ctx).Do()
	if err != nil {
		return nil, a.wrap("list unread", err)
	}

	result := make([]*out.MailMessage, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := a.svc.Users.Messages.Get("me", ref.Id).
			Format("metadata").
			MetadataHeaders("Subject", "From", "Date").
			Context(ctx).Do()
		if err != nil {
			return nil, a.wrap("get message metadata", err)
		}
		result = append(result, a.toMailMessage(msg, false))
	}
	return result, nil
}

// GetMessage fetches one message including its body.
func (a *GmailAdapter) GetMessage(ctx context.Context, messageID string) (*out.MailMessage, error) {
	msg, err := a.svc.Users.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, a.wrap("get message", err)
	}
	return a.toMailMessage(msg, true), nil
}

// CreateReplyDraft creates a threaded reply draft with the given HTML
// body and returns the draft ID.
func (a *GmailAdapter) CreateReplyDraft(ctx context.Context, messageID, htmlBody string) (string, error) {
	original, err := a.svc.Users.Messages.Get("me", messageID).
		Format("metadata").
		MetadataHeaders("Subject", "From", "Message-ID", "References").
		Context(ctx).Do()
	if err != nil {
		return "", a.wrap("get original for reply", err)
	}

	subject := header(original, "Subject")
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}
	origID := header(original, "Message-ID")
	references := strings.TrimSpace(header(original, "References") + " " + origID)

	var raw strings.Builder
	fmt.Fprintf(&raw, "To: %s\r\n", header(original, "From"))
	fmt.Fprintf(&raw, "Subject: %s\r\n", subject)
	if origID != "" {
		fmt.Fprintf(&raw, "In-Reply-To: %s\r\n", origID)
		fmt.Fprintf(&raw, "References: %s\r\n", references)
	}
	raw.WriteString("MIME-Version: 1.0\r\n")
	raw.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	raw.WriteString("\r\n")
	raw.WriteString(htmlBody)

	draft, err := a.svc.Users.Drafts.Create("me", &gmail.Draft{
		Message: &gmail.Message{
			Raw:      base64.URLEncoding.EncodeToString([]byte(raw.String())),
			ThreadId: original.ThreadId,
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", a.wrap("create draft", err)
	}
	return draft.Id, nil
}

// SendDraft sends a previously created draft.
func (a *GmailAdapter) SendDraft(ctx context.Context, draftID string) error {
	_, err := a.svc.Users.Drafts.Send("me", &gmail.Draft{Id: draftID}).Context(ctx).Do()
	if err != nil {
		return a.wrap("send draft", err)
	}
	return nil
}

// MarkRead removes the UNREAD label.
func (a *GmailAdapter) MarkRead(ctx context.Context, messageID string) error {
	_, err := a.svc.Users.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return a.wrap("mark read", err)
	}
	return nil
}

// AddCategory applies the named label, creating it on first use.
func (a *GmailAdapter) AddCategory(ctx context.Context, messageID, category string) error {
	labelID, err := a.ensureLabel(ctx, category)
	if err != nil {
		return err
	}
	_, err = a.svc.Users.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
		AddLabelIds: []string{labelID},
	}).Context(ctx).Do()
	if err != nil {
		return a.wrap("add label", err)
	}
	return nil
}

func (a *GmailAdapter) ensureLabel(ctx context.Context, name string) (string, error) {
	a.labelMu.Lock()
	defer a.labelMu.Unlock()

	if id, ok := a.labels[name]; ok {
		return id, nil
	}

	list, err := a.svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return "", a.wrap("list labels", err)
	}
	for _, l := range list.Labels {
		a.labels[l.Name] = l.Id
	}
	if id, ok := a.labels[name]; ok {
		return id, nil
	}

	created, err := a.svc.Users.Labels.Create("me", &gmail.Label{Name: name}).Context(ctx).Do()
	if err != nil {
		return "", a.wrap("create label", err)
	}
	a.labels[name] = created.Id
	return created.Id, nil
}

func (a *GmailAdapter) toMailMessage(msg *gmail.Message, withBody bool) *out.MailMessage {
	m := &out.MailMessage{
		ID:       msg.Id,
		Subject:  header(msg, "Subject"),
		Sender:   header(msg, "From"),
		Received: time.UnixMilli(msg.InternalDate),
	}
	if withBody {
		text, html := extractBody(msg.Payload)
		if text == "" && html != "" {
			text = stripTags(html)
		}
		m.BodyText = text
		m.BodyHTML = html
	}
	return m
}

func (a *GmailAdapter) wrap(op string, err error) error {
	code := out.ProviderErrServer
	retryable := false

	if apiErr, ok := err.(*googleapi.Error); ok {
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			code = out.ProviderErrAuth
		case apiErr.Code == 404:
			code = out.ProviderErrNotFound
		case apiErr.Code == 429:
			code = out.ProviderErrRateLimit
			retryable = true
		case apiErr.Code >= 500:
			retryable = true
		}
	} else {
		code = out.ProviderErrNetwork
		retryable = true
	}

	return out.NewProviderError("gmail", code, op+" failed", err, retryable)
}

func header(msg *gmail.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractBody walks the MIME tree for the first text/plain and
// text/html parts.
func extractBody(part *gmail.MessagePart) (text, html string) {
	if part == nil {
		return "", ""
	}
	if part.Body != nil && part.Body.Data != "" {
		decoded, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err == nil {
			switch part.MimeType {
			case "text/plain":
				text = string(decoded)
			case "text/html":
				html = string(decoded)
			}
		}
	}
	for _, child := range part.Parts {
		t, h := extractBody(child)
		if text == "" {
			text = t
		}
		if html == "" {
			html = h
		}
	}
	return text, html
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
