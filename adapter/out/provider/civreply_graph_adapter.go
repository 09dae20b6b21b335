// Package provider implements mail provider adapters.
package provider

import (
	"context"
	"errors"
	"net/http"

	"github.com/sony/gobreaker"

	"civreply_server/adapter/out/provider/graph"
	"civreply_server/core/port/out"
	"civreply_server/pkg/logger"
)

// =============================================================================
// Microsoft Graph Adapter
// =============================================================================

// GraphAdapter implements out.MailProviderPort against Microsoft Graph.
// All calls go through a circuit breaker so a failing Graph tenant
// trips fast instead of stalling every poll cycle.
type GraphAdapter struct {
	client *graph.Client
	cb     *gobreaker.CircuitBreaker
	log    *logger.Logger
}

// NewGraphAdapter creates the adapter.
func NewGraphAdapter(cfg graph.Config) *GraphAdapter {
	log := logger.Default().WithField("component", "graph-adapter")

	settings := gobreaker.Settings{
		Name:        "graph-mail",
		MaxRequests: 1,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state change")
		},
	}

	return &GraphAdapter{
		client: graph.NewClient(cfg),
		cb:     gobreaker.NewCircuitBreaker(settings),
		log:    log,
	}
}

// GetProviderType returns the provider name.
func (a *GraphAdapter) GetProviderType() string { return "graph" }

// ListUnread lists unread inbox messages, bodies not included.
func (a *GraphAdapter) ListUnread(ctx context.Context, max int) ([]*out.MailMessage, error) {
	res, err := a.execute(func() (any, error) {
		return a.client.ListUnread(ctx, max)
	})
	if err != nil {
		return nil, a.wrap("list unread", err)
	}

	msgs := res.([]*graph.Message)
	result := make([]*out.MailMessage, 0, len(msgs))
	for _, m := range msgs {
		result = append(result, toMailMessage(m))
	}
	return result, nil
}

// GetMessage fetches one message with its body.
func (a *GraphAdapter) GetMessage(ctx context.Context, messageID string) (*out.MailMessage, error) {
	res, err := a.execute(func() (any, error) {
		return a.client.GetMessage(ctx, messageID)
	})
	if err != nil {
		return nil, a.wrap("get message", err)
	}
	return toMailMessage(res.(*graph.Message)), nil
}

// CreateReplyDraft creates a reply draft with the given HTML body.
func (a *GraphAdapter) CreateReplyDraft(ctx context.Context, messageID, htmlBody string) (string, error) {
	res, err := a.execute(func() (any, error) {
		return a.client.CreateReplyDraft(ctx, messageID, htmlBody)
	})
	if err != nil {
		return "", a.wrap("create reply draft", err)
	}
	return res.(string), nil
}

// SendDraft sends a draft.
func (a *GraphAdapter) SendDraft(ctx context.Context, draftID string) error {
	_, err := a.execute(func() (any, error) {
		return nil, a.client.SendDraft(ctx, draftID)
	})
	if err != nil {
		return a.wrap("send draft", err)
	}
	return nil
}

// MarkRead flags the message read.
func (a *GraphAdapter) MarkRead(ctx context.Context, messageID string) error {
	_, err := a.execute(func() (any, error) {
		return nil, a.client.MarkRead(ctx, messageID)
	})
	if err != nil {
		return a.wrap("mark read", err)
	}
	return nil
}

// AddCategory appends a category, preserving existing ones.
func (a *GraphAdapter) AddCategory(ctx context.Context, messageID, category string) error {
	_, err := a.execute(func() (any, error) {
		current, err := a.client.GetCategories(ctx, messageID)
		if err != nil {
			return nil, err
		}
		for _, c := range current {
			if c == category {
				return nil, nil
			}
		}
		return nil, a.client.SetCategories(ctx, messageID, append(current, category))
	})
	if err != nil {
		return a.wrap("add category", err)
	}
	return nil
}

func (a *GraphAdapter) execute(fn func() (any, error)) (any, error) {
	return a.cb.Execute(fn)
}

func (a *GraphAdapter) wrap(op string, err error) error {
	code := out.ProviderErrServer
	retryable := false

	var statusErr *graph.StatusError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		code = out.ProviderErrNetwork
		retryable = true
	case errors.As(err, &statusErr):
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden:
			code = out.ProviderErrAuth
		case statusErr.StatusCode == http.StatusNotFound:
			code = out.ProviderErrNotFound
		case statusErr.StatusCode == http.StatusTooManyRequests:
			code = out.ProviderErrRateLimit
			retryable = true
		default:
			retryable = statusErr.Retryable()
		}
	default:
		code = out.ProviderErrNetwork
		retryable = true
	}

	return out.NewProviderError("graph", code, op+" failed", err, retryable)
}

func toMailMessage(m *graph.Message) *out.MailMessage {
	return &out.MailMessage{
		ID:       m.ID,
		Subject:  m.Subject,
		Sender:   m.Sender(),
		BodyText: graph.StripHTML(m.Body.Content),
		BodyHTML: m.Body.Content,
		Received: m.ReceivedAt(),
	}
}
