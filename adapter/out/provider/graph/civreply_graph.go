// Package graph is a minimal Microsoft Graph mail client for a single
// service-account mailbox, authenticated with client credentials.
package graph

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	baseURL      = "https://graph.microsoft.com/v1.0"
	tokenURLTmpl = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
	scope        = "https://graph.microsoft.com/.default"
)

// Config holds the app registration and target mailbox.
type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	Mailbox      string
	Timeout      time.Duration
}

// Client talks to the Graph mail endpoints for one mailbox.
type Client struct {
	http    *http.Client
	mailbox string
}

// NewClient builds a client whose transport refreshes the app token
// automatically.
func NewClient(cfg Config) *Client {
	cc := clientcredentials.Config{
		TokenURL:     fmt.Sprintf(tokenURLTmpl, cfg.TenantID),
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{scope},
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	httpClient := cc.Client(context.Background())
	httpClient.Timeout = timeout

	return &Client{
		http:    httpClient,
		mailbox: cfg.Mailbox,
	}
}

// Message is the subset of the Graph message resource the worker uses.
type Message struct {
	ID       string `json:"id"`
	Subject  string `json:"subject"`
	From     from   `json:"from"`
	Body     body   `json:"body"`
	Received string `json:"receivedDateTime"`
}

type from struct {
	EmailAddress struct {
		Address string `json:"address"`
	} `json:"emailAddress"`
}

type body struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// Sender returns the sender address.
func (m *Message) Sender() string { return m.From.EmailAddress.Address }

// ReceivedAt parses receivedDateTime; zero time on failure.
func (m *Message) ReceivedAt() time.Time {
	t, err := time.Parse(time.RFC3339, m.Received)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ListUnread returns up to max unread inbox messages, newest first.
func (c *Client) ListUnread(ctx context.Context, max int) ([]*Message, error) {
	if max <= 0 {
		max = 15
	}
	q := url.Values{
		"$filter":  {"isRead eq false"},
		"$select":  {"id,subject,from,receivedDateTime"},
		"$top":     {strconv.Itoa(max)},
		"$orderby": {"receivedDateTime desc"},
	}

	var out struct {
		Value []*Message `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, c.mailboxPath("/mailFolders/Inbox/messages")+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// GetMessage fetches one message including its body.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	q := url.Values{"$select": {"id,subject,body,from,receivedDateTime"}}

	var msg Message
	if err := c.do(ctx, http.MethodGet, c.messagePath(messageID)+"?"+q.Encode(), nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// CreateReplyDraft creates a reply draft in the original thread and
// overwrites its body with htmlBody. Returns the draft ID.
func (c *Client) CreateReplyDraft(ctx context.Context, messageID, htmlBody string) (string, error) {
	var draft struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, c.messagePath(messageID)+"/createReply", nil, &draft); err != nil {
		return "", err
	}

	payload := map[string]any{
		"body": map[string]string{"contentType": "HTML", "content": htmlBody},
	}
	if err := c.do(ctx, http.MethodPatch, c.messagePath(draft.ID), payload, nil); err != nil {
		return "", err
	}
	return draft.ID, nil
}

// SendDraft sends a previously created draft.
func (c *Client) SendDraft(ctx context.Context, draftID string) error {
	return c.do(ctx, http.MethodPost, c.messagePath(draftID)+"/send", nil, nil)
}

// MarkRead flags the message read.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	return c.do(ctx, http.MethodPatch, c.messagePath(messageID), map[string]any{"isRead": true}, nil)
}

// SetCategories replaces the message's category list.
func (c *Client) SetCategories(ctx context.Context, messageID string, categories []string) error {
	return c.do(ctx, http.MethodPatch, c.messagePath(messageID), map[string]any{"categories": categories}, nil)
}

// GetCategories returns the message's current categories.
func (c *Client) GetCategories(ctx context.Context, messageID string) ([]string, error) {
	var out struct {
		Categories []string `json:"categories"`
	}
	q := url.Values{"$select": {"id,categories"}}
	if err := c.do(ctx, http.MethodGet, c.messagePath(messageID)+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) mailboxPath(suffix string) string {
	return baseURL + "/users/" + url.PathEscape(c.mailbox) + suffix
}

func (c *Client) messagePath(id string) string {
	return c.mailboxPath("/messages/" + url.PathEscape(id))
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// StatusError is a non-2xx Graph response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("graph: status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the call may succeed on retry.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

var (
	tagPattern   = regexp.MustCompile(`<[^<]+?>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// StripHTML reduces an HTML body to plain text for classification.
func StripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}
