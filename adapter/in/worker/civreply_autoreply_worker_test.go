package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"civreply_server/core/domain"
	"civreply_server/core/port/in"
	"civreply_server/core/port/out"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeProvider struct {
	unread []*out.MailMessage

	draftErr error
	sendErr  error

	draftsCreated []string
	draftsSent    []string
	markedRead    []string
	categories    map[string][]string
}

func newFakeProvider(unread ...*out.MailMessage) *fakeProvider {
	return &fakeProvider{unread: unread, categories: make(map[string][]string)}
}

func (p *fakeProvider) GetProviderType() string { return "fake" }

func (p *fakeProvider) ListUnread(context.Context, int) ([]*out.MailMessage, error) {
	return p.unread, nil
}

func (p *fakeProvider) GetMessage(_ context.Context, id string) (*out.MailMessage, error) {
	for _, m := range p.unread {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, errors.New("not found")
}

func (p *fakeProvider) CreateReplyDraft(_ context.Context, messageID, _ string) (string, error) {
	if p.draftErr != nil {
		return "", p.draftErr
	}
	draftID := "draft-" + messageID
	p.draftsCreated = append(p.draftsCreated, draftID)
	return draftID, nil
}

func (p *fakeProvider) SendDraft(_ context.Context, draftID string) error {
	if p.sendErr != nil {
		return p.sendErr
	}
	p.draftsSent = append(p.draftsSent, draftID)
	return nil
}

func (p *fakeProvider) MarkRead(_ context.Context, id string) error {
	p.markedRead = append(p.markedRead, id)
	return nil
}

func (p *fakeProvider) AddCategory(_ context.Context, id, category string) error {
	p.categories[id] = append(p.categories[id], category)
	return nil
}

type fakeDraftService struct {
	autosend bool
	requests []*in.DraftRequest
}

func (s *fakeDraftService) Draft(_ context.Context, req *in.DraftRequest) (*in.DraftResult, error) {
	s.requests = append(s.requests, req)
	return &in.DraftResult{
		Topics:   []domain.Topic{domain.TopicWasteCalendar},
		Risk:     domain.RiskAssessment{Tier: domain.RiskSafe, Reasons: []string{"no risk triggers detected"}},
		Autosend: s.autosend,
		HTML:     "<p>reply</p>",
	}, nil
}

func (s *fakeDraftService) Classify(string) []domain.Topic { return nil }

func (s *fakeDraftService) AssessRisk(string) domain.RiskAssessment {
	return domain.RiskAssessment{}
}

type memProcessedStore struct {
	ids    map[string]bool
	addErr error
}

func newMemProcessedStore() *memProcessedStore {
	return &memProcessedStore{ids: make(map[string]bool)}
}

func (s *memProcessedStore) Contains(_ context.Context, id string) (bool, error) {
	return s.ids[id], nil
}

func (s *memProcessedStore) Add(_ context.Context, id string) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.ids[id] = true
	return nil
}

type fakeAudit struct {
	records []*out.AuditRecord
	err     error
}

func (a *fakeAudit) Insert(_ context.Context, rec *out.AuditRecord) error {
	if a.err != nil {
		return a.err
	}
	a.records = append(a.records, rec)
	return nil
}

func (a *fakeAudit) ListRecent(context.Context, int) ([]*out.AuditRecord, error) {
	return a.records, nil
}

// =============================================================================
// Tests
// =============================================================================

func testWorker(provider *fakeProvider, drafts in.DraftService, store out.ProcessedStore, audit out.AuditRepository) *AutoreplyWorker {
	return NewAutoreplyWorker(provider, drafts, store, audit, nil, Config{
		CouncilID:   "wyndham",
		CouncilName: "Wyndham City Council",
	}, zerolog.Nop())
}

func msg(id string) *out.MailMessage {
	return &out.MailMessage{ID: id, Subject: "Bin day", BodyText: "What day is my bin collected?", Sender: "resident@example.org"}
}

// TestWorkerAutosendPath verifies an approved message is drafted, sent,
// categorised and marked read.
func TestWorkerAutosendPath(t *testing.T) {
	provider := newFakeProvider(msg("m1"))
	store := newMemProcessedStore()
	audit := &fakeAudit{}
	w := testWorker(provider, &fakeDraftService{autosend: true}, store, audit)

	w.PollOnce(context.Background())

	if len(provider.draftsCreated) != 1 {
		t.Fatalf("drafts created = %d, want 1", len(provider.draftsCreated))
	}
	if len(provider.draftsSent) != 1 {
		t.Errorf("drafts sent = %d, want 1", len(provider.draftsSent))
	}
	if len(provider.markedRead) != 1 || provider.markedRead[0] != "m1" {
		t.Errorf("marked read = %v, want [m1]", provider.markedRead)
	}
	if got := provider.categories["m1"]; len(got) != 1 || got[0] != DefaultCategoryReplied {
		t.Errorf("categories = %v, want [%s]", got, DefaultCategoryReplied)
	}
	if !store.ids["m1"] {
		t.Error("message not recorded as processed")
	}
	if len(audit.records) != 1 || audit.records[0].Action != out.AuditActionSent {
		t.Errorf("audit = %+v, want one sent record", audit.records)
	}
}

// TestWorkerReviewPath verifies a held message leaves a draft and a
// review category without sending or marking read.
func TestWorkerReviewPath(t *testing.T) {
	provider := newFakeProvider(msg("m2"))
	store := newMemProcessedStore()
	audit := &fakeAudit{}
	w := testWorker(provider, &fakeDraftService{autosend: false}, store, audit)

	w.PollOnce(context.Background())

	if len(provider.draftsCreated) != 1 {
		t.Fatalf("drafts created = %d, want 1", len(provider.draftsCreated))
	}
	if len(provider.draftsSent) != 0 {
		t.Error("held message must not be sent")
	}
	if len(provider.markedRead) != 0 {
		t.Error("held message must stay unread")
	}
	if got := provider.categories["m2"]; len(got) != 1 || got[0] != DefaultCategoryNeedsReview {
		t.Errorf("categories = %v, want [%s]", got, DefaultCategoryNeedsReview)
	}
	if len(audit.records) != 1 || audit.records[0].Action != out.AuditActionDrafted {
		t.Errorf("audit = %+v, want one drafted record", audit.records)
	}
}

// TestWorkerSkipsProcessed verifies already-processed IDs are skipped
// entirely.
func TestWorkerSkipsProcessed(t *testing.T) {
	provider := newFakeProvider(msg("m3"))
	store := newMemProcessedStore()
	store.ids["m3"] = true
	drafts := &fakeDraftService{autosend: true}
	w := testWorker(provider, drafts, store, &fakeAudit{})

	w.PollOnce(context.Background())

	if len(drafts.requests) != 0 {
		t.Error("processed message must not reach the pipeline")
	}
	if len(provider.draftsCreated) != 0 {
		t.Error("processed message must not produce a draft")
	}
}

// TestWorkerRetriesOnDraftFailure verifies a failed draft leaves the
// message unprocessed so the next cycle retries it.
func TestWorkerRetriesOnDraftFailure(t *testing.T) {
	provider := newFakeProvider(msg("m4"))
	provider.draftErr = errors.New("graph 503")
	store := newMemProcessedStore()
	w := testWorker(provider, &fakeDraftService{autosend: true}, store, &fakeAudit{})

	w.PollOnce(context.Background())

	if store.ids["m4"] {
		t.Error("failed message must stay unprocessed for retry")
	}

	provider.draftErr = nil
	w.PollOnce(context.Background())

	if !store.ids["m4"] {
		t.Error("message must be processed on retry")
	}
	if len(provider.draftsCreated) != 1 {
		t.Errorf("drafts created = %d, want 1", len(provider.draftsCreated))
	}
}

// TestWorkerSendFailureLeavesDraft verifies a send failure downgrades
// to the review path instead of losing the draft.
func TestWorkerSendFailureLeavesDraft(t *testing.T) {
	provider := newFakeProvider(msg("m5"))
	provider.sendErr = errors.New("graph 429")
	store := newMemProcessedStore()
	audit := &fakeAudit{}
	w := testWorker(provider, &fakeDraftService{autosend: true}, store, audit)

	w.PollOnce(context.Background())

	if len(provider.draftsCreated) != 1 {
		t.Fatalf("drafts created = %d, want 1", len(provider.draftsCreated))
	}
	if got := provider.categories["m5"]; len(got) != 1 || got[0] != DefaultCategoryNeedsReview {
		t.Errorf("categories = %v, want review category", got)
	}
	if !store.ids["m5"] {
		t.Error("message must still be recorded as processed")
	}
	if len(audit.records) != 1 || audit.records[0].Action != out.AuditActionDrafted {
		t.Errorf("audit = %+v, want drafted record", audit.records)
	}
}

// TestWorkerAuditBestEffort verifies an audit outage never blocks
// processing.
func TestWorkerAuditBestEffort(t *testing.T) {
	provider := newFakeProvider(msg("m6"))
	store := newMemProcessedStore()
	audit := &fakeAudit{err: errors.New("db down")}
	w := testWorker(provider, &fakeDraftService{autosend: false}, store, audit)

	w.PollOnce(context.Background())

	if len(provider.draftsCreated) != 1 {
		t.Error("draft must be created despite audit outage")
	}
	if !store.ids["m6"] {
		t.Error("message must be processed despite audit outage")
	}
}
