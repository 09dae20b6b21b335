// Package worker hosts the mailbox polling loop.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"civreply_server/core/port/in"
	"civreply_server/core/port/out"
)

// =============================================================================
// Autoreply Worker
// =============================================================================

const (
	DefaultPollInterval = 60 * time.Second
	DefaultBatchSize    = 15

	DefaultCategoryReplied     = "AutoReplied"
	DefaultCategoryNeedsReview = "Needs review"
)

// Config holds the worker's operating parameters.
type Config struct {
	PollInterval time.Duration
	BatchSize    int

	CouncilID   string
	CouncilName string

	CategoryReplied     string
	CategoryNeedsReview string
}

func (c *Config) defaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.CategoryReplied == "" {
		c.CategoryReplied = DefaultCategoryReplied
	}
	if c.CategoryNeedsReview == "" {
		c.CategoryNeedsReview = DefaultCategoryNeedsReview
	}
}

// AutoreplyWorker polls the council mailbox, runs each unread message
// through the draft pipeline, and either sends the reply or leaves a
// draft for review. Messages are processed one at a time; the
// processed-ID store makes retries safe across poll cycles.
type AutoreplyWorker struct {
	provider  out.MailProviderPort
	drafts    in.DraftService
	processed out.ProcessedStore
	audit     out.AuditRepository // optional
	archive   out.ReplyArchive    // optional

	cfg Config
	log zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewAutoreplyWorker creates the worker. audit and archive may be nil;
// their writes are best-effort either way.
func NewAutoreplyWorker(
	provider out.MailProviderPort,
	drafts in.DraftService,
	processed out.ProcessedStore,
	audit out.AuditRepository,
	archive out.ReplyArchive,
	cfg Config,
	log zerolog.Logger,
) *AutoreplyWorker {
	cfg.defaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &AutoreplyWorker{
		provider:  provider,
		drafts:    drafts,
		processed: processed,
		audit:     audit,
		archive:   archive,
		cfg:       cfg,
		log:       log.With().Str("component", "autoreply-worker").Logger(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Start begins polling in the background.
func (w *AutoreplyWorker) Start() {
	w.log.Info().
		Dur("poll_interval", w.cfg.PollInterval).
		Int("batch_size", w.cfg.BatchSize).
		Str("provider", w.provider.GetProviderType()).
		Msg("autoreply worker starting")
	go w.run()
}

// Stop halts polling and waits for the current cycle to finish.
func (w *AutoreplyWorker) Stop() {
	w.log.Info().Msg("autoreply worker stopping")
	w.cancel()
	<-w.done
}

func (w *AutoreplyWorker) run() {
	defer close(w.done)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.PollOnce(w.ctx)
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.PollOnce(w.ctx)
		}
	}
}

// PollOnce runs one poll cycle: list unread, process each message
// sequentially. Exported so an operator endpoint can trigger a cycle.
func (w *AutoreplyWorker) PollOnce(ctx context.Context) {
	msgs, err := w.provider.ListUnread(ctx, w.cfg.BatchSize)
	if err != nil {
		w.log.Error().Err(err).Msg("list unread failed")
		return
	}
	if len(msgs) == 0 {
		return
	}
	w.log.Debug().Int("count", len(msgs)).Msg("unread messages found")

	for _, msg := range msgs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.processMessage(ctx, msg)
	}
}

func (w *AutoreplyWorker) processMessage(ctx context.Context, msg *out.MailMessage) {
	log := w.log.With().Str("message_id", msg.ID).Logger()

	seen, err := w.processed.Contains(ctx, msg.ID)
	if err != nil {
		log.Error().Err(err).Msg("processed-store lookup failed, skipping")
		return
	}
	if seen {
		return
	}

	// The unread listing carries headers only; fetch the body now.
	full, err := w.provider.GetMessage(ctx, msg.ID)
	if err != nil {
		log.Error().Err(err).Msg("fetch message failed")
		return
	}

	res, err := w.drafts.Draft(ctx, &in.DraftRequest{
		CouncilID:   w.cfg.CouncilID,
		CouncilName: w.cfg.CouncilName,
		Subject:     full.Subject,
		Body:        full.BodyText,
		Sender:      full.Sender,
	})
	if err != nil {
		log.Error().Err(err).Msg("draft pipeline failed")
		return
	}

	draftID, err := w.provider.CreateReplyDraft(ctx, msg.ID, res.HTML)
	if err != nil {
		// Not marked processed: the next cycle retries.
		log.Error().Err(err).Msg("create reply draft failed")
		return
	}

	action := out.AuditActionDrafted
	if res.Autosend {
		if err := w.provider.SendDraft(ctx, draftID); err != nil {
			log.Error().Err(err).Msg("send draft failed, leaving draft for review")
		} else {
			action = out.AuditActionSent
			w.addCategory(ctx, msg.ID, w.cfg.CategoryReplied)
			if err := w.provider.MarkRead(ctx, msg.ID); err != nil {
				log.Warn().Err(err).Msg("mark read failed")
			}
		}
	}
	if action == out.AuditActionDrafted {
		w.addCategory(ctx, msg.ID, w.cfg.CategoryNeedsReview)
	}

	w.recordOutcome(ctx, msg.ID, res, action)

	if err := w.processed.Add(ctx, msg.ID); err != nil {
		log.Error().Err(err).Msg("processed-store add failed")
	}

	log.Info().
		Str("action", action).
		Str("risk", string(res.Risk.Tier)).
		Bool("autosend", res.Autosend).
		Msg("message processed")
}

// addCategory tags the original message. Best-effort: categories may
// not be enabled on the mailbox.
func (w *AutoreplyWorker) addCategory(ctx context.Context, messageID, category string) {
	if err := w.provider.AddCategory(ctx, messageID, category); err != nil {
		w.log.Warn().Err(err).Str("category", category).Msg("add category failed")
	}
}

// recordOutcome writes the audit record and archives the reply body.
// Both are best-effort; a storage outage must not stop replies.
func (w *AutoreplyWorker) recordOutcome(ctx context.Context, messageID string, res *in.DraftResult, action string) {
	if w.audit != nil {
		rec := &out.AuditRecord{
			MessageID:   messageID,
			CouncilID:   w.cfg.CouncilID,
			Topics:      topicStrings(res),
			RiskTier:    string(res.Risk.Tier),
			RiskReasons: res.Risk.Reasons,
			Autosend:    res.Autosend,
			Action:      action,
		}
		if err := w.audit.Insert(ctx, rec); err != nil {
			w.log.Warn().Err(err).Msg("audit insert failed")
		}
	}

	if w.archive != nil {
		doc := &out.ReplyDocument{
			MessageID: messageID,
			CouncilID: w.cfg.CouncilID,
			Topics:    topicStrings(res),
			HTML:      res.HTML,
		}
		if err := w.archive.Save(ctx, doc); err != nil {
			w.log.Warn().Err(err).Msg("reply archive failed")
		}
	}
}

func topicStrings(res *in.DraftResult) []string {
	topics := make([]string, len(res.Topics))
	for i, t := range res.Topics {
		topics[i] = string(t)
	}
	return topics
}
