package bootstrap

import (
	"os"

	"github.com/rs/zerolog"

	"civreply_server/adapter/in/worker"
	"civreply_server/config"
)

// NewWorker builds the mailbox polling worker from shared dependencies.
func NewWorker(cfg *config.Config, deps *Dependencies) *worker.AutoreplyWorker {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Logger()

	return worker.NewAutoreplyWorker(
		deps.MailProvider,
		deps.DraftService,
		deps.ProcessedStore,
		deps.AuditRepo,
		deps.ReplyArchive,
		worker.Config{
			PollInterval:        cfg.PollInterval,
			BatchSize:           cfg.BatchSize,
			CouncilID:           cfg.CouncilID,
			CouncilName:         cfg.CouncilName,
			CategoryReplied:     cfg.CategoryReplied,
			CategoryNeedsReview: cfg.CategoryNeedsReview,
		},
		zlog,
	)
}
