package bootstrap

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"civreply_server/adapter/out/enrich"
	"civreply_server/adapter/out/mongodb"
	"civreply_server/adapter/out/persistence"
	"civreply_server/adapter/out/provider"
	"civreply_server/adapter/out/provider/graph"
	"civreply_server/config"
	"civreply_server/core/domain"
	"civreply_server/core/port/in"
	"civreply_server/core/port/out"
	"civreply_server/core/service/catalog"
	"civreply_server/core/service/classification"
	"civreply_server/core/service/compose"
	"civreply_server/core/service/drafts"
	"civreply_server/infra/database"
	"civreply_server/pkg/logger"
)

// Dependencies wires the pipeline services and the optional backing
// stores. Postgres, Redis and MongoDB are all optional: the pipeline
// itself needs none of them.
type Dependencies struct {
	Config *config.Config

	DB    *sqlx.DB
	Redis *redis.Client
	Mongo *mongo.Client

	CatalogStore *catalog.Store
	Resolver     *catalog.LinkResolver
	DraftService in.DraftService

	MailProvider   out.MailProviderPort
	ProcessedStore out.ProcessedStore
	AuditRepo      out.AuditRepository
	ReplyArchive   out.ReplyArchive
}

// NewDependencies builds everything the API and the worker share.
// The returned cleanup closes connections in reverse order.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Catalog
	store, err := catalog.NewStore(cfg.CuratedCatalogPath, cfg.GeneratedCatalogPath)
	if err != nil {
		return nil, nil, err
	}
	deps.CatalogStore = store
	logger.Info("Catalog loaded: %d councils", len(store.KnownCouncils()))

	// Pipeline services
	classifier := classification.NewTopicClassifier()
	gate := classification.NewRiskGate()
	deps.Resolver = catalog.NewLinkResolver(store, classifier.Rules(), nil)
	composer := compose.NewComposer(cfg.Signature)
	enricher := enrich.NewOpenAIEnricher(cfg.OpenAIAPIKey, cfg.LLMModel)
	policy := domain.NewAutosendPolicy(cfg.AutosendMode, cfg.GreenTopics)

	deps.DraftService = drafts.NewService(classifier, gate, deps.Resolver, composer, enricher, policy)

	// Postgres (audit trail)
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Warn("Postgres connection failed, audit trail disabled: %v", err)
		} else {
			deps.DB = db
			cleanups = append(cleanups, func() { db.Close() })

			audit := persistence.NewAuditAdapter(db)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := audit.EnsureSchema(ctx); err != nil {
				logger.WithError(err).Warn("audit schema setup failed")
			}
			cancel()
			deps.AuditRepo = audit
			logger.Info("Audit store connected")
		}
	}

	// Redis (processed-ID dedup)
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis connection failed: %v", err)
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { redisClient.Close() })
			deps.ProcessedStore = persistence.NewRedisProcessedStore(redisClient)
			logger.Info("Processed-ID store: redis")
		}
	}
	if deps.ProcessedStore == nil {
		fileStore, err := persistence.NewFileProcessedStore(cfg.ProcessedStatePath)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		deps.ProcessedStore = fileStore
		logger.Info("Processed-ID store: file (%s)", cfg.ProcessedStatePath)
	}

	// MongoDB (reply body archive)
	if cfg.MongoDBURL != "" {
		mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
		if err != nil {
			logger.Warn("MongoDB connection failed, reply archive disabled: %v", err)
		} else {
			deps.Mongo = mongoClient
			cleanups = append(cleanups, func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				mongoClient.Disconnect(ctx)
			})

			archive := mongodb.NewReplyArchiveAdapter(mongoClient.Database(cfg.MongoDBName))
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := archive.EnsureIndexes(ctx); err != nil {
				logger.WithError(err).Warn("reply archive index setup failed")
			}
			cancel()
			deps.ReplyArchive = archive
			logger.Info("Reply archive connected")
		}
	}

	// Mail provider (worker mode only needs it, but the factory is
	// cheap and validates config early)
	if cfg.RunWorker() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		mailProvider, err := provider.NewMailProvider(ctx, provider.FactoryConfig{
			Provider: cfg.MailProvider,
			Graph: graph.Config{
				TenantID:     cfg.MicrosoftTenantID,
				ClientID:     cfg.MicrosoftClientID,
				ClientSecret: cfg.MicrosoftClientSecret,
				Mailbox:      cfg.Mailbox,
			},
			Gmail: provider.GmailConfig{
				CredentialsFile: cfg.GmailCredentialsFile,
				Mailbox:         cfg.Mailbox,
			},
		})
		cancel()
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		deps.MailProvider = mailProvider
		logger.Info("Mail provider: %s", mailProvider.GetProviderType())
	}

	return deps, cleanup, nil
}
