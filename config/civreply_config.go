package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	Mode        string // api, worker, all

	// Database
	DatabaseURL string
	MongoDBURL  string
	MongoDBName string
	RedisURL    string

	// JWT
	JWTSecret string

	// Council
	CouncilID   string
	CouncilName string
	Signature   string

	// Mail provider
	MailProvider string // graph or gmail
	Mailbox      string

	// Microsoft Graph
	MicrosoftTenantID     string
	MicrosoftClientID     string
	MicrosoftClientSecret string

	// Gmail
	GmailCredentialsFile string

	// Worker
	PollInterval        time.Duration
	BatchSize           int
	CategoryReplied     string
	CategoryNeedsReview string
	ProcessedStatePath  string

	// Autosend
	AutosendMode string
	GreenTopics  []string

	// Catalog
	CuratedCatalogPath   string
	GeneratedCatalogPath string

	// OpenAI
	OpenAIAPIKey string
	LLMModel     string

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		Mode:        getEnv("MODE", "all"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "civreply"),
		RedisURL:    getEnv("REDIS_URL", ""),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", ""),

		// Council
		CouncilID:   getEnv("COUNCIL_ID", "wyndham"),
		CouncilName: getEnv("COUNCIL_NAME", "Wyndham City Council"),
		Signature:   getEnv("REPLY_SIGNATURE", "Customer Service Team"),

		// Mail provider
		MailProvider: getEnv("MAIL_PROVIDER", "graph"),
		Mailbox:      getEnv("MAILBOX", ""),

		// Microsoft Graph
		MicrosoftTenantID:     getEnv("MICROSOFT_TENANT_ID", ""),
		MicrosoftClientID:     getEnv("MICROSOFT_CLIENT_ID", ""),
		MicrosoftClientSecret: getEnv("MICROSOFT_CLIENT_SECRET", ""),

		// Gmail
		GmailCredentialsFile: getEnv("GMAIL_CREDENTIALS_FILE", ""),

		// Worker
		PollInterval:        time.Duration(getEnvInt("POLL_INTERVAL_SEC", 60)) * time.Second,
		BatchSize:           getEnvInt("BATCH_SIZE", 15),
		CategoryReplied:     getEnv("CATEGORY_REPLIED", "AutoReplied"),
		CategoryNeedsReview: getEnv("CATEGORY_NEEDS_REVIEW", "Needs review"),
		ProcessedStatePath:  getEnv("PROCESSED_STATE_PATH", "data/processed_ids.json"),

		// Autosend
		AutosendMode: getEnv("AUTOSEND_MODE", "off"),
		GreenTopics:  getEnvSlice("GREEN_TOPICS", []string{"waste_calendar", "opening_hours", "libraries"}),

		// Catalog
		CuratedCatalogPath:   getEnv("CURATED_CATALOG_PATH", ""),
		GeneratedCatalogPath: getEnv("GENERATED_CATALOG_PATH", "data/catalog.json"),

		// OpenAI
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		LLMModel:     getEnv("LLM_MODEL", "gpt-4o-mini"),

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RunAPI reports whether this process serves the operator API.
func (c *Config) RunAPI() bool {
	return c.Mode == "api" || c.Mode == "all"
}

// RunWorker reports whether this process runs the mailbox worker.
func (c *Config) RunWorker() bool {
	return c.Mode == "worker" || c.Mode == "all"
}
