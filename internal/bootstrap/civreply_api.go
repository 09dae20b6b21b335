package bootstrap

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	apihttp "civreply_server/adapter/in/http"
	"civreply_server/config"
	"civreply_server/infra/middleware"
)

// NewAPI builds the Fiber app on top of already-built dependencies.
// poller may be nil when the worker runs in a separate process.
func NewAPI(cfg *config.Config, deps *Dependencies, poller apihttp.Poller) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),

		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit:    1 * 1024 * 1024,
		ServerHeader: "",
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	if cfg.IsProduction() && (allowOrigins == "" || allowOrigins == "*") {
		allowOrigins = ""
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID",
	}))

	// Health check (no auth required)
	healthHandler := apihttp.NewHealthHandlerWithDeps(deps.DB, deps.Redis, deps.Mongo)
	healthHandler.Register(app)

	// Operator API
	api := app.Group("/api/v1", middleware.JWTAuth(cfg.JWTSecret))

	apihttp.NewDraftHandler(deps.DraftService).Register(api)
	apihttp.NewCatalogHandler(deps.CatalogStore, deps.Resolver).Register(api)
	apihttp.NewOpsHandler(deps.AuditRepo, poller).Register(api)

	return app
}
