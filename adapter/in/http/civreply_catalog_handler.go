package http

import (
	"github.com/gofiber/fiber/v2"

	"civreply_server/core/domain"
	"civreply_server/core/service/catalog"
	"civreply_server/pkg/apperr"
	"civreply_server/pkg/logger"
	"civreply_server/pkg/response"
)

// CatalogHandler exposes the link catalog: known councils, the topic
// table, link previews, and a reload hook for after a crawler run.
type CatalogHandler struct {
	store    *catalog.Store
	resolver *catalog.LinkResolver
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(store *catalog.Store, resolver *catalog.LinkResolver) *CatalogHandler {
	return &CatalogHandler{store: store, resolver: resolver}
}

// Register registers catalog routes.
func (h *CatalogHandler) Register(router fiber.Router) {
	router.Get("/councils", h.ListCouncils)
	router.Get("/councils/:id/links", h.ResolveLinks)
	router.Get("/topics", h.ListTopics)
	router.Post("/catalog/reload", h.Reload)
}

// ListCouncils returns the council IDs present in the catalog.
// GET /api/v1/councils
func (h *CatalogHandler) ListCouncils(c *fiber.Ctx) error {
	councils := h.store.KnownCouncils()
	return response.OKWithMeta(c, councils, &response.Meta{Total: len(councils)})
}

// TopicInfo describes one entry of the detection table.
type TopicInfo struct {
	ID          string   `json:"id"`
	Keywords    []string `json:"keywords,omitempty"`
	CatalogKeys []string `json:"catalog_keys"`
}

// ListTopics returns the detection table in evaluation order.
// GET /api/v1/topics
func (h *CatalogHandler) ListTopics(c *fiber.Ctx) error {
	rules := domain.DefaultTopicRules()
	topics := make([]TopicInfo, len(rules))
	for i, r := range rules {
		topics[i] = TopicInfo{
			ID:          string(r.ID),
			Keywords:    r.Keywords,
			CatalogKeys: r.CatalogKeys,
		}
	}
	return response.OKWithMeta(c, topics, &response.Meta{Total: len(topics)})
}

// ResolveLinks previews the links a topic resolves to for a council.
// GET /api/v1/councils/:id/links?topic=waste_calendar
func (h *CatalogHandler) ResolveLinks(c *fiber.Ctx) error {
	councilID := c.Params("id")
	topic := c.Query("topic")
	if topic == "" {
		return apperr.MissingField("topic")
	}

	links := h.resolver.Resolve(c.Context(), councilID, []domain.Topic{domain.Topic(topic)}, nil)
	return response.OKWithMeta(c, links, &response.Meta{Total: len(links)})
}

// Reload re-reads the catalog files from disk.
// POST /api/v1/catalog/reload
func (h *CatalogHandler) Reload(c *fiber.Ctx) error {
	if err := h.store.Reload(); err != nil {
		logger.WithError(err).Error("catalog reload failed")
		return err
	}

	councils := h.store.KnownCouncils()
	logger.WithField("councils", len(councils)).Info("catalog reloaded")
	return response.OK(c, fiber.Map{
		"reloaded": true,
		"councils": len(councils),
	})
}
