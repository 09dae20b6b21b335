package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"civreply_server/core/port/out"
	"civreply_server/pkg/response"
)

// Poller triggers one mailbox poll cycle on demand.
type Poller interface {
	PollOnce(ctx context.Context)
}

// OpsHandler exposes the audit trail and a manual poll trigger. Both
// are optional: the API can run without the worker or the audit DB.
type OpsHandler struct {
	audit  out.AuditRepository
	poller Poller
}

// NewOpsHandler creates a new ops handler.
func NewOpsHandler(audit out.AuditRepository, poller Poller) *OpsHandler {
	return &OpsHandler{audit: audit, poller: poller}
}

// Register registers ops routes.
func (h *OpsHandler) Register(router fiber.Router) {
	router.Get("/audit", h.ListAudit)
	router.Post("/worker/poll", h.TriggerPoll)
}

// ListAudit returns recent audit records, newest first.
// GET /api/v1/audit?limit=50
func (h *OpsHandler) ListAudit(c *fiber.Ctx) error {
	if h.audit == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "audit store not configured")
	}

	limit := response.GetLimit(c, 50, 500)
	records, err := h.audit.ListRecent(c.Context(), limit)
	if err != nil {
		return err
	}

	return response.OKWithMeta(c, records, &response.Meta{Total: len(records), Limit: limit})
}

// TriggerPoll runs one poll cycle immediately.
// POST /api/v1/worker/poll
func (h *OpsHandler) TriggerPoll(c *fiber.Ctx) error {
	if h.poller == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "worker not running in this process")
	}

	h.poller.PollOnce(c.Context())
	return response.OK(c, fiber.Map{"polled": true})
}
