// Package http contains the Fiber handlers for the operator API.
package http

import (
	"github.com/gofiber/fiber/v2"

	"civreply_server/core/port/in"
	"civreply_server/pkg/apperr"
	"civreply_server/pkg/response"
)

// DraftHandler exposes the reply pipeline over HTTP. The endpoints run
// the same code path as the mailbox worker, so an operator can preview
// exactly what a message would get.
type DraftHandler struct {
	drafts in.DraftService
}

// NewDraftHandler creates a new draft handler.
func NewDraftHandler(drafts in.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// Register registers draft routes.
func (h *DraftHandler) Register(router fiber.Router) {
	router.Post("/drafts", h.CreateDraft)
	router.Post("/classify", h.Classify)
	router.Post("/risk", h.AssessRisk)
}

// CreateDraft runs the full pipeline for one enquiry.
// POST /api/v1/drafts
func (h *DraftHandler) CreateDraft(c *fiber.Ctx) error {
	var req in.DraftRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	res, err := h.drafts.Draft(c.Context(), &req)
	if err != nil {
		return err
	}

	return response.OK(c, res)
}

// ClassifyRequest carries text for classification or risk preview.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// Classify runs topic detection only.
// POST /api/v1/classify
func (h *DraftHandler) Classify(c *fiber.Ctx) error {
	var req ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if req.Text == "" {
		return apperr.MissingField("text")
	}

	return response.OK(c, fiber.Map{
		"topics": h.drafts.Classify(req.Text),
	})
}

// AssessRisk runs the risk gate only.
// POST /api/v1/risk
func (h *DraftHandler) AssessRisk(c *fiber.Ctx) error {
	var req ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if req.Text == "" {
		return apperr.MissingField("text")
	}

	return response.OK(c, h.drafts.AssessRisk(req.Text))
}
