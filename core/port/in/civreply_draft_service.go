// Package in defines inbound ports (driving ports) for the application.
package in

import (
	"context"

	"civreply_server/core/domain"
)

// DraftService defines the interface for the reply pipeline. The HTTP
// API and the polling worker both drive it.
type DraftService interface {
	// Draft runs the full pipeline for one enquiry: classify, resolve
	// links, gate risk, decide autosend, compose.
	Draft(ctx context.Context, req *DraftRequest) (*DraftResult, error)

	// Classify runs topic detection only.
	Classify(text string) []domain.Topic

	// AssessRisk runs the risk gate only.
	AssessRisk(text string) domain.RiskAssessment
}

// DraftRequest is one enquiry to draft a reply for.
type DraftRequest struct {
	CouncilID   string `json:"council_id"`
	CouncilName string `json:"council_name"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Sender      string `json:"sender"`
}

// DraftResult is the pipeline's full verdict for one enquiry.
type DraftResult struct {
	Topics   []domain.Topic        `json:"topics"`
	Links    []domain.LinkEntry    `json:"links"`
	Risk     domain.RiskAssessment `json:"risk"`
	Autosend bool                  `json:"autosend"`
	HTML     string                `json:"html"`
}
