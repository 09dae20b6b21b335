package out

import "context"

// ReplyEnricher optionally rewrites the deterministic reply intro with
// an LLM. The pipeline must work identically when no enricher is
// configured: callers check Available before calling Enrich, and any
// Enrich error falls back to the template text.
type ReplyEnricher interface {
	Available() bool
	Enrich(ctx context.Context, req *EnrichRequest) (string, error)
}

// EnrichRequest carries the context the enricher may use.
type EnrichRequest struct {
	CouncilName string   `json:"council_name"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	Topics      []string `json:"topics"`
}
