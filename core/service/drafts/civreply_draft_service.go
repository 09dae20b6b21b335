// Package drafts orchestrates the reply pipeline: classify, resolve
// links, gate risk, decide autosend, compose.
package drafts

import (
	"context"

	"civreply_server/core/domain"
	"civreply_server/core/port/in"
	"civreply_server/core/port/out"
	"civreply_server/core/service/catalog"
	"civreply_server/core/service/classification"
	"civreply_server/core/service/compose"
	"civreply_server/pkg/apperr"
	"civreply_server/pkg/logger"
)

// Service sequences the pipeline for one enquiry at a time. The stages
// themselves are pure; the only I/O is the optional enricher call.
type Service struct {
	classifier *classification.TopicClassifier
	gate       *classification.RiskGate
	resolver   *catalog.LinkResolver
	composer   *compose.Composer
	enricher   out.ReplyEnricher
	policy     domain.AutosendPolicy
	log        *logger.Logger
}

// NewService creates the pipeline service. enricher may be nil.
func NewService(
	classifier *classification.TopicClassifier,
	gate *classification.RiskGate,
	resolver *catalog.LinkResolver,
	composer *compose.Composer,
	enricher out.ReplyEnricher,
	policy domain.AutosendPolicy,
) *Service {
	return &Service{
		classifier: classifier,
		gate:       gate,
		resolver:   resolver,
		composer:   composer,
		enricher:   enricher,
		policy:     policy,
		log:        logger.Default().WithField("component", "draft-service"),
	}
}

// Draft runs the full pipeline for one enquiry.
func (s *Service) Draft(ctx context.Context, req *in.DraftRequest) (*in.DraftResult, error) {
	if req == nil {
		return nil, apperr.BadRequest("empty draft request")
	}
	if req.CouncilID == "" {
		return nil, apperr.MissingField("council_id")
	}

	councilName := req.CouncilName
	if councilName == "" {
		councilName = req.CouncilID
	}

	text := req.Subject
	if text == "" {
		text = req.Body
	} else if req.Body != "" {
		text = req.Subject + "\n" + req.Body
	}

	topics := s.classifier.Classify(text)
	risk := s.gate.Assess(text)
	links := s.resolver.Resolve(ctx, req.CouncilID, topics, nil)
	autosend := classification.DecideAutosend(topics, risk.Tier, s.policy)

	reply := s.composer.Compose(&compose.ComposeInput{
		CouncilName:  councilName,
		OriginalText: req.Body,
		Links:        links,
		Topics:       topics,
		Intro:        s.enrichIntro(ctx, req, topics),
	})

	s.log.WithFields(map[string]any{
		"council":  req.CouncilID,
		"topics":   topicStrings(topics),
		"risk":     string(risk.Tier),
		"autosend": autosend,
		"links":    len(links),
	}).Info("draft composed")

	return &in.DraftResult{
		Topics:   reply.Topics,
		Links:    reply.Links,
		Risk:     risk,
		Autosend: autosend,
		HTML:     reply.HTML,
	}, nil
}

// Classify exposes topic detection alone.
func (s *Service) Classify(text string) []domain.Topic {
	return s.classifier.Classify(text)
}

// AssessRisk exposes the risk gate alone.
func (s *Service) AssessRisk(text string) domain.RiskAssessment {
	return s.gate.Assess(text)
}

// enrichIntro asks the enricher for a better intro sentence. Any
// failure falls back to the stock template text.
func (s *Service) enrichIntro(ctx context.Context, req *in.DraftRequest, topics []domain.Topic) string {
	if s.enricher == nil || !s.enricher.Available() {
		return ""
	}

	intro, err := s.enricher.Enrich(ctx, &out.EnrichRequest{
		CouncilName: req.CouncilName,
		Subject:     req.Subject,
		Body:        req.Body,
		Topics:      topicStrings(topics),
	})
	if err != nil {
		s.log.WithError(err).WithField("council", req.CouncilID).
			Warn("enrichment failed, using template intro")
		return ""
	}
	return intro
}

func topicStrings(topics []domain.Topic) []string {
	ss := make([]string, len(topics))
	for i, t := range topics {
		ss[i] = string(t)
	}
	return ss
}
