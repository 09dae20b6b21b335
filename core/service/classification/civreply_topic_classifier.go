// Package classification implements topic detection and risk gating
// for inbound council enquiries.
package classification

import (
	"strings"

	"civreply_server/core/domain"
)

// =============================================================================
// Topic Classifier
// =============================================================================

// TopicClassifier runs the ordered detection table over enquiry text.
// Matching is first-match-wins per rule; declaration order is the only
// tie-break, so the same text always yields the same topic list.
type TopicClassifier struct {
	rules []*domain.TopicRule
	max   int
}

// NewTopicClassifier creates a classifier over the built-in rule table.
func NewTopicClassifier() *TopicClassifier {
	return NewTopicClassifierWithRules(domain.DefaultTopicRules(), domain.MaxTopics)
}

// NewTopicClassifierWithRules creates a classifier over a custom table.
func NewTopicClassifierWithRules(rules []*domain.TopicRule, max int) *TopicClassifier {
	if max <= 0 {
		max = domain.MaxTopics
	}
	return &TopicClassifier{rules: rules, max: max}
}

// Classify returns the matched topics in rule order, capped, with
// duplicates removed. It never returns an empty slice: when nothing
// matches, the result is the single fallback topic.
func (c *TopicClassifier) Classify(text string) []domain.Topic {
	lower := strings.ToLower(text)

	var topics []domain.Topic
	seen := make(map[domain.Topic]bool, c.max)

	for _, rule := range c.rules {
		if len(topics) >= c.max {
			break
		}
		if seen[rule.ID] {
			continue
		}
		if rule.Matches(lower) {
			topics = append(topics, rule.ID)
			seen[rule.ID] = true
		}
	}

	if len(topics) == 0 {
		return []domain.Topic{domain.TopicFallback}
	}
	return topics
}

// Rules exposes the active rule table for the link resolver.
func (c *TopicClassifier) Rules() []*domain.TopicRule {
	return c.rules
}
