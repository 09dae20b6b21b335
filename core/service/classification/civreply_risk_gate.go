package classification

import (
	"regexp"
	"strings"

	"civreply_server/core/domain"
)

// =============================================================================
// Risk Gate
// =============================================================================

// Risk reason strings. Stable values; the audit trail stores them.
const (
	ReasonHighRisk   = "High-risk keyword"
	ReasonEscalation = "Potential complaint/escalation"
	ReasonPII        = "PII detected"
	ReasonClean      = "no risk triggers detected"
)

// riskTrigger matches one keyword or phrase. Short single words carry a
// compiled word-boundary pattern so "foi" does not fire on "foil".
type riskTrigger struct {
	phrase  string
	pattern *regexp.Regexp
}

func phraseTrigger(s string) riskTrigger { return riskTrigger{phrase: s} }

func wordTrigger(words string) riskTrigger {
	return riskTrigger{pattern: regexp.MustCompile(`\b(?:` + words + `)\b`)}
}

func (t riskTrigger) matches(lower string) bool {
	if t.pattern != nil {
		return t.pattern.MatchString(lower)
	}
	return strings.Contains(lower, t.phrase)
}

// RiskGate classifies enquiry text into a three-tier sensitivity level.
// HIGH_RISK is absorbing: once a high-risk trigger fires, nothing else
// can lower the tier.
type RiskGate struct {
	high    []riskTrigger
	caution []riskTrigger
	pii     []*regexp.Regexp
}

// NewRiskGate creates a gate with the built-in trigger sets.
func NewRiskGate() *RiskGate {
	return &RiskGate{
		high: []riskTrigger{
			wordTrigger(`foi`),
			phraseTrigger("freedom of information"),
			wordTrigger(`accidents?`),
			wordTrigger(`injur(?:y|ies|ed)`),
			wordTrigger(`legal|lawyers?|solicitors?`),
			wordTrigger(`threatens?|threatened|threatening`),
			wordTrigger(`assaults?|assaulted`),
			phraseTrigger("payment dispute"),
			wordTrigger(`chargebacks?`),
			phraseTrigger("personal information request"),
			wordTrigger(`vulnerable`),
			wordTrigger(`dangers?|dangerous`),
		},
		caution: []riskTrigger{
			wordTrigger(`complaints?`),
			wordTrigger(`unhappy`),
			wordTrigger(`delays?|delayed`),
			wordTrigger(`refunds?`),
			wordTrigger(`appeals?`),
			wordTrigger(`escalates?|escalated|escalation`),
			wordTrigger(`supervisors?`),
			wordTrigger(`deadlines?`),
			wordTrigger(`urgent|urgently`),
			wordTrigger(`threat`),
			wordTrigger(`media`),
			wordTrigger(`ombudsman`),
			wordTrigger(`privacy`),
		},
		pii: []*regexp.Regexp{
			regexp.MustCompile(`\b\d{8,}\b`),
			regexp.MustCompile(`\b\+?\d{9,15}\b`),
		},
	}
}

// Assess returns the tier and a non-empty reason list for the text.
func (g *RiskGate) Assess(text string) domain.RiskAssessment {
	lower := strings.ToLower(text)

	tier := domain.RiskSafe
	var reasons []string

	if anyTrigger(g.high, lower) {
		tier = domain.RiskHighRisk
		reasons = append(reasons, ReasonHighRisk)
	} else if anyTrigger(g.caution, lower) {
		tier = domain.RiskCaution
		reasons = append(reasons, ReasonEscalation)
	}

	for _, p := range g.pii {
		if p.MatchString(lower) {
			if tier == domain.RiskSafe {
				tier = domain.RiskCaution
			}
			reasons = append(reasons, ReasonPII)
			break
		}
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonClean)
	}

	return domain.RiskAssessment{Tier: tier, Reasons: reasons}
}

func anyTrigger(triggers []riskTrigger, lower string) bool {
	for _, t := range triggers {
		if t.matches(lower) {
			return true
		}
	}
	return false
}
