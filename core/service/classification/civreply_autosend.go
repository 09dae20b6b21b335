package classification

import "civreply_server/core/domain"

// =============================================================================
// Autosend Decision
// =============================================================================

// DecideAutosend combines classification, risk and operator policy into
// a binary send decision.
//
// Rules by mode:
//   - off: never send.
//   - always: always send, regardless of risk. Operator opt-in only.
//   - green_only: send iff exactly one topic was classified, that topic
//     is in the green set, and the risk tier is SAFE. Multiple topics
//     mean the enquiry is ambiguous and a human reviews it.
func DecideAutosend(topics []domain.Topic, tier domain.RiskTier, policy domain.AutosendPolicy) bool {
	switch policy.Mode {
	case domain.AutosendAlways:
		return true
	case domain.AutosendGreenOnly:
		return len(topics) == 1 &&
			policy.IsGreen(topics[0]) &&
			tier == domain.RiskSafe
	default:
		return false
	}
}
