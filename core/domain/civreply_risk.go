package domain

// RiskTier classifies an enquiry's sensitivity for autosend gating.
type RiskTier string

const (
	RiskSafe     RiskTier = "SAFE"
	RiskCaution  RiskTier = "CAUTION"
	RiskHighRisk RiskTier = "HIGH_RISK"
)

// RiskAssessment is the gate's verdict. Reasons is never empty: a
// clean enquiry carries the single reason "no risk triggers detected".
type RiskAssessment struct {
	Tier    RiskTier `json:"tier"`
	Reasons []string `json:"reasons"`
}

// AutosendMode controls unattended sending.
type AutosendMode string

const (
	AutosendOff       AutosendMode = "off"
	AutosendGreenOnly AutosendMode = "green_only"
	AutosendAlways    AutosendMode = "always"
)

// ParseAutosendMode maps a config string to a mode, defaulting to off.
func ParseAutosendMode(s string) AutosendMode {
	switch s {
	case string(AutosendGreenOnly):
		return AutosendGreenOnly
	case string(AutosendAlways):
		return AutosendAlways
	default:
		return AutosendOff
	}
}

// AutosendPolicy is the operator-configured sending policy, loaded once
// at startup and treated as immutable.
type AutosendPolicy struct {
	Mode        AutosendMode
	GreenTopics map[Topic]bool
}

// NewAutosendPolicy builds a policy from a mode string and a list of
// green topic identifiers.
func NewAutosendPolicy(mode string, greenTopics []string) AutosendPolicy {
	green := make(map[Topic]bool, len(greenTopics))
	for _, t := range greenTopics {
		if t != "" {
			green[Topic(t)] = true
		}
	}
	return AutosendPolicy{
		Mode:        ParseAutosendMode(mode),
		GreenTopics: green,
	}
}

// IsGreen reports whether the topic is pre-approved for unattended
// sending.
func (p AutosendPolicy) IsGreen(t Topic) bool {
	return p.GreenTopics[t]
}
