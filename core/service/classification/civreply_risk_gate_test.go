package classification

import (
	"testing"

	"civreply_server/core/domain"
)

// TestRiskGateAssess tests tier assignment and reasons.
func TestRiskGateAssess(t *testing.T) {
	gate := NewRiskGate()

	tests := []struct {
		name        string
		text        string
		wantTier    domain.RiskTier
		wantReasons []string
	}{
		{
			name:        "clean text is SAFE with the single clean reason",
			text:        "What day is my bin collected?",
			wantTier:    domain.RiskSafe,
			wantReasons: []string{ReasonClean},
		},
		{
			name:        "high-risk keyword",
			text:        "I will contact my lawyer, this is an accident with injury",
			wantTier:    domain.RiskHighRisk,
			wantReasons: []string{ReasonHighRisk},
		},
		{
			name:        "freedom of information phrase",
			text:        "This is a freedom of information request",
			wantTier:    domain.RiskHighRisk,
			wantReasons: []string{ReasonHighRisk},
		},
		{
			name:        "foi word boundary does not fire on foil",
			text:        "Someone dumped foil wrappers on my street",
			wantTier:    domain.RiskSafe,
			wantReasons: []string{ReasonClean},
		},
		{
			name:        "caution keyword",
			text:        "I want to make a complaint about the delay",
			wantTier:    domain.RiskCaution,
			wantReasons: []string{ReasonEscalation},
		},
		{
			name:        "high risk absorbs caution",
			text:        "I am unhappy about the delay and will go to my lawyer",
			wantTier:    domain.RiskHighRisk,
			wantReasons: []string{ReasonHighRisk},
		},
		{
			name:        "PII upgrades SAFE to CAUTION",
			text:        "My account number is 12345678, when are rates due?",
			wantTier:    domain.RiskCaution,
			wantReasons: []string{ReasonPII},
		},
		{
			name:        "phone number upgrades SAFE to CAUTION",
			text:        "Call me on +61412345678 please",
			wantTier:    domain.RiskCaution,
			wantReasons: []string{ReasonPII},
		},
		{
			name:        "PII never downgrades HIGH_RISK",
			text:        "My lawyer's number is 0412345678",
			wantTier:    domain.RiskHighRisk,
			wantReasons: []string{ReasonHighRisk, ReasonPII},
		},
		{
			name:        "PII appends to CAUTION without changing tier",
			text:        "I want a refund, reference 987654321",
			wantTier:    domain.RiskCaution,
			wantReasons: []string{ReasonEscalation, ReasonPII},
		},
		{
			name:        "short digit runs are not PII",
			text:        "My street number is 42 and postcode 3029",
			wantTier:    domain.RiskSafe,
			wantReasons: []string{ReasonClean},
		},
		{
			name:        "empty text is SAFE",
			text:        "",
			wantTier:    domain.RiskSafe,
			wantReasons: []string{ReasonClean},
		},
		{
			name:        "mixed case triggers still fire",
			text:        "This is URGENT, I will go to the Ombudsman",
			wantTier:    domain.RiskCaution,
			wantReasons: []string{ReasonEscalation},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gate.Assess(tt.text)
			if got.Tier != tt.wantTier {
				t.Errorf("tier = %s, want %s (reasons: %v)", got.Tier, tt.wantTier, got.Reasons)
			}
			if len(got.Reasons) == 0 {
				t.Fatal("reasons must never be empty")
			}
			if len(got.Reasons) != len(tt.wantReasons) {
				t.Fatalf("reasons = %v, want %v", got.Reasons, tt.wantReasons)
			}
			for i := range tt.wantReasons {
				if got.Reasons[i] != tt.wantReasons[i] {
					t.Errorf("reasons[%d] = %q, want %q", i, got.Reasons[i], tt.wantReasons[i])
				}
			}
		})
	}
}
