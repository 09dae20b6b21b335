package classification

import (
	"regexp"
	"testing"

	"civreply_server/core/domain"
)

// TestTopicClassifier tests topic detection against the built-in table.
func TestTopicClassifier(t *testing.T) {
	classifier := NewTopicClassifier()

	tests := []struct {
		name      string
		text      string
		wantFirst domain.Topic
		wantAll   []domain.Topic
	}{
		{
			name:      "bin day question leads with waste_calendar",
			text:      "What day is my bin collected in Hoppers Crossing 3029?",
			wantFirst: domain.TopicWasteCalendar,
		},
		{
			name:      "missed collection",
			text:      "My bin was not collected yesterday, can someone come back?",
			wantFirst: domain.TopicMissedBin,
		},
		{
			name:      "hard rubbish booking",
			text:      "How do I book a hard rubbish pickup for an old mattress?",
			wantFirst: domain.TopicHardRubbish,
		},
		{
			name:      "rates instalment",
			text:      "When is my next rates instalment due and can I pay by BPAY?",
			wantFirst: domain.TopicRates,
		},
		{
			name:      "parking fine",
			text:      "I got a parking fine outside my own house",
			wantFirst: domain.TopicParking,
		},
		{
			name:      "pet registration word boundary",
			text:      "Do I need to register my dog?",
			wantFirst: domain.TopicAnimals,
		},
		{
			name:      "foi word boundary does not fire on foil",
			text:      "The foil wrapping blew onto my nature strip",
			wantFirst: domain.TopicReportIssue,
		},
		{
			name:      "no match falls back to general_info",
			text:      "Hello, just wanted to say thanks",
			wantFirst: domain.TopicGeneralInfo,
			wantAll:   []domain.Topic{domain.TopicGeneralInfo},
		},
		{
			name:      "empty text falls back to general_info",
			text:      "",
			wantFirst: domain.TopicGeneralInfo,
			wantAll:   []domain.Topic{domain.TopicGeneralInfo},
		},
		{
			name:      "mixed case matches",
			text:      "PARKING PERMIT renewal",
			wantFirst: domain.TopicParking,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.text)
			if len(got) == 0 {
				t.Fatal("Classify returned empty slice")
			}
			if got[0] != tt.wantFirst {
				t.Errorf("first topic = %s, want %s (all: %v)", got[0], tt.wantFirst, got)
			}
			if tt.wantAll != nil {
				if len(got) != len(tt.wantAll) {
					t.Fatalf("topics = %v, want %v", got, tt.wantAll)
				}
				for i := range tt.wantAll {
					if got[i] != tt.wantAll[i] {
						t.Errorf("topics[%d] = %s, want %s", i, got[i], tt.wantAll[i])
					}
				}
			}
		})
	}
}

// TestTopicClassifierDeterministic verifies repeated calls return the
// identical topic list.
func TestTopicClassifierDeterministic(t *testing.T) {
	classifier := NewTopicClassifier()
	text := "My bin was missed and I also have a question about rates and a parking fine"

	first := classifier.Classify(text)
	for i := 0; i < 50; i++ {
		again := classifier.Classify(text)
		if len(again) != len(first) {
			t.Fatalf("run %d: length %d, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: topics[%d] = %s, want %s", i, j, again[j], first[j])
			}
		}
	}
}

// TestTopicClassifierCap verifies the topic count never exceeds the cap
// even when many rules match.
func TestTopicClassifierCap(t *testing.T) {
	classifier := NewTopicClassifier()
	text := "bin day missed bin hard rubbish rates parking dog library planning noise foi"

	got := classifier.Classify(text)
	if len(got) > domain.MaxTopics {
		t.Errorf("got %d topics, cap is %d: %v", len(got), domain.MaxTopics, got)
	}
	if len(got) != domain.MaxTopics {
		t.Errorf("expected cap to be reached with %d topics, got %d: %v", domain.MaxTopics, len(got), got)
	}
}

// TestTopicClassifierRuleOrder verifies the specific waste_calendar rule
// wins over the broad waste rule for the same text.
func TestTopicClassifierRuleOrder(t *testing.T) {
	classifier := NewTopicClassifier()

	got := classifier.Classify("When is bin collection in my street?")
	if got[0] != domain.TopicWasteCalendar {
		t.Errorf("first topic = %s, want %s", got[0], domain.TopicWasteCalendar)
	}

	// Broad waste rule still matches second.
	found := false
	for _, topic := range got {
		if topic == domain.TopicWaste {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s in %v", domain.TopicWaste, got)
	}
}

// TestTopicClassifierCustomRules verifies a custom table is honored in
// declaration order with no duplicates.
func TestTopicClassifierCustomRules(t *testing.T) {
	rules := []*domain.TopicRule{
		{ID: "a", Keywords: []string{"alpha"}},
		{ID: "b", Patterns: []*regexp.Regexp{regexp.MustCompile(`\bbeta\b`)}},
		{ID: "a", Keywords: []string{"alpha again"}},
	}
	classifier := NewTopicClassifierWithRules(rules, 4)

	got := classifier.Classify("beta alpha again")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("topics = %v, want [a b]", got)
	}
}
