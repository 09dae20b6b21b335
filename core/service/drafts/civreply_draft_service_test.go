package drafts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"civreply_server/core/domain"
	"civreply_server/core/port/in"
	"civreply_server/core/port/out"
	"civreply_server/core/service/catalog"
	"civreply_server/core/service/classification"
	"civreply_server/core/service/compose"
)

type fakeEnricher struct {
	available bool
	intro     string
	err       error
	calls     int
}

func (f *fakeEnricher) Available() bool { return f.available }

func (f *fakeEnricher) Enrich(_ context.Context, _ *out.EnrichRequest) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.intro, nil
}

func newTestService(t *testing.T, mode string, greenTopics []string, enricher out.ReplyEnricher) *Service {
	t.Helper()

	store, err := catalog.NewStore("", "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	classifier := classification.NewTopicClassifier()
	return NewService(
		classifier,
		classification.NewRiskGate(),
		catalog.NewLinkResolver(store, classifier.Rules(), nil),
		compose.NewComposer("Customer Service Team"),
		enricher,
		domain.NewAutosendPolicy(mode, greenTopics),
	)
}

// TestDraftBinDayEnquiry runs a plain bin-day enquiry end to end.
func TestDraftBinDayEnquiry(t *testing.T) {
	svc := newTestService(t, "green_only", []string{"waste_calendar"}, nil)

	res, err := svc.Draft(context.Background(), &in.DraftRequest{
		CouncilID:   "wyndham",
		CouncilName: "Wyndham City Council",
		Subject:     "Bin day",
		Body:        "What day is my bin collected in Hoppers Crossing 3029?",
	})
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}

	if res.Topics[0] != domain.TopicWasteCalendar {
		t.Errorf("lead topic = %s, want %s", res.Topics[0], domain.TopicWasteCalendar)
	}
	if len(res.Links) == 0 {
		t.Fatal("expected resolved links")
	}
	if res.Links[0].URL != "https://www.wyndham.vic.gov.au/bin-collection-days" {
		t.Errorf("first link = %s, want bin-day lookup", res.Links[0].URL)
	}
	if res.Risk.Tier != domain.RiskSafe {
		t.Errorf("risk = %s, want SAFE (reasons %v)", res.Risk.Tier, res.Risk.Reasons)
	}
	if !strings.Contains(res.HTML, "Wyndham City Council") {
		t.Error("council name missing from reply")
	}
}

// TestDraftHighRiskEnquiry verifies a high-risk enquiry is never
// auto-sent outside always mode.
func TestDraftHighRiskEnquiry(t *testing.T) {
	text := "I will contact my lawyer, this is an accident with injury"

	for _, mode := range []string{"off", "green_only"} {
		svc := newTestService(t, mode, []string{"waste_calendar", "general_info"}, nil)
		res, err := svc.Draft(context.Background(), &in.DraftRequest{
			CouncilID: "wyndham",
			Body:      text,
		})
		if err != nil {
			t.Fatalf("Draft(%s): %v", mode, err)
		}
		if res.Risk.Tier != domain.RiskHighRisk {
			t.Errorf("mode %s: risk = %s, want HIGH_RISK", mode, res.Risk.Tier)
		}
		found := false
		for _, r := range res.Risk.Reasons {
			if r == classification.ReasonHighRisk {
				found = true
			}
		}
		if !found {
			t.Errorf("mode %s: reasons %v missing high-risk reason", mode, res.Risk.Reasons)
		}
		if res.Autosend {
			t.Errorf("mode %s: high-risk enquiry must not autosend", mode)
		}
	}

	svc := newTestService(t, "always", nil, nil)
	res, err := svc.Draft(context.Background(), &in.DraftRequest{
		CouncilID: "wyndham",
		Body:      text,
	})
	if err != nil {
		t.Fatalf("Draft(always): %v", err)
	}
	if !res.Autosend {
		t.Error("always mode sends regardless of risk")
	}
}

// TestDraftUnknownCouncil verifies an unknown council composes a reply
// with zero citations and an escalation line, without error.
func TestDraftUnknownCouncil(t *testing.T) {
	svc := newTestService(t, "off", nil, nil)

	res, err := svc.Draft(context.Background(), &in.DraftRequest{
		CouncilID: "not-a-real-council",
		Body:      "When is bin day?",
	})
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if len(res.Links) != 0 {
		t.Errorf("expected no links, got %v", res.Links)
	}
	if strings.Contains(res.HTML, "<ul>") {
		t.Error("reply must carry no citation list")
	}
	if !strings.Contains(res.HTML, "forwarded to the relevant team") {
		t.Error("expected escalation line")
	}
}

// TestDraftAmbiguousTopicsHold verifies two unrelated green topics
// still hold the reply under green_only.
func TestDraftAmbiguousTopicsHold(t *testing.T) {
	svc := newTestService(t, "green_only", []string{"rates", "libraries"}, nil)

	res, err := svc.Draft(context.Background(), &in.DraftRequest{
		CouncilID: "wyndham",
		Body:      "Can I pay my rates at the library?",
	})
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if len(res.Topics) < 2 {
		t.Fatalf("expected two topics, got %v", res.Topics)
	}
	if res.Autosend {
		t.Error("ambiguous classification must not autosend")
	}
}

// TestDraftValidation verifies a structurally missing council faults.
func TestDraftValidation(t *testing.T) {
	svc := newTestService(t, "off", nil, nil)

	if _, err := svc.Draft(context.Background(), &in.DraftRequest{Body: "hello"}); err == nil {
		t.Error("expected error for missing council_id")
	}
	if _, err := svc.Draft(context.Background(), nil); err == nil {
		t.Error("expected error for nil request")
	}
}

// TestDraftEnricherFallback verifies the pipeline ignores an
// unavailable or failing enricher and uses the failing enricher's
// template fallback.
func TestDraftEnricherFallback(t *testing.T) {
	unavailable := &fakeEnricher{available: false, intro: "should not appear"}
	svc := newTestService(t, "off", nil, unavailable)

	res, err := svc.Draft(context.Background(), &in.DraftRequest{
		CouncilID: "wyndham",
		Body:      "bin day?",
	})
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if unavailable.calls != 0 {
		t.Error("unavailable enricher must not be called")
	}
	if !strings.Contains(res.HTML, "We have received your enquiry") {
		t.Error("expected template intro")
	}

	failing := &fakeEnricher{available: true, err: errors.New("model down")}
	svc = newTestService(t, "off", nil, failing)
	res, err = svc.Draft(context.Background(), &in.DraftRequest{
		CouncilID: "wyndham",
		Body:      "bin day?",
	})
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if failing.calls != 1 {
		t.Errorf("failing enricher called %d times, want 1", failing.calls)
	}
	if !strings.Contains(res.HTML, "We have received your enquiry") {
		t.Error("enricher failure must fall back to template intro")
	}

	working := &fakeEnricher{available: true, intro: "Here is your bin day answer."}
	svc = newTestService(t, "off", nil, working)
	res, err = svc.Draft(context.Background(), &in.DraftRequest{
		CouncilID: "wyndham",
		Body:      "bin day?",
	})
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if !strings.Contains(res.HTML, "Here is your bin day answer.") {
		t.Error("expected enriched intro in reply")
	}
}

// TestDraftGreenSingleTopicSends verifies the happy autosend path.
func TestDraftGreenSingleTopicSends(t *testing.T) {
	svc := newTestService(t, "green_only", []string{"waste_calendar"}, nil)

	res, err := svc.Draft(context.Background(), &in.DraftRequest{
		CouncilID: "wyndham",
		Subject:   "collection calendar",
	})
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if len(res.Topics) != 1 || res.Topics[0] != domain.TopicWasteCalendar {
		t.Fatalf("topics = %v, want exactly [waste_calendar]", res.Topics)
	}
	if res.Risk.Tier != domain.RiskSafe {
		t.Fatalf("risk = %s, want SAFE", res.Risk.Tier)
	}
	if !res.Autosend {
		t.Error("single green topic at SAFE must autosend")
	}
}
