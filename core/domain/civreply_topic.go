package domain

import (
	"regexp"
	"strings"
)

// Topic identifies one category of resident enquiry.
type Topic string

const (
	TopicWasteCalendar Topic = "waste_calendar"
	TopicMissedBin     Topic = "missed_bin"
	TopicHardRubbish   Topic = "hard_rubbish"
	TopicWaste         Topic = "waste"
	TopicRates         Topic = "rates"
	TopicParking       Topic = "parking"
	TopicAnimals       Topic = "animals"
	TopicLibraries     Topic = "libraries"
	TopicPlanning      Topic = "planning"
	TopicOpeningHours  Topic = "opening_hours"
	TopicReportIssue   Topic = "report_issue"
	TopicNoise         Topic = "noise"
	TopicFOI           Topic = "foi"
	TopicGeneralInfo   Topic = "general_info"
)

// TopicFallback is returned when no rule matches. Classification is
// never empty.
const TopicFallback = TopicGeneralInfo

// MaxTopics bounds the number of topics a single enquiry may resolve
// to. Resolver and gate cost scale with this.
const MaxTopics = 4

// TopicRule is one entry of the detection table. Rules are evaluated
// in declaration order; declaration order is the only tie-break.
type TopicRule struct {
	ID Topic

	// Keywords are matched as case-insensitive substrings against the
	// lowercased enquiry text.
	Keywords []string

	// Patterns are compiled regular expressions for matches that need
	// word boundaries (short words like "dog" or "fine").
	Patterns []*regexp.Regexp

	// CatalogKeys lists the link-catalog keys for this topic, ordered
	// by preference.
	CatalogKeys []string
}

// Matches reports whether the rule matches the given lowercased text.
func (r *TopicRule) Matches(lower string) bool {
	for _, kw := range r.Keywords {
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	for _, p := range r.Patterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// DefaultTopicRules is the built-in detection table. Specific rules
// come before broad ones: "waste_calendar" must win over "waste" for
// a bin-day question.
func DefaultTopicRules() []*TopicRule {
	return []*TopicRule{
		{
			ID: TopicWasteCalendar,
			Keywords: []string{
				"bin day", "collection day", "bin collected", "collection calendar",
				"bin collection", "kerbside collection",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`what\s+day\b.*\b(bin|waste|rubbish|recycling)`),
			},
			CatalogKeys: []string{"waste_calendar", "waste", "missed_bin"},
		},
		{
			ID: TopicMissedBin,
			Keywords: []string{
				"missed bin", "missed collection", "bin not collected",
				"bin was not collected", "bin wasn't collected",
			},
			CatalogKeys: []string{"missed_bin", "waste_calendar", "waste"},
		},
		{
			ID:          TopicHardRubbish,
			Keywords:    []string{"hard rubbish", "hard waste", "bulky waste", "mattress"},
			CatalogKeys: []string{"hard_rubbish", "waste"},
		},
		{
			ID: TopicWaste,
			Keywords: []string{
				"waste", "rubbish", "garbage", "recycling", "green waste", "fogo",
				"transfer station", "landfill",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\bbins?\b`),
				regexp.MustCompile(`\btip\b`),
			},
			CatalogKeys: []string{"waste", "waste_calendar", "recycling_az", "transfer_station"},
		},
		{
			ID:       TopicRates,
			Keywords: []string{"rate notice", "rates notice", "valuation", "instalment", "bpay", "pay my rates"},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\brates?\b`),
			},
			CatalogKeys: []string{"rates", "rates_hardship"},
		},
		{
			ID:       TopicParking,
			Keywords: []string{"parking", "infringement", "parking permit"},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\bfines?\b`),
				regexp.MustCompile(`\btickets?\b`),
			},
			CatalogKeys: []string{"parking_fines", "parking_permits"},
		},
		{
			ID:       TopicAnimals,
			Keywords: []string{"microchip", "pet registration", "animal registration", "desex"},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\b(dogs?|cats?|pets?|puppy|kitten)\b`),
			},
			CatalogKeys: []string{"pet_registration"},
		},
		{
			ID:       TopicLibraries,
			Keywords: []string{"library", "libraries", "borrow", "study room"},
			CatalogKeys: []string{
				"libraries",
			},
		},
		{
			ID:       TopicPlanning,
			Keywords: []string{"planning permit", "building permit", "planning scheme", "overlay", "subdivision", "demolition"},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\bplanning\b`),
				regexp.MustCompile(`\bconstruction\b`),
			},
			CatalogKeys: []string{"planning_permits", "building_permits", "local_laws"},
		},
		{
			ID:          TopicOpeningHours,
			Keywords:    []string{"opening hours", "open today", "closing time", "what time do you open", "public holiday hours"},
			CatalogKeys: []string{"contact", "libraries"},
		},
		{
			ID:       TopicReportIssue,
			Keywords: []string{"pothole", "streetlight", "street light", "footpath", "graffiti", "dumped rubbish", "fallen tree", "nature strip"},
			CatalogKeys: []string{
				"report_issue", "graffiti", "trees",
			},
		},
		{
			ID:          TopicNoise,
			Keywords:    []string{"noise", "loud music", "after hours", "construction noise"},
			CatalogKeys: []string{"noise_complaints", "local_laws"},
		},
		{
			ID:       TopicFOI,
			Keywords: []string{"freedom of information", "information request", "privacy policy"},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\bfoi\b`),
			},
			CatalogKeys: []string{"foi", "privacy"},
		},
		{
			ID:          TopicGeneralInfo,
			Keywords:    []string{"general enquiry", "who do i contact", "customer service"},
			CatalogKeys: []string{"contact"},
		},
	}
}
