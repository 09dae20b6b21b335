// Package compose builds the HTML reply document. Composition is
// deterministic and performs no I/O; the transport layer decides what
// happens to the result.
package compose

import (
	"html"
	"strings"

	"civreply_server/core/domain"
)

// QuoteLimit bounds the quoted original text so a reply can never grow
// without bound.
const QuoteLimit = 1000

// helper sentences keyed by lead topic. Absence is fine; the reply
// simply has no topic-specific line.
var topicHelpers = map[domain.Topic]string{
	domain.TopicWasteCalendar: "You can confirm your general waste and recycling day by address using the collection day lookup below.",
	domain.TopicMissedBin:     "If a collection was missed, lodge a missed service request and keep your bin out until it is collected.",
	domain.TopicHardRubbish:   "Hard rubbish collections are booked separately; limits and eligible items apply.",
	domain.TopicWaste:         "Bin, recycling and waste disposal information is linked below.",
	domain.TopicRates:         "Rates can be paid online, by BPAY, by phone or in person; instalment dates are on your latest notice.",
	domain.TopicParking:       "You can pay an infringement or request a review through the infringements portal within the timeframe on your notice.",
	domain.TopicAnimals:       "Cats and dogs must be registered with council; you will need the microchip number and desexing status.",
	domain.TopicLibraries:     "Each branch page lists opening hours and services; public holiday hours may differ.",
	domain.TopicPlanning:      "Planning permits cover land use and development, building permits cover construction; start with the planning pages below.",
	domain.TopicOpeningHours:  "Opening hours vary by facility; public holidays may change operating times.",
	domain.TopicReportIssue:   "Roads, footpaths, trees and dumped rubbish can be reported online through the link below.",
	domain.TopicNoise:         "Noise concerns are handled under local laws; the pages below explain permitted hours and how to report.",
	domain.TopicFOI:           "Freedom of information requests follow a formal process described on the page below.",
	domain.TopicGeneralInfo:   "The links below cover the most common services and forms.",
}

// Composer renders replies for one council deployment.
type Composer struct {
	signature string
}

// NewComposer creates a composer. signature is the plain-text closing
// line, rendered escaped.
func NewComposer(signature string) *Composer {
	if signature == "" {
		signature = "Customer Service Team"
	}
	return &Composer{signature: signature}
}

// ComposeInput carries everything a reply is built from.
type ComposeInput struct {
	CouncilName  string
	OriginalText string
	Links        []domain.LinkEntry
	Topics       []domain.Topic

	// Intro optionally replaces the stock acknowledgement sentence
	// (LLM-enriched text). It is escaped like any external text.
	Intro string
}

// Compose builds the reply document. Every interpolated string is
// escaped; links render as a list, or as an escalation line when the
// resolver found nothing.
func (c *Composer) Compose(in *ComposeInput) *domain.Reply {
	var b strings.Builder

	b.WriteString("<p>Thank you for contacting ")
	b.WriteString(html.EscapeString(in.CouncilName))
	b.WriteString(".</p>")

	intro := in.Intro
	if intro == "" {
		intro = "We have received your enquiry. The information below should help with your question."
	}
	b.WriteString("<p>")
	b.WriteString(html.EscapeString(intro))
	b.WriteString("</p>")

	if helper := leadTopicHelper(in.Topics); helper != "" {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(helper))
		b.WriteString("</p>")
	}

	if len(in.Links) > 0 {
		b.WriteString("<ul>")
		for _, link := range in.Links {
			b.WriteString(`<li><a href="`)
			b.WriteString(html.EscapeString(link.URL))
			b.WriteString(`">`)
			b.WriteString(html.EscapeString(link.DisplayTitle()))
			b.WriteString("</a></li>")
		}
		b.WriteString("</ul>")
	} else {
		b.WriteString("<p>Your enquiry has been forwarded to the relevant team, who will respond with more detail.</p>")
	}

	if quoted := truncate(in.OriginalText, QuoteLimit); quoted != "" {
		b.WriteString("<hr><p><strong>Your enquiry:</strong></p><blockquote>")
		b.WriteString(html.EscapeString(quoted))
		b.WriteString("</blockquote>")
	}

	b.WriteString("<p>Kind regards,<br>")
	b.WriteString(html.EscapeString(c.signature))
	b.WriteString("<br>")
	b.WriteString(html.EscapeString(in.CouncilName))
	b.WriteString("</p>")

	links := make([]domain.LinkEntry, len(in.Links))
	copy(links, in.Links)
	topics := make([]domain.Topic, len(in.Topics))
	copy(topics, in.Topics)

	return &domain.Reply{
		HTML:   b.String(),
		Links:  links,
		Topics: topics,
	}
}

func leadTopicHelper(topics []domain.Topic) string {
	if len(topics) == 0 {
		return ""
	}
	return topicHelpers[topics[0]]
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	// Cut on a rune boundary.
	cut := limit
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
