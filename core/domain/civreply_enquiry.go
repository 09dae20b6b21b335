package domain

import "time"

// Enquiry is one inbound resident email, reduced to what the pipeline
// needs. Subject and body are classified together.
type Enquiry struct {
	ID       string    `json:"id"`
	Subject  string    `json:"subject"`
	Sender   string    `json:"sender"`
	Body     string    `json:"body"`
	Received time.Time `json:"received"`
}

// Text returns the subject and body concatenated for classification.
func (e *Enquiry) Text() string {
	if e.Subject == "" {
		return e.Body
	}
	return e.Subject + "\n" + e.Body
}

// LinkEntry is one citation in a reply: a human-readable title and an
// absolute http(s) URL. Within a resolved set URLs are unique.
type LinkEntry struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// DisplayTitle returns the title, defaulting to the URL when absent.
func (l LinkEntry) DisplayTitle() string {
	if l.Title == "" {
		return l.URL
	}
	return l.Title
}

// Reply is a composed draft. It is created fresh per enquiry and never
// mutated after composition; the transport consumes it once.
type Reply struct {
	HTML   string      `json:"html"`
	Links  []LinkEntry `json:"links"`
	Topics []Topic     `json:"topics"`
}
