package domain

import "strings"

// CouncilCatalog maps link-catalog keys to authoritative pages for one
// council. Built offline by the crawler; loaded read-only.
type CouncilCatalog struct {
	BaseURL string               `json:"base"`
	Topics  map[string]LinkEntry `json:"topics"`
}

// Lookup returns the entry for a catalog key. Malformed entries (no
// usable URL) read as absent, never as an error.
func (c *CouncilCatalog) Lookup(key string) (LinkEntry, bool) {
	if c == nil || c.Topics == nil {
		return LinkEntry{}, false
	}
	entry, ok := c.Topics[key]
	if !ok || !validLinkURL(entry.URL) {
		return LinkEntry{}, false
	}
	if entry.Title == "" {
		entry.Title = entry.URL
	}
	return entry, true
}

// Catalog maps council identifiers to their catalogs.
type Catalog map[string]*CouncilCatalog

// Council returns the catalog for a council identifier, or nil when
// the council is unknown.
func (c Catalog) Council(id string) *CouncilCatalog {
	if c == nil {
		return nil
	}
	return c[NormalizeCouncilID(id)]
}

// Merge overlays other onto c with last-writer-wins semantics at the
// (council, key) granularity. A council present in both keeps its
// existing keys unless other provides a replacement; it is never
// replaced wholesale.
func (c Catalog) Merge(other Catalog) Catalog {
	out := make(Catalog, len(c)+len(other))
	for id, cc := range c {
		out[id] = cloneCouncilCatalog(cc)
	}
	for id, cc := range other {
		if cc == nil {
			continue
		}
		id = NormalizeCouncilID(id)
		existing, ok := out[id]
		if !ok {
			out[id] = cloneCouncilCatalog(cc)
			continue
		}
		if cc.BaseURL != "" {
			existing.BaseURL = cc.BaseURL
		}
		for key, entry := range cc.Topics {
			existing.Topics[key] = entry
		}
	}
	return out
}

// NormalizeCouncilID lowercases and trims a council identifier.
func NormalizeCouncilID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func cloneCouncilCatalog(cc *CouncilCatalog) *CouncilCatalog {
	if cc == nil {
		return &CouncilCatalog{Topics: map[string]LinkEntry{}}
	}
	topics := make(map[string]LinkEntry, len(cc.Topics))
	for k, v := range cc.Topics {
		topics[k] = v
	}
	return &CouncilCatalog{BaseURL: cc.BaseURL, Topics: topics}
}

func validLinkURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
