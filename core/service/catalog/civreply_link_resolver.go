package catalog

import (
	"context"

	"civreply_server/core/domain"
)

// =============================================================================
// Link Resolver
// =============================================================================

// MaxLinks bounds the number of citations in one reply.
const MaxLinks = 6

// LiveSource is an optional last-precedence link source (search index,
// retrieval service). Lookup errors read as no result; live retrieval
// must never fail a resolve.
type LiveSource interface {
	Lookup(ctx context.Context, councilID string, topic domain.Topic) ([]domain.LinkEntry, error)
}

// ResolveOptions carries per-enquiry inputs.
type ResolveOptions struct {
	// Overrides maps a topic to manually chosen links for this enquiry
	// only. They outrank every catalog source.
	Overrides map[domain.Topic][]domain.LinkEntry
}

// LinkResolver turns (council, topics) into an ordered, deduplicated,
// capped list of citations. Source precedence within a topic: manual
// override, curated catalog, generated catalog, live source.
type LinkResolver struct {
	store *Store
	rules []*domain.TopicRule
	live  LiveSource
	max   int
}

// NewLinkResolver creates a resolver over the store and rule table.
// live may be nil.
func NewLinkResolver(store *Store, rules []*domain.TopicRule, live LiveSource) *LinkResolver {
	return &LinkResolver{
		store: store,
		rules: rules,
		live:  live,
		max:   MaxLinks,
	}
}

// Resolve merges links for the topics in input order. Duplicate URLs
// are dropped, first occurrence wins. An empty result for all topics
// falls back to resolving the default topic alone; an unknown council
// yields an empty list, which the composer handles.
func (r *LinkResolver) Resolve(ctx context.Context, councilID string, topics []domain.Topic, opts *ResolveOptions) []domain.LinkEntry {
	links := r.resolveTopics(ctx, councilID, topics, opts)

	if len(links) == 0 && !containsTopic(topics, domain.TopicFallback) {
		links = r.resolveTopics(ctx, councilID, []domain.Topic{domain.TopicFallback}, nil)
	}

	if len(links) > r.max {
		links = links[:r.max]
	}
	return links
}

func (r *LinkResolver) resolveTopics(ctx context.Context, councilID string, topics []domain.Topic, opts *ResolveOptions) []domain.LinkEntry {
	var links []domain.LinkEntry
	seen := make(map[string]bool)

	add := func(entry domain.LinkEntry) {
		if entry.URL == "" || seen[entry.URL] {
			return
		}
		seen[entry.URL] = true
		entry.Title = entry.DisplayTitle()
		links = append(links, entry)
	}

	for _, topic := range topics {
		if opts != nil {
			for _, entry := range opts.Overrides[topic] {
				add(entry)
			}
		}

		keys := r.catalogKeys(topic)

		if entry, ok := r.firstLookup(r.store.CuratedLookup, councilID, keys); ok {
			add(entry)
		}
		if entry, ok := r.firstLookup(r.store.GeneratedLookup, councilID, keys); ok {
			add(entry)
		}

		if r.live != nil {
			if found, err := r.live.Lookup(ctx, councilID, topic); err == nil && len(found) > 0 {
				add(found[0])
			}
		}
	}

	return links
}

// firstLookup returns the first catalog hit across the topic's keys,
// in key preference order.
func (r *LinkResolver) firstLookup(lookup func(string, string) (domain.LinkEntry, bool), councilID string, keys []string) (domain.LinkEntry, bool) {
	for _, key := range keys {
		if entry, ok := lookup(councilID, key); ok {
			return entry, true
		}
	}
	return domain.LinkEntry{}, false
}

func (r *LinkResolver) catalogKeys(topic domain.Topic) []string {
	for _, rule := range r.rules {
		if rule.ID == topic {
			return rule.CatalogKeys
		}
	}
	// Topics outside the rule table resolve by their own name.
	return []string{string(topic)}
}

func containsTopic(topics []domain.Topic, t domain.Topic) bool {
	for _, topic := range topics {
		if topic == t {
			return true
		}
	}
	return false
}
