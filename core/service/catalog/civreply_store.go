// Package catalog holds the per-council link catalogs and resolves
// topic identifiers to cited links.
package catalog

import (
	"fmt"
	"os"
	"sync"

	json "github.com/goccy/go-json"

	"civreply_server/core/domain"
	"civreply_server/pkg/apperr"
)

// =============================================================================
// Catalog Store
// =============================================================================

// Store keeps two read-only catalogs in memory: the curated catalog
// (built-in defaults, optionally overlaid by a curated file) and the
// generated catalog produced by the offline crawler. Reload swaps both
// wholesale; lookups never observe a half-applied reload.
type Store struct {
	mu            sync.RWMutex
	curated       domain.Catalog
	generated     domain.Catalog
	curatedPath   string
	generatedPath string
}

// NewStore creates a store seeded with the built-in curated defaults
// and loads the optional catalog files. A missing file is not an
// error; a malformed file is.
func NewStore(curatedPath, generatedPath string) (*Store, error) {
	s := &Store{
		curatedPath:   curatedPath,
		generatedPath: generatedPath,
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads both catalog files and replaces the in-memory
// catalogs wholesale. On error the previous catalogs stay in place.
func (s *Store) Reload() error {
	curated := builtinCatalog()
	if s.curatedPath != "" {
		overlay, err := loadCatalogFile(s.curatedPath)
		if err != nil {
			return err
		}
		if overlay != nil {
			curated = curated.Merge(overlay)
		}
	}

	generated := domain.Catalog{}
	if s.generatedPath != "" {
		loaded, err := loadCatalogFile(s.generatedPath)
		if err != nil {
			return err
		}
		if loaded != nil {
			generated = loaded
		}
	}

	s.mu.Lock()
	s.curated = curated
	s.generated = generated
	s.mu.Unlock()
	return nil
}

// CuratedLookup resolves a (council, key) pair in the curated catalog.
func (s *Store) CuratedLookup(councilID, key string) (domain.LinkEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.curated.Council(councilID).Lookup(key)
}

// GeneratedLookup resolves a (council, key) pair in the generated
// catalog.
func (s *Store) GeneratedLookup(councilID, key string) (domain.LinkEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generated.Council(councilID).Lookup(key)
}

// KnownCouncils returns the council IDs present in either catalog.
func (s *Store) KnownCouncils() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool, len(s.curated)+len(s.generated))
	var ids []string
	for id := range s.curated {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for id := range s.generated {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func loadCatalogFile(path string) (domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperr.CatalogError(fmt.Sprintf("read %s", path), err)
	}

	var raw map[string]*domain.CouncilCatalog
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperr.CatalogError(fmt.Sprintf("decode %s", path), err)
	}

	out := make(domain.Catalog, len(raw))
	for id, cc := range raw {
		if cc == nil {
			continue
		}
		if cc.Topics == nil {
			cc.Topics = map[string]domain.LinkEntry{}
		}
		out[domain.NormalizeCouncilID(id)] = cc
	}
	return out, nil
}

// builtinCatalog is the curated default shipped with the binary. A
// curated file overlays it per (council, key).
func builtinCatalog() domain.Catalog {
	return domain.Catalog{
		"wyndham": &domain.CouncilCatalog{
			BaseURL: "https://www.wyndham.vic.gov.au",
			Topics: map[string]domain.LinkEntry{
				"waste_calendar":   {Title: "Find your bin collection day", URL: "https://www.wyndham.vic.gov.au/bin-collection-days"},
				"missed_bin":       {Title: "Report a missed bin collection", URL: "https://www.wyndham.vic.gov.au/report-missed-bin"},
				"hard_rubbish":     {Title: "Book a hard rubbish collection", URL: "https://www.wyndham.vic.gov.au/hard-rubbish"},
				"waste":            {Title: "Waste and recycling services", URL: "https://www.wyndham.vic.gov.au/services/waste-recycling"},
				"recycling_az":     {Title: "Recycling A to Z", URL: "https://www.wyndham.vic.gov.au/recycling-a-z"},
				"transfer_station": {Title: "Refuse disposal facility", URL: "https://www.wyndham.vic.gov.au/transfer-station"},
				"rates":            {Title: "Rates and valuations", URL: "https://www.wyndham.vic.gov.au/rates"},
				"rates_hardship":   {Title: "Rates hardship assistance", URL: "https://www.wyndham.vic.gov.au/rates-hardship"},
				"parking_fines":    {Title: "Parking fines and infringements", URL: "https://www.wyndham.vic.gov.au/parking-fines"},
				"parking_permits":  {Title: "Parking permits", URL: "https://www.wyndham.vic.gov.au/parking-permits"},
				"pet_registration": {Title: "Pet and animal registration", URL: "https://www.wyndham.vic.gov.au/pet-registration"},
				"libraries":        {Title: "Libraries and opening hours", URL: "https://www.wyndham.vic.gov.au/libraries"},
				"planning_permits": {Title: "Planning permits", URL: "https://www.wyndham.vic.gov.au/planning-permits"},
				"building_permits": {Title: "Building permits", URL: "https://www.wyndham.vic.gov.au/building-permits"},
				"local_laws":       {Title: "Local laws", URL: "https://www.wyndham.vic.gov.au/local-laws"},
				"report_issue":     {Title: "Report an issue", URL: "https://www.wyndham.vic.gov.au/report-it"},
				"graffiti":         {Title: "Graffiti removal", URL: "https://www.wyndham.vic.gov.au/graffiti"},
				"trees":            {Title: "Trees and nature strips", URL: "https://www.wyndham.vic.gov.au/trees"},
				"noise_complaints": {Title: "Noise complaints", URL: "https://www.wyndham.vic.gov.au/noise"},
				"foi":              {Title: "Freedom of information", URL: "https://www.wyndham.vic.gov.au/freedom-of-information"},
				"privacy":          {Title: "Privacy policy", URL: "https://www.wyndham.vic.gov.au/privacy"},
				"contact":          {Title: "Contact Wyndham City", URL: "https://www.wyndham.vic.gov.au/contact-us"},
			},
		},
	}
}
