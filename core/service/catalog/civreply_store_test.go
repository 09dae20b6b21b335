package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T, curated, generated string) *Store {
	t.Helper()
	dir := t.TempDir()

	var curatedPath, generatedPath string
	if curated != "" {
		curatedPath = filepath.Join(dir, "curated.json")
		if err := os.WriteFile(curatedPath, []byte(curated), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if generated != "" {
		generatedPath = filepath.Join(dir, "catalog.json")
		if err := os.WriteFile(generatedPath, []byte(generated), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store, err := NewStore(curatedPath, generatedPath)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

// TestStoreBuiltinDefaults verifies the built-in curated catalog is
// served without any files.
func TestStoreBuiltinDefaults(t *testing.T) {
	store, err := NewStore("", "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	entry, ok := store.CuratedLookup("wyndham", "waste_calendar")
	if !ok {
		t.Fatal("expected builtin waste_calendar entry for wyndham")
	}
	if entry.URL == "" || entry.Title == "" {
		t.Errorf("entry incomplete: %+v", entry)
	}

	if _, ok := store.CuratedLookup("narnia", "waste_calendar"); ok {
		t.Error("unknown council must not resolve")
	}
	if _, ok := store.GeneratedLookup("wyndham", "waste_calendar"); ok {
		t.Error("generated catalog should be empty without a file")
	}
}

// TestStoreCuratedOverlay verifies a curated file overlays builtins per
// (council, key) without wholesale replacement.
func TestStoreCuratedOverlay(t *testing.T) {
	curated := `{
		"Wyndham": {
			"base": "https://www.wyndham.vic.gov.au",
			"topics": {
				"waste_calendar": {"title": "Bin day lookup", "url": "https://www.wyndham.vic.gov.au/whichbin"}
			}
		},
		"melton": {
			"base": "https://www.melton.vic.gov.au",
			"topics": {
				"rates": {"title": "Melton rates", "url": "https://www.melton.vic.gov.au/rates"}
			}
		}
	}`
	store := newTestStore(t, curated, "")

	entry, ok := store.CuratedLookup("wyndham", "waste_calendar")
	if !ok || entry.URL != "https://www.wyndham.vic.gov.au/whichbin" {
		t.Errorf("overlay not applied: %+v ok=%v", entry, ok)
	}

	// Untouched builtin keys survive the overlay.
	if _, ok := store.CuratedLookup("wyndham", "rates"); !ok {
		t.Error("builtin rates entry lost after overlay")
	}

	// New councils are added; council ID matching is case-insensitive.
	if _, ok := store.CuratedLookup("MELTON", "rates"); !ok {
		t.Error("expected melton rates entry")
	}
}

// TestStoreGeneratedCatalog verifies the crawler output format loads
// and malformed entries read as absent.
func TestStoreGeneratedCatalog(t *testing.T) {
	generated := `{
		"wyndham": {
			"base": "https://www.wyndham.vic.gov.au",
			"topics": {
				"green_waste": {"title": "Green waste", "url": "https://www.wyndham.vic.gov.au/green-waste"},
				"bin_repair": {"title": "Broken bin", "url": "not-a-url"},
				"untitled": {"url": "https://www.wyndham.vic.gov.au/untitled"}
			}
		}
	}`
	store := newTestStore(t, "", generated)

	if _, ok := store.GeneratedLookup("wyndham", "green_waste"); !ok {
		t.Error("expected generated green_waste entry")
	}
	if _, ok := store.GeneratedLookup("wyndham", "bin_repair"); ok {
		t.Error("entry with invalid URL must read as absent")
	}

	entry, ok := store.GeneratedLookup("wyndham", "untitled")
	if !ok {
		t.Fatal("expected untitled entry")
	}
	if entry.Title != entry.URL {
		t.Errorf("missing title must default to URL, got %q", entry.Title)
	}
}

// TestStoreReloadKeepsOldOnError verifies a bad file on reload leaves
// the previous catalogs in place.
func TestStoreReloadKeepsOldOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	good := `{"wyndham": {"base": "https://www.wyndham.vic.gov.au", "topics": {"green_waste": {"title": "G", "url": "https://www.wyndham.vic.gov.au/g"}}}}`
	if err := os.WriteFile(path, []byte(good), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := NewStore("", path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err == nil {
		t.Fatal("expected reload error for malformed file")
	}

	if _, ok := store.GeneratedLookup("wyndham", "green_waste"); !ok {
		t.Error("previous catalog lost after failed reload")
	}
}

// TestStoreKnownCouncils verifies councils from both catalogs appear
// once.
func TestStoreKnownCouncils(t *testing.T) {
	generated := `{
		"wyndham": {"base": "https://www.wyndham.vic.gov.au", "topics": {}},
		"hobsons_bay": {"base": "https://www.hobsonsbay.vic.gov.au", "topics": {}}
	}`
	store := newTestStore(t, "", generated)

	ids := store.KnownCouncils()
	seen := make(map[string]int)
	for _, id := range ids {
		seen[id]++
	}
	if seen["wyndham"] != 1 {
		t.Errorf("wyndham listed %d times, want 1", seen["wyndham"])
	}
	if seen["hobsons_bay"] != 1 {
		t.Errorf("hobsons_bay listed %d times, want 1", seen["hobsons_bay"])
	}
}
