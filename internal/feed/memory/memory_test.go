package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"intentdash/internal/core"
)

func TestDefaultDatasets(t *testing.T) {
	s := NewDefault()
	cats, err := s.FetchCategories(context.Background())
	if err != nil || len(cats) != 16 {
		t.Fatalf("unexpected categories: len=%d err=%v", len(cats), err)
	}
	intents, err := s.FetchIntents(context.Background())
	if err != nil || len(intents) != 18 {
		t.Fatalf("unexpected intents: len=%d err=%v", len(intents), err)
	}
	if !intents[0].IsHeader() {
		t.Fatalf("first intent should be the header row")
	}
}

func TestFetchReturnsCopies(t *testing.T) {
	s := NewDefault()
	first, _ := s.FetchCategories(context.Background())
	*first[0].Count = 9999
	first[0].Category = "mutated"

	second, _ := s.FetchCategories(context.Background())
	if second[0].Category != "New Service Setup" || second[0].CountOrZero() != 54 {
		t.Fatalf("store was mutated through a returned slice: %+v", second[0])
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()

	// No files -> defaults
	s := NewFromFiles(dir)
	cats, _ := s.FetchCategories(context.Background())
	if len(cats) != 16 {
		t.Fatalf("expected defaults when files missing, got %d", len(cats))
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("categories.json", `{"categories":[{"category":"A","count":3},{"category":"B","count":null}]}`)
	mustWrite("intents.json", `not json`)

	s = NewFromFiles(dir)
	cats, _ = s.FetchCategories(context.Background())
	if len(cats) != 2 || cats[0].Category != "A" || cats[1].Count != nil {
		t.Fatalf("unexpected seeded categories: %+v", cats)
	}
	intents, _ := s.FetchIntents(context.Background())
	if len(intents) != len(DefaultIntents()) {
		t.Fatalf("malformed intents.json should fall back to defaults")
	}
}

func TestReplace(t *testing.T) {
	s := NewDefault()
	s.Replace([]core.CategoryRecord{core.NewCategoryRecord("Only", 1)})
	cats, _ := s.FetchCategories(context.Background())
	if len(cats) != 1 || cats[0].Category != "Only" {
		t.Fatalf("Replace did not take effect: %+v", cats)
	}
}
