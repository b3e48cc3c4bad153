// Package memory serves the built-in sample datasets. The dashboard falls back
// to it whenever a live feed read fails, and it backs the "memory" feed backend.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"intentdash/internal/core"
)

type Store struct {
	mu         sync.Mutex
	categories []core.CategoryRecord
	intents    []core.IntentRecord
}

func New(categories []core.CategoryRecord, intents []core.IntentRecord) *Store {
	return &Store{
		categories: cloneCategories(categories),
		intents:    append([]core.IntentRecord(nil), intents...),
	}
}

// NewDefault returns a store holding the built-in datasets.
func NewDefault() *Store {
	return New(DefaultCategories(), DefaultIntents())
}

// NewFromFiles seeds the store from categories.json and intents.json under base,
// using the API's response shapes. Missing or unreadable files fall back to the
// built-in datasets.
func NewFromFiles(base string) *Store {
	cats := DefaultCategories()
	var cr struct {
		Categories []core.CategoryRecord `json:"categories"`
	}
	if err := readJSON(filepath.Join(base, "categories.json"), &cr); err == nil && len(cr.Categories) > 0 {
		cats = cr.Categories
	}

	intents := DefaultIntents()
	var ir struct {
		CSVData []core.IntentRecord `json:"csv_data"`
	}
	if err := readJSON(filepath.Join(base, "intents.json"), &ir); err == nil && len(ir.CSVData) > 0 {
		intents = ir.CSVData
	}
	return New(cats, intents)
}

// FetchCategories implements feed.CategoryReader.
func (s *Store) FetchCategories(_ context.Context) ([]core.CategoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCategories(s.categories), nil
}

// FetchIntents implements feed.IntentReader.
func (s *Store) FetchIntents(_ context.Context) ([]core.IntentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.IntentRecord(nil), s.intents...), nil
}

// Replace swaps the category dataset.
func (s *Store) Replace(categories []core.CategoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = cloneCategories(categories)
}

func readJSON(path string, dst any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// cloneCategories deep-copies count pointers so callers cannot mutate the store.
func cloneCategories(in []core.CategoryRecord) []core.CategoryRecord {
	out := make([]core.CategoryRecord, len(in))
	for i, r := range in {
		out[i] = core.CategoryRecord{Category: r.Category}
		if r.Count != nil {
			c := *r.Count
			out[i].Count = &c
		}
	}
	return out
}
