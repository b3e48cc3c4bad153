// Package theme holds the process-wide light/dark appearance and its colors.
package theme

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"

	// Default applies until a stored preference says otherwise.
	Default = Dark

	// PreferenceKey is the storage key the choice is persisted under.
	PreferenceKey = "theme"
)

var ErrInvalidTheme = errors.New("invalid theme")

// Colors is the named palette a page is styled with.
type Colors struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Card       string `json:"card"`
	Border     string `json:"border"`
}

var palettes = map[Theme]Colors{
	Light: {
		Primary:    "#1E40AF",
		Secondary:  "#3B82F6",
		Accent:     "#10B981",
		Background: "#F3F4F6",
		Text:       "#1F2937",
		Card:       "#FFFFFF",
		Border:     "#E5E7EB",
	},
	Dark: {
		Primary:    "#60A5FA",
		Secondary:  "#3B82F6",
		Accent:     "#34D399",
		Background: "#111827",
		Text:       "#F9FAFB",
		Card:       "#1F2937",
		Border:     "#374151",
	},
}

// Parse accepts "light" or "dark".
func Parse(s string) (Theme, error) {
	t := Theme(s)
	if _, ok := palettes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
	}
	return t, nil
}

func (t Theme) String() string { return string(t) }

// Other returns the theme a toggle switches to.
func (t Theme) Other() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

// Colors returns the fixed palette for t.
func (t Theme) Colors() Colors {
	return palettes[t]
}

// Preferences persists the theme choice.
type Preferences interface {
	GetPreference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error
}

// Listener is called after every change with the new theme.
type Listener func(Theme)

// Store is the single source of truth for the active theme. All methods are
// safe for concurrent use.
type Store struct {
	// writeMu orders switches together with their persistence, so the stored
	// preference always matches the last applied theme.
	writeMu   sync.Mutex
	mu        sync.RWMutex
	current   Theme
	prefs     Preferences
	logger    *slog.Logger
	listeners map[int]Listener
	nextID    int
	closed    bool
}

// NewStore starts in the default theme and then applies a stored preference
// when one exists and is valid. prefs may be nil.
func NewStore(ctx context.Context, prefs Preferences, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		current:   Default,
		prefs:     prefs,
		logger:    logger,
		listeners: make(map[int]Listener),
	}
	if prefs == nil {
		return s
	}

	stored, err := prefs.GetPreference(ctx, PreferenceKey)
	if err != nil {
		logger.DebugContext(ctx, "No stored theme preference", "error", err)
		return s
	}
	t, err := Parse(stored)
	if err != nil {
		logger.WarnContext(ctx, "Ignoring invalid stored theme", "value", stored)
		return s
	}
	s.current = t
	return s
}

// Theme returns the active theme.
func (s *Store) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Colors returns the palette of the active theme.
func (s *Store) Colors() Colors {
	return s.Theme().Colors()
}

// Toggle flips the theme. The in-memory switch always happens; a non-nil
// error only reports that persisting it failed.
func (s *Store) Toggle(ctx context.Context) (Theme, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next := s.current.Other()
	s.current = next
	listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, next)
	return next, s.persist(ctx, next)
}

// Set switches to t. Unknown themes are rejected without changing state.
func (s *Store) Set(ctx context.Context, t Theme) error {
	if _, err := Parse(string(t)); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.current == t {
		s.mu.Unlock()
		return nil
	}
	s.current = t
	listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, t)
	return s.persist(ctx, t)
}

// Subscribe registers fn and returns an id for Unsubscribe. After Close it
// returns -1 and fn is never called. fn runs inside the switch and must not
// call Toggle or Set.
func (s *Store) Subscribe(fn Listener) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return -1
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return id
}

func (s *Store) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, id)
}

// Close drops every subscription.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	clear(s.listeners)
}

// Subscribers reports how many listeners are registered.
func (s *Store) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}

// snapshotLocked copies listeners in subscription order.
func (s *Store) snapshotLocked() []Listener {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Listener, len(ids))
	for i, id := range ids {
		out[i] = s.listeners[id]
	}
	return out
}

func notify(listeners []Listener, t Theme) {
	for _, fn := range listeners {
		fn(t)
	}
}

func (s *Store) persist(ctx context.Context, t Theme) error {
	if s.prefs == nil {
		return nil
	}
	if err := s.prefs.SetPreference(ctx, PreferenceKey, t.String()); err != nil {
		s.logger.WarnContext(ctx, "Failed to persist theme", "theme", t, "error", err)
		return fmt.Errorf("persist theme: %w", err)
	}
	return nil
}
