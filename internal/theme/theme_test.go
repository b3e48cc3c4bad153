package theme

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"intentdash/internal/storage/memory"
)

type failingPrefs struct{}

func (failingPrefs) GetPreference(context.Context, string) (string, error) {
	return "", errors.New("db down")
}

func (failingPrefs) SetPreference(context.Context, string, string) error {
	return errors.New("db down")
}

// slowFirstWrite stalls the first save so a later switch can overtake it.
type slowFirstWrite struct {
	*memory.Store
	calls atomic.Int32
}

func (p *slowFirstWrite) SetPreference(ctx context.Context, key, value string) error {
	if p.calls.Add(1) == 1 {
		time.Sleep(50 * time.Millisecond)
	}
	return p.Store.SetPreference(ctx, key, value)
}

func TestNewStoreDefaultsToDark(t *testing.T) {
	s := NewStore(context.Background(), memory.New(), nil)
	if s.Theme() != Dark {
		t.Fatalf("Theme() = %s, want dark", s.Theme())
	}
	if s.Colors().Background != "#111827" {
		t.Fatalf("dark background = %s", s.Colors().Background)
	}
}

func TestNewStoreLoadsPreference(t *testing.T) {
	ctx := context.Background()
	prefs := memory.New()
	_ = prefs.SetPreference(ctx, PreferenceKey, "light")

	if got := NewStore(ctx, prefs, nil).Theme(); got != Light {
		t.Fatalf("Theme() = %s, want light", got)
	}

	_ = prefs.SetPreference(ctx, PreferenceKey, "sepia")
	if got := NewStore(ctx, prefs, nil).Theme(); got != Default {
		t.Fatalf("invalid stored value should keep the default, got %s", got)
	}
}

func TestToggleRoundTrip(t *testing.T) {
	ctx := context.Background()
	prefs := memory.New()
	s := NewStore(ctx, prefs, nil)
	before := s.Colors()

	got, err := s.Toggle(ctx)
	if err != nil || got != Light {
		t.Fatalf("Toggle() = %s, %v; want light", got, err)
	}
	if s.Colors().Primary != "#1E40AF" {
		t.Fatalf("light primary = %s", s.Colors().Primary)
	}
	if v, _ := prefs.GetPreference(ctx, PreferenceKey); v != "light" {
		t.Fatalf("persisted = %q, want light", v)
	}

	if _, err := s.Toggle(ctx); err != nil {
		t.Fatalf("second Toggle() error = %v", err)
	}
	if s.Colors() != before {
		t.Fatalf("double toggle should restore every color: %+v vs %+v", s.Colors(), before)
	}
}

func TestTogglePersistFailureStillSwitches(t *testing.T) {
	s := NewStore(context.Background(), failingPrefs{}, nil)
	got, err := s.Toggle(context.Background())
	if err == nil {
		t.Fatalf("expected persist error")
	}
	if got != Light || s.Theme() != Light {
		t.Fatalf("theme should switch even when persisting fails, got %s", s.Theme())
	}
}

func TestSet(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, nil, nil)

	if err := s.Set(ctx, "blue"); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("Set(blue) error = %v, want ErrInvalidTheme", err)
	}
	if s.Theme() != Dark {
		t.Fatalf("rejected Set must not change state")
	}
	if err := s.Set(ctx, Light); err != nil || s.Theme() != Light {
		t.Fatalf("Set(light) = %v, theme %s", err, s.Theme())
	}
}

func TestSubscribeUnsubscribeClose(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, nil, nil)

	var seen []Theme
	id := s.Subscribe(func(t Theme) { seen = append(seen, t) })
	other := s.Subscribe(func(Theme) {})
	if s.Subscribers() != 2 {
		t.Fatalf("Subscribers() = %d, want 2", s.Subscribers())
	}

	s.Toggle(ctx)
	s.Set(ctx, Light) // no change, no notification
	s.Unsubscribe(id)
	s.Toggle(ctx)

	if len(seen) != 1 || seen[0] != Light {
		t.Fatalf("listener saw %v, want [light]", seen)
	}

	s.Unsubscribe(other)
	s.Subscribe(func(Theme) {})
	s.Close()
	if s.Subscribers() != 0 {
		t.Fatalf("Close() should drop all listeners")
	}
	if s.Subscribe(func(Theme) {}) != -1 {
		t.Fatalf("Subscribe after Close should be refused")
	}
}

func TestConcurrentToggle(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, memory.New(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Toggle(ctx)
			_ = s.Colors()
		}()
	}
	wg.Wait()

	// An even number of toggles lands back on the default.
	if s.Theme() != Dark {
		t.Fatalf("Theme() = %s after 50 toggles, want dark", s.Theme())
	}
}

func TestOverlappingTogglesPersistLastTheme(t *testing.T) {
	ctx := context.Background()
	prefs := &slowFirstWrite{Store: memory.New()}
	s := NewStore(ctx, prefs, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Toggle(ctx)
	}()
	// Let the first toggle reach its slow save.
	time.Sleep(10 * time.Millisecond)
	s.Toggle(ctx)
	wg.Wait()

	stored, err := prefs.GetPreference(ctx, PreferenceKey)
	if err != nil {
		t.Fatalf("GetPreference() error = %v", err)
	}
	if stored != s.Theme().String() {
		t.Fatalf("active theme %s but stored %q", s.Theme(), stored)
	}
	if got := NewStore(ctx, prefs, nil).Theme(); got != s.Theme() {
		t.Fatalf("reloaded theme %s, want %s", got, s.Theme())
	}
}

func TestParse(t *testing.T) {
	for _, in := range []string{"light", "dark"} {
		if _, err := Parse(in); err != nil {
			t.Errorf("Parse(%q) error = %v", in, err)
		}
	}
	for _, in := range []string{"", "Dark", "auto"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) should fail", in)
		}
	}
	if Light.Other() != Dark || Dark.Other() != Light {
		t.Fatalf("Other() is not an involution")
	}
}
