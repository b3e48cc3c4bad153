package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRUCache_Eviction(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a") // a is now most recent
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted as least recently used")
	}
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRUCache_TTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](4, 10*time.Second)
	c.now = clock.now

	c.Set("x", 1)
	clock.advance(10 * time.Second)
	if _, ok := c.Get("x"); ok {
		t.Error("expired entry should miss")
	}

	c.Set("y", 2)
	clock.advance(5 * time.Second)
	c.Set("z", 3)
	c.Get("y") // recency does not extend age
	clock.advance(6 * time.Second)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if _, ok := c.Get("z"); !ok {
		t.Error("z is younger than the ttl and should survive")
	}
}

func TestLRUCache_ZeroTTLNeverExpires(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := NewLRUCache[string](2, 0)
	c.now = clock.now
	c.Set("a", "1")
	clock.advance(24 * time.Hour)
	if _, ok := c.Get("a"); !ok {
		t.Error("zero ttl should never expire")
	}
	if n := c.CleanExpired(); n != 0 {
		t.Errorf("CleanExpired() = %d, want 0", n)
	}
}

func TestLRUCache_ClearAndStats(t *testing.T) {
	c := NewLRUCache[string](4, time.Minute)
	c.Set("dark|abc", "<svg/>")
	c.Get("dark|abc")
	c.Get("light|abc")

	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("Size() after Clear = %d", c.Size())
	}
	c.Set("k", "v") // still usable after Clear

	c.Set("k2", "v")
	c.Set("k3", "v")
	c.Set("k4", "v")
	c.Set("k5", "v")

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Size != 4 || st.Evictions != 1 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestLRUCache_Concurrent(t *testing.T) {
	c := NewLRUCache[int](16, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (i+j)%32)
				c.Set(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	if c.Size() > 16 {
		t.Errorf("Size() = %d exceeds max", c.Size())
	}
}

func TestManager(t *testing.T) {
	m := NewManager(nil)
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := NewLRUCache[int](4, time.Second)
	c.now = clock.now
	m.Register(c)
	c.Set("a", 1)
	clock.advance(2 * time.Second)

	if n := m.CleanAll(); n != 1 {
		t.Errorf("CleanAll() = %d, want 1", n)
	}

	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()

	// Stop without StartCleanup must not block.
	NewManager(nil).Stop()
}
