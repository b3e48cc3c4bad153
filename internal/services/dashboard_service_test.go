package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"intentdash/internal/amqp"
	"intentdash/internal/core"
	"intentdash/internal/feed"
	"intentdash/internal/feed/memory"
	applog "intentdash/internal/log"
)

type failingReader struct {
	err error
}

func (f failingReader) FetchCategories(context.Context) ([]core.CategoryRecord, error) {
	return nil, f.err
}

func (f failingReader) FetchIntents(context.Context) ([]core.IntentRecord, error) {
	return nil, f.err
}

// cancellingReader cancels the caller's context mid-fetch, like a view that
// is torn down while its request is in flight.
type cancellingReader struct {
	cancel context.CancelFunc
}

func (c cancellingReader) FetchCategories(ctx context.Context) ([]core.CategoryRecord, error) {
	c.cancel()
	return nil, &feed.FetchError{Feed: feed.FeedCategories, Kind: feed.KindNetwork, Err: ctx.Err()}
}

func (c cancellingReader) FetchIntents(ctx context.Context) ([]core.IntentRecord, error) {
	c.cancel()
	return nil, ctx.Err()
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*amqp.FeedDegradedMessage
	done chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{done: make(chan struct{}, 4)}
}

func (p *recordingPublisher) PublishFeedDegraded(_ context.Context, msg *amqp.FeedDegradedMessage) error {
	p.mu.Lock()
	p.msgs = append(p.msgs, msg)
	p.mu.Unlock()
	p.done <- struct{}{}
	return nil
}

func (p *recordingPublisher) wait(t *testing.T) *amqp.FeedDegradedMessage {
	t.Helper()
	select {
	case <-p.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed degraded event")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.msgs[len(p.msgs)-1]
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Handler: applog.NewHandler(&bytes.Buffer{}, "debug", "text")})
}

func TestLoadDashboardLive(t *testing.T) {
	live := memory.New([]core.CategoryRecord{
		core.NewCategoryRecord("A", 1),
		core.NewCategoryRecord("B", 3),
	}, nil)
	pub := newRecordingPublisher()
	svc := NewDashboardService(live, memory.NewDefault(), pub, quietLogger())

	d, err := svc.LoadDashboard(context.Background())
	if err != nil {
		t.Fatalf("LoadDashboard() error = %v", err)
	}
	if d.Snapshot.Source != SourceLive || d.Snapshot.Degraded() {
		t.Fatalf("Source = %s, want live", d.Snapshot.Source)
	}
	if d.Result.Total != 4 || d.Result.Highest.Category != "B" {
		t.Fatalf("unexpected aggregation: %+v", d.Result)
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("live read must not publish events")
	}
}

func TestLoadDashboardLogsMalformedRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Handler: applog.NewHandler(&buf, "debug", "text")})
	live := memory.New([]core.CategoryRecord{
		core.NewCategoryRecord("A", 2),
		core.NewCategoryRecord("  ", 1),
		core.NewCategoryRecord("C", -4),
	}, nil)
	svc := NewDashboardService(live, memory.NewDefault(), nil, logger)

	d, err := svc.LoadDashboard(context.Background())
	if err != nil {
		t.Fatalf("LoadDashboard() error = %v", err)
	}
	if d.Snapshot.Source != SourceLive || d.Result.Total != 3 {
		t.Fatalf("malformed records must still render live, got source %s total %d", d.Snapshot.Source, d.Result.Total)
	}
	out := buf.String()
	if strings.Count(out, "Malformed category record") != 2 {
		t.Fatalf("expected two malformed record logs, got:\n%s", out)
	}
	for _, want := range []string{"empty category", "negative count", "index=1", "index=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q", want)
		}
	}
}

func TestLoadDashboardFallsBack(t *testing.T) {
	cause := &feed.FetchError{Feed: feed.FeedCategories, Endpoint: "https://api/intents", Kind: feed.KindStatus, StatusCode: 502}
	pub := newRecordingPublisher()
	svc := NewDashboardService(failingReader{err: cause}, memory.NewDefault(), pub, quietLogger())

	d, err := svc.LoadDashboard(context.Background())
	if err != nil {
		t.Fatalf("LoadDashboard() error = %v", err)
	}
	if !d.Snapshot.Degraded() || !errors.Is(d.Snapshot.FetchErr, cause) {
		t.Fatalf("expected fallback snapshot carrying the fetch error, got %+v", d.Snapshot)
	}
	if len(d.Snapshot.Records) != 16 || d.Result.Total != 1289 {
		t.Fatalf("fallback aggregation = %d records / total %d", len(d.Snapshot.Records), d.Result.Total)
	}

	msg := pub.wait(t)
	if msg.Feed != feed.FeedCategories || msg.Endpoint != "https://api/intents" || msg.Records != 16 {
		t.Fatalf("unexpected event: %+v", msg)
	}
}

func TestLoadAnalyticsFallsBack(t *testing.T) {
	svc := NewDashboardService(failingReader{err: errors.New("dial tcp: refused")}, memory.NewDefault(), nil, quietLogger())

	a, err := svc.LoadAnalytics(context.Background())
	if err != nil {
		t.Fatalf("LoadAnalytics() error = %v", err)
	}
	if !a.Snapshot.Degraded() {
		t.Fatalf("expected fallback intents")
	}
	if len(a.Counts) == 0 {
		t.Fatalf("expected per-category counts from the fallback intents")
	}
	total := 0
	for _, c := range a.Counts {
		total += c.CountOrZero()
	}
	// The header row is not an intent.
	if total != len(memory.DefaultIntents())-1 || a.Result.Total != total {
		t.Fatalf("counted %d intents (result %d), want %d", total, a.Result.Total, len(memory.DefaultIntents())-1)
	}
}

func TestLoadDashboardCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pub := newRecordingPublisher()
	svc := NewDashboardService(cancellingReader{cancel: cancel}, memory.NewDefault(), pub, quietLogger())

	if _, err := svc.LoadDashboard(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("LoadDashboard() error = %v, want context.Canceled", err)
	}
	if _, err := svc.LoadAnalytics(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("LoadAnalytics() error = %v, want context.Canceled", err)
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("a discarded fetch must not report a degraded feed")
	}
}

func TestLoadDashboardEmptyFeed(t *testing.T) {
	svc := NewDashboardService(memory.New(nil, nil), memory.NewDefault(), nil, quietLogger())

	d, err := svc.LoadDashboard(context.Background())
	if err != nil {
		t.Fatalf("LoadDashboard() error = %v", err)
	}
	if d.Snapshot.Degraded() {
		t.Fatalf("an empty live feed is not a failure")
	}
	if !d.Result.Empty() {
		t.Fatalf("expected empty aggregation, got %+v", d.Result)
	}
}

func TestProbes(t *testing.T) {
	svc := NewDashboardService(failingReader{err: errors.New("down")}, memory.NewDefault(), nil, nil)
	if svc.ProbeCategories(context.Background()) == nil || svc.ProbeIntents(context.Background()) == nil {
		t.Fatalf("probes must surface live feed errors")
	}
}
