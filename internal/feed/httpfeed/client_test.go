package httpfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"intentdash/internal/feed"
)

func newFeedServer(t *testing.T, status int, body string, hits *int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt64(hits, 1)
		}
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchCategoriesSuccess(t *testing.T) {
	var hits int64
	srv := newFeedServer(t, http.StatusOK,
		`{"categories":[{"category":"Billing Inquiry","count":182},{"category":"Coverage Inquiry","count":null}]}`, &hits)
	c := NewWithHTTPClient(srv.URL+"/", srv.Client(), time.Second)

	recs, err := c.FetchCategories(context.Background())
	if err != nil {
		t.Fatalf("FetchCategories() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Category != "Billing Inquiry" || recs[0].CountOrZero() != 182 {
		t.Fatalf("unexpected first record %+v", recs[0])
	}
	if recs[1].Count != nil {
		t.Fatalf("null count should be kept as nil, got %d", *recs[1].Count)
	}
	if hits != 1 {
		t.Fatalf("expected exactly one request, got %d", hits)
	}
}

func TestFetchCategoriesFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   feed.ErrorKind
	}{
		{"server error", http.StatusInternalServerError, `{"message":"boom"}`, feed.KindStatus},
		{"not found", http.StatusNotFound, ``, feed.KindStatus},
		{"malformed json", http.StatusOK, `{"categories":[`, feed.KindDecode},
		{"missing field", http.StatusOK, `{"normalized_intents":[]}`, feed.KindDecode},
		{"categories not a list", http.StatusOK, `{"categories":{"category":"a"}}`, feed.KindDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits int64
			srv := newFeedServer(t, tt.status, tt.body, &hits)
			c := NewWithHTTPClient(srv.URL, srv.Client(), time.Second)

			recs, err := c.FetchCategories(context.Background())
			if err == nil {
				t.Fatalf("expected error, got %d records", len(recs))
			}
			fe, ok := feed.IsFetchError(err)
			if !ok {
				t.Fatalf("expected *feed.FetchError, got %T", err)
			}
			if fe.Kind != tt.kind {
				t.Fatalf("Kind = %s, want %s", fe.Kind, tt.kind)
			}
			if fe.Feed != feed.FeedCategories {
				t.Fatalf("Feed = %s, want %s", fe.Feed, feed.FeedCategories)
			}
			if hits != 1 {
				t.Fatalf("expected exactly one request (no retry), got %d", hits)
			}
		})
	}
}

func TestFetchCategoriesOddCountsKeepFeed(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK,
		`{"categories":[{"category":"A","count":5.5},{"category":"B","count":"7"},{"category":"C","count":"x"},{"category":"D","count":true},{"category":"E","count":3}]}`, nil)
	c := NewWithHTTPClient(srv.URL, srv.Client(), time.Second)

	recs, err := c.FetchCategories(context.Background())
	if err != nil {
		t.Fatalf("FetchCategories() error = %v", err)
	}
	got := make([]int, len(recs))
	for i, r := range recs {
		got[i] = r.CountOrZero()
	}
	want := []int{6, 7, 0, 0, 3}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("counts = %v, want %v", got, want)
		}
	}
	if recs[2].Count != nil || recs[3].Count != nil {
		t.Fatalf("unusable counts should decode as missing")
	}
}

func TestFetchCategoriesNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewWithHTTPClient(url, http.DefaultClient, time.Second)
	_, err := c.FetchCategories(context.Background())
	fe, ok := feed.IsFetchError(err)
	if !ok || fe.Kind != feed.KindNetwork {
		t.Fatalf("expected network FetchError, got %v", err)
	}
}

func TestFetchCategoriesCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewWithHTTPClient(srv.URL, srv.Client(), 0)
	_, err := c.FetchCategories(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}

func TestFetchIntents(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK,
		`{"csv_data":[{"intent":"Original Text","category":" Category"},{"intent":"Assess your monthly fee","category":" Billing Inquiry"}]}`, nil)
	c := NewWithHTTPClient(srv.URL, srv.Client(), time.Second)

	recs, err := c.FetchIntents(context.Background())
	if err != nil {
		t.Fatalf("FetchIntents() error = %v", err)
	}
	if len(recs) != 2 || recs[1].Category != " Billing Inquiry" {
		t.Fatalf("unexpected records %+v", recs)
	}

	bad := newFeedServer(t, http.StatusOK, `{"categories":[]}`, nil)
	c = NewWithHTTPClient(bad.URL, bad.Client(), time.Second)
	if _, err := c.FetchIntents(context.Background()); err == nil {
		t.Fatalf("expected error for missing csv_data")
	}
}
