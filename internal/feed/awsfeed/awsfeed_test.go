package awsfeed

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/go-cmp/cmp"

	"intentdash/internal/core"
	"intentdash/internal/feed"
)

type fakeObjects struct {
	body string
	err  error
	key  string
}

func (f *fakeObjects) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.key = *in.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

type fakeScanner struct {
	pages [][]map[string]ddbtypes.AttributeValue
	calls int
	err   error
}

func (f *fakeScanner) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := f.pages[f.calls]
	f.calls++
	out := &dynamodb.ScanOutput{Items: page}
	if f.calls < len(f.pages) {
		out.LastEvaluatedKey = map[string]ddbtypes.AttributeValue{
			"normalized_text": &ddbtypes.AttributeValueMemberS{Value: "cursor"},
		}
	}
	return out, nil
}

func item(original, canonical string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		"normalized_text":  &ddbtypes.AttributeValueMemberS{Value: strings.ToLower(original)},
		"original_intent":  &ddbtypes.AttributeValueMemberS{Value: original},
		"canonical_intent": &ddbtypes.AttributeValueMemberS{Value: canonical},
	}
}

func TestFetchCategoriesKeepsObjectOrder(t *testing.T) {
	objects := &fakeObjects{body: `{"zeta": 3, "alpha": 10, "mid": null}`}
	r := NewWithClients(objects, &fakeScanner{}, Config{Bucket: "analytics"})

	recs, err := r.FetchCategories(context.Background())
	if err != nil {
		t.Fatalf("FetchCategories() error = %v", err)
	}
	if objects.key != DefaultAnalyticsKey {
		t.Fatalf("key = %s, want %s", objects.key, DefaultAnalyticsKey)
	}
	var names []string
	for _, rec := range recs {
		names = append(names, rec.Category)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, names); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if recs[1].CountOrZero() != 10 || recs[2].Count != nil {
		t.Fatalf("unexpected counts: %+v", recs)
	}
}

func TestFetchCategoriesMissingObject(t *testing.T) {
	r := NewWithClients(&fakeObjects{err: &s3types.NoSuchKey{}}, &fakeScanner{}, Config{Bucket: "b"})
	recs, err := r.FetchCategories(context.Background())
	if err != nil || len(recs) != 0 {
		t.Fatalf("expected empty feed for missing object, got %v / %v", recs, err)
	}
}

func TestFetchCategoriesErrors(t *testing.T) {
	cases := []struct {
		name    string
		objects *fakeObjects
		kind    feed.ErrorKind
	}{
		{"s3 failure", &fakeObjects{err: errors.New("access denied")}, feed.KindNetwork},
		{"array body", &fakeObjects{body: `[1,2]`}, feed.KindDecode},
		{"bad count", &fakeObjects{body: `{"a": "x"}`}, feed.KindDecode},
		{"truncated", &fakeObjects{body: `{"a": 1`}, feed.KindDecode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewWithClients(tc.objects, &fakeScanner{}, Config{Bucket: "b", AnalyticsKey: "k.json"})
			_, err := r.FetchCategories(context.Background())
			fe, ok := feed.IsFetchError(err)
			if !ok || fe.Kind != tc.kind {
				t.Fatalf("expected %s FetchError, got %v", tc.kind, err)
			}
			if fe.Endpoint != "s3://b/k.json" {
				t.Fatalf("Endpoint = %s", fe.Endpoint)
			}
		})
	}
}

func TestFetchIntentsPaginates(t *testing.T) {
	scanner := &fakeScanner{pages: [][]map[string]ddbtypes.AttributeValue{
		{item("Assess your monthly fee", "Billing Inquiry")},
		{item("Crack a technical code", "Technical Support"), item("Review your monthly rate", "Billing Inquiry")},
	}}
	r := NewWithClients(&fakeObjects{}, scanner, Config{Table: "NormalizedIntents"})

	got, err := r.FetchIntents(context.Background())
	if err != nil {
		t.Fatalf("FetchIntents() error = %v", err)
	}
	want := []core.IntentRecord{
		{Intent: "Assess your monthly fee", Category: "Billing Inquiry"},
		{Intent: "Crack a technical code", Category: "Technical Support"},
		{Intent: "Review your monthly rate", Category: "Billing Inquiry"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("intents mismatch (-want +got):\n%s", diff)
	}
	if scanner.calls != 2 {
		t.Fatalf("expected 2 scan calls, got %d", scanner.calls)
	}
}

func TestFetchIntentsScanError(t *testing.T) {
	r := NewWithClients(&fakeObjects{}, &fakeScanner{err: errors.New("throttled")}, Config{Table: "t"})
	if _, err := r.FetchIntents(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
