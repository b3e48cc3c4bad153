// Package awsfeed reads the normalizer's stores directly: the analytics
// object in S3 for category counts and the normalized-intents table in
// DynamoDB for raw intents.
package awsfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"intentdash/internal/core"
	"intentdash/internal/feed"
)

// DefaultAnalyticsKey is where the normalizer keeps its running counts.
const DefaultAnalyticsKey = "analytics.json"

// ObjectGetter is the subset of the S3 client used here.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Config struct {
	Region       string
	Bucket       string
	AnalyticsKey string
	Table        string
}

type Reader struct {
	objects ObjectGetter
	scanner dynamodb.ScanAPIClient
	cfg     Config
}

// intentItem mirrors an item of the normalized-intents table.
type intentItem struct {
	NormalizedText  string   `dynamodbav:"normalized_text"`
	OriginalIntent  string   `dynamodbav:"original_intent"`
	CanonicalIntent string   `dynamodbav:"canonical_intent"`
	KeyPhrases      []string `dynamodbav:"key_phrases"`
}

// New loads the default AWS credential chain and builds S3 and DynamoDB clients.
func New(ctx context.Context, cfg Config) (*Reader, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithClients(s3.NewFromConfig(awsCfg), dynamodb.NewFromConfig(awsCfg), cfg), nil
}

// NewWithClients wires explicit clients.
func NewWithClients(objects ObjectGetter, scanner dynamodb.ScanAPIClient, cfg Config) *Reader {
	if cfg.AnalyticsKey == "" {
		cfg.AnalyticsKey = DefaultAnalyticsKey
	}
	return &Reader{objects: objects, scanner: scanner, cfg: cfg}
}

func (r *Reader) objectURI() string {
	return "s3://" + r.cfg.Bucket + "/" + r.cfg.AnalyticsKey
}

// FetchCategories implements feed.CategoryReader. A missing analytics object
// means nothing has been normalized yet and yields an empty list.
func (r *Reader) FetchCategories(ctx context.Context) ([]core.CategoryRecord, error) {
	out, err := r.objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.cfg.Bucket),
		Key:    aws.String(r.cfg.AnalyticsKey),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			slog.InfoContext(ctx, "Analytics object not found, returning empty feed", "object", r.objectURI())
			return []core.CategoryRecord{}, nil
		}
		return nil, &feed.FetchError{Feed: feed.FeedCategories, Endpoint: r.objectURI(), Kind: feed.KindNetwork, Err: err}
	}
	defer out.Body.Close()

	recs, err := decodeAnalytics(out.Body)
	if err != nil {
		return nil, &feed.FetchError{Feed: feed.FeedCategories, Endpoint: r.objectURI(), Kind: feed.KindDecode, Err: err}
	}
	return recs, nil
}

// FetchIntents implements feed.IntentReader by scanning the whole table.
func (r *Reader) FetchIntents(ctx context.Context) ([]core.IntentRecord, error) {
	endpoint := "dynamodb://" + r.cfg.Table
	paginator := dynamodb.NewScanPaginator(r.scanner, &dynamodb.ScanInput{
		TableName: aws.String(r.cfg.Table),
	})

	var out []core.IntentRecord
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &feed.FetchError{Feed: feed.FeedIntents, Endpoint: endpoint, Kind: feed.KindNetwork, Err: err}
		}
		var items []intentItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, &feed.FetchError{Feed: feed.FeedIntents, Endpoint: endpoint, Kind: feed.KindDecode, Err: err}
		}
		for _, it := range items {
			out = append(out, core.IntentRecord{Intent: it.OriginalIntent, Category: it.CanonicalIntent})
		}
	}
	if out == nil {
		out = []core.IntentRecord{}
	}
	return out, nil
}

// decodeAnalytics reads a {"category": count, ...} object keeping key order,
// which is the order categories were first counted and therefore the order
// their colors are assigned in.
func decodeAnalytics(r io.Reader) ([]core.CategoryRecord, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read opening token: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("analytics object must be a JSON object, got %v", tok)
	}

	out := []core.CategoryRecord{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", keyTok)
		}
		var count *int
		if err := dec.Decode(&count); err != nil {
			return nil, fmt.Errorf("decode count for %q: %w", key, err)
		}
		out = append(out, core.CategoryRecord{Category: key, Count: count})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read closing token: %w", err)
	}
	return out, nil
}
