package services

import (
	"context"
	"log/slog"
	"time"

	"intentdash/internal/amqp"
	"intentdash/internal/core"
	"intentdash/internal/feed"
	applog "intentdash/internal/log"
)

// Source tells whether a snapshot came from the live feed or the built-in data.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

const publishTimeout = 5 * time.Second

// CategorySnapshot is the single category list a render cycle works from.
type CategorySnapshot struct {
	Records   []core.CategoryRecord
	Source    Source
	FetchErr  error
	FetchedAt time.Time
}

// IntentSnapshot is the raw intent list a render cycle works from.
type IntentSnapshot struct {
	Records   []core.IntentRecord
	Source    Source
	FetchErr  error
	FetchedAt time.Time
}

func (s CategorySnapshot) Degraded() bool { return s.Source == SourceFallback }

func (s IntentSnapshot) Degraded() bool { return s.Source == SourceFallback }

// Dashboard is everything the dashboard view renders.
type Dashboard struct {
	Snapshot CategorySnapshot
	Result   core.AggregationResult
}

// Analytics is everything the analytics view renders.
type Analytics struct {
	Snapshot IntentSnapshot
	Counts   []core.CategoryRecord
	Result   core.AggregationResult
}

// FeedEventPublisher receives degraded-feed events. *amqp.Client implements it.
type FeedEventPublisher interface {
	PublishFeedDegraded(ctx context.Context, msg *amqp.FeedDegradedMessage) error
}

// DashboardService runs one fetch per call and decides, at the call site,
// whether to substitute the fallback dataset.
type DashboardService struct {
	live      feed.Reader
	fallback  feed.Reader
	publisher FeedEventPublisher
	logger    *slog.Logger
	events    *applog.StructuredLogger
	now       func() time.Time
}

// NewDashboardService wires the live reader with its fallback. publisher may be nil.
func NewDashboardService(live, fallback feed.Reader, publisher FeedEventPublisher, logger *applog.Logger) *DashboardService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentDashboard)
	return &DashboardService{
		live:      live,
		fallback:  fallback,
		publisher: publisher,
		logger:    logger.Logger,
		events:    applog.NewStructuredLogger(logger),
		now:       time.Now,
	}
}

// LoadCategories reads the category feed once. A failed read yields the
// fallback dataset; only a cancelled ctx produces an error, in which case the
// result must be discarded.
func (s *DashboardService) LoadCategories(ctx context.Context) (CategorySnapshot, error) {
	recs, err := s.live.FetchCategories(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return CategorySnapshot{}, ctxErr
	}

	snap := CategorySnapshot{Records: recs, Source: SourceLive, FetchedAt: s.now()}
	if err == nil {
		s.logger.DebugContext(ctx, "Category feed read", applog.FieldRecords, len(recs))
		s.noteMalformed(ctx, recs)
		return snap, nil
	}

	fallback, ferr := s.fallback.FetchCategories(ctx)
	if ferr != nil {
		// The built-in data never fails; keep the live error visible if it does.
		s.logger.ErrorContext(ctx, "Fallback dataset unavailable", applog.FieldError, ferr)
		fallback = []core.CategoryRecord{}
	}
	snap.Records = fallback
	snap.Source = SourceFallback
	snap.FetchErr = err
	s.degraded(ctx, feed.FeedCategories, err, len(fallback))
	return snap, nil
}

// noteMalformed logs records the aggregation will repair. They are still
// rendered.
func (s *DashboardService) noteMalformed(ctx context.Context, recs []core.CategoryRecord) {
	for i, r := range recs {
		if err := r.Validate(); err != nil {
			s.logger.DebugContext(ctx, "Malformed category record",
				applog.FieldIndex, i,
				applog.FieldCategory, r.Category,
				applog.FieldError, err)
		}
	}
}

// LoadIntents reads the raw intent feed once with the same fallback rule.
func (s *DashboardService) LoadIntents(ctx context.Context) (IntentSnapshot, error) {
	recs, err := s.live.FetchIntents(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return IntentSnapshot{}, ctxErr
	}

	snap := IntentSnapshot{Records: recs, Source: SourceLive, FetchedAt: s.now()}
	if err == nil {
		s.logger.DebugContext(ctx, "Intent feed read", applog.FieldRecords, len(recs))
		return snap, nil
	}

	fallback, ferr := s.fallback.FetchIntents(ctx)
	if ferr != nil {
		s.logger.ErrorContext(ctx, "Fallback dataset unavailable", applog.FieldError, ferr)
		fallback = []core.IntentRecord{}
	}
	snap.Records = fallback
	snap.Source = SourceFallback
	snap.FetchErr = err
	s.degraded(ctx, feed.FeedIntents, err, len(fallback))
	return snap, nil
}

// LoadDashboard fetches once and aggregates exactly that snapshot.
func (s *DashboardService) LoadDashboard(ctx context.Context) (Dashboard, error) {
	snap, err := s.LoadCategories(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{Snapshot: snap, Result: core.Aggregate(snap.Records)}, nil
}

// LoadAnalytics counts raw intents per category and aggregates the counts so
// the bar chart shares the dashboard's color assignment rules.
func (s *DashboardService) LoadAnalytics(ctx context.Context) (Analytics, error) {
	snap, err := s.LoadIntents(ctx)
	if err != nil {
		return Analytics{}, err
	}
	counts := core.CountByCategory(snap.Records)
	return Analytics{Snapshot: snap, Counts: counts, Result: core.Aggregate(counts)}, nil
}

// ProbeCategories and ProbeIntents expose the feeds one at a time so callers
// can run them concurrently.
func (s *DashboardService) ProbeCategories(ctx context.Context) error {
	_, err := s.live.FetchCategories(ctx)
	return err
}

func (s *DashboardService) ProbeIntents(ctx context.Context) error {
	_, err := s.live.FetchIntents(ctx)
	return err
}

func (s *DashboardService) degraded(ctx context.Context, feedName string, cause error, records int) {
	endpoint := ""
	if fe, ok := feed.IsFetchError(cause); ok {
		endpoint = fe.Endpoint
	}
	s.events.LogFallback(ctx, feedName, endpoint, records, cause)

	if s.publisher == nil {
		return
	}
	msg := amqp.NewFeedDegradedMessage(feedName, endpoint, cause, records)
	// Publishing must not hold up the response or die with it.
	go func() {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.publisher.PublishFeedDegraded(pctx, msg); err != nil {
			s.events.LogPublishFailure(pctx, feedName, err)
		}
	}()
}
