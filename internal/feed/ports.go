package feed

import (
	"context"

	"intentdash/internal/core"
)

// Ports for the data sources behind the dashboard.
type (
	// CategoryReader returns the per-category intent counts.
	CategoryReader interface {
		// FetchCategories performs exactly one read of the category feed.
		FetchCategories(ctx context.Context) ([]core.CategoryRecord, error)
	}

	// IntentReader returns the raw classified intents used by the detail view.
	IntentReader interface {
		FetchIntents(ctx context.Context) ([]core.IntentRecord, error)
	}

	// Reader is implemented by every backend.
	Reader interface {
		CategoryReader
		IntentReader
	}
)

// Feed names used in logs, errors and degraded-feed events.
const (
	FeedCategories = "categories"
	FeedIntents    = "intents"
)
