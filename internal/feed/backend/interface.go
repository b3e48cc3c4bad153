package backend

import (
	"context"
	"time"

	"intentdash/internal/feed"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the reader and an optional cleanup function.
type BackendResult struct {
	Reader  feed.Reader
	Cleanup CleanupFunc
}

// Factory creates feed readers based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// HTTP specific
	BaseURL string
	Timeout time.Duration

	// AWS specific
	AWSRegion    string
	Bucket       string
	AnalyticsKey string
	IntentsTable string

	// Memory backend specific
	DataDirectory string
}

// BackendType names where the dashboard reads its feeds from.
type BackendType string

const (
	HTTPBackend   BackendType = "http"
	AWSBackend    BackendType = "aws"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is known.
func (bt BackendType) IsValid() bool {
	switch bt {
	case HTTPBackend, AWSBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
