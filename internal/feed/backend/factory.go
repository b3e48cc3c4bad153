package backend

import (
	"context"
	"fmt"
	"log/slog"

	"intentdash/internal/feed/awsfeed"
	"intentdash/internal/feed/httpfeed"
	"intentdash/internal/feed/memory"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case HTTPBackend:
		return f.createHTTPBackend(config)
	case AWSBackend:
		return f.createAWSBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createHTTPBackend(config Config) (*BackendResult, error) {
	client := httpfeed.New(config.BaseURL, config.Timeout)
	f.logger.Info("Initialized HTTP feed backend",
		"base_url", config.BaseURL,
		"timeout", config.Timeout)

	return &BackendResult{
		Reader: client,
		Cleanup: func() error {
			client.CloseIdleConnections()
			return nil
		},
	}, nil
}

func (f *DefaultFactory) createAWSBackend(ctx context.Context, config Config) (*BackendResult, error) {
	reader, err := awsfeed.New(ctx, awsfeed.Config{
		Region:       config.AWSRegion,
		Bucket:       config.Bucket,
		AnalyticsKey: config.AnalyticsKey,
		Table:        config.IntentsTable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AWS feed backend: %w", err)
	}

	f.logger.Info("Initialized AWS feed backend",
		"region", config.AWSRegion,
		"bucket", config.Bucket,
		"table", config.IntentsTable)

	return &BackendResult{Reader: reader}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = DefaultDataDirectory
	}

	store := memory.NewFromFiles(dataDir)
	f.logger.Info("Initialized memory feed backend", "data_dir", dataDir)

	return &BackendResult{Reader: store}, nil
}
