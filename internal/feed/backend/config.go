package backend

import (
	"fmt"

	"intentdash/internal/config"
)

// DefaultDataDirectory is where the memory backend looks for seed files.
const DefaultDataDirectory = "data"

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.FeedBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.FeedBackend)
	}

	return Config{
		Type: backendType,

		BaseURL: appConfig.FeedBaseURL,
		Timeout: appConfig.FeedTimeout,

		AWSRegion:    appConfig.AWSRegion,
		Bucket:       appConfig.AnalyticsBucket,
		AnalyticsKey: appConfig.AnalyticsKey,
		IntentsTable: appConfig.IntentsTable,

		DataDirectory: appConfig.FeedDataDir,
	}, nil
}

// Validate validates the backend configuration.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case HTTPBackend:
		if c.BaseURL == "" {
			return fmt.Errorf("feed base URL is required for http backend")
		}
	case AWSBackend:
		if c.Bucket == "" {
			return fmt.Errorf("analytics bucket is required for aws backend")
		}
		if c.IntentsTable == "" {
			return fmt.Errorf("intents table is required for aws backend")
		}
	case MemoryBackend:
		// DataDirectory defaults to "data" when empty
	}

	return nil
}

// GetBackendTypes returns all valid backend types.
func GetBackendTypes() []BackendType {
	return []BackendType{HTTPBackend, AWSBackend, MemoryBackend}
}

// GetBackendTypeStrings returns all valid backend type strings.
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
