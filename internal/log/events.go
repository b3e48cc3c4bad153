package log

import "context"

// StructuredLogger writes the domain events other components rely on finding
// in the logs under fixed messages and keys.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogFallback records a render cycle that substituted the built-in dataset.
func (sl *StructuredLogger) LogFallback(ctx context.Context, feed, endpoint string, records int, err error) {
	args := []any{
		FieldFeed, feed,
		FieldEndpoint, endpoint,
		FieldRecords, records,
		FieldOperation, OpFallback,
	}
	if err != nil {
		args = append(args, FieldError, err.Error())
	}
	sl.logger.WithComponent(ComponentDashboard).WarnContext(ctx, "Feed unavailable, using built-in sample data", args...)
}

// LogPublishFailure records a feed event the broker did not accept.
func (sl *StructuredLogger) LogPublishFailure(ctx context.Context, feed string, err error) {
	sl.logger.WithComponent(ComponentAMQP).WarnContext(ctx, "Failed to publish feed degraded event",
		FieldFeed, feed,
		FieldOperation, OpPublish,
		FieldError, err,
		FieldErrorType, ErrorTypeNetwork)
}
