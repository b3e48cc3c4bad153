package log

import (
	"log/slog"
	"net/http"
	"time"
)

// Attribute keys shared by every component.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldOperation  = "operation"
	FieldFeed       = "feed"
	FieldEndpoint   = "endpoint"
	FieldSource     = "source"
	FieldRecords    = "records"
	FieldTotal      = "total"
	FieldTheme      = "theme"
	FieldCategory   = "category"
	FieldIndex      = "index"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentDashboard = "dashboard"
	ComponentFeed      = "feed"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentTheme     = "theme"
	ComponentChart     = "chart"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentBackend   = "backend"
	ComponentTemplate  = "template"
)

const (
	OpFallback = "fallback"
	OpPublish  = "publish"
	OpRender   = "render"
	OpToggle   = "toggle"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// Values for FieldErrorType.
const (
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeDecode        = "decode_error"
)

// RequestAttrs are the attributes logged once per finished request.
func RequestAttrs(r *http.Request, status int, elapsed time.Duration, clientIP string) []any {
	return []any{
		FieldMethod, r.Method,
		FieldPath, r.URL.Path,
		FieldQuery, r.URL.RawQuery,
		FieldUserAgent, r.UserAgent(),
		FieldClientIP, clientIP,
		FieldStatusCode, status,
		FieldDuration, elapsed.Milliseconds(),
	}
}

// LevelForStatus logs 5xx as errors and 4xx as warnings.
func LevelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
