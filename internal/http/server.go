// Package http serves the dashboard, analytics and settings views plus the
// health and summary endpoints.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"intentdash/internal/cache"
	"intentdash/internal/chart"
	applog "intentdash/internal/log"
	"intentdash/internal/middleware/ratelimit"
	"intentdash/internal/middleware/security"
	"intentdash/internal/middleware/trace"
	"intentdash/internal/services"
	"intentdash/internal/theme"
	appweb "intentdash/web"
)

// DashboardLoader is the data side of a render cycle. *services.DashboardService
// implements it.
type DashboardLoader interface {
	LoadDashboard(ctx context.Context) (services.Dashboard, error)
	LoadAnalytics(ctx context.Context) (services.Analytics, error)
	ProbeCategories(ctx context.Context) error
	ProbeIntents(ctx context.Context) error
}

// Pinger reports whether the preference store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries the server's collaborators.
type Options struct {
	Addr        string
	Dashboard   DashboardLoader
	Charts      *chart.Renderer
	Theme       *theme.Store
	Preferences Pinger
	Logger      *applog.Logger

	RateLimitPerMinute int
	TrustedProxies     []string

	// ChartStats is optional and only feeds /metrics.
	ChartStats func() cache.Stats
}

type appMetrics struct {
	start     time.Time
	renders   atomic.Int64
	fallbacks atomic.Int64
	discarded atomic.Int64
}

type Server struct {
	http.Server
	templates *template.Template
	dashboard DashboardLoader
	charts    *chart.Renderer
	theme     *theme.Store
	prefs     Pinger
	logger    *applog.Logger

	rateLimiter     *ratelimit.Limiter
	detector        *security.Detector
	traceMiddleware *trace.Middleware
	chartStats      func() cache.Stats
	appMetrics      appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
// A template parse failure is logged and reported by /readyz.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	charts := opts.Charts
	if charts == nil {
		charts = chart.NewRenderer(nil)
	}
	themes := opts.Theme
	if themes == nil {
		themes = theme.NewStore(context.Background(), nil, logger.Logger)
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		dashboard:  opts.Dashboard,
		charts:     charts,
		theme:      themes,
		prefs:      opts.Preferences,
		logger:     logger.WithComponent(applog.ComponentHTTP),
		detector:   security.NewDetector(),
		chartStats: opts.ChartStats,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
	}
	s.appMetrics.start = time.Now()

	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	t, err := parseTemplates()
	if err != nil {
		s.logger.WithComponent(applog.ComponentTemplate).Error("Failed parsing templates",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	page := func(h http.HandlerFunc) http.Handler { return security.NoStore(h) }

	mux.Handle("GET /{$}", page(s.handleDashboardPage))
	mux.Handle("GET /analytics", page(s.handleAnalyticsPage))
	mux.Handle("GET /settings", page(s.handleSettingsPage))
	mux.Handle("GET /ui/dashboard", page(s.handleDashboardPartial))
	mux.Handle("GET /ui/analytics", page(s.handleAnalyticsPartial))

	limitTheme := s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError("Too many theme changes, please wait a moment.").Write(w)
	})
	mux.Handle("POST /settings/theme", limitTheme(http.HandlerFunc(s.handleThemeToggle)))

	mux.Handle("GET /api/summary", page(s.handleSummary))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = s.traceMiddleware.Middleware(s.detector.Middleware(headers.Middleware(mux)))
	return s
}

func parseTemplates() (*template.Template, error) {
	t, err := template.New("intentdash").Funcs(template.FuncMap{
		"cssVars": cssVars,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// cssVars exposes a theme palette as custom properties on the root element.
// The values come from the fixed palettes, never from input.
func cssVars(c theme.Colors) template.CSS {
	pairs := []struct{ name, value string }{
		{"primary", c.Primary},
		{"secondary", c.Secondary},
		{"accent", c.Accent},
		{"background", c.Background},
		{"text", c.Text},
		{"card", c.Card},
		{"border", c.Border},
	}
	var b strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&b, "--color-%s: %s; ", p.name, p.value)
	}
	return template.CSS(strings.TrimSpace(b.String()))
}

// Shutdown stops the rate limiter and drains the HTTP server. Safe to call
// more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
