package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"intentdash/internal/core"
	applog "intentdash/internal/log"
	"intentdash/internal/services"
)

const readyTimeout = 10 * time.Second

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.start).String(),
	})
}

// handleReady probes both feeds and the preference store concurrently. A feed
// that is down only degrades readiness, since pages fall back to the built-in
// data; missing templates or an unreachable store make the service not ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		checks = make(map[string]any)
	)
	record := func(name string, err error, failure string) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			checks[name] = fmt.Sprintf("%s: %v", failure, err)
			return
		}
		checks[name] = "ok"
	}

	// Plain group: a failing store must not cancel the feed probes.
	var g errgroup.Group
	if s.dashboard != nil {
		g.Go(func() error {
			record("category_feed", s.dashboard.ProbeCategories(ctx), "degraded")
			return nil
		})
		g.Go(func() error {
			record("intent_feed", s.dashboard.ProbeIntents(ctx), "degraded")
			return nil
		})
	} else {
		record("feeds", errors.New("not configured"), "failed")
	}
	if s.prefs != nil {
		g.Go(func() error {
			err := s.prefs.Ping(ctx)
			record("preferences", err, "failed")
			return err
		})
	}
	storeErr := g.Wait()

	status, httpStatus := "ready", http.StatusOK
	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}
	if storeErr != nil || s.dashboard == nil {
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	}

	checks["rate_limiter"] = s.rateLimiter.GetMetrics()
	checks["theme"] = map[string]any{
		"current":     s.theme.Theme().String(),
		"subscribers": s.theme.Subscribers(),
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	securityMetrics := s.detector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	metric("dashboard_renders_total", "counter", "Render cycles that completed a fetch", s.appMetrics.renders.Load())
	metric("dashboard_fallbacks_total", "counter", "Render cycles served from the built-in dataset", s.appMetrics.fallbacks.Load())
	metric("dashboard_discarded_total", "counter", "Render cycles dropped because the client went away", s.appMetrics.discarded.Load())
	if s.chartStats != nil {
		st := s.chartStats()
		metric("chart_cache_hits_total", "counter", "Chart SVG cache hits", st.Hits)
		metric("chart_cache_misses_total", "counter", "Chart SVG cache misses", st.Misses)
		metric("chart_cache_evictions_total", "counter", "Chart SVG documents evicted for space", st.Evictions)
		metric("chart_cache_entries", "gauge", "Cached chart SVG documents", st.Size)
	}
	metric("rate_limit_rejected_total", "counter", "Requests rejected by the rate limiter", rateLimitMetrics.Rejected)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric("theme_subscribers", "gauge", "Registered theme listeners", s.theme.Subscribers())
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.appMetrics.start).Seconds()))
}

type categoryJSON struct {
	Index    int    `json:"index"`
	Category string `json:"category"`
	Count    int    `json:"count"`
	Color    string `json:"color"`
	Hex      string `json:"hex"`
}

type breakdownJSON struct {
	categoryJSON
	Percentage float64 `json:"percentage"`
}

type summaryResponse struct {
	Feed      string          `json:"feed"`
	Source    services.Source `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
	Error     string          `json:"error,omitempty"`
	Total     int             `json:"total"`
	Top       []categoryJSON  `json:"top"`
	Highest   *categoryJSON   `json:"highest"`
	Lowest    *categoryJSON   `json:"lowest"`
	Breakdown []breakdownJSON `json:"breakdown"`
	Palette   []string        `json:"palette"`
}

// handleSummary returns the aggregation of one feed as JSON. ?feed=intents
// aggregates the raw intent feed instead of the category feed.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		resp   summaryResponse
		result core.AggregationResult
	)

	switch f := r.URL.Query().Get("feed"); f {
	case "", "categories":
		d, err := s.dashboard.LoadDashboard(ctx)
		if err != nil {
			s.discard(r, err)
			return
		}
		resp = summaryResponse{Feed: "categories", Source: d.Snapshot.Source, FetchedAt: d.Snapshot.FetchedAt}
		if d.Snapshot.FetchErr != nil {
			resp.Error = d.Snapshot.FetchErr.Error()
		}
		result = d.Result
	case "intents":
		a, err := s.dashboard.LoadAnalytics(ctx)
		if err != nil {
			s.discard(r, err)
			return
		}
		resp = summaryResponse{Feed: "intents", Source: a.Snapshot.Source, FetchedAt: a.Snapshot.FetchedAt}
		if a.Snapshot.FetchErr != nil {
			resp.Error = a.Snapshot.FetchErr.Error()
		}
		result = a.Result
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown feed %q", f)})
		return
	}

	fillSummary(&resp, result)
	applog.FromContext(ctx).DebugContext(ctx, "Summary served",
		applog.FieldFeed, resp.Feed,
		applog.FieldSource, string(resp.Source),
		applog.FieldTotal, resp.Total)
	writeJSON(w, http.StatusOK, resp)
}

func fillSummary(resp *summaryResponse, res core.AggregationResult) {
	toJSON := func(rc core.RankedCategory) categoryJSON {
		return categoryJSON{Index: rc.Index, Category: rc.Category, Count: rc.Count, Color: rc.Color, Hex: rc.Hex}
	}
	resp.Total = res.Total
	resp.Palette = res.Palette
	resp.Top = make([]categoryJSON, len(res.TopN))
	for i, rc := range res.TopN {
		resp.Top[i] = toJSON(rc)
	}
	if res.Highest != nil {
		h := toJSON(*res.Highest)
		resp.Highest = &h
	}
	if res.Lowest != nil {
		l := toJSON(*res.Lowest)
		resp.Lowest = &l
	}
	resp.Breakdown = make([]breakdownJSON, len(res.Breakdown))
	for i, b := range res.Breakdown {
		resp.Breakdown[i] = breakdownJSON{categoryJSON: toJSON(b.RankedCategory), Percentage: b.Percentage}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
