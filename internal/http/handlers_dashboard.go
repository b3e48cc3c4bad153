package http

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"intentdash/internal/chart"
	"intentdash/internal/core"
	applog "intentdash/internal/log"
	"intentdash/internal/nav"
	"intentdash/internal/theme"
)

// inlineParam asks for the data section to be rendered into the page instead
// of a loading placeholder. The noscript refresh in the layout sets it.
const inlineParam = "inline"

// pageData is what the layout renders around every view.
type pageData struct {
	Title    string
	Shell    nav.Shell
	Nav      []nav.Item
	Theme    theme.Theme
	Colors   theme.Colors
	ReturnTo string

	// Deferred pages render a loading placeholder that app.js fills from
	// PartialURL. Without JS the browser follows InlineHref instead.
	Deferred   bool
	PartialURL string
	InlineHref string

	Content any
}

type dashboardView struct {
	Result    core.AggregationResult
	Degraded  bool
	FetchedAt time.Time
	Chart     template.HTML
}

type intentRow struct {
	Intent   string
	Category string
}

type analyticsView struct {
	Result    core.AggregationResult
	Degraded  bool
	FetchedAt time.Time
	Chart     template.HTML
	Rows      []intentRow
}

func (s *Server) newPage(r *http.Request, th theme.Theme, partialURL string) pageData {
	shell := nav.FromRequest(r)
	here := shell.Href(shell.Path)
	sep := "?"
	if strings.Contains(here, "?") {
		sep = "&"
	}
	return pageData{
		Title:      shell.Title(),
		Shell:      shell,
		Nav:        shell.Items(),
		Theme:      th,
		Colors:     th.Colors(),
		ReturnTo:   here,
		Deferred:   partialURL != "" && r.URL.Query().Get(inlineParam) == "",
		PartialURL: partialURL,
		InlineHref: here + sep + inlineParam + "=1",
	}
}

// handleDashboardPage renders the dashboard shell, with the data section
// inline or as a loading placeholder.
func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	th := s.theme.Theme()
	data := s.newPage(r, th, "/ui/dashboard")
	if !data.Deferred {
		view, err := s.loadDashboardView(r.Context(), th)
		if err != nil {
			s.discard(r, err)
			return
		}
		data.Content = view
	}
	s.render(w, r, "dashboard_page", data)
}

// handleDashboardPartial runs the fetch for the deferred dashboard section.
func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	th := s.theme.Theme()
	view, err := s.loadDashboardView(r.Context(), th)
	if err != nil {
		s.discard(r, err)
		return
	}
	s.render(w, r, "dashboard_content", view)
}

func (s *Server) handleAnalyticsPage(w http.ResponseWriter, r *http.Request) {
	th := s.theme.Theme()
	data := s.newPage(r, th, "/ui/analytics")
	if !data.Deferred {
		view, err := s.loadAnalyticsView(r.Context(), th)
		if err != nil {
			s.discard(r, err)
			return
		}
		data.Content = view
	}
	s.render(w, r, "analytics_page", data)
}

func (s *Server) handleAnalyticsPartial(w http.ResponseWriter, r *http.Request) {
	th := s.theme.Theme()
	view, err := s.loadAnalyticsView(r.Context(), th)
	if err != nil {
		s.discard(r, err)
		return
	}
	s.render(w, r, "analytics_content", view)
}

// loadDashboardView is one render cycle: one fetch, one aggregation, one chart,
// all under the theme snapshot th.
func (s *Server) loadDashboardView(ctx context.Context, th theme.Theme) (dashboardView, error) {
	d, err := s.dashboard.LoadDashboard(ctx)
	if err != nil {
		return dashboardView{}, err
	}
	s.countRender(d.Snapshot.Degraded())

	svg, err := s.charts.Pie(d.Result, th)
	if err != nil && !errors.Is(err, chart.ErrNoData) {
		s.logger.WithComponent(applog.ComponentChart).ErrorContext(ctx, "Pie chart render failed",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpRender)
	}
	return dashboardView{
		Result:    d.Result,
		Degraded:  d.Snapshot.Degraded(),
		FetchedAt: d.Snapshot.FetchedAt,
		Chart:     svg,
	}, nil
}

func (s *Server) loadAnalyticsView(ctx context.Context, th theme.Theme) (analyticsView, error) {
	a, err := s.dashboard.LoadAnalytics(ctx)
	if err != nil {
		return analyticsView{}, err
	}
	s.countRender(a.Snapshot.Degraded())

	svg, err := s.charts.Bar(a.Result, th)
	if err != nil && !errors.Is(err, chart.ErrNoData) {
		s.logger.WithComponent(applog.ComponentChart).ErrorContext(ctx, "Bar chart render failed",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpRender)
	}

	rows := make([]intentRow, 0, len(a.Snapshot.Records))
	for _, rec := range a.Snapshot.Records {
		if rec.IsHeader() {
			continue
		}
		rows = append(rows, intentRow{Intent: rec.Intent, Category: strings.TrimSpace(rec.Category)})
	}
	return analyticsView{
		Result:    a.Result,
		Degraded:  a.Snapshot.Degraded(),
		FetchedAt: a.Snapshot.FetchedAt,
		Chart:     svg,
		Rows:      rows,
	}, nil
}

func (s *Server) countRender(degraded bool) {
	s.appMetrics.renders.Add(1)
	if degraded {
		s.appMetrics.fallbacks.Add(1)
	}
}

// discard drops a render whose request went away before the fetch finished.
// Nothing is written; the client is no longer listening.
func (s *Server) discard(r *http.Request, err error) {
	s.appMetrics.discarded.Add(1)
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Render discarded",
		applog.FieldPath, r.URL.Path,
		applog.FieldError, err)
}

// render executes name into a buffer so a template failure still produces a
// clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		InternalServerError("Templates not loaded").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err,
			"template", name)
		InternalServerError("Error rendering page").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
