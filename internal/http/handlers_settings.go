package http

import (
	"net/http"
	"net/url"
	"strings"

	applog "intentdash/internal/log"
	"intentdash/internal/nav"
	"intentdash/internal/theme"
)

type swatch struct {
	Name  string
	Value string
}

type settingsView struct {
	Theme    theme.Theme
	Next     theme.Theme
	Swatches []swatch
}

func (s *Server) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	th := s.theme.Theme()
	data := s.newPage(r, th, "")
	c := th.Colors()
	data.Content = settingsView{
		Theme: th,
		Next:  th.Other(),
		Swatches: []swatch{
			{"Primary", c.Primary},
			{"Secondary", c.Secondary},
			{"Accent", c.Accent},
			{"Background", c.Background},
			{"Text", c.Text},
			{"Card", c.Card},
			{"Border", c.Border},
		},
	}
	s.render(w, r, "settings_page", data)
}

// handleThemeToggle flips the theme, or sets it when the form names one, then
// redirects back so the whole page re-renders under the new theme.
func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentTheme)

	var (
		next theme.Theme
		err  error
	)
	if requested := strings.TrimSpace(r.PostForm.Get("theme")); requested != "" {
		t, perr := theme.Parse(requested)
		if perr != nil {
			BadRequestError("Unknown theme").Write(w)
			return
		}
		next, err = t, s.theme.Set(ctx, t)
	} else {
		next, err = s.theme.Toggle(ctx)
	}
	if err != nil {
		logger.WarnContext(ctx, "Theme changed but not persisted",
			applog.FieldTheme, next.String(),
			applog.FieldError, err,
			applog.FieldOperation, applog.OpToggle)
	} else {
		logger.InfoContext(ctx, "Theme changed",
			applog.FieldTheme, next.String(),
			applog.FieldOperation, applog.OpToggle)
	}

	if r.Header.Get("X-Requested-With") == "fetch" {
		NewFragment().Status(http.StatusNoContent).TriggerThemeChanged(next.String()).Write(w)
		return
	}
	http.Redirect(w, r, safeReturn(r.PostForm.Get("return")), http.StatusSeeOther)
}

// safeReturn accepts only local paths of known views, keeping their query.
func safeReturn(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return nav.PathSettings
	}
	if _, ok := nav.Lookup(u.Path); !ok {
		return nav.PathSettings
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
