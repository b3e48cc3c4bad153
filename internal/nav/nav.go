// Package nav resolves the routed views and the sidebar/drawer state of the
// page shell. The state lives in query parameters and is never persisted.
package nav

import (
	"net/http"
	"net/url"
)

const (
	PathDashboard = "/"
	PathAnalytics = "/analytics"
	PathSettings  = "/settings"

	paramSidebar   = "sidebar"
	paramDrawer    = "drawer"
	valueCollapsed = "collapsed"
	valueOpen      = "open"
)

// Route is one entry of the navigation.
type Route struct {
	Path  string
	Title string
	Icon  string
}

var routes = []Route{
	{Path: PathDashboard, Title: "Dashboard", Icon: "dashboard"},
	{Path: PathAnalytics, Title: "Analytics", Icon: "analytics"},
	{Path: PathSettings, Title: "Settings", Icon: "settings"},
}

// Routes returns the navigable views in menu order.
func Routes() []Route {
	return append([]Route(nil), routes...)
}

// Lookup finds the route for an exact path.
func Lookup(path string) (Route, bool) {
	for _, r := range routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Shell is the layout state for one page render.
type Shell struct {
	Path             string
	SidebarCollapsed bool
	DrawerOpen       bool
}

// FromRequest reads the shell state from r's path and query.
func FromRequest(r *http.Request) Shell {
	q := r.URL.Query()
	return Shell{
		Path:             r.URL.Path,
		SidebarCollapsed: q.Get(paramSidebar) == valueCollapsed,
		DrawerOpen:       q.Get(paramDrawer) == valueOpen,
	}
}

// Item is a rendered navigation link.
type Item struct {
	Route
	Href   string
	Active bool
}

// Current returns the route being shown, if any.
func (s Shell) Current() (Route, bool) {
	return Lookup(s.Path)
}

// Title is the header title for the current view.
func (s Shell) Title() string {
	if r, ok := s.Current(); ok {
		return r.Title
	}
	return ""
}

// Items returns the menu with the active entry marked. Following a link
// closes the drawer and keeps the sidebar state.
func (s Shell) Items() []Item {
	out := make([]Item, len(routes))
	for i, r := range routes {
		out[i] = Item{
			Route:  r,
			Href:   s.href(r.Path, s.SidebarCollapsed, false),
			Active: r.Path == s.Path,
		}
	}
	return out
}

// ToggleSidebarHref flips only the sidebar flag.
func (s Shell) ToggleSidebarHref() string {
	return s.href(s.Path, !s.SidebarCollapsed, s.DrawerOpen)
}

// ToggleDrawerHref flips only the drawer flag.
func (s Shell) ToggleDrawerHref() string {
	return s.href(s.Path, s.SidebarCollapsed, !s.DrawerOpen)
}

// Href links to path while preserving the current shell state.
func (s Shell) Href(path string) string {
	return s.href(path, s.SidebarCollapsed, s.DrawerOpen)
}

func (s Shell) href(path string, collapsed, drawer bool) string {
	q := url.Values{}
	if collapsed {
		q.Set(paramSidebar, valueCollapsed)
	}
	if drawer {
		q.Set(paramDrawer, valueOpen)
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
