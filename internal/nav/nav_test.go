package nav

import (
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		target string
		want   Shell
	}{
		{"/", Shell{Path: "/"}},
		{"/analytics?sidebar=collapsed", Shell{Path: "/analytics", SidebarCollapsed: true}},
		{"/settings?drawer=open", Shell{Path: "/settings", DrawerOpen: true}},
		{"/?sidebar=collapsed&drawer=open", Shell{Path: "/", SidebarCollapsed: true, DrawerOpen: true}},
		{"/?sidebar=expanded&drawer=1", Shell{Path: "/"}},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got := FromRequest(httptest.NewRequest("GET", tt.target, nil))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FromRequest() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestItemsMarkActiveAndCloseDrawer(t *testing.T) {
	s := Shell{Path: "/analytics", SidebarCollapsed: true, DrawerOpen: true}
	items := s.Items()

	if len(items) != 3 {
		t.Fatalf("len(Items()) = %d, want 3", len(items))
	}
	var active []string
	for _, it := range items {
		if it.Active {
			active = append(active, it.Path)
		}
		if it.Href != it.Path+"?sidebar=collapsed" {
			t.Errorf("Href for %s = %q; navigation should keep the sidebar and close the drawer", it.Path, it.Href)
		}
	}
	if diff := cmp.Diff([]string{"/analytics"}, active); diff != "" {
		t.Errorf("active items mismatch (-want +got):\n%s", diff)
	}
}

func TestToggleHrefsAreIndependent(t *testing.T) {
	s := Shell{Path: "/settings"}

	if got := s.ToggleSidebarHref(); got != "/settings?sidebar=collapsed" {
		t.Errorf("ToggleSidebarHref() = %q", got)
	}
	if got := s.ToggleDrawerHref(); got != "/settings?drawer=open" {
		t.Errorf("ToggleDrawerHref() = %q", got)
	}

	both := Shell{Path: "/", SidebarCollapsed: true, DrawerOpen: true}
	if got := both.ToggleSidebarHref(); got != "/?drawer=open" {
		t.Errorf("ToggleSidebarHref() = %q, drawer state must be kept", got)
	}
	if got := both.ToggleDrawerHref(); got != "/?sidebar=collapsed" {
		t.Errorf("ToggleDrawerHref() = %q, sidebar state must be kept", got)
	}
	if got := both.Href("/analytics"); got != "/analytics?drawer=open&sidebar=collapsed" {
		t.Errorf("Href() = %q", got)
	}
}

func TestLookupAndTitle(t *testing.T) {
	if r, ok := Lookup("/analytics"); !ok || r.Title != "Analytics" {
		t.Errorf("Lookup(/analytics) = %+v, %v", r, ok)
	}
	if _, ok := Lookup("/reports"); ok {
		t.Errorf("Lookup(/reports) should fail")
	}
	if (Shell{Path: "/"}).Title() != "Dashboard" {
		t.Errorf("dashboard title mismatch")
	}
	if (Shell{Path: "/nope"}).Title() != "" {
		t.Errorf("unknown path should have no title")
	}
}

func TestRoutesReturnsCopy(t *testing.T) {
	r := Routes()
	r[0].Title = "Changed"
	if Routes()[0].Title != "Dashboard" {
		t.Fatalf("Routes() must not expose internal state")
	}
}
