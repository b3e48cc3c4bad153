// Package termview renders an aggregation for the terminal.
package termview

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"intentdash/internal/core"
	"intentdash/internal/theme"
)

// Styles are the lipgloss styles derived from one theme palette.
type Styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Warning lipgloss.Style
	Box     lipgloss.Style
}

// NewStyles maps a theme's colors onto terminal styles.
func NewStyles(t theme.Theme) Styles {
	c := t.Colors()
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Primary)),
		Heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Secondary)).MarginTop(1),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(c.Text)),
		Value:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Accent)),
		Muted:   lipgloss.NewStyle().Faint(true),
		Warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B")),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(c.Border)).
			Padding(0, 1),
	}
}

// Summary is what the summary command prints.
type Summary struct {
	Title     string
	Result    core.AggregationResult
	Degraded  bool
	FetchErr  error
	FetchedAt time.Time
}

// Swatch is a colored block for a #rrggbb value.
func Swatch(hex string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
}

// Render lays out the totals, top categories, breakdown and extremes.
func Render(s Summary, st Styles) string {
	var b strings.Builder

	b.WriteString(st.Title.Render(s.Title))
	b.WriteString("\n")
	if !s.FetchedAt.IsZero() {
		b.WriteString(st.Muted.Render("fetched " + s.FetchedAt.Format(time.RFC3339)))
		b.WriteString("\n")
	}
	if s.Degraded {
		msg := "Live feed unavailable, showing built-in sample data"
		if s.FetchErr != nil {
			msg += " (" + s.FetchErr.Error() + ")"
		}
		b.WriteString(st.Warning.Render(msg))
		b.WriteString("\n")
	}

	res := s.Result
	if res.Empty() {
		b.WriteString(st.Muted.Render("No data available"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(st.Box.Render(st.Label.Render("Total Intents ") + st.Value.Render(strconv.Itoa(res.Total))))
	b.WriteString("\n")

	b.WriteString(st.Heading.Render("Top Categories"))
	b.WriteString("\n")
	for i, rc := range res.TopN {
		fmt.Fprintf(&b, "%d. %s %s %s\n", i+1, Swatch(rc.Hex), st.Label.Render(rc.Category), st.Value.Render(strconv.Itoa(rc.Count)))
	}

	b.WriteString(st.Heading.Render("Percentage Breakdown"))
	b.WriteString("\n")
	b.WriteString(breakdownTable(res.Breakdown, st))

	if res.Highest != nil && res.Lowest != nil {
		b.WriteString(st.Heading.Render("Extremes"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s %s (%d)\n", st.Label.Render("Highest Category:"), res.Highest.Category, res.Highest.Count)
		fmt.Fprintf(&b, "%s %s (%d)\n", st.Label.Render("Lowest Category:"), res.Lowest.Category, res.Lowest.Count)
	}
	return b.String()
}

func breakdownTable(rows []core.BreakdownRow, st Styles) string {
	width := lipgloss.Width("Category")
	for _, r := range rows {
		if w := lipgloss.Width(r.Category); w > width {
			width = w
		}
	}
	cell := lipgloss.NewStyle().Width(width + 2)
	num := lipgloss.NewStyle().Width(10).Align(lipgloss.Right)

	var b strings.Builder
	b.WriteString("   " + cell.Bold(true).Render("Category") + num.Bold(true).Render("Count") + num.Bold(true).Render("Percent"))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(Swatch(r.Hex) + " ")
		b.WriteString(cell.Render(r.Category))
		b.WriteString(num.Render(strconv.Itoa(r.Count)))
		b.WriteString(num.Render(r.TablePercent() + "%"))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderPalette lists n palette entries with their hsl and hex forms.
func RenderPalette(n int, st Styles) string {
	hsl := core.Palette(n)
	hex := core.PaletteHex(n)
	var b strings.Builder
	b.WriteString(st.Title.Render(fmt.Sprintf("Palette for %d categories", n)))
	b.WriteString("\n")
	for i := range hsl {
		fmt.Fprintf(&b, "%3d %s %-24s %s\n", i, Swatch(hex[i]), hsl[i], st.Muted.Render(hex[i]))
	}
	return b.String()
}
