package core

import (
	"cmp"
	"math"
	"slices"
	"strconv"
)

// TopNLimit is how many categories the ranking keeps.
const TopNLimit = 5

type (
	// RankedCategory is a category with its coerced count and the color
	// assigned by its position in the feed.
	RankedCategory struct {
		Index    int
		Category string
		Count    int
		Color    string
		Hex      string
	}

	// BreakdownRow is a category's share of the total.
	BreakdownRow struct {
		RankedCategory
		Percentage float64
	}

	// AggregationResult holds every metric the dashboard renders. All fields are
	// derived from the same record list.
	AggregationResult struct {
		Total      int
		TopN       []RankedCategory
		Highest    *RankedCategory
		Lowest     *RankedCategory
		Breakdown  []BreakdownRow
		Palette    []string
		PaletteHex []string
		// Categories keeps feed order; chart slices and legends iterate it.
		Categories []BreakdownRow
	}
)

// Aggregate computes totals, rankings, the percentage breakdown and the palette.
// It never fails: missing counts are zero and an empty input yields an empty
// result with nil Highest/Lowest.
func Aggregate(records []CategoryRecord) AggregationResult {
	n := len(records)
	res := AggregationResult{
		TopN:       []RankedCategory{},
		Breakdown:  []BreakdownRow{},
		Categories: []BreakdownRow{},
		Palette:    Palette(n),
		PaletteHex: PaletteHex(n),
	}

	ranked := make([]RankedCategory, n)
	for i, r := range records {
		c := r.CountOrZero()
		ranked[i] = RankedCategory{
			Index:    i,
			Category: r.Category,
			Count:    c,
			Color:    res.Palette[i],
			Hex:      res.PaletteHex[i],
		}
		res.Total += c
	}
	if n == 0 {
		return res
	}

	desc := slices.Clone(ranked)
	slices.SortStableFunc(desc, func(a, b RankedCategory) int { return cmp.Compare(b.Count, a.Count) })
	res.TopN = slices.Clone(desc[:min(TopNLimit, n)])
	highest := desc[0]
	res.Highest = &highest

	asc := slices.Clone(ranked)
	slices.SortStableFunc(asc, func(a, b RankedCategory) int { return cmp.Compare(a.Count, b.Count) })
	lowest := asc[0]
	res.Lowest = &lowest

	res.Categories = make([]BreakdownRow, n)
	for i, rc := range ranked {
		res.Categories[i] = BreakdownRow{RankedCategory: rc, Percentage: Percentage(rc.Count, res.Total)}
	}
	res.Breakdown = slices.Clone(res.Categories)
	slices.SortStableFunc(res.Breakdown, func(a, b BreakdownRow) int { return cmp.Compare(b.Percentage, a.Percentage) })

	return res
}

// Empty reports whether there is nothing to chart.
func (r AggregationResult) Empty() bool {
	return len(r.Categories) == 0
}

// Percentage returns count as a share of total, or 0 when total is 0.
func Percentage(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// FormatPercent rounds p to the given number of decimals. NaN and infinities
// render as zero.
func FormatPercent(p float64, decimals int) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		p = 0
	}
	return strconv.FormatFloat(p, 'f', decimals, 64)
}

// TablePercent is the two-decimal form used by the breakdown table.
func (b BreakdownRow) TablePercent() string { return FormatPercent(b.Percentage, 2) }

// LegendPercent is the one-decimal form used by the chart legend.
func (b BreakdownRow) LegendPercent() string { return FormatPercent(b.Percentage, 1) }
