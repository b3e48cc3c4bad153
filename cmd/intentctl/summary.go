package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"intentdash/internal/cli"
	"intentdash/internal/services"
	"intentdash/internal/termview"
)

var summaryFeed string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Fetch a feed once and print its aggregation",
	Long: `Fetch the category feed (or the raw intent feed with --feed intents)
exactly once and print the total, top categories, percentage breakdown and
highest/lowest category. A failed fetch prints the built-in sample data with a
notice, as the dashboard does.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryFeed, "feed", "categories", "feed to aggregate (categories, intents)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	th, err := selectedTheme()
	if err != nil {
		return err
	}
	cfg := loadConfig()
	logger := stderrLogger(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.FeedTimeout+5*time.Second)
	defer cancel()

	feeds, err := cli.InitFeeds(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("feed backend: %w", err)
	}
	defer feeds.Close()

	svc := services.NewDashboardService(feeds.Live, feeds.Fallback, nil, logger)

	var summary termview.Summary
	switch summaryFeed {
	case "categories":
		d, err := svc.LoadDashboard(ctx)
		if err != nil {
			return err
		}
		summary = termview.Summary{
			Title:     "Intent Categories",
			Result:    d.Result,
			Degraded:  d.Snapshot.Degraded(),
			FetchErr:  d.Snapshot.FetchErr,
			FetchedAt: d.Snapshot.FetchedAt,
		}
	case "intents":
		a, err := svc.LoadAnalytics(ctx)
		if err != nil {
			return err
		}
		summary = termview.Summary{
			Title:     "Intent Distribution",
			Result:    a.Result,
			Degraded:  a.Snapshot.Degraded(),
			FetchErr:  a.Snapshot.FetchErr,
			FetchedAt: a.Snapshot.FetchedAt,
		}
	default:
		return fmt.Errorf("--feed must be categories or intents, got %q", summaryFeed)
	}

	fmt.Fprint(cmd.OutOrStdout(), termview.Render(summary, termview.NewStyles(th)))
	return nil
}
