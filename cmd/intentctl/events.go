package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"intentdash/internal/amqp"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow degraded-feed events from the broker",
	Long: `Consume the feed events queue and print one line per render cycle that
fell back to the built-in data. Requires AMQP_URL. Stops on Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if !cfg.AMQPEnabled() {
		return errors.New("AMQP_URL is not set")
	}
	logger := stderrLogger(cfg)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feedStyle := lipgloss.NewStyle().Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	out := cmd.OutOrStdout()

	logger.Info("Following feed events", "queue", cfg.AMQPQueue)
	err = client.ConsumeFeedEvents(ctx, func(msg *amqp.FeedDegradedMessage) error {
		fmt.Fprintf(out, "%s %s %s fallback=%d %s\n",
			msg.Timestamp.Format(time.RFC3339),
			feedStyle.Render(msg.Feed),
			msg.Endpoint,
			msg.Records,
			errStyle.Render(msg.Error))
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
