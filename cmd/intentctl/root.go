package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"intentdash/internal/cli"
	"intentdash/internal/config"
	applog "intentdash/internal/log"
	"intentdash/internal/theme"
)

var (
	backendFlag string
	themeFlag   string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "intentctl",
	Short: "Inspect the intent dashboard from the terminal",
	Long: `intentctl reads the same feeds as the dashboard server and prints
the aggregation, the category palette, or the stream of degraded-feed events.
Configuration comes from the environment and an optional .env file.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cli.LoadEnvFile()
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "feed backend override (http, aws, memory)")
	rootCmd.PersistentFlags().StringVar(&themeFlag, "theme", string(theme.Default), "color theme for output (light, dark)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(paletteCmd)
	rootCmd.AddCommand(eventsCmd)
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() *config.Config {
	cfg := config.Load()
	if backendFlag != "" {
		cfg.FeedBackend = backendFlag
	}
	return cfg
}

// stderrLogger keeps logs off stdout so command output stays clean.
func stderrLogger(cfg *config.Config) *applog.Logger {
	return applog.New(applog.Config{
		Level:     applog.ParseLevel(logLevel),
		Component: applog.ComponentApp,
		Handler:   applog.NewHandler(os.Stderr, logLevel, cfg.LogFormat),
	})
}

func selectedTheme() (theme.Theme, error) {
	t, err := theme.Parse(themeFlag)
	if err != nil {
		return "", fmt.Errorf("--theme: %w", err)
	}
	return t, nil
}
