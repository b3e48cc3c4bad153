package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"intentdash/internal/termview"
)

var paletteCmd = &cobra.Command{
	Use:   "palette N",
	Short: "Print the category colors for N categories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("N must be a positive integer, got %q", args[0])
		}
		th, err := selectedTheme()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), termview.RenderPalette(n, termview.NewStyles(th)))
		return nil
	},
}
