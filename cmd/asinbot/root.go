package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for asinbot.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asinbot",
		Short: "Cross-marketplace price lookup for Amazon ASINs",
		Long: `asinbot looks up the prices of an Amazon product across regional
marketplaces, converts them to Turkish lira and adds the product title and image.

Run "asinbot serve" to answer Telegram messages, or "asinbot lookup" for
one-shot lookups from the command line.`,
		Version:       readBuildInfo().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewLookupCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
