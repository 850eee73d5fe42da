// Package cmd defines and implements the CLI commands for the topiccrawler executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topiccrawler",
		Short: "Collects articles from a news site's topic listing pages.",
		Long: `topiccrawler renders a configured set of topic listing pages in a
headless browser, extracts headline/link pairs from each listing, then visits
every linked article to extract its full textual content, producing a
topic-keyed collection of articles.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the config file")

	cmd.AddCommand(newCrawlCmd())

	return cmd
}

// Execute is the main entry point. It installs signal handling and
// translates any uncaught failure into a non-zero process exit.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
