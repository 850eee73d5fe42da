package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newsharvest/topiccrawler/internal/config"
	"github.com/newsharvest/topiccrawler/internal/fetch"
	"github.com/newsharvest/topiccrawler/internal/logging"
	"github.com/newsharvest/topiccrawler/internal/metrics"
	"github.com/newsharvest/topiccrawler/internal/render"
	"github.com/newsharvest/topiccrawler/internal/scrape"
)

// newCrawlCmd creates and configures the 'crawl' subcommand.
func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Runs one crawl over the configured topics",
		Long: `Opens a browser session, processes every configured topic in order,
and writes the topic-keyed article collection to stdout as JSON. A fatal
failure aborts the crawl and exits non-zero; individual article failures are
logged and skipped.`,
		RunE: runCrawlCommand,
	}
	return cmd
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	metrics.Init()

	crawler, err := buildCrawler(cfg, logger)
	if err != nil {
		return fmt.Errorf("build crawler: %w", err)
	}

	result, err := crawler.Run(cmd.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("crawl canceled")
			return nil
		}
		return fmt.Errorf("run crawl: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	logger.Info("crawl finished", zap.Int("topics", len(result.Order)))
	return nil
}

func buildCrawler(cfg config.Config, logger *zap.Logger) (*scrape.Crawler, error) {
	opener := func(ctx context.Context) (scrape.Session, error) {
		session, err := render.NewSession(ctx, render.Options{
			UserAgent: cfg.Crawler.UserAgent,
			HostQPS:   cfg.Crawler.HostQPS,
		}, logger.Named("render"))
		if err != nil {
			return nil, err
		}
		return renderSession{session}, nil
	}

	var factory scrape.FetcherFactory
	switch cfg.Crawler.ArticleEngine {
	case config.EngineStatic:
		static := fetch.NewStatic(fetch.Config{
			UserAgent:       cfg.Crawler.UserAgent,
			ContentSelector: cfg.Selectors.ArticleContent,
			Timeout:         cfg.Pacing.PageLoadTimeout,
		})
		factory = func(scrape.Session) scrape.ArticleFetcher { return static }
	default:
		factory = func(session scrape.Session) scrape.ArticleFetcher {
			return scrape.NewBrowserFetcher(session, cfg.Selectors.ArticleContent, cfg.Pacing.PageLoadTimeout)
		}
	}

	return scrape.New(cfg, opener, factory, logger.Named("scrape"))
}

// renderSession adapts *render.Session to the scrape.Session interface; the
// concrete NewTab returns *render.Tab rather than the scrape.Tab interface.
type renderSession struct {
	*render.Session
}

func (s renderSession) NewTab(ctx context.Context) (scrape.Tab, error) {
	return s.Session.NewTab(ctx)
}
