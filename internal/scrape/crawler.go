package scrape

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/newsharvest/topiccrawler/internal/config"
	"github.com/newsharvest/topiccrawler/internal/id/uuid"
	"github.com/newsharvest/topiccrawler/internal/logging"
	"github.com/newsharvest/topiccrawler/internal/metrics"
)

// Crawler owns the render session's lifecycle and drives the topic pipeline
// once per configured topic, in configuration order.
type Crawler struct {
	cfg         config.Config
	openSession SessionOpener
	newFetcher  FetcherFactory
	logger      *zap.Logger
	pause       pauseController
	ids         IDGenerator
}

// New builds a Crawler. openSession creates the single render session for
// the run; newFetcher builds the article fetcher over it.
func New(cfg config.Config, openSession SessionOpener, newFetcher FetcherFactory, logger *zap.Logger) (*Crawler, error) {
	if openSession == nil {
		return nil, errors.New("scrape: session opener is required")
	}
	if newFetcher == nil {
		return nil, errors.New("scrape: fetcher factory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Crawler{
		cfg:         cfg,
		openSession: openSession,
		newFetcher:  newFetcher,
		logger:      logger,
		pause:       &timerPauseController{},
		ids:         uuid.New(),
	}, nil
}

// Run executes the whole crawl. The session is opened before the first topic
// and closed on every exit path. A session open failure surfaces to the
// caller unmodified, before any topic is processed.
//
// A topic failure aborts the remaining crawl unless
// crawler.continue_on_topic_failure is set, in which case the topic's entry
// is recorded empty and the crawl moves on.
func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	runID, err := c.ids.NewID()
	if err != nil {
		return nil, err
	}
	logger := logging.WithRun(c.logger, runID)

	session, err := c.openSession(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Warn("failed to close render session", zap.Error(cerr))
		}
	}()

	fetcher := c.newFetcher(session)
	result := newResult(runID)

	for _, topic := range c.cfg.Crawler.Topics {
		items, err := c.collectTopic(ctx, session, fetcher, topic, logger)
		if err != nil {
			logger.Error("topic pipeline failed",
				zap.String("topic", topic),
				zap.Error(err))
			metrics.ObserveTopic("failed")
			if c.cfg.Crawler.ContinueOnTopicFailure {
				result.add(topic, nil)
				continue
			}
			return nil, err
		}

		result.add(topic, items)
		logger.Info("topic complete",
			zap.String("topic", topic),
			zap.Int("articles", len(items)))
		metrics.ObserveTopic("completed")
	}

	return result, nil
}
