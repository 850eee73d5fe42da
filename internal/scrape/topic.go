package scrape

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/newsharvest/topiccrawler/internal/metrics"
)

// collectTopic runs one topic: render the listing page, extract headlines,
// then fetch each article sequentially with the configured pause after every
// item, the last one included.
//
// Listing failures (navigation or extraction) are fatal for the topic and
// return a *TopicError. Article failures are logged and the item is skipped;
// it never appears in the returned slice.
func (c *Crawler) collectTopic(ctx context.Context, session Session, fetcher ArticleFetcher, topic string, logger *zap.Logger) ([]NewsItem, error) {
	topicURL := c.cfg.TopicURL(topic)

	tab, err := session.NewTab(ctx)
	if err != nil {
		return nil, &TopicError{Topic: topic, Err: err}
	}
	defer tab.Close() //nolint:errcheck // tab close is idempotent and best-effort

	if err := tab.Navigate(ctx, topicURL, c.cfg.Pacing.PageLoadTimeout); err != nil {
		return nil, &TopicError{Topic: topic, Err: err}
	}

	headlines, err := tab.ExtractListing(ctx, c.cfg.Selectors.ListItem, c.cfg.Selectors.TitleLink)
	if err != nil {
		return nil, &TopicError{Topic: topic, Err: err}
	}

	// Relative links resolve against the listing page's final location, not
	// the configured base URL; the site may have redirected.
	pageURL, err := tab.CurrentURL(ctx)
	if err != nil {
		logger.Warn("falling back to configured topic URL",
			zap.String("topic", topic), zap.Error(err))
		pageURL = topicURL
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, &TopicError{Topic: topic, Err: fmt.Errorf("parse listing url %q: %w", pageURL, err)}
	}

	items := make([]NewsItem, 0, len(headlines))
	for _, headline := range headlines {
		if err := ctx.Err(); err != nil {
			return nil, &TopicError{Topic: topic, Err: err}
		}

		detailURL, err := resolveHref(base, headline.Href)
		if err != nil {
			logger.Error("skipping article with unresolvable link",
				zap.String("topic", topic),
				zap.String("title", headline.Title),
				zap.Error(err))
			metrics.ObserveArticleSkipped(topic)
			c.pause.Pause(ctx, c.cfg.Pacing.BetweenArticles)
			continue
		}

		content, err := fetcher.FetchContent(ctx, detailURL)
		if err != nil {
			logger.Error("skipping article",
				zap.String("topic", topic),
				zap.String("title", headline.Title),
				zap.String("url", detailURL),
				zap.Error(err))
			metrics.ObserveArticleSkipped(topic)
		} else {
			items = append(items, NewsItem{
				Title:     headline.Title,
				DetailURL: detailURL,
				Content:   content,
			})
			logger.Info("article fetched",
				zap.String("topic", topic),
				zap.String("title", headline.Title),
				zap.String("url", detailURL))
			metrics.ObserveArticleFetched(topic)
		}

		c.pause.Pause(ctx, c.cfg.Pacing.BetweenArticles)
	}

	return items, nil
}

// resolveHref turns a possibly relative listing link into an absolute URL.
func resolveHref(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse link %q: %w", href, err)
	}
	resolved := base.ResolveReference(ref)
	if !resolved.IsAbs() {
		return "", fmt.Errorf("link %q did not resolve to an absolute URL", href)
	}
	return resolved.String(), nil
}
