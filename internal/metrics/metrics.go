// Package metrics exposes Prometheus collectors for the topic crawler.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	articlesFetchedTotal *prometheus.CounterVec
	articlesSkippedTotal *prometheus.CounterVec
	topicsTotal          *prometheus.CounterVec
	articleFetchSeconds  *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		articlesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topiccrawler_articles_fetched_total",
				Help: "Total number of articles fetched successfully, labeled by topic.",
			},
			[]string{"topic"},
		)

		articlesSkippedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topiccrawler_articles_skipped_total",
				Help: "Total number of articles skipped after a fetch failure, labeled by topic.",
			},
			[]string{"topic"},
		)

		topicsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topiccrawler_topics_total",
				Help: "Total number of topic pipelines run, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		articleFetchSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "topiccrawler_article_fetch_seconds",
				Help:    "Histogram of single article fetch latencies, labeled by engine.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"engine"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveArticleFetched counts one successfully fetched article.
func ObserveArticleFetched(topic string) {
	Init()
	articlesFetchedTotal.WithLabelValues(topic).Inc()
}

// ObserveArticleSkipped counts one article dropped after a fetch failure.
func ObserveArticleSkipped(topic string) {
	Init()
	articlesSkippedTotal.WithLabelValues(topic).Inc()
}

// ObserveTopic counts one finished topic pipeline by outcome.
func ObserveTopic(outcome string) {
	Init()
	topicsTotal.WithLabelValues(outcome).Inc()
}

// ObserveArticleFetchDuration records the wall-clock time of one article fetch.
func ObserveArticleFetchDuration(engine string, duration time.Duration) {
	Init()
	articleFetchSeconds.WithLabelValues(engine).Observe(duration.Seconds())
}
