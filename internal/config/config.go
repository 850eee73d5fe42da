// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Article engines supported by the topic pipeline.
const (
	EngineBrowser = "browser"
	EngineStatic  = "static"
)

// Config captures every knob loaded via Viper. It is built once at startup
// and never mutated during a crawl.
type Config struct {
	Crawler   CrawlerConfig  `mapstructure:"crawler"`
	Selectors SelectorConfig `mapstructure:"selectors"`
	Pacing    PacingConfig   `mapstructure:"pacing"`
	Logging   LoggingConfig  `mapstructure:"logging"`
}

// CrawlerConfig governs which topics are crawled and how requests identify
// themselves.
type CrawlerConfig struct {
	Topics                 []string `mapstructure:"topics"`
	BaseURL                string   `mapstructure:"base_url"`
	UserAgent              string   `mapstructure:"user_agent"`
	ArticleEngine          string   `mapstructure:"article_engine"`
	ContinueOnTopicFailure bool     `mapstructure:"continue_on_topic_failure"`
	HostQPS                float64  `mapstructure:"host_qps"`
}

// SelectorConfig holds the CSS selectors driving extraction. Selectors are
// opaque configuration values; the pipeline makes no assumptions about the
// site's DOM beyond them.
type SelectorConfig struct {
	ListItem       string `mapstructure:"list_item"`
	TitleLink      string `mapstructure:"title_link"`
	ArticleContent string `mapstructure:"article_content"`
}

// PacingConfig bounds individual navigations and spaces consecutive article
// fetches.
type PacingConfig struct {
	BetweenArticles time.Duration `mapstructure:"between_articles"`
	PageLoadTimeout time.Duration `mapstructure:"page_load_timeout"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TOPICCRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.user_agent", "topiccrawler/0.1")
	v.SetDefault("crawler.article_engine", EngineBrowser)
	v.SetDefault("crawler.continue_on_topic_failure", false)
	v.SetDefault("crawler.host_qps", 0)
	v.SetDefault("selectors.list_item", "article.teaser")
	v.SetDefault("selectors.title_link", "a.teaser__link")
	v.SetDefault("selectors.article_content", "div.article__body p")
	v.SetDefault("pacing.between_articles", "2s")
	v.SetDefault("pacing.page_load_timeout", "30s")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if len(c.Crawler.Topics) == 0 {
		return fmt.Errorf("crawler.topics must include at least one topic")
	}
	for _, topic := range c.Crawler.Topics {
		if strings.TrimSpace(topic) == "" {
			return fmt.Errorf("crawler.topics must not contain blank entries")
		}
	}
	parsed, err := url.Parse(c.Crawler.BaseURL)
	if err != nil || !parsed.IsAbs() {
		return fmt.Errorf("crawler.base_url must be an absolute URL")
	}
	if c.Crawler.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	switch c.Crawler.ArticleEngine {
	case EngineBrowser, EngineStatic:
	default:
		return fmt.Errorf("crawler.article_engine must be %q or %q", EngineBrowser, EngineStatic)
	}
	if c.Crawler.HostQPS < 0 {
		return fmt.Errorf("crawler.host_qps must be >= 0")
	}
	if c.Selectors.ListItem == "" || c.Selectors.TitleLink == "" || c.Selectors.ArticleContent == "" {
		return fmt.Errorf("selectors.list_item, selectors.title_link and selectors.article_content must all be set")
	}
	if c.Pacing.BetweenArticles < 0 {
		return fmt.Errorf("pacing.between_articles must be >= 0")
	}
	if c.Pacing.PageLoadTimeout <= 0 {
		return fmt.Errorf("pacing.page_load_timeout must be > 0")
	}
	return nil
}

// TopicURL joins the configured base URL with a topic identifier.
func (c Config) TopicURL(topic string) string {
	return strings.TrimRight(c.Crawler.BaseURL, "/") + "/" + topic
}
