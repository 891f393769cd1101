package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"NewsRobot/internal/domain"
)

const (
	defaultTimezone = "UTC"

	configPathEnv    = "NEWSROBOT_CONFIG"
	databasePathEnv  = "NEWSROBOT_DB_PATH"
	chatGPTAPIKeyEnv = "CHATGPT_API_KEY"
	chatGPTModelEnv  = "CHATGPT_MODEL"
	wpUsernameEnv    = "WORDPRESS_USERNAME"
	wpAppPasswordEnv = "WORDPRESS_APP_PASSWORD"
	bookmarksPathEnv = "BOOKMARK_CONFIG_PATH"
	listenAddrEnv    = "NEWSROBOT_ADDR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig    `yaml:"logging"`
	Server        ServerConfig     `yaml:"server"`
	Scheduler     SchedulerConfig  `yaml:"scheduler"`
	Storage       StorageConfig    `yaml:"storage"`
	ChatGPT       ChatGPTConfig    `yaml:"chatgpt"`
	WordPress     WordPressConfig  `yaml:"wordpress"`
	Newsletter    NewsletterConfig `yaml:"newsletter"`
	Sources       []SourceConfig   `yaml:"sources"`
	Topics        []TopicConfig    `yaml:"topics"`
	BookmarksPath string           `yaml:"bookmarksPath"`
}

// LoggingConfig controls the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig describes the HTTP trigger surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SchedulerConfig defines when the weekly run executes.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// StorageConfig describes the seen-URL store.
type StorageConfig struct {
	Path        string `yaml:"path"`
	SeenTTLDays int    `yaml:"seenTtlDays"`
}

// ChatGPTConfig defines how to contact the ChatGPT API.
type ChatGPTConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// WordPressConfig wires the publishing target.
type WordPressConfig struct {
	SiteURL     string   `yaml:"siteUrl"`
	APIEndpoint string   `yaml:"apiEndpoint"`
	Username    string   `yaml:"username"`
	AppPassword string   `yaml:"appPassword"`
	Status      string   `yaml:"status"`
	Categories  []string `yaml:"categories"`
}

// NewsletterConfig tunes selection caps and issue formatting.
type NewsletterConfig struct {
	TitlePrefix string `yaml:"titlePrefix"`
	MaxArticles int    `yaml:"maxArticles"`
	MaxPerTopic int    `yaml:"maxPerTopic"`
	// Matching selects the keyword matcher: "substring" (default) or "word".
	Matching string `yaml:"matching"`
}

// SourceConfig describes a single feed or listing page to discover from.
type SourceConfig struct {
	Name     string            `yaml:"name"`
	URL      string            `yaml:"url"`
	Scanner  string            `yaml:"scanner"`
	Category string            `yaml:"category"`
	Options  map[string]string `yaml:"options"`
}

// TopicConfig holds one topic priority rule. Order matters: earlier topics
// win priority ties during selection.
type TopicConfig struct {
	Name     string   `yaml:"name"`
	Priority int      `yaml:"priority"`
	Keywords []string `yaml:"keywords"`
}

// TopicRules converts the configured topics into domain rules, preserving order.
func (c Config) TopicRules() []domain.TopicRule {
	rules := make([]domain.TopicRule, 0, len(c.Topics))
	for _, t := range c.Topics {
		rules = append(rules, domain.TopicRule{
			Name:     t.Name,
			Keywords: t.Keywords,
			Priority: t.Priority,
		})
	}
	return rules
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Storage.Path = v
	}

	if v := os.Getenv(wpUsernameEnv); v != "" {
		c.WordPress.Username = v
	}

	if v := os.Getenv(wpAppPasswordEnv); v != "" {
		c.WordPress.AppPassword = v
	}

	if v := os.Getenv(chatGPTAPIKeyEnv); v != "" {
		c.ChatGPT.APIKey = v
	}

	if v := os.Getenv(chatGPTModelEnv); v != "" {
		c.ChatGPT.Model = v
	}

	if v := os.Getenv(bookmarksPathEnv); v != "" {
		c.BookmarksPath = v
	}

	if v := os.Getenv(listenAddrEnv); v != "" {
		c.Server.Addr = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Server.Addr != "" {
		base.Server = override.Server
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Storage.Path != "" {
		base.Storage.Path = override.Storage.Path
	}
	if override.Storage.SeenTTLDays > 0 {
		base.Storage.SeenTTLDays = override.Storage.SeenTTLDays
	}

	if override.ChatGPT.Endpoint != "" {
		base.ChatGPT.Endpoint = override.ChatGPT.Endpoint
	}
	if override.ChatGPT.Model != "" {
		base.ChatGPT.Model = override.ChatGPT.Model
	}
	if override.ChatGPT.APIKey != "" {
		base.ChatGPT.APIKey = override.ChatGPT.APIKey
	}
	if override.ChatGPT.SystemPrompt != "" {
		base.ChatGPT.SystemPrompt = override.ChatGPT.SystemPrompt
	}

	if override.WordPress.SiteURL != "" {
		base.WordPress.SiteURL = override.WordPress.SiteURL
	}
	if override.WordPress.APIEndpoint != "" {
		base.WordPress.APIEndpoint = override.WordPress.APIEndpoint
	}
	if override.WordPress.Username != "" {
		base.WordPress.Username = override.WordPress.Username
	}
	if override.WordPress.AppPassword != "" {
		base.WordPress.AppPassword = override.WordPress.AppPassword
	}
	if override.WordPress.Status != "" {
		base.WordPress.Status = override.WordPress.Status
	}
	if len(override.WordPress.Categories) > 0 {
		base.WordPress.Categories = override.WordPress.Categories
	}

	if override.Newsletter.TitlePrefix != "" {
		base.Newsletter.TitlePrefix = override.Newsletter.TitlePrefix
	}
	if override.Newsletter.MaxArticles > 0 {
		base.Newsletter.MaxArticles = override.Newsletter.MaxArticles
	}
	if override.Newsletter.MaxPerTopic > 0 {
		base.Newsletter.MaxPerTopic = override.Newsletter.MaxPerTopic
	}
	if override.Newsletter.Matching != "" {
		base.Newsletter.Matching = override.Newsletter.Matching
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}
	if len(override.Topics) > 0 {
		base.Topics = override.Topics
	}
	if override.BookmarksPath != "" {
		base.BookmarksPath = override.BookmarksPath
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{Addr: ":8080"},
		// Monday 08:00 in the configured timezone.
		Scheduler: SchedulerConfig{CronExpression: "0 8 * * 1", Timezone: defaultTimezone, location: tz},
		Storage:   StorageConfig{Path: "newsrobot.db", SeenTTLDays: 90},
		ChatGPT: ChatGPTConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			APIKey:       "",
			SystemPrompt: "You write a weekly technology newsletter from ranked RSS articles.",
		},
		WordPress: WordPressConfig{
			APIEndpoint: "/wp-json/wp/v2",
			Status:      "private",
			Categories:  []string{"WeeklySummary"},
		},
		Newsletter: NewsletterConfig{
			TitlePrefix: "Weekly Update",
			MaxArticles: 20,
			MaxPerTopic: 10,
			Matching:    "substring",
		},
		Sources: []SourceConfig{
			{
				Name:     "Hacker News",
				URL:      "https://news.ycombinator.com/rss",
				Scanner:  "rss",
				Category: "tech",
			},
		},
		Topics: []TopicConfig{
			{Name: "AI/ML", Priority: 10, Keywords: []string{"machine learning", "llm", "neural"}},
			{Name: "Programming", Priority: 7, Keywords: []string{"golang", "compiler", "programming"}},
		},
		BookmarksPath: "config/weekly_bookmarks.yaml",
	}
}
