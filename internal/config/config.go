package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the LKND radar.
type Config struct {
	Interval         time.Duration // gap between cycles in daemon mode
	DataDir          string        // holds the SQLite database and run lock
	Concurrency      int           // parallel source fetches
	FetchTimeout     time.Duration // per-source deadline
	PaceDelay        time.Duration // politeness gap between adapter launches
	MaxJobsPerSource int
	Sources          []SourceConfig
	Filters          FilterConfig
	Notification     NotificationConfig
	AI               AIConfig
	Report           ReportConfig
}

// SourceConfig describes a single upstream source.
type SourceConfig struct {
	Name      string         `yaml:"name"`
	Kind      string         `yaml:"kind"` // "board", "feed", or "mail"
	URL       string         `yaml:"url"`
	Enabled   bool           `yaml:"enabled"`
	MaxJobs   int            `yaml:"max_jobs"` // 0 means the global cap applies
	Selectors SelectorConfig `yaml:"selectors"`
	Mail      MailConfig     `yaml:"mail"`
}

// SelectorConfig holds the CSS selectors a board source is scraped with.
type SelectorConfig struct {
	Container   string `yaml:"container"`
	Title       string `yaml:"title"`
	Company     string `yaml:"company"`
	Location    string `yaml:"location"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
	Salary      string `yaml:"salary"`
	Posted      string `yaml:"posted"`
	Detail      string `yaml:"detail"` // applied on the posting's own page when set
}

// MailConfig holds IMAP settings for a mail source. The account password is
// never configured here; it comes from the OS keyring or LKND_IMAP_PASSWORD.
type MailConfig struct {
	Host        string `yaml:"host"` // host:port, TLS
	Username    string `yaml:"username"`
	Mailbox     string `yaml:"mailbox"`
	Sender      string `yaml:"sender"`
	MaxMessages int    `yaml:"max_messages"`
}

// FilterConfig holds the user's inclusion/exclusion criteria.
type FilterConfig struct {
	Keywords         []string `yaml:"keywords"`
	ExcludedKeywords []string `yaml:"excluded_keywords"`
	Locations        []string `yaml:"locations"`
	JobTypes         []string `yaml:"job_types"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type          string        // "log" or "telegram"
	Token         string        // bot token; empty falls back to keyring/env
	ChatID        string        // required for telegram
	BatchSize     int           // records shown in detail per batch
	MaxMessageLen int           // channel message-size limit
	SendDelay     time.Duration // courtesy gap between chunks
}

// AIConfig controls the optional insight enrichment of reports.
type AIConfig struct {
	Enabled  bool
	Provider string        // "openai" or "gemini"
	BaseURL  string        // openai only, defaults to https://api.openai.com/v1
	Model    string        // model identifier, e.g. "gpt-4o-mini"
	APIKey   string        // expanded from env var by Load
	Timeout  time.Duration // per-request timeout
}

// ReportConfig controls the weekly aggregate report.
type ReportConfig struct {
	Weekday time.Weekday
}

// DBPath returns the SQLite database location under the data dir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "jobs.db")
}

// LockPath returns the run-lock file location under the data dir.
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "lknd.lock")
}

// MaxJobsFor returns the record cap for the given source, falling back to
// the global MaxJobsPerSource.
func (c *Config) MaxJobsFor(s SourceConfig) int {
	if s.MaxJobs > 0 {
		return s.MaxJobs
	}
	return c.MaxJobsPerSource
}

// EnabledSources returns the sources that are switched on.
func (c *Config) EnabledSources() []SourceConfig {
	var out []SourceConfig
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Interval         string            `yaml:"interval"`
	DataDir          string            `yaml:"data_dir"`
	Concurrency      int               `yaml:"concurrency"`
	FetchTimeout     string            `yaml:"fetch_timeout"`
	PaceDelay        string            `yaml:"pace_delay"`
	MaxJobsPerSource int               `yaml:"max_jobs_per_source"`
	Sources          []SourceConfig    `yaml:"sources"`
	Filters          FilterConfig      `yaml:"filters"`
	Notification     rawNotification   `yaml:"notification"`
	AI               rawAIConfig       `yaml:"ai"`
	Report           rawReportConfig   `yaml:"report"`
}

type rawNotification struct {
	Type          string `yaml:"type"`
	Token         string `yaml:"token"`
	ChatID        string `yaml:"chat_id"`
	BatchSize     int    `yaml:"batch_size"`
	MaxMessageLen int    `yaml:"max_message_len"`
	SendDelay     string `yaml:"send_delay"`
}

type rawAIConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	Timeout  string `yaml:"timeout"`
}

type rawReportConfig struct {
	Weekday string `yaml:"weekday"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval := 2 * time.Hour // default
	if raw.Interval != "" {
		interval, err = time.ParseDuration(raw.Interval)
		if err != nil {
			return nil, fmt.Errorf("parse interval %q: %w", raw.Interval, err)
		}
	}

	fetchTimeout := 15 * time.Second // default
	if raw.FetchTimeout != "" {
		fetchTimeout, err = time.ParseDuration(raw.FetchTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse fetch_timeout %q: %w", raw.FetchTimeout, err)
		}
	}

	paceDelay := 1 * time.Second // default
	if raw.PaceDelay != "" {
		paceDelay, err = time.ParseDuration(raw.PaceDelay)
		if err != nil {
			return nil, fmt.Errorf("parse pace_delay %q: %w", raw.PaceDelay, err)
		}
	}

	sendDelay := 1 * time.Second // default
	if raw.Notification.SendDelay != "" {
		sendDelay, err = time.ParseDuration(raw.Notification.SendDelay)
		if err != nil {
			return nil, fmt.Errorf("parse notification.send_delay %q: %w", raw.Notification.SendDelay, err)
		}
	}

	aiTimeout := 30 * time.Second // default
	if raw.AI.Timeout != "" {
		aiTimeout, err = time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
	}

	weekday := time.Sunday // default
	if raw.Report.Weekday != "" {
		weekday, err = parseWeekday(raw.Report.Weekday)
		if err != nil {
			return nil, fmt.Errorf("parse report.weekday: %w", err)
		}
	}

	cfg := &Config{
		Interval:         interval,
		DataDir:          raw.DataDir,
		Concurrency:      raw.Concurrency,
		FetchTimeout:     fetchTimeout,
		PaceDelay:        paceDelay,
		MaxJobsPerSource: raw.MaxJobsPerSource,
		Sources:          raw.Sources,
		Filters:          raw.Filters,
		Notification: NotificationConfig{
			Type:          raw.Notification.Type,
			Token:         raw.Notification.Token,
			ChatID:        raw.Notification.ChatID,
			BatchSize:     raw.Notification.BatchSize,
			MaxMessageLen: raw.Notification.MaxMessageLen,
			SendDelay:     sendDelay,
		},
		AI: AIConfig{
			Enabled:  raw.AI.Enabled,
			Provider: raw.AI.Provider,
			BaseURL:  raw.AI.BaseURL,
			Model:    raw.AI.Model,
			APIKey:   raw.AI.APIKey,
			Timeout:  aiTimeout,
		},
		Report: ReportConfig{Weekday: weekday},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.MaxJobsPerSource <= 0 {
		cfg.MaxJobsPerSource = 50
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}
	if cfg.Notification.BatchSize <= 0 {
		cfg.Notification.BatchSize = 10
	}
	if cfg.Notification.MaxMessageLen <= 0 {
		cfg.Notification.MaxMessageLen = 4000
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.AI.Provider == "openai" && cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = defaultOpenAIBaseURL
	}
	for i := range cfg.Sources {
		s := &cfg.Sources[i]
		if s.Kind != "mail" {
			continue
		}
		if s.Mail.Mailbox == "" {
			s.Mail.Mailbox = "INBOX"
		}
		if s.Mail.Sender == "" {
			s.Mail.Sender = "jobalerts-noreply@linkedin.com"
		}
		if s.Mail.MaxMessages <= 0 {
			s.Mail.MaxMessages = 25
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", cfg.Interval)
	}
	enabled := 0
	for _, s := range cfg.Sources {
		if s.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	for _, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("every source needs a name")
		}
		switch s.Kind {
		case "board":
			if s.URL == "" {
				return fmt.Errorf("source %q: board sources need a url", s.Name)
			}
			if s.Selectors.Container == "" || s.Selectors.Title == "" || s.Selectors.Link == "" {
				return fmt.Errorf("source %q: board sources need container, title and link selectors", s.Name)
			}
		case "feed":
			if s.URL == "" {
				return fmt.Errorf("source %q: feed sources need a url", s.Name)
			}
		case "mail":
			if s.Mail.Host == "" || s.Mail.Username == "" {
				return fmt.Errorf("source %q: mail sources need mail.host and mail.username", s.Name)
			}
		default:
			return fmt.Errorf("source %q: unknown kind %q (want board, feed or mail)", s.Name, s.Kind)
		}
	}

	// Token and api_key are not validated here: both may live in the OS
	// keyring instead of the config file and are resolved at startup.
	switch cfg.Notification.Type {
	case "log":
	case "telegram":
		if cfg.Notification.ChatID == "" {
			return fmt.Errorf("notification.chat_id is required when type is \"telegram\"")
		}
	default:
		return fmt.Errorf("unknown notification.type %q (want log or telegram)", cfg.Notification.Type)
	}

	if cfg.AI.Enabled {
		if cfg.AI.Provider != "openai" && cfg.AI.Provider != "gemini" {
			return fmt.Errorf("unknown ai.provider %q (want openai or gemini)", cfg.AI.Provider)
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
	}

	return nil
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(s) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}
