package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds service configuration.
type Config struct {
	ListenAddr  string
	MetricsAddr string

	FeedURL           string
	CatalogURL        string // optional remote JSON catalog; empty means build it from FeedURL
	MassagersCategory string
	InjectorsCategory string
	CacheTTL          time.Duration
	StaleRetry        time.Duration // how long a stale catalog is served before the next upstream attempt
	RefreshInterval   time.Duration
	RenderWait        time.Duration

	Timeout         time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	RetryBackoffMax time.Duration
	MaxBodyBytes    int
	UserAgent       string

	LeadsFile          string
	LeadsFormat        string // csv, json, or dual
	LeadWorkers        int
	PipelineBufferSize int
	BatchSize          int
	DedupeMaxSize      int

	AllowedOrigin string
	Verbose       bool
}

// DefaultConfig returns defaults matching the supplier feed.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:         ":8080",
		MetricsAddr:        "",
		FeedURL:            "https://t-sib.ru/upload/catalog.xml",
		CatalogURL:         "",
		MassagersCategory:  "229",
		InjectorsCategory:  "223",
		CacheTTL:           time.Hour,
		StaleRetry:         30 * time.Second,
		RefreshInterval:    time.Hour,
		RenderWait:         1500 * time.Millisecond,
		Timeout:            25 * time.Second,
		MaxRetries:         2,
		RetryBackoff:       200 * time.Millisecond,
		RetryBackoffMax:    2 * time.Second,
		MaxBodyBytes:       32 << 20,
		UserAgent:          "Mozilla/5.0",
		LeadsFile:          "output/leads.csv",
		LeadsFormat:        "csv",
		LeadWorkers:        2,
		PipelineBufferSize: 256,
		BatchSize:          1,
		DedupeMaxSize:      10000,
		AllowedOrigin:      "*",
		Verbose:            false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if err := validateURL("feed URL", c.FeedURL); err != nil {
		return err
	}
	if c.CatalogURL != "" {
		if err := validateURL("catalog URL", c.CatalogURL); err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.MassagersCategory) == "" || strings.TrimSpace(c.InjectorsCategory) == "" {
		return fmt.Errorf("category ids cannot be empty")
	}
	if c.MassagersCategory == c.InjectorsCategory {
		return fmt.Errorf("category ids must differ")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}
	if c.StaleRetry <= 0 {
		return fmt.Errorf("stale retry must be positive")
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval cannot be negative")
	}
	if c.RenderWait < 0 {
		return fmt.Errorf("render wait cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max body bytes cannot be negative")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.LeadsFile == "" {
		return fmt.Errorf("leads file cannot be empty")
	}
	if c.LeadsFormat != "csv" && c.LeadsFormat != "json" && c.LeadsFormat != "dual" {
		return fmt.Errorf("leads format must be csv, json, or dual")
	}
	if c.LeadWorkers <= 0 {
		return fmt.Errorf("lead workers must be positive")
	}
	if c.PipelineBufferSize <= 0 {
		return fmt.Errorf("pipeline buffer size must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}
	return nil
}

func validateURL(label, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", label)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", label, err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", label)
	}
	return nil
}
