package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	switch cfg.Fetcher.Type {
	case FetcherHTTP, FetcherBrowser, FetcherChrome:
	default:
		return fmt.Errorf("fetcher.type must be 'http', 'browser' or 'chrome', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}

	if cfg.Cache.RedisAddr != "" && cfg.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be > 0 when cache.redis_addr is set")
	}

	if cfg.Extract.ClassMatch != ClassMatchPattern && cfg.Extract.ClassMatch != ClassMatchExact {
		return fmt.Errorf("extract.class_match must be 'pattern' or 'exact', got %q", cfg.Extract.ClassMatch)
	}
	switch cfg.Extract.PriceLabelCell {
	case PriceLabelAuto, PriceLabelSkip, PriceLabelKeep:
	default:
		return fmt.Errorf("extract.price_label_cell must be auto/skip/keep, got %q", cfg.Extract.PriceLabelCell)
	}

	if cfg.Storage.OutputPath == "" {
		return fmt.Errorf("storage.output_path must not be empty")
	}
	if cfg.Storage.MongoURI != "" && (cfg.Storage.MongoDatabase == "" || cfg.Storage.MongoCollection == "") {
		return fmt.Errorf("storage.mongo_database and storage.mongo_collection are required with storage.mongo_uri")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is valid for scraping.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
