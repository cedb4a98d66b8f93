package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Fetcher types.
const (
	FetcherHTTP    = "http"
	FetcherBrowser = "browser"
	FetcherChrome  = "chrome"
)

// Class matching strategies for structural markers.
const (
	// ClassMatchPattern searches each class token for the marker pattern.
	ClassMatchPattern = "pattern"
	// ClassMatchExact requires a class token to match the marker in full.
	ClassMatchExact = "exact"
)

// Handling of the leading cell in the pricing table's price row.
const (
	PriceLabelAuto = "auto"
	PriceLabelSkip = "skip"
	PriceLabelKeep = "keep"
)

// Config is the root configuration for PromoScrape.
type Config struct {
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Cache   CacheConfig   `mapstructure:"cache"   yaml:"cache"`
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// FetcherConfig controls how markup is obtained.
type FetcherConfig struct {
	Type           string        `mapstructure:"type"            yaml:"type"`
	Timeout        time.Duration `mapstructure:"timeout"         yaml:"timeout"`
	ReadySelectors []string      `mapstructure:"ready_selectors" yaml:"ready_selectors"`
	UserAgents     []string      `mapstructure:"user_agents"     yaml:"user_agents"`
	MaxBodySize    int64         `mapstructure:"max_body_size"   yaml:"max_body_size"`
	Headless       bool          `mapstructure:"headless"        yaml:"headless"`
}

// CacheConfig controls the optional redis markup cache.
type CacheConfig struct {
	RedisAddr string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl"        yaml:"ttl"`
}

// ExtractConfig selects between the known variants of the extraction rules.
type ExtractConfig struct {
	ClassMatch      string `mapstructure:"class_match"       yaml:"class_match"`
	PriceLabelCell  string `mapstructure:"price_label_cell"  yaml:"price_label_cell"`
	EmitEmptyDetail bool   `mapstructure:"emit_empty_detail" yaml:"emit_empty_detail"`
}

// StorageConfig controls output.
type StorageConfig struct {
	OutputPath      string `mapstructure:"output_path"      yaml:"output_path"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
	PostgresDSN     string `mapstructure:"postgres_dsn"     yaml:"postgres_dsn"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Fetcher: FetcherConfig{
			Type:           FetcherHTTP,
			Timeout:        10 * time.Second,
			ReadySelectors: []string{"#productListHolder", "#productDetail"},
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
			MaxBodySize: 10 * 1024 * 1024, // 10MB
			Headless:    true,
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		Extract: ExtractConfig{
			ClassMatch:     ClassMatchPattern,
			PriceLabelCell: PriceLabelAuto,
		},
		Storage: StorageConfig{
			OutputPath:      "scraped_products.csv",
			MongoDatabase:   "promoscrape",
			MongoCollection: "products",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
