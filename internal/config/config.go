package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Scraper ScraperConfig `mapstructure:"scraper"`
	Output  OutputConfig  `mapstructure:"output"`
}

// ScraperConfig holds source-site and HTTP client configuration
type ScraperConfig struct {
	BaseURL string `mapstructure:"base_url"`

	// BuildID is the Next.js deployment token addressing the data
	// endpoints. When empty it is discovered from the site at startup.
	BuildID string `mapstructure:"build_id"`

	Timeout              int      `mapstructure:"timeout"`
	MaxRetries           int      `mapstructure:"max_retries"`
	RetryWait            int      `mapstructure:"retry_wait"`
	RetryStatuses        []int    `mapstructure:"retry_statuses"`
	MaxWorkers           int      `mapstructure:"max_workers"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	Proxies              []string `mapstructure:"proxies"`
}

// OutputConfig holds output file configuration
type OutputConfig struct {
	File string `mapstructure:"file"`
}

// Load loads configuration from YAML file with environment variable overrides
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// no config.yaml: run on defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("scraper.base_url", "https://www.uveda.org")
	viper.SetDefault("scraper.build_id", "")
	viper.SetDefault("scraper.timeout", 30)
	viper.SetDefault("scraper.max_retries", 3)
	viper.SetDefault("scraper.retry_wait", 1)
	viper.SetDefault("scraper.retry_statuses", []int{429, 500, 502, 503, 504})
	viper.SetDefault("scraper.max_workers", 5)
	viper.SetDefault("scraper.max_requests_per_second", 10)

	viper.SetDefault("output.file", "nalayira_divya_prabandam.csv")
}
