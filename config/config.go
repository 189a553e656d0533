package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all run configuration: built-in defaults, overlaid by an
// optional YAML file, overlaid by environment variables.
type Config struct {
	Crawl   CrawlConfig    `mapstructure:"crawl"`
	Output  OutputConfig   `mapstructure:"output"`
	Browser BrowserConfig  `mapstructure:"browser"`
	Log     LogConfig      `mapstructure:"log"`
	Sources []SourceConfig `mapstructure:"sources"`
}

type CrawlConfig struct {
	MaxConcurrency     int           `mapstructure:"max_concurrency"`
	MaxPages           int           `mapstructure:"max_pages"`
	EmptyPageTolerance int           `mapstructure:"empty_page_tolerance"`
	MaxLoadAttempts    int           `mapstructure:"max_load_attempts"`
	StaleLoadLimit     int           `mapstructure:"stale_load_limit"`
	MinDelay           time.Duration `mapstructure:"min_delay"`
	MaxDelay           time.Duration `mapstructure:"max_delay"`
	HostInterval       time.Duration `mapstructure:"host_interval"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	SinkBuffer         int           `mapstructure:"sink_buffer"`
	// MaxListings stops the run after this many accepted records; 0 means
	// no cap.
	MaxListings   int    `mapstructure:"max_listings"`
	UserAgent     string `mapstructure:"user_agent"`
	RespectRobots bool   `mapstructure:"respect_robots"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
	// FileName overrides the generated "listings_<time>_<run>.csv" name.
	FileName string `mapstructure:"file_name"`
}

type BrowserConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	ChromeBin       string        `mapstructure:"chrome_bin"`
	ScrollPause     time.Duration `mapstructure:"scroll_pause"`
	NavigateTimeout time.Duration `mapstructure:"navigate_timeout"`
	// OpenAttempts bounds retries of opening an index page in the browser.
	// Detail pages are fetched once per run.
	OpenAttempts int `mapstructure:"open_attempts"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// SourceConfig selects one marketplace and the brands to crawl on it.
type SourceConfig struct {
	Name    string       `mapstructure:"name"`
	BaseURL string       `mapstructure:"base_url"`
	Brands  []BrandScope `mapstructure:"brands"`
	Regions []string     `mapstructure:"regions"`
}

// BrandScope is a brand slug with an optional model list. An empty list
// lets the source discover models itself.
type BrandScope struct {
	Make   string   `mapstructure:"make"`
	Models []string `mapstructure:"models"`
}

// DefaultSources is the crawl scope used when the config file names none.
func DefaultSources() []SourceConfig {
	brands := []string{"toyota", "vinfast", "honda", "hyundai", "kia", "mazda", "suzuki", "bmw", "ford", "mercedes-benz"}
	bonbanh := SourceConfig{Name: "bonbanh"}
	for _, b := range brands {
		bonbanh.Brands = append(bonbanh.Brands, BrandScope{Make: b})
	}
	return []SourceConfig{
		bonbanh,
		{Name: "oto", Brands: []BrandScope{{Make: "toyota"}}},
		{Name: "chotot", Brands: []BrandScope{{Make: "toyota"}}},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawl.max_concurrency", 3)
	v.SetDefault("crawl.max_pages", 50)
	v.SetDefault("crawl.empty_page_tolerance", 2)
	v.SetDefault("crawl.max_load_attempts", 30)
	v.SetDefault("crawl.stale_load_limit", 3)
	v.SetDefault("crawl.min_delay", "1s")
	v.SetDefault("crawl.max_delay", "3s")
	v.SetDefault("crawl.host_interval", "1s")
	v.SetDefault("crawl.request_timeout", "30s")
	v.SetDefault("crawl.sink_buffer", 64)
	v.SetDefault("crawl.max_listings", 0)
	v.SetDefault("crawl.user_agent", "")
	v.SetDefault("crawl.respect_robots", false)

	v.SetDefault("output.dir", "./output")
	v.SetDefault("output.file_name", "")

	v.SetDefault("browser.enabled", true)
	v.SetDefault("browser.chrome_bin", "")
	v.SetDefault("browser.scroll_pause", "2s")
	v.SetDefault("browser.navigate_timeout", "60s")
	v.SetDefault("browser.open_attempts", 3)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads the .env file, then scraper.yaml from path (or from . and
// ./config when path is empty), and returns a validated Config. A missing
// file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("scraper")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultSources()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects limits the crawler cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Crawl.MaxConcurrency < 1:
		return fmt.Errorf("crawl.max_concurrency must be at least 1, got %d", c.Crawl.MaxConcurrency)
	case c.Crawl.MaxPages < 1:
		return fmt.Errorf("crawl.max_pages must be at least 1, got %d", c.Crawl.MaxPages)
	case c.Crawl.EmptyPageTolerance < 1:
		return fmt.Errorf("crawl.empty_page_tolerance must be at least 1, got %d", c.Crawl.EmptyPageTolerance)
	case c.Crawl.MinDelay < 0 || c.Crawl.MaxDelay < c.Crawl.MinDelay:
		return fmt.Errorf("crawl delay range %s..%s is invalid", c.Crawl.MinDelay, c.Crawl.MaxDelay)
	case c.Crawl.MaxListings < 0:
		return fmt.Errorf("crawl.max_listings must not be negative, got %d", c.Crawl.MaxListings)
	case c.Crawl.SinkBuffer < 0:
		return fmt.Errorf("crawl.sink_buffer must not be negative, got %d", c.Crawl.SinkBuffer)
	case c.Output.Dir == "":
		return errors.New("output.dir must be set")
	}
	for i, s := range c.Sources {
		if s.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if len(s.Brands) == 0 {
			return fmt.Errorf("source %s: at least one brand is required", s.Name)
		}
		for _, b := range s.Brands {
			if b.Make == "" {
				return fmt.Errorf("source %s: brand without make", s.Name)
			}
		}
	}
	return nil
}

// FilterSources keeps only the named sources. An empty list keeps all.
func (c *Config) FilterSources(names []string) error {
	if len(names) == 0 {
		return nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = true
	}
	kept := c.Sources[:0]
	for _, s := range c.Sources {
		if want[strings.ToLower(s.Name)] {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return fmt.Errorf("no configured source matches %v", names)
	}
	c.Sources = kept
	return nil
}
