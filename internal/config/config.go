package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport modes for the wishes endpoint.
const (
	TransportJSONP = "jsonp"
	TransportJSON  = "json"
)

// Defaults mirror the behaviour of the original guestbook widget.
const (
	DefaultEndpointURL     = "https://script.google.com/macros/s/AKfycbzzsyJxi-DO1fYOjCQEZNl6DYgF9TkUjEl2Jhq3rv9sNqx2u6JIA_kArUF29skUckA/exec"
	DefaultTimeout         = 10 * time.Second
	DefaultCallbackPrefix  = "wishesCallback_"
	DefaultPageSize        = 10
	DefaultMaxPageLinks    = 5
	DefaultRefreshInterval = 60 * time.Second
	DefaultLocale          = "vi"
	DefaultContainerID     = "wishes-container"
	DefaultPaginationID    = "wishes-pagination"
	DefaultSectionID       = "wishes"
	DefaultAddr            = ":8080"
	DefaultNavBasePath     = "/wishes"
	DefaultRateLimit       = 5
	DefaultRateBurst       = 30
	DefaultLogLevel        = "info"

	configFileName = "config.yaml"
	maxPageSize    = 100
	minRefresh     = time.Second
)

// Validation errors.
var (
	ErrInvalidEndpoint  = errors.New("endpoint url must be an absolute http(s) url")
	ErrInvalidTransport = errors.New("endpoint transport must be 'jsonp' or 'json'")
	ErrInvalidTimeout   = errors.New("endpoint timeout must be positive")
	ErrInvalidPageSize  = errors.New("widget page_size must be between 1 and 100")
	ErrInvalidPageLinks = errors.New("widget max_page_links must be >= 1")
	ErrInvalidRefresh   = errors.New("widget refresh_interval must be at least 1s")
	ErrEmptyMountID     = errors.New("widget mount ids must not be empty")
	ErrInvalidRateLimit = errors.New("server rate_limit and rate_burst must be positive")
)

// Config is the wishboard configuration.
type Config struct {
	Endpoint EndpointConfig `yaml:"endpoint"`
	Widget   WidgetConfig   `yaml:"widget"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`

	configPath string
}

// EndpointConfig locates the remote wishes source.
type EndpointConfig struct {
	URL            string        `yaml:"url"`
	Transport      string        `yaml:"transport"`
	Timeout        time.Duration `yaml:"timeout"`
	CallbackPrefix string        `yaml:"callback_prefix"`
}

// WidgetConfig controls pagination, refresh and the host page mount points.
type WidgetConfig struct {
	PageSize        int           `yaml:"page_size"`
	MaxPageLinks    int           `yaml:"max_page_links"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	Locale          string        `yaml:"locale"`
	ContainerID     string        `yaml:"container_id"`
	PaginationID    string        `yaml:"pagination_id"`
	SectionID       string        `yaml:"section_id"`
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	NavBasePath    string   `yaml:"nav_base_path"`
	RateLimit      float64  `yaml:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Metrics        bool     `yaml:"metrics"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// New returns a Config populated with defaults, loaded from the config file
// when one exists. Errors reading the file are ignored; use Load to see them.
func New() *Config {
	cfg := Default()
	path, err := DefaultConfigPath()
	if err != nil {
		return cfg
	}
	cfg.configPath = path
	if _, statErr := os.Stat(path); statErr == nil {
		_ = cfg.Load()
	}
	return cfg
}

// Default returns the built-in defaults without touching the filesystem.
func Default() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			URL:            DefaultEndpointURL,
			Transport:      TransportJSONP,
			Timeout:        DefaultTimeout,
			CallbackPrefix: DefaultCallbackPrefix,
		},
		Widget: WidgetConfig{
			PageSize:        DefaultPageSize,
			MaxPageLinks:    DefaultMaxPageLinks,
			RefreshInterval: DefaultRefreshInterval,
			Locale:          DefaultLocale,
			ContainerID:     DefaultContainerID,
			PaginationID:    DefaultPaginationID,
			SectionID:       DefaultSectionID,
		},
		Server: ServerConfig{
			Addr:           DefaultAddr,
			NavBasePath:    DefaultNavBasePath,
			RateLimit:      DefaultRateLimit,
			RateBurst:      DefaultRateBurst,
			AllowedOrigins: []string{"*"},
			Metrics:        true,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// ConfigPath returns the file this config loads from and saves to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath overrides the file used by Load and Save.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Load reads the config file over the current values. Sections missing from
// the file keep their current values.
func (c *Config) Load() error {
	if c.configPath == "" {
		return errors.New("config path not set")
	}
	return ShallowMergeYAML(c, c.configPath)
}

// Save writes the config as YAML, creating the parent directory.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config path not set")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", c.configPath, err)
	}
	return nil
}

// Validate checks the configuration for values the widget cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, c.Endpoint.URL)
	}
	if c.Endpoint.Transport != TransportJSONP && c.Endpoint.Transport != TransportJSON {
		return fmt.Errorf("%w: got %q", ErrInvalidTransport, c.Endpoint.Transport)
	}
	if c.Endpoint.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Widget.PageSize < 1 || c.Widget.PageSize > maxPageSize {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, c.Widget.PageSize)
	}
	if c.Widget.MaxPageLinks < 1 {
		return ErrInvalidPageLinks
	}
	if c.Widget.RefreshInterval < minRefresh {
		return fmt.Errorf("%w: got %s", ErrInvalidRefresh, c.Widget.RefreshInterval)
	}
	if c.Widget.ContainerID == "" || c.Widget.PaginationID == "" || c.Widget.SectionID == "" {
		return ErrEmptyMountID
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst <= 0 {
		return ErrInvalidRateLimit
	}
	return nil
}
