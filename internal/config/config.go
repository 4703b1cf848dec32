// Package config loads server configuration from flags, environment variables
// and an optional config file.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"ou-videos-mcp/internal/server"
	"ou-videos-mcp/internal/video"
)

// Backends.
const (
	BackendStore   = "store"
	BackendYouTube = "youtube"
)

// Config represents the full service configuration.
type Config struct {
	Port        string   `mapstructure:"port"`
	Token       string   `mapstructure:"token"`
	OpenPaths   []string `mapstructure:"open_paths"`
	TLSCertFile string   `mapstructure:"tls_cert_file"`
	TLSKeyFile  string   `mapstructure:"tls_key_file"`

	Backend     string `mapstructure:"backend"`
	SearchOrder string `mapstructure:"search_order"`

	DatabaseURL    string `mapstructure:"database_url"`
	DatabaseDriver string `mapstructure:"database_driver"`
	DatabaseTable  string `mapstructure:"database_table"`

	YouTubeAPIKey    string `mapstructure:"youtube_api_key"`
	YouTubeChannelID string `mapstructure:"youtube_channel_id"`
	YouTubeBaseURL   string `mapstructure:"youtube_base_url"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	KeepAliveInterval time.Duration `mapstructure:"keepalive_interval"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`

	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
}

// envBindings maps config keys to the environment variables they read.
var envBindings = map[string][]string{
	"port":               {"PORT"},
	"token":              {"MCP_TOKEN"},
	"open_paths":         {"MCP_OPEN_PATHS"},
	"tls_cert_file":      {"TLS_CERT_FILE"},
	"tls_key_file":       {"TLS_KEY_FILE"},
	"backend":            {"VIDEO_BACKEND"},
	"search_order":       {"SEARCH_ORDER"},
	"database_url":       {"DATABASE_URL"},
	"database_driver":    {"DATABASE_DRIVER"},
	"database_table":     {"DATABASE_TABLE"},
	"youtube_api_key":    {"YOUTUBE_API_KEY"},
	"youtube_channel_id": {"YOUTUBE_CHANNEL_ID"},
	"youtube_base_url":   {"YOUTUBE_BASE_URL"},
	"log_level":          {"LOG_LEVEL"},
	"log_format":         {"LOG_FORMAT"},
	"keepalive_interval": {"KEEPALIVE_INTERVAL"},
	"request_timeout":    {"REQUEST_TIMEOUT"},
	"server_name":        {"MCP_SERVER_NAME"},
	"server_version":     {"MCP_SERVER_VERSION"},
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("open_paths", server.DefaultOpenPaths)
	v.SetDefault("backend", BackendStore)
	v.SetDefault("search_order", string(video.OrderPublished))
	v.SetDefault("database_driver", "postgres")
	v.SetDefault("database_table", "videos")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("keepalive_interval", 4*time.Minute)
	v.SetDefault("request_timeout", 60*time.Second)
	v.SetDefault("server_name", "ou-videos-mcp")
	v.SetDefault("server_version", "1.0.0")

	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
}

// Load reads the optional config file into v, then decodes and validates the
// merged result. Flags must already be bound to v.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "reading config file %s", path)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	cfg.OpenPaths = splitPaths(cfg.OpenPaths)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendStore:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the store backend")
		}
		if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite3" {
			return errors.Errorf("unsupported database driver %q", c.DatabaseDriver)
		}
	case BackendYouTube:
		if c.YouTubeAPIKey == "" {
			return errors.New("YOUTUBE_API_KEY is required for the youtube backend")
		}
	default:
		return errors.Errorf("unknown backend %q", c.Backend)
	}
	switch video.Order(c.SearchOrder) {
	case video.OrderPublished, video.OrderViews:
	default:
		return errors.Errorf("unknown search order %q", c.SearchOrder)
	}
	return nil
}

// Server returns the HTTP settings.
func (c Config) Server() server.Config {
	return server.Config{
		Token:          c.Token,
		OpenPaths:      c.OpenPaths,
		RequestTimeout: c.RequestTimeout,
	}
}

// splitPaths accepts both list values and a single CSV string from the environment.
func splitPaths(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, p := range strings.Split(item, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
