package config

import "time"

// Config holds runtime settings for the IdeaForge CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - HeartbeatInterval: how often a live viewing session reports presence.
//   - DatabasePath: location of the local SQLite store.
//   - PublicBaseURL: prefix used when printing share URLs kept locally.
type Config struct {
	ServerEndpointAddr string
	HeartbeatInterval  time.Duration
	DatabasePath       string
	PublicBaseURL      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.HeartbeatInterval = 30 * time.Second
	c.DatabasePath = "ideaforge.db"
	c.PublicBaseURL = "http://localhost:8080"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
