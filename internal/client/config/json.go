package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/ideaforge/internal/flagx"
	"github.com/dmitrijs2005/ideaforge/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals
// go through timex.Duration so "30s" and integer nanoseconds both work.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	HeartbeatInterval  timex.Duration `json:"heartbeat_interval"`
	DatabasePath       string         `json:"database_path"`
	PublicBaseURL      string         `json:"public_base_url"`
}

// parseJson overlays Config with the JSON file named by -c/-config. Empty
// fields in the file leave the current values alone. Read and decode errors
// panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.HeartbeatInterval.Duration != 0 {
		cfg.HeartbeatInterval = jc.HeartbeatInterval.Duration
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.PublicBaseURL != "" {
		cfg.PublicBaseURL = jc.PublicBaseURL
	}
}
