// Package config loads runtime configuration for the IdeaForge CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-i int      heartbeat interval of live sessions (seconds)
//	-f string   path of the local SQLite store
//	-o string   public base URL of the web front end
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "heartbeat_interval": "30s",
//	  "database_path": "ideaforge.db",
//	  "public_base_url": "http://localhost:8080"
//	}
package config
