package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-l", ":8181", "-d", "db", "-q", "redis:6379", "-o", "https://forge.example",
			"-s", "secret", "-t", "5", "-x", "http://chat", "-k", "key", "-n", "model",
			"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrGRPC:            "127.0.0.1:9090",
				EndpointAddrHTTP:            ":8181",
				DatabaseDSN:                 "db",
				RedisAddr:                   "redis:6379",
				PublicBaseURL:               "https://forge.example",
				SecretKey:                   "secret",
				AccessTokenValidityDuration: 5 * time.Minute,
				ChatAPIURL:                  "http://chat",
				ChatAPIKey:                  "key",
				ChatModel:                   "model",
				S3RootUser:                  "user",
				S3RootPassword:              "password",
				S3Bucket:                    "bucket",
				S3Region:                    "us-west-1",
				S3BaseEndpoint:              "http://endpoint",
			}},
		{name: "bad int", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
		{name: "foreign flags ignored", args: []string{"cmd", "-c", "cfg.json", "-z", "1"}, expectPanic: false,
			expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
