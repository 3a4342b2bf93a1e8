package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// os.Args is filtered through flagx.FilterArgs first so foreign flags are
// ignored.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-f", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	heartbeat := fs.Int("i", int(cfg.HeartbeatInterval.Seconds()), "heartbeat interval (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "local database file")
	fs.StringVar(&cfg.PublicBaseURL, "o", cfg.PublicBaseURL, "public base URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.HeartbeatInterval = time.Duration(*heartbeat) * time.Second
}
