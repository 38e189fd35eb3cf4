package config

import (
	"flag"
	"os"
	"time"

	"github.com/dkovalev/lotkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   base URL of the sync server
//	-d string   path to the local database file
//	-t string   device token
//	-u string   user id
//	-i int      online check interval in seconds
//
// Args are filtered through flagx.FilterArgs so flags owned by other
// components pass through untouched.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t", "-u", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the sync server")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path to the local database file")
	fs.StringVar(&cfg.DeviceToken, "t", cfg.DeviceToken, "device token")
	fs.StringVar(&cfg.UserID, "u", cfg.UserID, "user id")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
