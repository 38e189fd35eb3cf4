package config

import (
	"flag"
	"os"

	"github.com/dkovalev/lotkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-e string   HTTP listen address
//	-dsn string Postgres connection string
//	-k string   token secret key
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-e", "-dsn", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.EndpointAddr, "e", cfg.EndpointAddr, "HTTP listen address")
	fs.StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "Postgres connection string")
	fs.StringVar(&cfg.SecretKey, "k", cfg.SecretKey, "token secret key")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
