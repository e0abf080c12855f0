package config

import (
	"flag"
	"os"
	"time"

	"github.com/tatame/backend/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   token signing secret
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-n int      activation token validity, minutes
//	-o int      recovery code validity, minutes
//
// Duration flags are accepted as integers in minutes. The function first
// filters os.Args to only the flags it recognizes using flagx.FilterArgs, to
// avoid collisions with the -c/-config flags of the JSON overlay.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-n", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshValidity := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")
	activationValidity := fs.Int("n", int(config.ActivationTokenValidityDuration.Minutes()), "activation token validity (in minutes)")
	recoveryValidity := fs.Int("o", int(config.RecoveryCodeValidityDuration.Minutes()), "recovery code validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessValidity) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshValidity) * time.Minute
	config.ActivationTokenValidityDuration = time.Duration(*activationValidity) * time.Minute
	config.RecoveryCodeValidityDuration = time.Duration(*recoveryValidity) * time.Minute
}
