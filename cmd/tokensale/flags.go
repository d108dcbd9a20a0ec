package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

const (
	DataDirKey    = "datadir"
	ConfigKey     = "config"
	LogLevelKey   = "log-level"
	NetworkKey    = "network"
	KeyFileKey    = "key"
	PasswordKey   = "password"
	EnvelopeKey   = "envelope"
	NowKey        = "now"
	ValueKey      = "value"
	DeploymentKey = "deployment"
	OutKey        = "out"
	MethodKey     = "method"

	passwordEnv = "TOKENSALE_PASSWORD"
)

// AddGlobalFlags registers the flags shared by every command.
func AddGlobalFlags(flags *pflag.FlagSet) {
	flags.String(DataDirKey, "", "Data directory (default ~/.tokensale)")
	flags.String(ConfigKey, "", "Config file (default <datadir>/config)")
	flags.String(LogLevelKey, "", "Override the configured log level")
	flags.String(NetworkKey, "", "Override the configured network")
}

// AddSignerFlags registers the flags identifying the caller of a mutating
// command: either a key file or a pre-signed envelope.
func AddSignerFlags(flags *pflag.FlagSet) {
	flags.String(KeyFileKey, "", "Encrypted key file of the caller")
	flags.String(PasswordKey, "", "Key file password (default $"+passwordEnv+")")
	flags.String(EnvelopeKey, "", "Pre-signed call envelope (JSON) instead of --key")
	flags.String(NowKey, "", "Node clock as RFC 3339 (default now); an --envelope must be signed within 5m of it")
}

func password(flags *pflag.FlagSet) (string, error) {
	pw, err := flags.GetString(PasswordKey)
	if err != nil {
		return "", err
	}
	if pw == "" {
		pw = os.Getenv(passwordEnv)
	}
	return pw, nil
}

func now(flags *pflag.FlagSet) (time.Time, error) {
	s, err := flags.GetString(NowKey)
	if err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", NowKey, err)
	}
	return t, nil
}
