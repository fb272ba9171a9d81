package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/alnah/go-charsheet/internal/config"
	"github.com/alnah/go-charsheet/internal/hints"
)

// envConfigPath names the config file when --config is not given.
const envConfigPath = config.EnvPrefix + "CONFIG"

// envContainer marks a container environment for doctor and browser hints.
const envContainer = config.EnvPrefix + "CONTAINER"

// warnUnknownEnvVars logs warnings for unrecognized CHARSHEET_* variables.
// Helps catch typos like CHARSHEET_TEMPLATE instead of CHARSHEET_TEMPLATE_PATH.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	known := append(config.KnownEnvVars(), envConfigPath, envContainer)
	for _, kv := range environ {
		if !strings.HasPrefix(kv, config.EnvPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !slices.Contains(known, name) {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// resolveConfig loads the configuration for one command.
// Precedence: flags > env vars > config file > defaults. Flags are applied
// afterwards by each command.
func resolveConfig(flagConfig string, env *Environment) (*config.Config, error) {
	if env.Config != nil {
		cfg := *env.Config
		return &cfg, nil
	}

	name := flagConfig
	if name == "" {
		name = os.Getenv(envConfigPath)
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w%s", err, configHint(err))
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configHint suggests where to put a config file that was searched for by
// name and not found.
func configHint(err error) string {
	if !errors.Is(err, config.ErrConfigNotFound) {
		return ""
	}
	_, tried, ok := strings.Cut(err.Error(), "tried ")
	if !ok {
		return hints.ForConfigNotFound(nil)
	}
	return hints.ForConfigNotFound(strings.Split(tried, ", "))
}
