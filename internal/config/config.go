// Package config loads the platform configuration the CLI hands to the
// dispatcher.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/danielolaszy/ticketbridge/internal/credential"
	"github.com/danielolaszy/ticketbridge/internal/logging"
	"github.com/danielolaszy/ticketbridge/pkg/tracker"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "ticketbridge.yaml"

// envBindings maps config keys to the environment variables overriding them.
var envBindings = map[string]string{
	"type":          "TRACKER_TYPE",
	"base_url":      "TRACKER_BASE_URL",
	"owner":         "TRACKER_OWNER",
	"repo":          "TRACKER_REPO",
	"project_id":    "TRACKER_PROJECT_ID",
	"project_key":   "TRACKER_PROJECT_KEY",
	"rate_limit":    "TRACKER_RATE_LIMIT",
	"auth.kind":     "TRACKER_AUTH_KIND",
	"auth.token":    "TRACKER_TOKEN",
	"auth.username": "TRACKER_USERNAME",
	"auth.password": "TRACKER_PASSWORD",
	"auth.email":    "TRACKER_EMAIL",
}

// Secrets is implemented by credential.Resolver.
type Secrets interface {
	Resolve(value string) (string, error)
}

// Load reads the config file at path, applies TRACKER_* environment
// overrides and resolves secret references. A missing file at DefaultPath is
// not an error, so the whole config can come from the environment.
func Load(path string, secrets Secrets) (tracker.Config, error) {
	var cfg tracker.Config

	v := viper.New()
	if path == "" {
		path = DefaultPath
	}
	v.SetConfigFile(path)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return cfg, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if !(path == DefaultPath && errors.Is(err, fs.ErrNotExist)) {
			return cfg, fmt.Errorf("%w: reading %s: %v", tracker.ErrInvalidConfiguration, path, err)
		}
		logging.Debug("no config file, using environment only", "path", path)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: decoding %s: %v", tracker.ErrInvalidConfiguration, path, err)
	}

	cfg.Type = tracker.Platform(strings.ToLower(strings.TrimSpace(string(cfg.Type))))
	cfg.Auth.Kind = tracker.AuthKind(strings.ToLower(strings.TrimSpace(string(cfg.Auth.Kind))))

	if secrets == nil {
		secrets = credential.NewResolver()
	}
	if err := resolveSecrets(&cfg.Auth, secrets); err != nil {
		return cfg, err
	}

	logging.Debug("loaded configuration",
		"path", path,
		"type", cfg.Type,
		"auth", cfg.Auth.Kind)
	return cfg, nil
}

// resolveSecrets replaces the token and password references in place.
func resolveSecrets(auth *tracker.Auth, secrets Secrets) error {
	for name, field := range map[string]*string{
		"auth.token":    &auth.Token,
		"auth.password": &auth.Password,
	} {
		value, err := secrets.Resolve(*field)
		if err != nil {
			return fmt.Errorf("%w: resolving %s: %v", tracker.ErrInvalidConfiguration, name, err)
		}
		*field = value
	}
	return nil
}
