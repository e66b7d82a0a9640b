// Package credential resolves secret references found in configuration
// files. A value "keyring:<item>" is read from the system keyring, a value
// "env:<NAME>" from the environment, and anything else is used literally.
package credential

import (
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "ticketbridge"

const (
	keyringPrefix = "keyring:"
	envPrefix     = "env:"
)

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/ticketbridge/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("ticketbridge-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Resolver turns secret references into values.
type Resolver struct {
	open      func() (keyring.Keyring, error)
	lookupEnv func(string) (string, bool)
}

// NewResolver returns a resolver backed by the system keyring and process
// environment.
func NewResolver() *Resolver {
	return &Resolver{open: openKeyring, lookupEnv: os.LookupEnv}
}

// NewResolverWithKeyring returns a resolver reading keyring references from ring.
func NewResolverWithKeyring(ring keyring.Keyring, lookupEnv func(string) (string, bool)) *Resolver {
	return &Resolver{
		open:      func() (keyring.Keyring, error) { return ring, nil },
		lookupEnv: lookupEnv,
	}
}

// Resolve returns the secret a reference points at. The keyring is only
// opened for keyring references.
func (r *Resolver) Resolve(value string) (string, error) {
	switch {
	case strings.HasPrefix(value, keyringPrefix):
		return r.get(strings.TrimPrefix(value, keyringPrefix))
	case strings.HasPrefix(value, envPrefix):
		name := strings.TrimPrefix(value, envPrefix)
		secret, ok := r.lookupEnv(name)
		if !ok {
			return "", fmt.Errorf("environment variable %s is not set", name)
		}
		return secret, nil
	default:
		return value, nil
	}
}

// get retrieves a credential value by key from the keyring.
func (r *Resolver) get(key string) (string, error) {
	ring, err := r.open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key in the keyring.
func (r *Resolver) Set(key, value string) error {
	ring, err := r.open()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}
