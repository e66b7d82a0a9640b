package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/ticketbridge/internal/logging"
)

// secretStore is implemented by credential.Resolver.
type secretStore interface {
	Set(key, value string) error
}

func secretCmd(store secretStore) *cobra.Command {
	secret := &cobra.Command{
		Use:   "secret",
		Short: "Manage secrets referenced as keyring:<item> in the config",
	}

	secret.AddCommand(&cobra.Command{
		Use:   "set <item>",
		Short: "Store a secret read from stdin in the system keyring",
		Long: `Store a secret in the system keyring under <item>.

The value is read from the first line of stdin, so it never appears in shell
history. Reference it from the config file as keyring:<item>.

Example:
  printf '%s' "$GITLAB_TOKEN" | ticketbridge secret set gitlab-token`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			line, err := reader.ReadString('\n')
			value := strings.TrimRight(line, "\r\n")
			if value == "" {
				if err != nil && line == "" {
					return fmt.Errorf("reading secret from stdin: %w", err)
				}
				return fmt.Errorf("empty secret for %s", args[0])
			}

			if err := store.Set(args[0], value); err != nil {
				return err
			}
			logging.Info("stored secret", "item", args[0], "value", logging.MaskSensitive(value))
			return nil
		},
	})
	return secret
}
