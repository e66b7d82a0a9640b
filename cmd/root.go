// Package cmd provides the command-line interface for the ticketbridge tool.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/danielolaszy/ticketbridge/internal/config"
	"github.com/danielolaszy/ticketbridge/internal/credential"
	"github.com/danielolaszy/ticketbridge/internal/logging"
	"github.com/danielolaszy/ticketbridge/pkg/dispatcher"
	"github.com/danielolaszy/ticketbridge/pkg/metrics"
	"github.com/danielolaszy/ticketbridge/pkg/tracker"
)

// cli holds the persistent flag values and the client factory shared by
// every subcommand.
type cli struct {
	configPath  string
	logLevel    string
	metricsFile string

	registry *prometheus.Registry
	connect  func(ctx context.Context) (tracker.Client, error)
	secrets  secretStore
}

// NewRootCmd builds the command tree backed by the configured platform.
func NewRootCmd() *cobra.Command {
	c := &cli{secrets: credential.NewResolver()}
	c.connect = c.dial
	return c.rootCmd()
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ticketbridge",
		Short: "Read and write tickets on GitHub, GitLab, ServiceNow and Jira",
		Long: `ticketbridge talks to one issue tracker, code host or ITSM platform through
a single normalized ticket model.

The platform is selected by the config file (--config, default ./ticketbridge.yaml)
or by TRACKER_* environment variables. Every command prints JSON on stdout.

Example:
  ticketbridge get 42
  ticketbridge list --status open --assignee 1001
  ticketbridge review --title "Cache layer" --source feature/cache --target main --reviewer alice`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.logLevel != "" {
				logging.SetupLogger(cmd.ErrOrStderr(), logging.ParseLevel(c.logLevel))
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", config.DefaultPath, "Path to the platform config file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")
	root.PersistentFlags().StringVar(&c.metricsFile, "metrics-textfile", "", "Write Prometheus metrics for the run to this file")

	root.AddCommand(
		c.getCmd(),
		c.listCmd(),
		c.createCmd(),
		c.updateCmd(),
		c.commentCmd(),
		c.reviewCmd(),
		secretCmd(c.secrets),
	)
	return root
}

// dial loads the config and builds the platform client.
func (c *cli) dial(ctx context.Context) (tracker.Client, error) {
	cfg, err := config.Load(c.configPath, nil)
	if err != nil {
		return nil, err
	}

	var opts []dispatcher.Option
	if c.metricsFile != "" {
		c.registry = prometheus.NewRegistry()
		opts = append(opts, dispatcher.WithMetrics(metrics.NewCollector(c.registry)))
	}

	client, err := dispatcher.NewClient(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s client: %w", cfg.Type, err)
	}
	return client, nil
}

// run connects to the platform, runs fn and writes the metrics textfile
// whether or not fn failed.
func (c *cli) run(cmd *cobra.Command, fn func(ctx context.Context, client tracker.Client) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := c.connect(ctx)
	if err != nil {
		return err
	}

	err = fn(ctx, client)
	if c.registry != nil {
		if werr := prometheus.WriteToTextfile(c.metricsFile, c.registry); werr != nil {
			err = errors.Join(err, fmt.Errorf("writing metrics: %w", werr))
		}
	}
	return err
}
