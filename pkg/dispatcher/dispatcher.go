// Package dispatcher builds the platform adapter selected by a tracker.Config.
package dispatcher

import (
	"fmt"

	"github.com/danielolaszy/ticketbridge/internal/github"
	"github.com/danielolaszy/ticketbridge/internal/gitlab"
	"github.com/danielolaszy/ticketbridge/internal/jira"
	"github.com/danielolaszy/ticketbridge/internal/logging"
	"github.com/danielolaszy/ticketbridge/internal/servicenow"
	"github.com/danielolaszy/ticketbridge/pkg/metrics"
	"github.com/danielolaszy/ticketbridge/pkg/tracker"
)

type options struct {
	metrics *metrics.Collector
}

// Option customizes the client returned by NewClient.
type Option func(*options)

// WithMetrics records every call of the returned client in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) {
		o.metrics = c
	}
}

// NewClient returns the adapter for cfg.Type. It fails with an error wrapping
// tracker.ErrInvalidConfiguration when the tag is unknown or the selected
// platform is missing required fields.
func NewClient(cfg tracker.Config, opts ...Option) (tracker.Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	client, err := newAdapter(cfg)
	if err != nil {
		return nil, err
	}
	logging.Debug("created tracker client", "platform", cfg.Type)

	if o.metrics != nil {
		return o.metrics.Wrap(cfg.Type, client), nil
	}
	return client, nil
}

// newAdapter keeps the concrete error path free of typed nil clients.
func newAdapter(cfg tracker.Config) (tracker.Client, error) {
	var (
		client tracker.Client
		err    error
	)
	switch cfg.Type {
	case tracker.GitHub:
		client, err = github.NewAdapter(cfg)
	case tracker.GitLab:
		client, err = gitlab.NewAdapter(cfg)
	case tracker.ServiceNow:
		client, err = servicenow.NewAdapter(cfg)
	case tracker.Jira:
		client, err = jira.NewAdapter(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported platform type %q (expected one of %v)",
			tracker.ErrInvalidConfiguration, cfg.Type, tracker.Platforms)
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}
