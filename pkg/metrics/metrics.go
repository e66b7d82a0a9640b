// Package metrics instruments a tracker.Client with Prometheus counters and
// latency histograms.
package metrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danielolaszy/ticketbridge/pkg/models"
	"github.com/danielolaszy/ticketbridge/pkg/tracker"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Collector holds the metric vectors shared by every wrapped client.
type Collector struct {
	calls     *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewCollector registers the ticketbridge metrics with reg. A nil reg
// leaves the metrics unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	labels := []string{"platform", "operation", "outcome"}

	return &Collector{
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ticketbridge",
			Subsystem: "tracker",
			Name:      "calls_total",
			Help:      "Adapter operations, labeled by platform, operation and outcome",
		}, labels),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ticketbridge",
			Subsystem: "tracker",
			Name:      "call_duration_seconds",
			Help:      "Duration of adapter operations including every remote call they issue",
			Buckets:   prometheus.DefBuckets,
		}, labels),
	}
}

// outcome classifies an operation result.
func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, tracker.ErrNotFound):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}

func (c *Collector) record(platform tracker.Platform, operation string) func(error) {
	if c == nil {
		return func(error) {}
	}
	var observed string
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(seconds float64) {
		c.durations.WithLabelValues(string(platform), operation, observed).Observe(seconds)
	}))
	return func(err error) {
		observed = outcome(err)
		c.calls.WithLabelValues(string(platform), operation, observed).Inc()
		timer.ObserveDuration()
	}
}

// Wrap returns a client recording every call made through it.
func (c *Collector) Wrap(platform tracker.Platform, client tracker.Client) tracker.Client {
	return &instrumented{next: client, platform: platform, collector: c}
}

type instrumented struct {
	next      tracker.Client
	platform  tracker.Platform
	collector *Collector
}

func (i *instrumented) GetTicket(ctx context.Context, id string) (ticket *models.Ticket, err error) {
	done := i.collector.record(i.platform, "get_ticket")
	defer func() { done(err) }()
	return i.next.GetTicket(ctx, id)
}

func (i *instrumented) GetTickets(ctx context.Context, filter *models.TicketFilter) (tickets []models.Ticket, err error) {
	done := i.collector.record(i.platform, "get_tickets")
	defer func() { done(err) }()
	return i.next.GetTickets(ctx, filter)
}

func (i *instrumented) CreateTicket(ctx context.Context, opts models.CreateTicketOptions) (ticket *models.Ticket, err error) {
	done := i.collector.record(i.platform, "create_ticket")
	defer func() { done(err) }()
	return i.next.CreateTicket(ctx, opts)
}

func (i *instrumented) UpdateTicket(ctx context.Context, id string, opts models.UpdateTicketOptions) (ticket *models.Ticket, err error) {
	done := i.collector.record(i.platform, "update_ticket")
	defer func() { done(err) }()
	return i.next.UpdateTicket(ctx, id, opts)
}

func (i *instrumented) AddComment(ctx context.Context, id string, text string) (comment *models.Comment, err error) {
	done := i.collector.record(i.platform, "add_comment")
	defer func() { done(err) }()
	return i.next.AddComment(ctx, id, text)
}

func (i *instrumented) CreateReviewRequest(ctx context.Context, opts models.CreateReviewRequestOptions) (ticket *models.Ticket, err error) {
	done := i.collector.record(i.platform, "create_review_request")
	defer func() { done(err) }()
	return i.next.CreateReviewRequest(ctx, opts)
}
