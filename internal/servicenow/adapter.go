package servicenow

import (
	"context"
	"log/slog"
	"maps"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/danielolaszy/ticketbridge/internal/branch"
	"github.com/danielolaszy/ticketbridge/internal/logging"
	"github.com/danielolaszy/ticketbridge/internal/probe"
	"github.com/danielolaszy/ticketbridge/internal/status"
	"github.com/danielolaszy/ticketbridge/pkg/models"
	"github.com/danielolaszy/ticketbridge/pkg/tracker"
)

var _ tracker.Client = (*Adapter)(nil)

// Adapter normalizes incidents and change requests of one instance.
//
// Labels have no Table API equivalent and are not sent. Comments are work
// notes written through a PATCH of the work_notes column; the instance
// appends each write to the journal, but the write returns the record rather
// than the journal entry, so the returned comment carries the record's
// sys_id and last-update stamp.
type Adapter struct {
	transport Transport
	log       *slog.Logger
}

// NewAdapter validates cfg and builds an adapter over the Table API.
func NewAdapter(cfg tracker.Config) (*Adapter, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	transport, err := NewRESTTransport(cfg)
	if err != nil {
		return nil, err
	}
	return NewAdapterWithTransport(transport), nil
}

// NewAdapterWithTransport builds an adapter over any Transport.
func NewAdapterWithTransport(transport Transport) *Adapter {
	return &Adapter{
		transport: transport,
		log:       logging.For(string(tracker.ServiceNow)),
	}
}

// ValidateConfig checks the instance URL and the basic or OAuth credentials.
func ValidateConfig(cfg tracker.Config) error {
	if err := tracker.ExpectAuth(tracker.ServiceNow, cfg.Auth, tracker.AuthBasic, tracker.AuthOAuth); err != nil {
		return err
	}

	req := tracker.Require(tracker.ServiceNow).Field("base_url", cfg.BaseURL)
	if cfg.Auth.Kind == tracker.AuthBasic {
		req.Field("auth.username", cfg.Auth.Username).Field("auth.password", cfg.Auth.Password)
	} else {
		req.Field("auth.token", cfg.Auth.Token)
	}
	return req.Err()
}

// probeTables is the lookup order for a bare sys_id.
var probeTables = []string{status.TableChangeRequest, status.TableIncident}

// located is a record together with the table that answered for it.
type located struct {
	table  string
	record *Record
}

func (l located) ticket() *models.Ticket {
	return normalizeRecord(l.table, l.record)
}

// probeRecord runs call against each table in probe order.
func (a *Adapter) probeRecord(ctx context.Context, id string, call func(ctx context.Context, table string) (*Record, error)) (located, error) {
	steps := make([]probe.Step[located], 0, len(probeTables))
	for _, table := range probeTables {
		steps = append(steps, probe.Step[located]{Kind: table, Call: func(ctx context.Context) (located, error) {
			rec, err := call(ctx, table)
			if err != nil {
				return located{}, err
			}
			return located{table: table, record: rec}, nil
		}})
	}
	return probe.First(ctx, tracker.ServiceNow, id, steps...)
}

// GetTicket probes change requests, then incidents.
func (a *Adapter) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	found, err := a.probeRecord(ctx, id, func(ctx context.Context, table string) (*Record, error) {
		return a.transport.Get(ctx, table, id)
	})
	if err != nil {
		return nil, err
	}
	return found.ticket(), nil
}

// encodedQuery builds a Table API sysparm_query from the filter. An unmapped
// status term is omitted, as is an assignee containing the "^" term
// separator.
func (a *Adapter) encodedQuery(filter *models.TicketFilter) string {
	if filter == nil {
		return ""
	}

	var terms []string
	if code, ok := status.ServiceNowCode(filter.Status); ok {
		terms = append(terms, "state="+code)
	} else if filter.Status != "" {
		a.log.Debug("dropping unmapped status filter", "status", filter.Status)
	}
	switch {
	case strings.Contains(filter.AssigneeID, "^"):
		a.log.Debug("dropping assignee filter with query separator", "assignee", filter.AssigneeID)
	case filter.AssigneeID != "":
		terms = append(terms, "assigned_to="+filter.AssigneeID)
	}
	return strings.Join(terms, "^")
}

// GetTickets lists incidents and change requests concurrently and returns
// incidents first, each table in the order the instance returned it.
func (a *Adapter) GetTickets(ctx context.Context, filter *models.TicketFilter) ([]models.Ticket, error) {
	query := a.encodedQuery(filter)

	var incidents, changes []Record
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		incidents, err = a.transport.List(ctx, status.TableIncident, query)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		changes, err = a.transport.List(ctx, status.TableChangeRequest, query)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	tickets := make([]models.Ticket, 0, len(incidents)+len(changes))
	for i := range incidents {
		tickets = append(tickets, *normalizeRecord(status.TableIncident, &incidents[i]))
	}
	for i := range changes {
		tickets = append(tickets, *normalizeRecord(status.TableChangeRequest, &changes[i]))
	}
	return tickets, nil
}

// CreateTicket inserts an incident.
func (a *Adapter) CreateTicket(ctx context.Context, opts models.CreateTicketOptions) (*models.Ticket, error) {
	payload := map[string]string{
		"short_description": opts.Title,
		"description":       opts.Description,
	}
	if opts.AssigneeID != "" {
		payload["assigned_to"] = opts.AssigneeID
	}

	rec, err := a.transport.Create(ctx, status.TableIncident, payload)
	if err != nil {
		return nil, err
	}

	a.log.Info("created incident", "sys_id", rec.SysID, "number", rec.Number)
	return normalizeRecord(status.TableIncident, rec), nil
}

// UpdateTicket patches only the columns present in opts, probing change
// requests before incidents. The state column is mapped per table, so merged
// resolves a change request and is dropped for an incident.
func (a *Adapter) UpdateTicket(ctx context.Context, id string, opts models.UpdateTicketOptions) (*models.Ticket, error) {
	payload := map[string]string{}
	if opts.Title != nil {
		payload["short_description"] = *opts.Title
	}
	if opts.Description != nil {
		payload["description"] = *opts.Description
	}
	if opts.AssigneeID != nil {
		payload["assigned_to"] = *opts.AssigneeID
	}

	var hasState bool
	if opts.Status != nil {
		_, hasState = status.ServiceNowStateCode(status.TableChangeRequest, *opts.Status)
	}
	if len(payload) == 0 && !hasState {
		return a.GetTicket(ctx, id)
	}

	found, err := a.probeRecord(ctx, id, func(ctx context.Context, table string) (*Record, error) {
		columns := payload
		if opts.Status != nil {
			if code, ok := status.ServiceNowStateCode(table, *opts.Status); ok {
				columns = maps.Clone(payload)
				columns["state"] = code
			} else {
				a.log.Debug("dropping unmapped status", "table", table, "status", *opts.Status)
			}
		}
		if len(columns) == 0 {
			return a.transport.Get(ctx, table, id)
		}
		return a.transport.Patch(ctx, table, id, columns)
	})
	if err != nil {
		return nil, err
	}
	return found.ticket(), nil
}

// AddComment writes a work note.
func (a *Adapter) AddComment(ctx context.Context, id string, text string) (*models.Comment, error) {
	found, err := a.probeRecord(ctx, id, func(ctx context.Context, table string) (*Record, error) {
		return a.transport.Patch(ctx, table, id, map[string]string{"work_notes": text})
	})
	if err != nil {
		return nil, err
	}
	return normalizeWorkNote(found.record, text), nil
}

// CreateReviewRequest inserts a change request in the review category. The
// branches are embedded in the description, the primary reviewer is
// assigned and the remaining reviewers are put on the watch list.
func (a *Adapter) CreateReviewRequest(ctx context.Context, opts models.CreateReviewRequestOptions) (*models.Ticket, error) {
	payload := map[string]string{
		"short_description": opts.Title,
		"description":       branch.Embed(opts.Description, opts.SourceBranch, opts.TargetBranch),
		"category":          status.ServiceNowReviewCategory,
	}
	if primary := opts.PrimaryReviewer(); primary != "" {
		payload["assigned_to"] = primary
	}
	if watchers := opts.SecondaryReviewers(); len(watchers) > 0 {
		payload["watch_list"] = strings.Join(watchers, ",")
	}

	rec, err := a.transport.Create(ctx, status.TableChangeRequest, payload)
	if err != nil {
		return nil, err
	}

	a.log.Info("created review change request", "sys_id", rec.SysID, "number", rec.Number)
	return normalizeRecord(status.TableChangeRequest, rec), nil
}
