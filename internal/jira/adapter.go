package jira

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/ticketbridge/internal/branch"
	"github.com/danielolaszy/ticketbridge/internal/logging"
	"github.com/danielolaszy/ticketbridge/internal/status"
	"github.com/danielolaszy/ticketbridge/pkg/models"
	"github.com/danielolaszy/ticketbridge/pkg/tracker"
)

var _ tracker.Client = (*Adapter)(nil)

// Adapter normalizes the issues of one Jira project.
type Adapter struct {
	transport  Transport
	projectKey string
	log        *slog.Logger
}

// NewAdapter validates cfg and builds an adapter backed by go-jira.
func NewAdapter(cfg tracker.Config) (*Adapter, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	transport, err := NewSDKTransport(cfg)
	if err != nil {
		return nil, err
	}
	return NewAdapterWithTransport(transport, cfg.ProjectKey), nil
}

// NewAdapterWithTransport builds an adapter for projectKey over any Transport.
func NewAdapterWithTransport(transport Transport, projectKey string) *Adapter {
	return &Adapter{
		transport:  transport,
		projectKey: projectKey,
		log:        logging.For(string(tracker.Jira)),
	}
}

// ValidateConfig checks the instance URL, project key and email+token auth.
func ValidateConfig(cfg tracker.Config) error {
	if err := tracker.ExpectAuth(tracker.Jira, cfg.Auth, tracker.AuthEmailToken); err != nil {
		return err
	}
	return tracker.Require(tracker.Jira).
		Field("base_url", cfg.BaseURL).
		Field("project_key", cfg.ProjectKey).
		Field("auth.email", cfg.Auth.Email).
		Field("auth.token", cfg.Auth.Token).
		Err()
}

// quote renders a JQL string literal.
func quote(value string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value) + `"`
}

// jql builds the search for the project. An unmapped status term is omitted.
func (a *Adapter) jql(filter *models.TicketFilter) string {
	clauses := []string{"project = " + quote(a.projectKey)}
	if filter != nil {
		if clause, ok := status.JiraFilter(filter.Status); ok {
			clauses = append(clauses, clause)
		} else if filter.Status != "" {
			a.log.Debug("dropping unmapped status filter", "status", filter.Status)
		}
		if filter.AssigneeID != "" {
			clauses = append(clauses, "assignee = "+quote(filter.AssigneeID))
		}
	}
	return strings.Join(clauses, " AND ")
}

// GetTicket reads one issue by key or id.
func (a *Adapter) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	issue, err := a.transport.GetIssue(ctx, id)
	if err != nil {
		if tracker.IsNotFound(err) {
			return nil, tracker.NotFound(tracker.Jira, id)
		}
		return nil, err
	}
	return normalizeIssue(issue), nil
}

// GetTickets searches the project with JQL.
func (a *Adapter) GetTickets(ctx context.Context, filter *models.TicketFilter) ([]models.Ticket, error) {
	issues, err := a.transport.SearchIssues(ctx, a.jql(filter))
	if err != nil {
		return nil, err
	}

	tickets := make([]models.Ticket, 0, len(issues))
	for i := range issues {
		tickets = append(tickets, *normalizeIssue(&issues[i]))
	}
	return tickets, nil
}

// create creates an issue of issueType and reads it back, since the create
// response only carries the key.
func (a *Adapter) create(ctx context.Context, issueType, title, description, assigneeID string, labels []string) (*jira.Issue, error) {
	fields := &jira.IssueFields{
		Project:     jira.Project{Key: a.projectKey},
		Type:        jira.IssueType{Name: issueType},
		Summary:     title,
		Description: description,
	}
	if assigneeID != "" {
		fields.Assignee = &jira.User{AccountID: assigneeID}
	}
	if len(labels) > 0 {
		fields.Labels = append([]string{}, labels...)
	}

	created, err := a.transport.CreateIssue(ctx, &jira.Issue{Fields: fields})
	if err != nil {
		return nil, err
	}

	a.log.Info("created issue", "key", created.Key, "type", issueType)
	return a.transport.GetIssue(ctx, created.Key)
}

// CreateTicket creates a Task.
func (a *Adapter) CreateTicket(ctx context.Context, opts models.CreateTicketOptions) (*models.Ticket, error) {
	issue, err := a.create(ctx, status.JiraDefaultIssueType, opts.Title, opts.Description, opts.AssigneeID, opts.Labels)
	if err != nil {
		return nil, err
	}
	return normalizeIssue(issue), nil
}

// UpdateTicket sets the fields present in opts, then applies a transition
// for a requested status. A status no available transition leads to is
// left unchanged.
func (a *Adapter) UpdateTicket(ctx context.Context, id string, opts models.UpdateTicketOptions) (*models.Ticket, error) {
	fields := map[string]interface{}{}
	if opts.Title != nil {
		fields["summary"] = *opts.Title
	}
	if opts.Description != nil {
		fields["description"] = *opts.Description
	}
	if opts.AssigneeID != nil {
		if *opts.AssigneeID == "" {
			fields["assignee"] = nil
		} else {
			fields["assignee"] = map[string]string{"accountId": *opts.AssigneeID}
		}
	}
	if opts.Labels != nil {
		fields["labels"] = append([]string{}, (*opts.Labels)...)
	}

	if len(fields) > 0 {
		if err := a.transport.UpdateIssue(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	if opts.Status != nil {
		if err := a.transition(ctx, id, *opts.Status); err != nil {
			return nil, err
		}
	}

	return a.GetTicket(ctx, id)
}

// transition applies the first available transition whose target status
// maps to shared. Merged matches a target that reads back as a merged review,
// such as Done.
func (a *Adapter) transition(ctx context.Context, id, shared string) error {
	transitions, err := a.transport.GetTransitions(ctx, id)
	if err != nil {
		return err
	}

	want := strings.ToLower(strings.TrimSpace(shared))
	for _, t := range transitions {
		target := status.JiraIssue(t.To.StatusCategory.Key, t.To.Name)
		merged := want == models.StatusMerged && status.JiraReviewState(t.To.Name) == models.ReviewMerged
		if target == want || strings.EqualFold(t.To.Name, want) || merged {
			a.log.Debug("applying transition", "key", id, "transition", t.Name, "to", t.To.Name)
			return a.transport.DoTransition(ctx, id, t.ID)
		}
	}

	a.log.Info("no transition leads to requested status", "key", id, "status", shared)
	return nil
}

// AddComment adds a comment to the issue.
func (a *Adapter) AddComment(ctx context.Context, id string, text string) (*models.Comment, error) {
	comment, err := a.transport.AddComment(ctx, id, text)
	if err != nil {
		return nil, err
	}
	return normalizeComment(comment), nil
}

// CreateReviewRequest creates a Review issue with the branches embedded in
// its description. The primary reviewer is assigned and every other
// reviewer is added as a watcher; a failing watcher call is returned
// without undoing the created issue.
func (a *Adapter) CreateReviewRequest(ctx context.Context, opts models.CreateReviewRequestOptions) (*models.Ticket, error) {
	description := branch.Embed(opts.Description, opts.SourceBranch, opts.TargetBranch)
	issue, err := a.create(ctx, status.JiraReviewIssueType, opts.Title, description, opts.PrimaryReviewer(), opts.Labels)
	if err != nil {
		return nil, err
	}

	for _, watcher := range opts.SecondaryReviewers() {
		if err := a.transport.AddWatcher(ctx, issue.Key, watcher); err != nil {
			return nil, fmt.Errorf("adding watcher %s to %s: %w", watcher, issue.Key, err)
		}
	}
	return normalizeIssue(issue), nil
}
