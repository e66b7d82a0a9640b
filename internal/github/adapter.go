package github

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/go-github/v41/github"

	"github.com/danielolaszy/ticketbridge/internal/logging"
	"github.com/danielolaszy/ticketbridge/internal/status"
	"github.com/danielolaszy/ticketbridge/pkg/models"
	"github.com/danielolaszy/ticketbridge/pkg/tracker"
)

var _ tracker.Client = (*Adapter)(nil)

// Adapter normalizes one GitHub repository's issues and pull requests.
type Adapter struct {
	transport Transport
	log       *slog.Logger
}

// NewAdapter validates cfg and builds an adapter backed by go-github.
func NewAdapter(cfg tracker.Config) (*Adapter, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	transport, err := NewSDKTransport(cfg)
	if err != nil {
		return nil, err
	}
	return NewAdapterWithTransport(transport), nil
}

// NewAdapterWithTransport builds an adapter over any Transport.
func NewAdapterWithTransport(transport Transport) *Adapter {
	return &Adapter{
		transport: transport,
		log:       logging.For(string(tracker.GitHub)),
	}
}

// ValidateConfig checks the repository coordinates and token auth.
func ValidateConfig(cfg tracker.Config) error {
	if err := tracker.ExpectAuth(tracker.GitHub, cfg.Auth, tracker.AuthToken); err != nil {
		return err
	}
	return tracker.Require(tracker.GitHub).
		Field("owner", cfg.Owner).
		Field("repo", cfg.Repo).
		Field("auth.token", cfg.Auth.Token).
		Err()
}

// parseNumber converts a ticket id; ids that are not issue numbers cannot exist.
func parseNumber(id string) (int, error) {
	number, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(id), "#"))
	if err != nil || number <= 0 {
		return 0, tracker.NotFound(tracker.GitHub, id)
	}
	return number, nil
}

// GetTicket reads the issue record and, for pull requests, the pull request
// record that carries the branches and merge state.
func (a *Adapter) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	number, err := parseNumber(id)
	if err != nil {
		return nil, err
	}

	issue, err := a.transport.GetIssue(ctx, number)
	if err != nil {
		return nil, err
	}
	return a.normalizeRecord(ctx, issue)
}

func (a *Adapter) normalizeRecord(ctx context.Context, issue *github.Issue) (*models.Ticket, error) {
	if !isPullRequest(issue) {
		return normalizeIssue(issue), nil
	}

	pr, err := a.transport.GetPullRequest(ctx, issue.GetNumber())
	if err != nil {
		return nil, err
	}
	return normalizePullRequest(pr), nil
}

// GetTickets lists issues and pull requests. An unmappable status filter is
// dropped and the listing asks for every state, since GitHub would otherwise
// apply its default of open.
func (a *Adapter) GetTickets(ctx context.Context, filter *models.TicketFilter) ([]models.Ticket, error) {
	opts := &github.IssueListByRepoOptions{}
	if filter != nil {
		if state, ok := status.GitHubFilter(filter.Status); ok {
			opts.State = state
		} else if filter.Status != "" {
			a.log.Debug("dropping unmapped status filter", "status", filter.Status)
			opts.State = "all"
		}
		opts.Assignee = filter.AssigneeID
	}

	issues, err := a.transport.ListIssues(ctx, opts)
	if err != nil {
		return nil, err
	}

	tickets := make([]models.Ticket, 0, len(issues))
	for _, issue := range issues {
		if isPullRequest(issue) {
			tickets = append(tickets, *normalizeListedPullRequest(issue))
			continue
		}
		tickets = append(tickets, *normalizeIssue(issue))
	}
	return tickets, nil
}

// CreateTicket opens an issue.
func (a *Adapter) CreateTicket(ctx context.Context, opts models.CreateTicketOptions) (*models.Ticket, error) {
	req := &github.IssueRequest{
		Title: github.String(opts.Title),
		Body:  github.String(opts.Description),
	}
	if opts.AssigneeID != "" {
		req.Assignees = &[]string{opts.AssigneeID}
	}
	if len(opts.Labels) > 0 {
		labels := append([]string(nil), opts.Labels...)
		req.Labels = &labels
	}

	issue, err := a.transport.CreateIssue(ctx, req)
	if err != nil {
		return nil, err
	}

	a.log.Info("created issue", "number", issue.GetNumber())
	return normalizeIssue(issue), nil
}

// UpdateTicket edits only the fields present in opts. Pull requests are
// edited through the same issues endpoint. A status without an issue
// equivalent, such as merged, is ignored.
func (a *Adapter) UpdateTicket(ctx context.Context, id string, opts models.UpdateTicketOptions) (*models.Ticket, error) {
	number, err := parseNumber(id)
	if err != nil {
		return nil, err
	}

	req := &github.IssueRequest{}
	changed := false
	if opts.Title != nil {
		req.Title = opts.Title
		changed = true
	}
	if opts.Description != nil {
		req.Body = opts.Description
		changed = true
	}
	if opts.Status != nil {
		if state, ok := status.GitHubEditState(*opts.Status); ok {
			req.State = github.String(state)
			changed = true
		}
	}
	if opts.AssigneeID != nil {
		assignees := []string{}
		if *opts.AssigneeID != "" {
			assignees = append(assignees, *opts.AssigneeID)
		}
		req.Assignees = &assignees
		changed = true
	}
	if opts.Labels != nil {
		labels := append([]string{}, (*opts.Labels)...)
		req.Labels = &labels
		changed = true
	}

	if !changed {
		return a.GetTicket(ctx, id)
	}

	issue, err := a.transport.EditIssue(ctx, number, req)
	if err != nil {
		return nil, err
	}
	return a.normalizeRecord(ctx, issue)
}

// AddComment comments on an issue or pull request conversation.
func (a *Adapter) AddComment(ctx context.Context, id string, text string) (*models.Comment, error) {
	number, err := parseNumber(id)
	if err != nil {
		return nil, err
	}

	comment, err := a.transport.CreateComment(ctx, number, text)
	if err != nil {
		return nil, err
	}
	return normalizeComment(comment), nil
}

// CreateReviewRequest opens a pull request, then requests every reviewer,
// assigns the assignee and applies labels. A failing follow-up call is
// returned as-is; the pull request stays created.
func (a *Adapter) CreateReviewRequest(ctx context.Context, opts models.CreateReviewRequestOptions) (*models.Ticket, error) {
	pr, err := a.transport.CreatePullRequest(ctx, &github.NewPullRequest{
		Title: github.String(opts.Title),
		Head:  github.String(opts.SourceBranch),
		Base:  github.String(opts.TargetBranch),
		Body:  github.String(opts.Description),
	})
	if err != nil {
		return nil, err
	}

	number := pr.GetNumber()
	a.log.Info("created pull request", "number", number, "head", opts.SourceBranch, "base", opts.TargetBranch)

	if len(opts.Reviewers) > 0 {
		if err := a.transport.RequestReviewers(ctx, number, opts.Reviewers); err != nil {
			return nil, err
		}
	}
	if opts.AssigneeID != "" {
		if err := a.transport.AddAssignees(ctx, number, []string{opts.AssigneeID}); err != nil {
			return nil, err
		}
	}
	if len(opts.Labels) > 0 {
		if err := a.transport.AddLabels(ctx, number, opts.Labels); err != nil {
			return nil, err
		}
	}

	ticket := normalizePullRequest(pr)
	if opts.AssigneeID != "" && ticket.Assignee == nil {
		ticket.Assignee = &models.User{ID: opts.AssigneeID, Name: opts.AssigneeID}
	}
	return ticket, nil
}
