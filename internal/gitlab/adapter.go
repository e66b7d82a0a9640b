package gitlab

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/danielolaszy/ticketbridge/internal/logging"
	"github.com/danielolaszy/ticketbridge/internal/probe"
	"github.com/danielolaszy/ticketbridge/internal/status"
	"github.com/danielolaszy/ticketbridge/pkg/models"
	"github.com/danielolaszy/ticketbridge/pkg/tracker"
)

const (
	kindMergeRequest = "merge_request"
	kindIssue        = "issue"
)

var _ tracker.Client = (*Adapter)(nil)

// Adapter normalizes one GitLab project's issues and merge requests.
type Adapter struct {
	transport Transport
	log       *slog.Logger
}

// NewAdapter validates cfg and builds an adapter backed by client-go.
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
		log:       logging.For(string(tracker.GitLab)),
	}
}

// ValidateConfig checks the project id and token auth.
func ValidateConfig(cfg tracker.Config) error {
	if err := tracker.ExpectAuth(tracker.GitLab, cfg.Auth, tracker.AuthToken); err != nil {
		return err
	}
	return tracker.Require(tracker.GitLab).
		Field("project_id", cfg.ProjectID).
		Field("auth.token", cfg.Auth.Token).
		Err()
}

// parseIID converts a ticket id to a project-scoped iid.
func parseIID(id string) (int64, error) {
	iid, err := strconv.ParseInt(strings.TrimLeft(strings.TrimSpace(id), "!#"), 10, 64)
	if err != nil || iid <= 0 {
		return 0, tracker.NotFound(tracker.GitLab, id)
	}
	return iid, nil
}

// parseUserIDs converts user ids; GitLab only accepts numeric ids on writes.
func parseUserIDs(ids ...string) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("gitlab user id %q is not numeric", id)
		}
		out = append(out, n)
	}
	return out, nil
}

func labelOptions(labels []string) *gitlab.LabelOptions {
	opts := gitlab.LabelOptions(append([]string{}, labels...))
	return &opts
}

// GetTicket probes the merge request endpoint, then the issue endpoint.
func (a *Adapter) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	iid, err := parseIID(id)
	if err != nil {
		return nil, err
	}

	return probe.First(ctx, tracker.GitLab, id,
		probe.Step[*models.Ticket]{Kind: kindMergeRequest, Call: func(ctx context.Context) (*models.Ticket, error) {
			mr, err := a.transport.GetMergeRequest(ctx, iid)
			if err != nil {
				return nil, err
			}
			return normalizeMergeRequest(mr), nil
		}},
		probe.Step[*models.Ticket]{Kind: kindIssue, Call: func(ctx context.Context) (*models.Ticket, error) {
			issue, err := a.transport.GetIssue(ctx, iid)
			if err != nil {
				return nil, err
			}
			return normalizeIssue(issue), nil
		}},
	)
}

// GetTickets lists project issues. Merge requests are not included, so a
// merged status filter has no equivalent and is dropped.
func (a *Adapter) GetTickets(ctx context.Context, filter *models.TicketFilter) ([]models.Ticket, error) {
	opts := &gitlab.ListProjectIssuesOptions{}
	if filter != nil {
		if state, ok := status.GitLabIssueFilter(filter.Status); ok {
			opts.State = gitlab.Ptr(state)
		} else if filter.Status != "" {
			a.log.Debug("dropping unmapped status filter", "status", filter.Status)
		}

		if filter.AssigneeID != "" {
			if ids, err := parseUserIDs(filter.AssigneeID); err == nil {
				opts.AssigneeID = gitlab.AssigneeID(ids[0])
			} else {
				a.log.Debug("dropping non-numeric assignee filter", "assignee", filter.AssigneeID)
			}
		}
	}

	issues, err := a.transport.ListIssues(ctx, opts)
	if err != nil {
		return nil, err
	}

	tickets := make([]models.Ticket, 0, len(issues))
	for _, issue := range issues {
		tickets = append(tickets, *normalizeIssue(issue))
	}
	return tickets, nil
}

// CreateTicket opens an issue.
func (a *Adapter) CreateTicket(ctx context.Context, opts models.CreateTicketOptions) (*models.Ticket, error) {
	req := &gitlab.CreateIssueOptions{
		Title:       gitlab.Ptr(opts.Title),
		Description: gitlab.Ptr(opts.Description),
	}
	if opts.AssigneeID != "" {
		ids, err := parseUserIDs(opts.AssigneeID)
		if err != nil {
			return nil, err
		}
		req.AssigneeIDs = &ids
	}
	if len(opts.Labels) > 0 {
		req.Labels = labelOptions(opts.Labels)
	}

	issue, err := a.transport.CreateIssue(ctx, req)
	if err != nil {
		return nil, err
	}

	a.log.Info("created issue", "iid", issue.IID)
	return normalizeIssue(issue), nil
}

// UpdateTicket probes the merge request edit, then the issue edit, sending
// only the fields present in opts.
func (a *Adapter) UpdateTicket(ctx context.Context, id string, opts models.UpdateTicketOptions) (*models.Ticket, error) {
	iid, err := parseIID(id)
	if err != nil {
		return nil, err
	}

	var stateEvent *string
	if opts.Status != nil {
		if event, ok := status.GitLabStateEvent(*opts.Status); ok {
			stateEvent = gitlab.Ptr(event)
		}
	}

	var assignees *[]int64
	if opts.AssigneeID != nil {
		ids := []int64{}
		if *opts.AssigneeID != "" {
			if ids, err = parseUserIDs(*opts.AssigneeID); err != nil {
				return nil, err
			}
		}
		assignees = &ids
	}

	var labels *gitlab.LabelOptions
	if opts.Labels != nil {
		labels = labelOptions(*opts.Labels)
	}

	if opts.Title == nil && opts.Description == nil && stateEvent == nil && assignees == nil && labels == nil {
		return a.GetTicket(ctx, id)
	}

	return probe.First(ctx, tracker.GitLab, id,
		probe.Step[*models.Ticket]{Kind: kindMergeRequest, Call: func(ctx context.Context) (*models.Ticket, error) {
			mr, err := a.transport.UpdateMergeRequest(ctx, iid, &gitlab.UpdateMergeRequestOptions{
				Title:       opts.Title,
				Description: opts.Description,
				StateEvent:  stateEvent,
				AssigneeIDs: assignees,
				Labels:      labels,
			})
			if err != nil {
				return nil, err
			}
			return normalizeMergeRequest(mr), nil
		}},
		probe.Step[*models.Ticket]{Kind: kindIssue, Call: func(ctx context.Context) (*models.Ticket, error) {
			issue, err := a.transport.UpdateIssue(ctx, iid, &gitlab.UpdateIssueOptions{
				Title:       opts.Title,
				Description: opts.Description,
				StateEvent:  stateEvent,
				AssigneeIDs: assignees,
				Labels:      labels,
			})
			if err != nil {
				return nil, err
			}
			return normalizeIssue(issue), nil
		}},
	)
}

// AddComment posts a note on the merge request, or on the issue when no
// merge request has that iid.
func (a *Adapter) AddComment(ctx context.Context, id string, text string) (*models.Comment, error) {
	iid, err := parseIID(id)
	if err != nil {
		return nil, err
	}

	return probe.First(ctx, tracker.GitLab, id,
		probe.Step[*models.Comment]{Kind: kindMergeRequest, Call: func(ctx context.Context) (*models.Comment, error) {
			note, err := a.transport.CreateMergeRequestNote(ctx, iid, text)
			if err != nil {
				return nil, err
			}
			return normalizeNote(note), nil
		}},
		probe.Step[*models.Comment]{Kind: kindIssue, Call: func(ctx context.Context) (*models.Comment, error) {
			note, err := a.transport.CreateIssueNote(ctx, iid, text)
			if err != nil {
				return nil, err
			}
			return normalizeNote(note), nil
		}},
	)
}

// CreateReviewRequest opens a merge request. GitLab accepts several
// reviewers, so every reviewer is requested and none becomes a watcher.
func (a *Adapter) CreateReviewRequest(ctx context.Context, opts models.CreateReviewRequestOptions) (*models.Ticket, error) {
	req := &gitlab.CreateMergeRequestOptions{
		Title:        gitlab.Ptr(opts.Title),
		Description:  gitlab.Ptr(opts.Description),
		SourceBranch: gitlab.Ptr(opts.SourceBranch),
		TargetBranch: gitlab.Ptr(opts.TargetBranch),
	}
	if opts.AssigneeID != "" {
		ids, err := parseUserIDs(opts.AssigneeID)
		if err != nil {
			return nil, err
		}
		req.AssigneeIDs = &ids
	}
	if len(opts.Reviewers) > 0 {
		ids, err := parseUserIDs(opts.Reviewers...)
		if err != nil {
			return nil, err
		}
		req.ReviewerIDs = &ids
	}
	if len(opts.Labels) > 0 {
		req.Labels = labelOptions(opts.Labels)
	}

	mr, err := a.transport.CreateMergeRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	a.log.Info("created merge request", "iid", mr.IID, "source", opts.SourceBranch, "target", opts.TargetBranch)
	return normalizeMergeRequest(mr), nil
}
