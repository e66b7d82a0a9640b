// Package gitlab provides the GitLab adapter. Issues and merge requests
// live in separate id spaces, so a bare id is resolved by probing the merge
// request endpoint before the issue endpoint.
package gitlab

import (
	"context"
	"fmt"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/danielolaszy/ticketbridge/internal/logging"
	"github.com/danielolaszy/ticketbridge/pkg/tracker"
)

// Transport is the part of the GitLab REST API the adapter calls, scoped to
// one project. Not-found responses wrap tracker.ErrNotFound.
type Transport interface {
	GetMergeRequest(ctx context.Context, iid int64) (*gitlab.MergeRequest, error)
	GetIssue(ctx context.Context, iid int64) (*gitlab.Issue, error)
	ListIssues(ctx context.Context, opts *gitlab.ListProjectIssuesOptions) ([]*gitlab.Issue, error)
	CreateIssue(ctx context.Context, opts *gitlab.CreateIssueOptions) (*gitlab.Issue, error)
	CreateMergeRequest(ctx context.Context, opts *gitlab.CreateMergeRequestOptions) (*gitlab.MergeRequest, error)
	UpdateMergeRequest(ctx context.Context, iid int64, opts *gitlab.UpdateMergeRequestOptions) (*gitlab.MergeRequest, error)
	UpdateIssue(ctx context.Context, iid int64, opts *gitlab.UpdateIssueOptions) (*gitlab.Issue, error)
	CreateMergeRequestNote(ctx context.Context, iid int64, body string) (*gitlab.Note, error)
	CreateIssueNote(ctx context.Context, iid int64, body string) (*gitlab.Note, error)
}

// SDKTransport implements Transport with client-go.
type SDKTransport struct {
	client  *gitlab.Client
	project string
}

// NewSDKTransport builds a client for the configured project. An empty base
// URL targets gitlab.com; anything else is a self-managed instance.
func NewSDKTransport(cfg tracker.Config) (*SDKTransport, error) {
	options := []gitlab.ClientOptionFunc{gitlab.WithCustomRetryMax(0)}
	if apiURL := apiURL(cfg.BaseURL); apiURL != "" {
		options = append(options, gitlab.WithBaseURL(apiURL))
	}

	client, err := gitlab.NewClient(cfg.Auth.Token, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: creating gitlab client: %v", tracker.ErrInvalidConfiguration, err)
	}

	logging.Debug("gitlab configuration",
		"project", cfg.ProjectID,
		"api_url", client.BaseURL().String(),
		"token", logging.MaskSensitive(cfg.Auth.Token))

	return newSDKTransport(client, cfg.ProjectID), nil
}

func newSDKTransport(client *gitlab.Client, project string) *SDKTransport {
	return &SDKTransport{client: client, project: project}
}

// apiURL returns the v4 API root for a self-managed base URL, or "" for gitlab.com.
func apiURL(baseURL string) string {
	base := strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if base == "" || base == "https://gitlab.com" {
		return ""
	}
	if strings.HasSuffix(base, "/api/v4") {
		return base
	}
	return base + "/api/v4"
}

func (t *SDKTransport) fail(op string, resp *gitlab.Response, err error) error {
	statusCode := 0
	if resp != nil && resp.Response != nil {
		statusCode = resp.StatusCode
	}
	return tracker.TransportFailure(tracker.GitLab, op, statusCode, err)
}

func (t *SDKTransport) GetMergeRequest(ctx context.Context, iid int64) (*gitlab.MergeRequest, error) {
	mr, resp, err := t.client.MergeRequests.GetMergeRequest(t.project, iid, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, t.fail("get merge request", resp, err)
	}
	return mr, nil
}

func (t *SDKTransport) GetIssue(ctx context.Context, iid int64) (*gitlab.Issue, error) {
	issue, resp, err := t.client.Issues.GetIssue(t.project, iid, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, t.fail("get issue", resp, err)
	}
	return issue, nil
}

// ListIssues walks every page of the project issue listing.
func (t *SDKTransport) ListIssues(ctx context.Context, opts *gitlab.ListProjectIssuesOptions) ([]*gitlab.Issue, error) {
	if opts == nil {
		opts = &gitlab.ListProjectIssuesOptions{}
	}
	opts.Page = 1
	opts.PerPage = 100

	var issues []*gitlab.Issue
	for {
		page, resp, err := t.client.Issues.ListProjectIssues(t.project, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, t.fail("list issues", resp, err)
		}

		issues = append(issues, page...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return issues, nil
}

func (t *SDKTransport) CreateIssue(ctx context.Context, opts *gitlab.CreateIssueOptions) (*gitlab.Issue, error) {
	issue, resp, err := t.client.Issues.CreateIssue(t.project, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, t.fail("create issue", resp, err)
	}
	return issue, nil
}

func (t *SDKTransport) CreateMergeRequest(ctx context.Context, opts *gitlab.CreateMergeRequestOptions) (*gitlab.MergeRequest, error) {
	mr, resp, err := t.client.MergeRequests.CreateMergeRequest(t.project, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, t.fail("create merge request", resp, err)
	}
	return mr, nil
}

func (t *SDKTransport) UpdateMergeRequest(ctx context.Context, iid int64, opts *gitlab.UpdateMergeRequestOptions) (*gitlab.MergeRequest, error) {
	mr, resp, err := t.client.MergeRequests.UpdateMergeRequest(t.project, iid, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, t.fail("update merge request", resp, err)
	}
	return mr, nil
}

func (t *SDKTransport) UpdateIssue(ctx context.Context, iid int64, opts *gitlab.UpdateIssueOptions) (*gitlab.Issue, error) {
	issue, resp, err := t.client.Issues.UpdateIssue(t.project, iid, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, t.fail("update issue", resp, err)
	}
	return issue, nil
}

func (t *SDKTransport) CreateMergeRequestNote(ctx context.Context, iid int64, body string) (*gitlab.Note, error) {
	note, resp, err := t.client.Notes.CreateMergeRequestNote(t.project, iid, &gitlab.CreateMergeRequestNoteOptions{
		Body: gitlab.Ptr(body),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, t.fail("create merge request note", resp, err)
	}
	return note, nil
}

func (t *SDKTransport) CreateIssueNote(ctx context.Context, iid int64, body string) (*gitlab.Note, error) {
	note, resp, err := t.client.Notes.CreateIssueNote(t.project, iid, &gitlab.CreateIssueNoteOptions{
		Body: gitlab.Ptr(body),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, t.fail("create issue note", resp, err)
	}
	return note, nil
}
