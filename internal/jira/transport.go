// Package jira provides the Jira adapter. Review requests are issues of the
// "Review" type whose description carries the branch label lines.
package jira

import (
	"context"
	"fmt"
	"strings"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/ticketbridge/internal/logging"
	"github.com/danielolaszy/ticketbridge/pkg/tracker"
)

// Transport is the part of the Jira REST API the adapter calls. Not-found
// responses wrap tracker.ErrNotFound.
type Transport interface {
	GetIssue(ctx context.Context, key string) (*jira.Issue, error)
	SearchIssues(ctx context.Context, jql string) ([]jira.Issue, error)
	CreateIssue(ctx context.Context, issue *jira.Issue) (*jira.Issue, error)
	UpdateIssue(ctx context.Context, key string, fields map[string]interface{}) error
	GetTransitions(ctx context.Context, key string) ([]jira.Transition, error)
	DoTransition(ctx context.Context, key, transitionID string) error
	AddComment(ctx context.Context, key, body string) (*jira.Comment, error)
	AddWatcher(ctx context.Context, key, accountID string) error
}

// SDKTransport implements Transport with go-jira.
type SDKTransport struct {
	client *jira.Client
}

// NewSDKTransport builds a client authenticating with the account email and
// an API token.
func NewSDKTransport(cfg tracker.Config) (*SDKTransport, error) {
	tp := jira.BasicAuthTransport{
		Username: cfg.Auth.Email,
		Password: cfg.Auth.Token,
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	client, err := jira.NewClient(tp.Client(), baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: creating jira client: %v", tracker.ErrInvalidConfiguration, err)
	}

	logging.Debug("jira configuration",
		"base_url", baseURL,
		"project", cfg.ProjectKey,
		"email", cfg.Auth.Email,
		"token", logging.MaskSensitive(cfg.Auth.Token))

	return &SDKTransport{client: client}, nil
}

func (t *SDKTransport) fail(op string, resp *jira.Response, err error) error {
	statusCode := 0
	if resp != nil && resp.Response != nil {
		statusCode = resp.StatusCode
	}
	return tracker.TransportFailure(tracker.Jira, op, statusCode, err)
}

func (t *SDKTransport) GetIssue(ctx context.Context, key string) (*jira.Issue, error) {
	issue, resp, err := t.client.Issue.GetWithContext(ctx, key, nil)
	if err != nil {
		return nil, t.fail("get issue", resp, err)
	}
	return issue, nil
}

// SearchIssues collects every page of a JQL search.
func (t *SDKTransport) SearchIssues(ctx context.Context, jql string) ([]jira.Issue, error) {
	var issues []jira.Issue
	err := t.client.Issue.SearchPagesWithContext(ctx, jql, &jira.SearchOptions{MaxResults: 100}, func(issue jira.Issue) error {
		issues = append(issues, issue)
		return nil
	})
	if err != nil {
		return nil, t.fail("search issues", nil, err)
	}
	return issues, nil
}

// CreateIssue creates an issue. The response only carries the id and key.
func (t *SDKTransport) CreateIssue(ctx context.Context, issue *jira.Issue) (*jira.Issue, error) {
	created, resp, err := t.client.Issue.CreateWithContext(ctx, issue)
	if err != nil {
		return nil, t.fail("create issue", resp, err)
	}
	return created, nil
}

// UpdateIssue sets the given fields.
func (t *SDKTransport) UpdateIssue(ctx context.Context, key string, fields map[string]interface{}) error {
	resp, err := t.client.Issue.UpdateIssueWithContext(ctx, key, map[string]interface{}{"fields": fields})
	if err != nil {
		return t.fail("update issue", resp, err)
	}
	return nil
}

func (t *SDKTransport) GetTransitions(ctx context.Context, key string) ([]jira.Transition, error) {
	transitions, resp, err := t.client.Issue.GetTransitionsWithContext(ctx, key)
	if err != nil {
		return nil, t.fail("get transitions", resp, err)
	}
	return transitions, nil
}

func (t *SDKTransport) DoTransition(ctx context.Context, key, transitionID string) error {
	resp, err := t.client.Issue.DoTransitionWithContext(ctx, key, transitionID)
	if err != nil {
		return t.fail("do transition", resp, err)
	}
	return nil
}

func (t *SDKTransport) AddComment(ctx context.Context, key, body string) (*jira.Comment, error) {
	comment, resp, err := t.client.Issue.AddCommentWithContext(ctx, key, &jira.Comment{Body: body})
	if err != nil {
		return nil, t.fail("add comment", resp, err)
	}
	return comment, nil
}

func (t *SDKTransport) AddWatcher(ctx context.Context, key, accountID string) error {
	resp, err := t.client.Issue.AddWatcherWithContext(ctx, key, accountID)
	if err != nil {
		return t.fail("add watcher", resp, err)
	}
	return nil
}
