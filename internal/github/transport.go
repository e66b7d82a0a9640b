// Package github provides the GitHub adapter. Pull requests are issues
// carrying a pull request link, so every record is read through the issues
// API first and upgraded to a pull request when the link is present.
package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"

	"github.com/danielolaszy/ticketbridge/internal/logging"
	"github.com/danielolaszy/ticketbridge/pkg/tracker"
)

// Transport is the part of the GitHub REST API the adapter calls. Not-found
// responses are reported as errors wrapping tracker.ErrNotFound.
type Transport interface {
	GetIssue(ctx context.Context, number int) (*github.Issue, error)
	GetPullRequest(ctx context.Context, number int) (*github.PullRequest, error)
	ListIssues(ctx context.Context, opts *github.IssueListByRepoOptions) ([]*github.Issue, error)
	CreateIssue(ctx context.Context, req *github.IssueRequest) (*github.Issue, error)
	EditIssue(ctx context.Context, number int, req *github.IssueRequest) (*github.Issue, error)
	CreateComment(ctx context.Context, number int, body string) (*github.IssueComment, error)
	CreatePullRequest(ctx context.Context, pr *github.NewPullRequest) (*github.PullRequest, error)
	RequestReviewers(ctx context.Context, number int, reviewers []string) error
	AddAssignees(ctx context.Context, number int, assignees []string) error
	AddLabels(ctx context.Context, number int, labels []string) error
}

// SDKTransport implements Transport with go-github against one repository.
type SDKTransport struct {
	client *github.Client
	owner  string
	repo   string
}

// NewSDKTransport builds an authenticated client for the configured
// repository. An empty or github.com base URL targets the public API;
// anything else is treated as a GitHub Enterprise host.
func NewSDKTransport(cfg tracker.Config) (*SDKTransport, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Auth.Token},
	)
	client := github.NewClient(oauth2.NewClient(context.Background(), ts))

	apiURL := enterpriseAPIURL(cfg.BaseURL)
	if apiURL != "" {
		parsedURL, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid github base url: %v", tracker.ErrInvalidConfiguration, err)
		}
		client.BaseURL = parsedURL
		client.UploadURL = parsedURL
	}

	logging.Debug("github configuration",
		"owner", cfg.Owner,
		"repo", cfg.Repo,
		"api_url", client.BaseURL.String(),
		"token", logging.MaskSensitive(cfg.Auth.Token))

	return newSDKTransport(client, cfg.Owner, cfg.Repo), nil
}

func newSDKTransport(client *github.Client, owner, repo string) *SDKTransport {
	return &SDKTransport{client: client, owner: owner, repo: repo}
}

// enterpriseAPIURL returns the REST endpoint for a GitHub Enterprise base
// URL, or "" for github.com.
func enterpriseAPIURL(baseURL string) string {
	domain := strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	domain = strings.TrimPrefix(strings.TrimPrefix(domain, "https://"), "http://")
	domain = strings.TrimSuffix(domain, "/api/v3")
	if domain == "" || domain == "github.com" || domain == "api.github.com" {
		return ""
	}
	return fmt.Sprintf("https://%s/api/v3/", domain)
}

func (t *SDKTransport) fail(op string, resp *github.Response, err error) error {
	statusCode := 0
	if resp != nil && resp.Response != nil {
		statusCode = resp.StatusCode
	}
	return tracker.TransportFailure(tracker.GitHub, op, statusCode, err)
}

// GetIssue fetches an issue or the issue view of a pull request.
func (t *SDKTransport) GetIssue(ctx context.Context, number int) (*github.Issue, error) {
	issue, resp, err := t.client.Issues.Get(ctx, t.owner, t.repo, number)
	if err != nil {
		return nil, t.fail("get issue", resp, err)
	}
	return issue, nil
}

// GetPullRequest fetches the pull request view carrying branches and merge state.
func (t *SDKTransport) GetPullRequest(ctx context.Context, number int) (*github.PullRequest, error) {
	pr, resp, err := t.client.PullRequests.Get(ctx, t.owner, t.repo, number)
	if err != nil {
		return nil, t.fail("get pull request", resp, err)
	}
	return pr, nil
}

// ListIssues walks every page of the repository issue listing.
func (t *SDKTransport) ListIssues(ctx context.Context, opts *github.IssueListByRepoOptions) ([]*github.Issue, error) {
	if opts == nil {
		opts = &github.IssueListByRepoOptions{}
	}
	opts.ListOptions.PerPage = 100

	var allIssues []*github.Issue
	for {
		issues, resp, err := t.client.Issues.ListByRepo(ctx, t.owner, t.repo, opts)
		if err != nil {
			return nil, t.fail("list issues", resp, err)
		}

		allIssues = append(allIssues, issues...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return allIssues, nil
}

// CreateIssue opens a new issue.
func (t *SDKTransport) CreateIssue(ctx context.Context, req *github.IssueRequest) (*github.Issue, error) {
	issue, resp, err := t.client.Issues.Create(ctx, t.owner, t.repo, req)
	if err != nil {
		return nil, t.fail("create issue", resp, err)
	}
	return issue, nil
}

// EditIssue applies a partial edit to an issue or pull request.
func (t *SDKTransport) EditIssue(ctx context.Context, number int, req *github.IssueRequest) (*github.Issue, error) {
	issue, resp, err := t.client.Issues.Edit(ctx, t.owner, t.repo, number, req)
	if err != nil {
		return nil, t.fail("edit issue", resp, err)
	}
	return issue, nil
}

// CreateComment adds a comment to an issue or pull request conversation.
func (t *SDKTransport) CreateComment(ctx context.Context, number int, body string) (*github.IssueComment, error) {
	comment, resp, err := t.client.Issues.CreateComment(ctx, t.owner, t.repo, number, &github.IssueComment{Body: &body})
	if err != nil {
		return nil, t.fail("create comment", resp, err)
	}
	return comment, nil
}

// CreatePullRequest opens a pull request.
func (t *SDKTransport) CreatePullRequest(ctx context.Context, pr *github.NewPullRequest) (*github.PullRequest, error) {
	created, resp, err := t.client.PullRequests.Create(ctx, t.owner, t.repo, pr)
	if err != nil {
		return nil, t.fail("create pull request", resp, err)
	}
	return created, nil
}

// RequestReviewers asks the given users to review a pull request.
func (t *SDKTransport) RequestReviewers(ctx context.Context, number int, reviewers []string) error {
	_, resp, err := t.client.PullRequests.RequestReviewers(ctx, t.owner, t.repo, number, github.ReviewersRequest{
		Reviewers: reviewers,
	})
	if err != nil {
		return t.fail("request reviewers", resp, err)
	}
	return nil
}

// AddAssignees assigns users to an issue or pull request.
func (t *SDKTransport) AddAssignees(ctx context.Context, number int, assignees []string) error {
	_, resp, err := t.client.Issues.AddAssignees(ctx, t.owner, t.repo, number, assignees)
	if err != nil {
		return t.fail("add assignees", resp, err)
	}
	return nil
}

// AddLabels adds labels; GitHub creates labels that do not exist yet.
func (t *SDKTransport) AddLabels(ctx context.Context, number int, labels []string) error {
	_, resp, err := t.client.Issues.AddLabelsToIssue(ctx, t.owner, t.repo, number, labels)
	if err != nil {
		return t.fail("add labels", resp, err)
	}
	return nil
}
