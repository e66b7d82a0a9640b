package github

import (
	"strconv"
	"time"

	"github.com/google/go-github/v41/github"

	"github.com/danielolaszy/ticketbridge/internal/status"
	"github.com/danielolaszy/ticketbridge/pkg/models"
)

// isPullRequest reports whether an issues API record is a pull request.
func isPullRequest(issue *github.Issue) bool {
	return issue.PullRequestLinks != nil
}

func normalizeIssue(issue *github.Issue) *models.Ticket {
	return &models.Ticket{
		ID:          strconv.Itoa(issue.GetNumber()),
		Type:        models.TypeIssue,
		Title:       issue.GetTitle(),
		Description: issue.GetBody(),
		CreatedAt:   timestamp(issue.CreatedAt),
		UpdatedAt:   timestamp(issue.UpdatedAt),
		Status:      status.GitHubIssue(issue.GetState()),
		Author:      normalizeUser(issue.User),
		Assignee:    optionalUser(issue.Assignee),
	}
}

// normalizeListedPullRequest builds the pull request variant from an issue
// listing entry. Listings carry no branch names or merge flag.
func normalizeListedPullRequest(issue *github.Issue) *models.Ticket {
	ticket := normalizeIssue(issue)
	ticket.Type = models.TypePullRequest
	ticket.State = status.GitHubPullRequest(issue.GetState(), false)
	ticket.Status = string(ticket.State)
	return ticket
}

func normalizePullRequest(pr *github.PullRequest) *models.Ticket {
	state := status.GitHubPullRequest(pr.GetState(), pr.GetMerged() || pr.MergedAt != nil)
	return &models.Ticket{
		ID:           strconv.Itoa(pr.GetNumber()),
		Type:         models.TypePullRequest,
		Title:        pr.GetTitle(),
		Description:  pr.GetBody(),
		CreatedAt:    timestamp(pr.CreatedAt),
		UpdatedAt:    timestamp(pr.UpdatedAt),
		Status:       string(state),
		Author:       normalizeUser(pr.User),
		Assignee:     optionalUser(pr.Assignee),
		SourceBranch: pr.GetHead().GetRef(),
		TargetBranch: pr.GetBase().GetRef(),
		State:        state,
	}
}

func normalizeComment(comment *github.IssueComment) *models.Comment {
	return &models.Comment{
		ID:        strconv.FormatInt(comment.GetID(), 10),
		Content:   comment.GetBody(),
		Author:    normalizeUser(comment.User),
		CreatedAt: timestamp(comment.CreatedAt),
	}
}

func normalizeUser(user *github.User) models.User {
	if user == nil {
		return models.User{}
	}
	return models.User{
		ID:   strconv.FormatInt(user.GetID(), 10),
		Name: user.GetLogin(),
	}
}

func optionalUser(user *github.User) *models.User {
	if user == nil {
		return nil
	}
	u := normalizeUser(user)
	return &u
}

func timestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
