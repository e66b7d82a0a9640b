package jira

import (
	"time"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/ticketbridge/internal/branch"
	"github.com/danielolaszy/ticketbridge/internal/status"
	"github.com/danielolaszy/ticketbridge/pkg/models"
)

// timeLayout is the layout Jira uses for issue timestamps.
const timeLayout = "2006-01-02T15:04:05.000-0700"

func normalizeIssue(issue *jira.Issue) *models.Ticket {
	ticket := &models.Ticket{
		ID:   issue.Key,
		Type: models.TypeIssue,
	}

	fields := issue.Fields
	if fields == nil {
		return ticket
	}

	ticket.Title = fields.Summary
	ticket.Description = fields.Description
	ticket.CreatedAt = timestamp(fields.Created)
	ticket.UpdatedAt = timestamp(fields.Updated)

	var statusName string
	if fields.Status != nil {
		statusName = fields.Status.Name
		ticket.Status = status.JiraIssue(fields.Status.StatusCategory.Key, statusName)
	}

	switch {
	case fields.Reporter != nil:
		ticket.Author = user(fields.Reporter)
	case fields.Creator != nil:
		ticket.Author = user(fields.Creator)
	}
	if fields.Assignee != nil {
		a := user(fields.Assignee)
		ticket.Assignee = &a
	}

	if status.IsJiraReview(fields.Type.Name) {
		ticket.Type = models.TypePullRequest
		ticket.State = status.JiraReviewState(statusName)
		ticket.SourceBranch, ticket.TargetBranch = branch.Extract(fields.Description)
	}
	return ticket
}

func normalizeComment(comment *jira.Comment) *models.Comment {
	return &models.Comment{
		ID:        comment.ID,
		Content:   comment.Body,
		Author:    user(&comment.Author),
		CreatedAt: comment.Created,
	}
}

// user prefers the Cloud account id and falls back to the Server user key.
func user(u *jira.User) models.User {
	id := u.AccountID
	if id == "" {
		id = u.Key
	}
	if id == "" {
		id = u.Name
	}

	name := u.DisplayName
	if name == "" {
		name = u.Name
	}
	return models.User{ID: id, Name: name}
}

func timestamp(t jira.Time) string {
	tt := time.Time(t)
	if tt.IsZero() {
		return ""
	}
	return tt.Format(timeLayout)
}
