package gitlab

import (
	"strconv"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/danielolaszy/ticketbridge/internal/status"
	"github.com/danielolaszy/ticketbridge/pkg/models"
)

func normalizeIssue(issue *gitlab.Issue) *models.Ticket {
	ticket := &models.Ticket{
		ID:          formatID(int64(issue.IID)),
		Type:        models.TypeIssue,
		Title:       issue.Title,
		Description: issue.Description,
		CreatedAt:   timestamp(issue.CreatedAt),
		UpdatedAt:   timestamp(issue.UpdatedAt),
		Status:      status.GitLabIssue(issue.State),
	}
	if issue.Author != nil {
		ticket.Author = user(int64(issue.Author.ID), issue.Author.Username)
	}
	switch {
	case issue.Assignee != nil:
		a := user(int64(issue.Assignee.ID), issue.Assignee.Username)
		ticket.Assignee = &a
	case len(issue.Assignees) > 0 && issue.Assignees[0] != nil:
		a := user(int64(issue.Assignees[0].ID), issue.Assignees[0].Username)
		ticket.Assignee = &a
	}
	return ticket
}

func normalizeMergeRequest(mr *gitlab.MergeRequest) *models.Ticket {
	state := status.GitLabReviewState(mr.State)
	ticket := &models.Ticket{
		ID:           formatID(int64(mr.IID)),
		Type:         models.TypePullRequest,
		Title:        mr.Title,
		Description:  mr.Description,
		CreatedAt:    timestamp(mr.CreatedAt),
		UpdatedAt:    timestamp(mr.UpdatedAt),
		Status:       status.GitLabMergeRequest(mr.State),
		SourceBranch: mr.SourceBranch,
		TargetBranch: mr.TargetBranch,
		State:        state,
	}
	if mr.Author != nil {
		ticket.Author = user(int64(mr.Author.ID), mr.Author.Username)
	}
	if mr.Assignee != nil {
		a := user(int64(mr.Assignee.ID), mr.Assignee.Username)
		ticket.Assignee = &a
	}
	return ticket
}

func normalizeNote(note *gitlab.Note) *models.Comment {
	return &models.Comment{
		ID:        formatID(int64(note.ID)),
		Content:   note.Body,
		Author:    user(int64(note.Author.ID), note.Author.Username),
		CreatedAt: timestamp(note.CreatedAt),
	}
}

func user(id int64, username string) models.User {
	return models.User{ID: formatID(id), Name: username}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func timestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}
