package status

import (
	"strings"

	"github.com/danielolaszy/ticketbridge/pkg/models"
)

// JiraReviewIssueType is the issue type name marking a review request.
const JiraReviewIssueType = "Review"

// JiraDefaultIssueType is the issue type used for plain tickets.
const JiraDefaultIssueType = "Task"

var jiraCategories = map[string]string{
	"new":           models.StatusOpen,
	"indeterminate": models.StatusInProgress,
	"done":          models.StatusClosed,
}

// JiraIssue maps a status by its category key, falling back to the status
// name when the category is unknown or missing.
func JiraIssue(categoryKey, name string) string {
	if v, ok := jiraCategories[categoryKey]; ok {
		return v
	}
	return name
}

// JiraReviewState derives the review lifecycle from a free-text status name.
// This is a keyword heuristic: "done" or "merged" means merged, "closed" or
// "rejected" means closed, and any other name counts as open.
func JiraReviewState(statusName string) models.ReviewState {
	name := strings.ToLower(statusName)
	switch {
	case strings.Contains(name, "done"), strings.Contains(name, "merged"):
		return models.ReviewMerged
	case strings.Contains(name, "closed"), strings.Contains(name, "rejected"):
		return models.ReviewClosed
	}
	return models.ReviewOpen
}

// JiraFilter maps a shared status to a JQL clause.
func JiraFilter(shared string) (string, bool) {
	switch normalize(shared) {
	case models.StatusOpen, models.StatusNew:
		return `statusCategory = "To Do"`, true
	case models.StatusInProgress:
		return `statusCategory = "In Progress"`, true
	case models.StatusClosed, models.StatusResolved:
		return `statusCategory = Done`, true
	}
	return "", false
}

// IsJiraReview reports whether an issue type name marks a review request.
func IsJiraReview(issueType string) bool {
	return issueType == JiraReviewIssueType
}
