package status

import "github.com/danielolaszy/ticketbridge/pkg/models"

var gitLabIssueStates = map[string]string{
	"opened": models.StatusOpen,
	"closed": models.StatusClosed,
}

var gitLabMergeRequestStates = map[string]string{
	"opened": models.StatusOpen,
	"closed": models.StatusClosed,
	"merged": models.StatusMerged,
	"locked": models.StatusOpen,
}

// GitLabIssue maps an issue state.
func GitLabIssue(state string) string {
	return lookup(gitLabIssueStates, state)
}

// GitLabMergeRequest maps a merge request state.
func GitLabMergeRequest(state string) string {
	return lookup(gitLabMergeRequestStates, state)
}

// GitLabReviewState reduces a merge request state to the review lifecycle.
// Unknown states count as open.
func GitLabReviewState(state string) models.ReviewState {
	switch GitLabMergeRequest(state) {
	case models.StatusMerged:
		return models.ReviewMerged
	case models.StatusClosed:
		return models.ReviewClosed
	}
	return models.ReviewOpen
}

// GitLabIssueFilter maps a shared status to the issue listing "state"
// parameter. Issues are never merged, so merged has no equivalent.
func GitLabIssueFilter(shared string) (string, bool) {
	switch normalize(shared) {
	case models.StatusOpen:
		return "opened", true
	case models.StatusClosed:
		return "closed", true
	}
	return "", false
}

// GitLabStateEvent maps a shared status to the state event of an edit call.
func GitLabStateEvent(shared string) (string, bool) {
	switch normalize(shared) {
	case models.StatusOpen:
		return "reopen", true
	case models.StatusClosed:
		return "close", true
	}
	return "", false
}
