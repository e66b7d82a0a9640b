package status

import "github.com/danielolaszy/ticketbridge/pkg/models"

var gitHubStates = map[string]string{
	"open":   models.StatusOpen,
	"closed": models.StatusClosed,
}

// GitHubIssue maps an issue state.
func GitHubIssue(state string) string {
	return lookup(gitHubStates, state)
}

// GitHubPullRequest maps a pull request state; a merged pull request is
// reported as merged regardless of its closed state.
func GitHubPullRequest(state string, merged bool) models.ReviewState {
	if merged {
		return models.ReviewMerged
	}
	if state == "closed" {
		return models.ReviewClosed
	}
	return models.ReviewOpen
}

// GitHubFilter maps a shared status to the issue listing "state" parameter.
func GitHubFilter(shared string) (string, bool) {
	switch normalize(shared) {
	case models.StatusOpen:
		return "open", true
	case models.StatusClosed:
		return "closed", true
	case "all":
		return "all", true
	}
	return "", false
}

// GitHubEditState maps a shared status to the state accepted by an issue edit.
func GitHubEditState(shared string) (string, bool) {
	switch normalize(shared) {
	case models.StatusOpen:
		return "open", true
	case models.StatusClosed:
		return "closed", true
	}
	return "", false
}
