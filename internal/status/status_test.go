package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danielolaszy/ticketbridge/pkg/models"
)

func TestServiceNowStates(t *testing.T) {
	testCases := []struct {
		code       string
		wantStatus string
		wantReview models.ReviewState
	}{
		{code: "1", wantStatus: models.StatusNew, wantReview: models.ReviewOpen},
		{code: "2", wantStatus: models.StatusInProgress, wantReview: models.ReviewOpen},
		{code: "3", wantStatus: models.StatusOnHold, wantReview: models.ReviewOpen},
		{code: "6", wantStatus: models.StatusResolved, wantReview: models.ReviewMerged},
		{code: "7", wantStatus: models.StatusClosed, wantReview: models.ReviewClosed},
		{code: "-5", wantStatus: models.StatusPending, wantReview: models.ReviewOpen},
		{code: "42", wantStatus: "42", wantReview: models.ReviewOpen},
		{code: "", wantStatus: "", wantReview: models.ReviewOpen},
	}

	for _, tc := range testCases {
		t.Run("code "+tc.code, func(t *testing.T) {
			assert.Equal(t, tc.wantStatus, ServiceNow(tc.code))
			assert.Equal(t, tc.wantReview, ServiceNowReviewState(tc.code))
		})
	}
}

func TestServiceNowCode(t *testing.T) {
	for code, shared := range serviceNowStates {
		got, ok := ServiceNowCode(shared)
		assert.True(t, ok, shared)
		assert.Equal(t, code, got, "round trip of %s", shared)
	}

	code, ok := ServiceNowCode("Open")
	assert.True(t, ok)
	assert.Equal(t, "1", code)

	_, ok = ServiceNowCode("bogus")
	assert.False(t, ok)
}

func TestServiceNowStateCode(t *testing.T) {
	code, ok := ServiceNowStateCode(TableChangeRequest, "merged")
	assert.True(t, ok)
	assert.Equal(t, "6", code)

	_, ok = ServiceNowStateCode(TableIncident, "merged")
	assert.False(t, ok)

	code, ok = ServiceNowStateCode(TableIncident, "closed")
	assert.True(t, ok)
	assert.Equal(t, "7", code)
}

func TestIsServiceNowReview(t *testing.T) {
	assert.True(t, IsServiceNowReview(TableChangeRequest, "Code Review"))
	assert.False(t, IsServiceNowReview(TableChangeRequest, "code review"))
	assert.False(t, IsServiceNowReview(TableChangeRequest, "Network"))
	assert.False(t, IsServiceNowReview(TableIncident, "Code Review"))
}

func TestJiraReviewState(t *testing.T) {
	testCases := []struct {
		name string
		want models.ReviewState
	}{
		{name: "Done", want: models.ReviewMerged},
		{name: "MERGED", want: models.ReviewMerged},
		{name: "Rejected", want: models.ReviewClosed},
		{name: "Closed", want: models.ReviewClosed},
		{name: "In Review", want: models.ReviewOpen},
		{name: "To Do", want: models.ReviewOpen},
		{name: "", want: models.ReviewOpen},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, JiraReviewState(tc.name))
		})
	}
}

func TestJiraIssue(t *testing.T) {
	assert.Equal(t, models.StatusOpen, JiraIssue("new", "To Do"))
	assert.Equal(t, models.StatusInProgress, JiraIssue("indeterminate", "In Progress"))
	assert.Equal(t, models.StatusClosed, JiraIssue("done", "Done"))
	assert.Equal(t, "Blocked", JiraIssue("", "Blocked"), "unknown category passes the name through")
}

func TestReverseFiltersDropUnknownValues(t *testing.T) {
	filters := map[string]func(string) (string, bool){
		"github":     GitHubFilter,
		"gitlab":     GitLabIssueFilter,
		"servicenow": ServiceNowCode,
		"jira":       JiraFilter,
	}

	for name, filter := range filters {
		t.Run(name, func(t *testing.T) {
			got, ok := filter("bogus")
			assert.False(t, ok)
			assert.Empty(t, got)

			_, ok = filter("open")
			assert.True(t, ok)
		})
	}
}

func TestGitLabStates(t *testing.T) {
	assert.Equal(t, models.StatusOpen, GitLabIssue("opened"))
	assert.Equal(t, models.StatusClosed, GitLabIssue("closed"))
	assert.Equal(t, models.StatusMerged, GitLabMergeRequest("merged"))
	assert.Equal(t, models.StatusOpen, GitLabMergeRequest("locked"))
	assert.Equal(t, "archived", GitLabIssue("archived"))

	assert.Equal(t, models.ReviewMerged, GitLabReviewState("merged"))
	assert.Equal(t, models.ReviewClosed, GitLabReviewState("closed"))
	assert.Equal(t, models.ReviewOpen, GitLabReviewState("opened"))

	state, ok := GitLabIssueFilter("Closed")
	assert.True(t, ok)
	assert.Equal(t, "closed", state)
	_, ok = GitLabIssueFilter("merged")
	assert.False(t, ok, "issues cannot be filtered by merged")

	event, ok := GitLabStateEvent("closed")
	assert.True(t, ok)
	assert.Equal(t, "close", event)
	_, ok = GitLabStateEvent("merged")
	assert.False(t, ok)
}

func TestGitHubPullRequest(t *testing.T) {
	assert.Equal(t, models.ReviewMerged, GitHubPullRequest("closed", true))
	assert.Equal(t, models.ReviewClosed, GitHubPullRequest("closed", false))
	assert.Equal(t, models.ReviewOpen, GitHubPullRequest("open", false))
	assert.Equal(t, models.StatusOpen, GitHubIssue("open"))

	_, ok := GitHubEditState("merged")
	assert.False(t, ok)
}
