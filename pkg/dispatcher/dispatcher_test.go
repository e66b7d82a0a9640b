package dispatcher

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/ticketbridge/internal/github"
	"github.com/danielolaszy/ticketbridge/internal/gitlab"
	"github.com/danielolaszy/ticketbridge/internal/jira"
	"github.com/danielolaszy/ticketbridge/internal/servicenow"
	"github.com/danielolaszy/ticketbridge/pkg/metrics"
	"github.com/danielolaszy/ticketbridge/pkg/tracker"
)

func TestNewClientSelectsAdapter(t *testing.T) {
	testCases := []struct {
		name   string
		cfg    tracker.Config
		assert func(t *testing.T, client tracker.Client)
	}{
		{
			name: "GitHub",
			cfg: tracker.Config{
				Type: tracker.GitHub, Owner: "acme", Repo: "api",
				Auth: tracker.Auth{Kind: tracker.AuthToken, Token: "ghp_test"},
			},
			assert: func(t *testing.T, client tracker.Client) {
				assert.IsType(t, &github.Adapter{}, client)
			},
		},
		{
			name: "GitLab",
			cfg: tracker.Config{
				Type: tracker.GitLab, BaseURL: "https://gitlab.example.com", ProjectID: "42",
				Auth: tracker.Auth{Kind: tracker.AuthToken, Token: "glpat-test"},
			},
			assert: func(t *testing.T, client tracker.Client) {
				assert.IsType(t, &gitlab.Adapter{}, client)
			},
		},
		{
			name: "ServiceNow",
			cfg: tracker.Config{
				Type: tracker.ServiceNow, BaseURL: "https://acme.service-now.com",
				Auth: tracker.Auth{Kind: tracker.AuthBasic, Username: "admin", Password: "secret"},
			},
			assert: func(t *testing.T, client tracker.Client) {
				assert.IsType(t, &servicenow.Adapter{}, client)
			},
		},
		{
			name: "Jira",
			cfg: tracker.Config{
				Type: tracker.Jira, BaseURL: "https://acme.atlassian.net", ProjectKey: "OPS",
				Auth: tracker.Auth{Kind: tracker.AuthEmailToken, Email: "ada@example.com", Token: "tok"},
			},
			assert: func(t *testing.T, client tracker.Client) {
				assert.IsType(t, &jira.Adapter{}, client)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(tc.cfg)
			require.NoError(t, err)
			tc.assert(t, client)
		})
	}
}

func TestNewClientInvalidConfiguration(t *testing.T) {
	testCases := []struct {
		name          string
		cfg           tracker.Config
		errorContains string
	}{
		{
			name: "GitLab without project id",
			cfg: tracker.Config{
				Type: tracker.GitLab,
				Auth: tracker.Auth{Kind: tracker.AuthToken, Token: "glpat-test"},
			},
			errorContains: "project_id",
		},
		{
			name: "GitLab without token",
			cfg: tracker.Config{
				Type: tracker.GitLab, ProjectID: "42",
				Auth: tracker.Auth{Kind: tracker.AuthToken},
			},
			errorContains: "auth.token",
		},
		{
			name:          "Unknown type",
			cfg:           tracker.Config{Type: "trello"},
			errorContains: `"trello"`,
		},
		{
			name:          "Missing type",
			cfg:           tracker.Config{},
			errorContains: "unsupported platform type",
		},
		{
			name: "Auth kind of another platform",
			cfg: tracker.Config{
				Type: tracker.Jira, BaseURL: "https://acme.atlassian.net", ProjectKey: "OPS",
				Auth: tracker.Auth{Kind: tracker.AuthBasic, Username: "ada", Password: "pw"},
			},
			errorContains: `"basic"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(tc.cfg)
			assert.Nil(t, client)
			require.ErrorIs(t, err, tracker.ErrInvalidConfiguration)
			assert.Contains(t, err.Error(), tc.errorContains)
		})
	}
}

func TestNewClientWithMetrics(t *testing.T) {
	collector := metrics.NewCollector(prometheus.NewRegistry())
	client, err := NewClient(tracker.Config{
		Type: tracker.GitHub, Owner: "acme", Repo: "api",
		Auth: tracker.Auth{Kind: tracker.AuthToken, Token: "ghp_test"},
	}, WithMetrics(collector))
	require.NoError(t, err)

	_, isAdapter := client.(*github.Adapter)
	assert.False(t, isAdapter, "metrics wraps the adapter")
}
