package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/ticketbridge/pkg/metrics"
	"github.com/danielolaszy/ticketbridge/pkg/models"
	"github.com/danielolaszy/ticketbridge/pkg/tracker"
)

// MockClient implements tracker.Client for testing
type MockClient struct {
	GetTicketFunc           func(string) (*models.Ticket, error)
	GetTicketsFunc          func(*models.TicketFilter) ([]models.Ticket, error)
	CreateTicketFunc        func(models.CreateTicketOptions) (*models.Ticket, error)
	UpdateTicketFunc        func(string, models.UpdateTicketOptions) (*models.Ticket, error)
	AddCommentFunc          func(string, string) (*models.Comment, error)
	CreateReviewRequestFunc func(models.CreateReviewRequestOptions) (*models.Ticket, error)
}

func (m *MockClient) GetTicket(_ context.Context, id string) (*models.Ticket, error) {
	if m.GetTicketFunc != nil {
		return m.GetTicketFunc(id)
	}
	return nil, errors.New("GetTicket not implemented")
}

func (m *MockClient) GetTickets(_ context.Context, filter *models.TicketFilter) ([]models.Ticket, error) {
	if m.GetTicketsFunc != nil {
		return m.GetTicketsFunc(filter)
	}
	return nil, errors.New("GetTickets not implemented")
}

func (m *MockClient) CreateTicket(_ context.Context, opts models.CreateTicketOptions) (*models.Ticket, error) {
	if m.CreateTicketFunc != nil {
		return m.CreateTicketFunc(opts)
	}
	return nil, errors.New("CreateTicket not implemented")
}

func (m *MockClient) UpdateTicket(_ context.Context, id string, opts models.UpdateTicketOptions) (*models.Ticket, error) {
	if m.UpdateTicketFunc != nil {
		return m.UpdateTicketFunc(id, opts)
	}
	return nil, errors.New("UpdateTicket not implemented")
}

func (m *MockClient) AddComment(_ context.Context, id, text string) (*models.Comment, error) {
	if m.AddCommentFunc != nil {
		return m.AddCommentFunc(id, text)
	}
	return nil, errors.New("AddComment not implemented")
}

func (m *MockClient) CreateReviewRequest(_ context.Context, opts models.CreateReviewRequestOptions) (*models.Ticket, error) {
	if m.CreateReviewRequestFunc != nil {
		return m.CreateReviewRequestFunc(opts)
	}
	return nil, errors.New("CreateReviewRequest not implemented")
}

// memoryStore records secrets instead of touching the system keyring.
type memoryStore map[string]string

func (s memoryStore) Set(key, value string) error {
	s[key] = value
	return nil
}

// execute runs the command tree against client and returns stdout.
func execute(t *testing.T, client tracker.Client, args ...string) (string, error) {
	t.Helper()
	c := &cli{
		connect: func(context.Context) (tracker.Client, error) { return client, nil },
		secrets: memoryStore{},
	}
	root := c.rootCmd()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGetPrintsJSON(t *testing.T) {
	mock := &MockClient{
		GetTicketFunc: func(id string) (*models.Ticket, error) {
			return &models.Ticket{
				ID:           id,
				Type:         models.TypePullRequest,
				Title:        "Cache layer",
				Status:       models.StatusOpen,
				State:        models.ReviewOpen,
				SourceBranch: "feature/cache",
				TargetBranch: "main",
				Author:       models.User{ID: "1", Name: "octocat"},
			}, nil
		},
	}

	out, err := execute(t, mock, "get", "42")
	require.NoError(t, err)

	var ticket models.Ticket
	require.NoError(t, json.Unmarshal([]byte(out), &ticket))
	assert.Equal(t, "42", ticket.ID)
	assert.Equal(t, "feature/cache", ticket.SourceBranch)
	assert.Contains(t, out, `"sourceBranch": "feature/cache"`)
}

func TestGetNotFound(t *testing.T) {
	mock := &MockClient{
		GetTicketFunc: func(id string) (*models.Ticket, error) {
			return nil, tracker.NotFound(tracker.GitLab, id)
		},
	}

	_, err := execute(t, mock, "get", "999999")
	assert.True(t, tracker.IsNotFound(err))
}

func TestListPassesFilter(t *testing.T) {
	var got *models.TicketFilter
	mock := &MockClient{
		GetTicketsFunc: func(filter *models.TicketFilter) ([]models.Ticket, error) {
			got = filter
			return []models.Ticket{{ID: "1"}, {ID: "2"}}, nil
		},
	}

	out, err := execute(t, mock, "list", "--status", "open", "--assignee", "1001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.TicketFilter{Status: "open", AssigneeID: "1001"}, *got)

	var tickets []models.Ticket
	require.NoError(t, json.Unmarshal([]byte(out), &tickets))
	assert.Len(t, tickets, 2)
}

func TestCreate(t *testing.T) {
	mock := &MockClient{
		CreateTicketFunc: func(opts models.CreateTicketOptions) (*models.Ticket, error) {
			assert.Equal(t, models.CreateTicketOptions{
				Title:       "Disk full",
				Description: "on db-1",
				AssigneeID:  "7",
				Labels:      []string{"ops", "p1"},
			}, opts)
			return &models.Ticket{ID: "INC0010001"}, nil
		},
	}

	_, err := execute(t, mock, "create", "--title", "Disk full", "--description", "on db-1",
		"--assignee", "7", "--label", "ops", "--label", "p1")
	require.NoError(t, err)

	_, err = execute(t, mock, "create", "--description", "no title")
	assert.Error(t, err)
}

func TestUpdateSendsOnlyChangedFlags(t *testing.T) {
	testCases := []struct {
		name  string
		args  []string
		check func(t *testing.T, opts models.UpdateTicketOptions)
	}{
		{
			name: "Status only",
			args: []string{"update", "7", "--status", "closed"},
			check: func(t *testing.T, opts models.UpdateTicketOptions) {
				require.NotNil(t, opts.Status)
				assert.Equal(t, "closed", *opts.Status)
				assert.Nil(t, opts.Title)
				assert.Nil(t, opts.Description)
				assert.Nil(t, opts.AssigneeID)
				assert.Nil(t, opts.Labels)
			},
		},
		{
			name: "Explicit empty assignee",
			args: []string{"update", "7", "--assignee", ""},
			check: func(t *testing.T, opts models.UpdateTicketOptions) {
				require.NotNil(t, opts.AssigneeID)
				assert.Equal(t, "", *opts.AssigneeID)
				assert.Nil(t, opts.Status)
			},
		},
		{
			name: "Title and labels",
			args: []string{"update", "7", "--title", "Renamed", "--label", "a", "--label", "b"},
			check: func(t *testing.T, opts models.UpdateTicketOptions) {
				require.NotNil(t, opts.Title)
				assert.Equal(t, "Renamed", *opts.Title)
				require.NotNil(t, opts.Labels)
				assert.Equal(t, []string{"a", "b"}, *opts.Labels)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &MockClient{
				UpdateTicketFunc: func(id string, opts models.UpdateTicketOptions) (*models.Ticket, error) {
					assert.Equal(t, "7", id)
					tc.check(t, opts)
					return &models.Ticket{ID: id}, nil
				},
			}
			_, err := execute(t, mock, tc.args...)
			require.NoError(t, err)
		})
	}
}

func TestUpdateWithoutFlags(t *testing.T) {
	_, err := execute(t, &MockClient{}, "update", "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")
}

func TestComment(t *testing.T) {
	mock := &MockClient{
		AddCommentFunc: func(id, text string) (*models.Comment, error) {
			return &models.Comment{ID: "c1", Content: text}, nil
		},
	}

	out, err := execute(t, mock, "comment", "CHG0030001", "Deployed to staging")
	require.NoError(t, err)
	assert.Contains(t, out, `"content": "Deployed to staging"`)
}

func TestReview(t *testing.T) {
	mock := &MockClient{
		CreateReviewRequestFunc: func(opts models.CreateReviewRequestOptions) (*models.Ticket, error) {
			assert.Equal(t, "feature/cache", opts.SourceBranch)
			assert.Equal(t, "main", opts.TargetBranch)
			assert.Equal(t, []string{"alice", "bob"}, opts.Reviewers)
			assert.Equal(t, "alice", opts.PrimaryReviewer())
			return &models.Ticket{ID: "!5", Type: models.TypePullRequest}, nil
		},
	}

	_, err := execute(t, mock, "review", "--title", "Cache layer", "--source", "feature/cache",
		"--target", "main", "--reviewer", "alice", "--reviewer", "bob")
	require.NoError(t, err)

	_, err = execute(t, mock, "review", "--title", "Cache layer", "--source", "feature/cache")
	assert.Error(t, err, "target is required")
}

func TestSecretSet(t *testing.T) {
	store := memoryStore{}
	c := &cli{secrets: store}
	root := c.rootCmd()
	root.SetIn(strings.NewReader("glpat-secret\n"))
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"secret", "set", "gitlab-token"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "glpat-secret", store["gitlab-token"])
}

func TestRunWritesMetricsTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticketbridge.prom")
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	mock := &MockClient{
		GetTicketFunc: func(id string) (*models.Ticket, error) {
			return nil, tracker.NotFound(tracker.Jira, id)
		},
	}

	c := &cli{
		secrets: memoryStore{},
		connect: func(context.Context) (tracker.Client, error) {
			return collector.Wrap(tracker.Jira, mock), nil
		},
	}
	root := c.rootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--metrics-textfile", path, "get", "OPS-404"})
	c.registry = registry

	err := root.Execute()
	assert.True(t, tracker.IsNotFound(err))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `ticketbridge_tracker_calls_total{operation="get_ticket",outcome="not_found",platform="jira"} 1`)
}
