package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestResolve(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{
		{Key: "gitlab-token", Data: []byte("glpat-secret")},
	})
	resolver := NewResolverWithKeyring(ring, fakeEnv(map[string]string{"JIRA_TOKEN": "jira-secret"}))

	testCases := []struct {
		name          string
		value         string
		want          string
		errorContains string
	}{
		{name: "Literal", value: "plain-token", want: "plain-token"},
		{name: "Empty", value: "", want: ""},
		{name: "Environment", value: "env:JIRA_TOKEN", want: "jira-secret"},
		{name: "Missing environment", value: "env:NOPE", errorContains: "NOPE is not set"},
		{name: "Keyring", value: "keyring:gitlab-token", want: "glpat-secret"},
		{name: "Missing keyring item", value: "keyring:absent", errorContains: `"absent"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolver.Resolve(tc.value)
			if tc.errorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSetThenResolve(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	resolver := NewResolverWithKeyring(ring, fakeEnv(nil))

	require.NoError(t, resolver.Set("servicenow-password", "hunter2"))

	got, err := resolver.Resolve("keyring:servicenow-password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}
