package tracker

import (
	"fmt"
	"strings"
)

// Platform is the tag selecting an adapter.
type Platform string

const (
	GitHub     Platform = "github"
	GitLab     Platform = "gitlab"
	ServiceNow Platform = "servicenow"
	Jira       Platform = "jira"
)

// Platforms lists every supported platform tag.
var Platforms = []Platform{GitHub, GitLab, ServiceNow, Jira}

// AuthKind discriminates the authentication variants.
type AuthKind string

const (
	// AuthToken is a bearer/API token, used by the code-hosting platforms.
	AuthToken AuthKind = "token"
	// AuthBasic is username and password, used by ServiceNow.
	AuthBasic AuthKind = "basic"
	// AuthOAuth is an OAuth bearer access token, used by ServiceNow.
	AuthOAuth AuthKind = "oauth"
	// AuthEmailToken is an account email plus API token, used by Jira.
	AuthEmailToken AuthKind = "email_token"
)

// Auth holds exactly one authentication variant selected by Kind. Fields
// that do not belong to the selected kind are ignored.
type Auth struct {
	Kind     AuthKind `mapstructure:"kind"`
	Token    string   `mapstructure:"token"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	Email    string   `mapstructure:"email"`
}

// Config is the tagged platform configuration consumed once by the
// dispatcher. Type selects the variant; each adapter validates the fields it needs.
type Config struct {
	Type Platform `mapstructure:"type"`

	// BaseURL is the instance URL. Optional for GitHub and GitLab SaaS.
	BaseURL string `mapstructure:"base_url"`

	// Owner and Repo address a GitHub repository
	Owner string `mapstructure:"owner"`
	Repo  string `mapstructure:"repo"`

	// ProjectID is the GitLab numeric id or full path
	ProjectID string `mapstructure:"project_id"`

	// ProjectKey is the Jira project key
	ProjectKey string `mapstructure:"project_key"`

	// RateLimit paces ServiceNow calls in requests per second; 0 disables pacing
	RateLimit float64 `mapstructure:"rate_limit"`

	Auth Auth `mapstructure:"auth"`
}

// Requirements collects missing configuration fields and reports them as
// one InvalidConfiguration error.
type Requirements struct {
	platform Platform
	missing  []string
}

// Require starts a requirements check for the given platform.
func Require(platform Platform) *Requirements {
	return &Requirements{platform: platform}
}

// Field records name as missing when value is blank.
func (r *Requirements) Field(name, value string) *Requirements {
	if strings.TrimSpace(value) == "" {
		r.missing = append(r.missing, name)
	}
	return r
}

// Err returns nil when every required field was present.
func (r *Requirements) Err() error {
	if len(r.missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s config missing required fields: %s",
		ErrInvalidConfiguration, r.platform, strings.Join(r.missing, ", "))
}

// ExpectAuth fails closed when the auth kind is not one of the kinds the
// platform accepts.
func ExpectAuth(platform Platform, auth Auth, allowed ...AuthKind) error {
	for _, kind := range allowed {
		if auth.Kind == kind {
			return nil
		}
	}
	return fmt.Errorf("%w: %s does not support auth kind %q", ErrInvalidConfiguration, platform, auth.Kind)
}
