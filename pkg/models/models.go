// Package models defines the platform-independent ticket shapes every adapter
// produces and consumes.
package models

// TicketType discriminates the two ticket variants.
type TicketType string

const (
	// TypeIssue is a plain issue, incident or task.
	TypeIssue TicketType = "issue"
	// TypePullRequest is a pull request, merge request or review-flavoured change record.
	TypePullRequest TicketType = "pull_request"
)

// Shared status vocabulary. Issue trackers use open/closed, review requests
// use open/closed/merged and the ITSM platform uses the lifecycle values.
const (
	StatusOpen       = "open"
	StatusClosed     = "closed"
	StatusMerged     = "merged"
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusOnHold     = "on_hold"
	StatusResolved   = "resolved"
	StatusPending    = "pending"
)

// ReviewState is the three-way lifecycle of a review request.
type ReviewState string

const (
	ReviewOpen   ReviewState = "open"
	ReviewClosed ReviewState = "closed"
	ReviewMerged ReviewState = "merged"
)

// User identifies a person on the remote platform
type User struct {
	// ID is the platform-native identifier (numeric id, account id, sys_id or username)
	ID string `json:"id"`

	// Name is a human-displayable identity, not necessarily unique
	Name string `json:"name"`
}

// Ticket is a normalized snapshot of one remote record.
//
// The branch fields and State are only set when Type is TypePullRequest.
type Ticket struct {
	// ID is the platform-native identifier as a string
	ID string `json:"id"`

	// Type is derived by the adapter, never supplied by the caller
	Type TicketType `json:"type"`

	Title string `json:"title"`

	// Description is empty when the platform returns none
	Description string `json:"description"`

	// CreatedAt and UpdatedAt are ISO-8601 timestamps in the platform's own precision
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`

	// Status is always a shared vocabulary value, never a raw platform code
	Status string `json:"status"`

	Author   User  `json:"author"`
	Assignee *User `json:"assignee,omitempty"`

	SourceBranch string      `json:"sourceBranch,omitempty"`
	TargetBranch string      `json:"targetBranch,omitempty"`
	State        ReviewState `json:"state,omitempty"`
}

// IsPullRequest reports whether the ticket is the review-request variant.
func (t *Ticket) IsPullRequest() bool {
	return t.Type == TypePullRequest
}

// Comment is a note appended to a ticket. Comments carry no threading or edit history.
type Comment struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Author    User   `json:"author"`
	CreatedAt string `json:"createdAt"`
}

// TicketFilter narrows a ticket listing. Empty fields apply no filter.
type TicketFilter struct {
	Status     string
	AssigneeID string
}

// CreateTicketOptions carries the caller's intent for a new ticket.
type CreateTicketOptions struct {
	Title       string
	Description string
	AssigneeID  string
	Labels      []string
}

// UpdateTicketOptions is a partial update; nil fields are left untouched on the remote record.
type UpdateTicketOptions struct {
	Title       *string
	Description *string
	Status      *string
	AssigneeID  *string
	Labels      *[]string
}

// IsEmpty reports whether the update carries no fields.
func (o UpdateTicketOptions) IsEmpty() bool {
	return o.Title == nil && o.Description == nil && o.Status == nil &&
		o.AssigneeID == nil && o.Labels == nil
}

// CreateReviewRequestOptions carries the caller's intent for a new review request.
type CreateReviewRequestOptions struct {
	Title        string
	Description  string
	SourceBranch string
	TargetBranch string
	AssigneeID   string
	Labels       []string

	// Reviewers lists reviewer identifiers; the first is the primary reviewer
	Reviewers []string
}

// PrimaryReviewer returns the reviewer that becomes the assignee on platforms
// allowing a single assignee, falling back to AssigneeID.
func (o CreateReviewRequestOptions) PrimaryReviewer() string {
	if len(o.Reviewers) > 0 {
		return o.Reviewers[0]
	}
	return o.AssigneeID
}

// SecondaryReviewers returns the reviewers after the primary one.
func (o CreateReviewRequestOptions) SecondaryReviewers() []string {
	if len(o.Reviewers) < 2 {
		return nil
	}
	return o.Reviewers[1:]
}
