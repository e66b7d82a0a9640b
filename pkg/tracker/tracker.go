// Package tracker defines the contract shared by every platform adapter: the
// six ticket operations, the platform configuration and the error taxonomy.
package tracker

import (
	"context"

	"github.com/danielolaszy/ticketbridge/pkg/models"
)

// Client is implemented by one adapter per platform. Every call is an
// independent, stateless translation around one remote call or a small fixed
// sequence of them; nothing is cached between calls.
type Client interface {
	// GetTicket returns one normalized ticket or an error wrapping ErrNotFound.
	GetTicket(ctx context.Context, id string) (*models.Ticket, error)

	// GetTickets lists tickets in the platform's native order. Filter values
	// the platform cannot express are dropped from the query.
	GetTickets(ctx context.Context, filter *models.TicketFilter) ([]models.Ticket, error)

	// CreateTicket creates one record in the platform's primary resource type.
	CreateTicket(ctx context.Context, opts models.CreateTicketOptions) (*models.Ticket, error)

	// UpdateTicket applies only the fields present in opts.
	UpdateTicket(ctx context.Context, id string, opts models.UpdateTicketOptions) (*models.Ticket, error)

	// AddComment appends a comment or note to the ticket.
	AddComment(ctx context.Context, id string, text string) (*models.Comment, error)

	// CreateReviewRequest creates a review-request-shaped record.
	CreateReviewRequest(ctx context.Context, opts models.CreateReviewRequestOptions) (*models.Ticket, error)
}
