package servicenow

import (
	"github.com/danielolaszy/ticketbridge/internal/branch"
	"github.com/danielolaszy/ticketbridge/internal/status"
	"github.com/danielolaszy/ticketbridge/pkg/models"
)

// normalizeRecord converts a row read from table. Timestamps are kept in
// the instance's own format and zone.
func normalizeRecord(table string, rec *Record) *models.Ticket {
	ticket := &models.Ticket{
		ID:          rec.SysID,
		Type:        models.TypeIssue,
		Title:       rec.ShortDescription,
		Description: rec.Description,
		CreatedAt:   rec.SysCreatedOn,
		UpdatedAt:   rec.SysUpdatedOn,
		Status:      status.ServiceNow(rec.State),
		Author:      models.User{ID: rec.SysCreatedBy, Name: rec.SysCreatedBy},
	}
	if rec.AssignedTo != "" {
		ticket.Assignee = &models.User{ID: rec.AssignedTo, Name: rec.AssignedTo}
	}

	if status.IsServiceNowReview(table, rec.Category) {
		ticket.Type = models.TypePullRequest
		ticket.State = status.ServiceNowReviewState(rec.State)
		ticket.SourceBranch, ticket.TargetBranch = branch.Extract(rec.Description)
	}
	return ticket
}

// normalizeWorkNote describes a work note write. The Table API answers with
// the record, so the note is identified by the record and stamped with the
// record's last update.
func normalizeWorkNote(rec *Record, text string) *models.Comment {
	return &models.Comment{
		ID:        rec.SysID,
		Content:   text,
		Author:    models.User{ID: rec.SysUpdatedBy, Name: rec.SysUpdatedBy},
		CreatedAt: rec.SysUpdatedOn,
	}
}
