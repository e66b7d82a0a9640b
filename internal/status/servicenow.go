package status

import "github.com/danielolaszy/ticketbridge/pkg/models"

// ServiceNowReviewCategory is the change request category marking a review request.
const ServiceNowReviewCategory = "Code Review"

// ServiceNow table names.
const (
	TableIncident      = "incident"
	TableChangeRequest = "change_request"
)

var serviceNowStates = map[string]string{
	"1":  models.StatusNew,
	"2":  models.StatusInProgress,
	"3":  models.StatusOnHold,
	"6":  models.StatusResolved,
	"7":  models.StatusClosed,
	"-5": models.StatusPending,
}

var serviceNowCodes = map[string]string{
	models.StatusNew:        "1",
	models.StatusOpen:       "1",
	models.StatusInProgress: "2",
	models.StatusOnHold:     "3",
	models.StatusResolved:   "6",
	models.StatusClosed:     "7",
	models.StatusPending:    "-5",
}

// ServiceNow maps a numeric lifecycle code. Unknown codes pass through.
func ServiceNow(code string) string {
	return lookup(serviceNowStates, code)
}

// ServiceNowReviewState reduces a lifecycle code to the review lifecycle:
// resolved counts as merged, closed as closed and everything else as open.
func ServiceNowReviewState(code string) models.ReviewState {
	switch ServiceNow(code) {
	case models.StatusResolved:
		return models.ReviewMerged
	case models.StatusClosed:
		return models.ReviewClosed
	}
	return models.ReviewOpen
}

// ServiceNowCode maps a shared status back to its lifecycle code.
func ServiceNowCode(shared string) (string, bool) {
	code, ok := serviceNowCodes[normalize(shared)]
	return code, ok
}

// ServiceNowStateCode maps a shared status to the lifecycle code written to a
// record of table. Change requests also accept merged, which resolves them.
func ServiceNowStateCode(table, shared string) (string, bool) {
	if table == TableChangeRequest && normalize(shared) == models.StatusMerged {
		return serviceNowCodes[models.StatusResolved], true
	}
	return ServiceNowCode(shared)
}

// IsServiceNowReview reports whether a record from table is a review request.
// Only change requests carrying the review category qualify.
func IsServiceNowReview(table, category string) bool {
	return table == TableChangeRequest && category == ServiceNowReviewCategory
}
