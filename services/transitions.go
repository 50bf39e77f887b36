package services

import "trxflow/models"

// validTransitions is the complete state machine. Any pair not listed here is
// rejected; REJECTED and EXECUTED have no outgoing edges.
var validTransitions = map[models.TransactionStatus][]models.TransactionStatus{
	models.StatusDraft:           {models.StatusPendingApproval},
	models.StatusPendingApproval: {models.StatusApproved, models.StatusRejected},
	models.StatusApproved:        {models.StatusExecuted},
	models.StatusRejected:        {},
	models.StatusExecuted:        {},
}

// CanTransition reports whether from -> to is an edge of the state machine.
func CanTransition(from, to models.TransactionStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.TransactionStatus) bool {
	next, known := validTransitions[status]
	return known && len(next) == 0
}
