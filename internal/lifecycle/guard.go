package lifecycle

import (
	"example.com/backstage/services/events/internal/models"
)

// transitions is the legal status graph: current status to the set of
// statuses reachable from it. Built once, never mutated. DRAFT_SCRAPED and
// DRAFT_MANUAL are entered only at creation, so no edge leads back to them.
var transitions = map[models.EventStatus][]models.EventStatus{
	models.StatusDraftScraped: {
		models.StatusPendingDetails,
		models.StatusRejected,
	},
	models.StatusDraftManual: {
		models.StatusPendingDetails,
		models.StatusRejected,
	},
	models.StatusPendingDetails: {
		models.StatusReadyToPublish,
		models.StatusCanceled,
		models.StatusRejected,
	},
	models.StatusReadyToPublish: {
		models.StatusPublished,
		models.StatusCanceled,
		models.StatusPendingDetails,
	},
	models.StatusPublished: {
		models.StatusCanceled,
	},
	models.StatusCanceled: {
		models.StatusPendingDetails,
	},
	models.StatusRejected: {
		models.StatusPendingDetails,
	},
}

// Allowed reports whether an event may move from current to target.
// A self-transition is always permitted and treated as a no-op by callers.
func Allowed(current, target models.EventStatus) bool {
	if current == target {
		return true
	}
	for _, next := range transitions[current] {
		if next == target {
			return true
		}
	}
	return false
}

// AllowedTargets returns the statuses reachable from current, excluding
// the self-transition.
func AllowedTargets(current models.EventStatus) []models.EventStatus {
	next := transitions[current]
	out := make([]models.EventStatus, len(next))
	copy(out, next)
	return out
}

// ValidStatus reports whether s is a member of the fixed status set.
// Unknown statuses are rejected at the API boundary, never inside the guard.
func ValidStatus(s models.EventStatus) bool {
	_, ok := transitions[s]
	return ok
}
