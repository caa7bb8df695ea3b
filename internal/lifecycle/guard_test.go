package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/backstage/services/events/internal/models"
)

func TestAllowedSelfTransition(t *testing.T) {
	for _, status := range models.Statuses {
		require.True(t, Allowed(status, status), "self-transition must be allowed for %s", status)
	}
}

func TestAllowedEdges(t *testing.T) {
	cases := []struct {
		from models.EventStatus
		to   models.EventStatus
	}{
		{models.StatusDraftScraped, models.StatusPendingDetails},
		{models.StatusDraftScraped, models.StatusRejected},
		{models.StatusDraftManual, models.StatusPendingDetails},
		{models.StatusDraftManual, models.StatusRejected},
		{models.StatusPendingDetails, models.StatusReadyToPublish},
		{models.StatusPendingDetails, models.StatusCanceled},
		{models.StatusPendingDetails, models.StatusRejected},
		{models.StatusReadyToPublish, models.StatusPublished},
		{models.StatusReadyToPublish, models.StatusCanceled},
		{models.StatusReadyToPublish, models.StatusPendingDetails},
		{models.StatusPublished, models.StatusCanceled},
		{models.StatusCanceled, models.StatusPendingDetails},
		{models.StatusRejected, models.StatusPendingDetails},
	}

	allowed := make(map[[2]models.EventStatus]bool)
	for _, c := range cases {
		require.True(t, Allowed(c.from, c.to), "%s -> %s must be allowed", c.from, c.to)
		allowed[[2]models.EventStatus{c.from, c.to}] = true
	}

	// Every pair outside the edge table (and not a self-transition) is denied.
	for _, from := range models.Statuses {
		for _, to := range models.Statuses {
			if from == to || allowed[[2]models.EventStatus{from, to}] {
				continue
			}
			require.False(t, Allowed(from, to), "%s -> %s must be denied", from, to)
		}
	}
}

func TestDraftStatesAreNeverReentered(t *testing.T) {
	for _, from := range models.Statuses {
		for _, to := range []models.EventStatus{models.StatusDraftScraped, models.StatusDraftManual} {
			if from == to {
				continue
			}
			require.False(t, Allowed(from, to), "%s -> %s must be denied", from, to)
		}
	}
}

func TestAllowedTargets(t *testing.T) {
	targets := AllowedTargets(models.StatusPendingDetails)
	require.ElementsMatch(t, []models.EventStatus{
		models.StatusReadyToPublish,
		models.StatusCanceled,
		models.StatusRejected,
	}, targets)

	// The returned slice is a copy; mutating it must not corrupt the graph.
	targets[0] = models.StatusPublished
	require.False(t, Allowed(models.StatusPendingDetails, models.StatusPublished))
}

func TestValidStatus(t *testing.T) {
	for _, status := range models.Statuses {
		require.True(t, ValidStatus(status))
	}
	require.False(t, ValidStatus("ARCHIVED"))
	require.False(t, ValidStatus(""))
}
