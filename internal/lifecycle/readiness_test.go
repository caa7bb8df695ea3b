package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/backstage/services/events/internal/models"
)

func completeEvent() *models.Event {
	return &models.Event{
		EventID:   "7c9d2f6a-1f7e-4f9d-9f3a-2a4f8f0f4242",
		Title:     "Open Air Night",
		Date:      "2026-09-12",
		StartTime: "20:00",
		EndTime:   "23:30",
		VenueName: "Warehouse 12",
		VenueCity: "Hamburg",
		Artists:   []byte(`["DJ Example"]`),
		Status:    models.StatusPendingDetails,
	}
}

func TestCheckPublishReadinessComplete(t *testing.T) {
	result := CheckPublishReadiness(completeEvent())

	require.True(t, result.Ready)
	require.Empty(t, result.MissingFields)
	require.Empty(t, result.Warnings)
}

func TestCheckPublishReadinessMissingFieldsKeepOrder(t *testing.T) {
	event := completeEvent()
	event.Date = ""
	event.VenueCity = ""

	result := CheckPublishReadiness(event)

	require.False(t, result.Ready)
	require.Equal(t, []string{"date", "venue_city"}, result.MissingFields)
}

func TestCheckPublishReadinessAllMissing(t *testing.T) {
	result := CheckPublishReadiness(&models.Event{})

	require.False(t, result.Ready)
	require.Equal(t, []string{"title", "date", "start_time", "venue_name", "venue_city"}, result.MissingFields)
}

func TestCheckPublishReadinessWhitespaceCountsAsMissing(t *testing.T) {
	event := completeEvent()
	event.VenueName = "   "

	result := CheckPublishReadiness(event)

	require.False(t, result.Ready)
	require.Equal(t, []string{"venue_name"}, result.MissingFields)
}

func TestCheckPublishReadinessEmptyArtistsOnlyWarns(t *testing.T) {
	event := completeEvent()
	event.Artists = []byte(`[]`)

	result := CheckPublishReadiness(event)

	require.True(t, result.Ready, "empty artist list must not block publication")
	require.NotEmpty(t, result.Warnings)
}
