package lifecycle

import (
	"encoding/json"
	"strings"

	"example.com/backstage/services/events/internal/models"
)

// Readiness is the result of a publish-readiness check
type Readiness struct {
	Ready         bool     `json:"ready"`
	MissingFields []string `json:"missing_fields"`
	Warnings      []string `json:"warnings,omitempty"`
}

// CheckPublishReadiness reports whether an event carries enough data to be
// promoted toward publication. Required fields are checked in a fixed order.
// The check is advisory: callers gate the PENDING_DETAILS -> READY_TO_PUBLISH
// move on it, the transition executor does not.
func CheckPublishReadiness(ev *models.Event) Readiness {
	required := []struct {
		name  string
		value string
	}{
		{"title", ev.Title},
		{"date", ev.Date},
		{"start_time", ev.StartTime},
		{"venue_name", ev.VenueName},
		{"venue_city", ev.VenueCity},
	}

	result := Readiness{MissingFields: []string{}}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			result.MissingFields = append(result.MissingFields, field.name)
		}
	}
	result.Ready = len(result.MissingFields) == 0

	// An empty artist list is flagged but deliberately does not block
	// publication.
	if !hasArtists(ev.Artists) {
		result.Warnings = append(result.Warnings, "artists list is empty")
	}

	return result
}

func hasArtists(raw []byte) bool {
	if len(raw) == 0 {
		return false
	}
	var artists []string
	if err := json.Unmarshal(raw, &artists); err != nil {
		return false
	}
	return len(artists) > 0
}
