package models

import (
	"time"

	"gorm.io/gorm"
)

// EventStatus defines the lifecycle status of an event
type EventStatus string

const (
	// StatusDraftScraped represents a draft created by the scraper
	StatusDraftScraped EventStatus = "DRAFT_SCRAPED"
	// StatusDraftManual represents a draft created by an admin
	StatusDraftManual EventStatus = "DRAFT_MANUAL"
	// StatusRejected represents an event rejected during review
	StatusRejected EventStatus = "REJECTED"
	// StatusPendingDetails represents an event accepted for review but still incomplete
	StatusPendingDetails EventStatus = "PENDING_DETAILS"
	// StatusReadyToPublish represents an event cleared for publication
	StatusReadyToPublish EventStatus = "READY_TO_PUBLISH"
	// StatusPublished represents an event visible on the public feed
	StatusPublished EventStatus = "PUBLISHED"
	// StatusCanceled represents a canceled event
	StatusCanceled EventStatus = "CANCELED"
)

// Statuses lists every lifecycle status
var Statuses = []EventStatus{
	StatusDraftScraped,
	StatusDraftManual,
	StatusRejected,
	StatusPendingDetails,
	StatusReadyToPublish,
	StatusPublished,
	StatusCanceled,
}

// Event represents an event in the database
type Event struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventID     string         `gorm:"uniqueIndex" json:"event_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Date        string         `json:"date"`
	StartTime   string         `json:"start_time"`
	EndTime     string         `json:"end_time"`
	VenueID     *string        `gorm:"index" json:"venue_id"`
	VenueName   string         `json:"venue_name"`
	VenueCity   string         `json:"venue_city"`
	Artists     []byte         `json:"artists"`
	ImageURL    string         `json:"image_url"`
	SourceURL   string         `json:"source_url"`
	Status      EventStatus    `gorm:"index" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// TableName sets the table name for the Event model
func (Event) TableName() string {
	return "events"
}

// EventTransition represents one executed status change in the audit log.
// Rows are append-only and never updated except for the processed flag.
type EventTransition struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	EventID    string      `gorm:"index" json:"event_id"`
	FromStatus EventStatus `json:"from_status"`
	ToStatus   EventStatus `json:"to_status"`
	Actor      string      `json:"actor"`
	Metadata   []byte      `gorm:"type:jsonb" json:"metadata"`
	Processed  bool        `gorm:"index" json:"processed"`
	CreatedAt  time.Time   `json:"created_at"`
}

// TableName sets the table name for the EventTransition model
func (EventTransition) TableName() string {
	return "event_transitions"
}
