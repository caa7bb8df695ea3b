package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"example.com/backstage/services/events/internal/models"
)

// EventRepository defines the interface for event persistence
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	CreateBatch(ctx context.Context, events []*models.Event) error
	GetByEventID(ctx context.Context, eventID string) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) (*models.Event, error)
	ListByStatus(ctx context.Context, status models.EventStatus, limit, offset int) ([]*models.Event, error)
	ListPublished(ctx context.Context) ([]*models.Event, error)
	TransitionStatus(ctx context.Context, eventID string, from, to models.EventStatus, actor string, metadata []byte) (*models.Event, error)
}

// eventRepository implements EventRepository
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Create creates a new event
func (r *eventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// CreateBatch creates a batch of events in one transaction
func (r *eventRepository) CreateBatch(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(events).Error
}

// GetByEventID gets an event by its event ID
func (r *eventRepository) GetByEventID(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error
	if err != nil {
		if IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// Update updates an event's content fields
func (r *eventRepository) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// ListByStatus lists events with the given status, newest first
func (r *eventRepository) ListByStatus(ctx context.Context, status models.EventStatus, limit, offset int) ([]*models.Event, error) {
	var events []*models.Event
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ListPublished lists published events ordered by event date
func (r *eventRepository) ListPublished(ctx context.Context) ([]*models.Event, error) {
	var events []*models.Event
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusPublished).
		Order("date ASC, start_time ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// TransitionStatus atomically moves an event from one status to another and
// appends the audit row for the change. The update is conditioned on the
// expected current status, so a concurrent conflicting transition observes
// zero rows affected instead of silently overwriting. Both writes commit
// together or not at all.
func (r *eventRepository) TransitionStatus(ctx context.Context, eventID string, from, to models.EventStatus, actor string, metadata []byte) (*models.Event, error) {
	var updated models.Event

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Event{}).
			Where("event_id = ? AND status = ?", eventID, from).
			Updates(map[string]interface{}{
				"status":     to,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			// Distinguish a missing row from a stale expected status.
			var count int64
			if err := tx.Model(&models.Event{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrStatusConflict
		}

		transition := models.EventTransition{
			EventID:    eventID,
			FromStatus: from,
			ToStatus:   to,
			Actor:      actor,
			Metadata:   metadata,
			CreatedAt:  time.Now(),
		}
		if err := tx.Create(&transition).Error; err != nil {
			return err
		}

		return tx.Where("event_id = ?", eventID).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}
