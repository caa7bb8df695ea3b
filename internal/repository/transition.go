package repository

import (
	"context"

	"gorm.io/gorm"

	"example.com/backstage/services/events/internal/models"
)

// TransitionRepository defines the interface for the transition audit log
type TransitionRepository interface {
	ListByEvent(ctx context.Context, eventID string) ([]*models.EventTransition, error)
	ListUnprocessed(ctx context.Context, limit int) ([]*models.EventTransition, error)
	MarkProcessed(ctx context.Context, id uint) error
}

// transitionRepository implements TransitionRepository
type transitionRepository struct {
	db *gorm.DB
}

// NewTransitionRepository creates a new transition repository
func NewTransitionRepository(db *gorm.DB) TransitionRepository {
	return &transitionRepository{db: db}
}

// ListByEvent lists the transition log for an event in insertion order
func (r *transitionRepository) ListByEvent(ctx context.Context, eventID string) ([]*models.EventTransition, error) {
	var transitions []*models.EventTransition
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("id ASC").
		Find(&transitions).Error
	if err != nil {
		return nil, err
	}
	return transitions, nil
}

// ListUnprocessed lists transitions the worker has not fanned out yet
func (r *transitionRepository) ListUnprocessed(ctx context.Context, limit int) ([]*models.EventTransition, error) {
	var transitions []*models.EventTransition
	err := r.db.WithContext(ctx).
		Where("processed = ?", false).
		Order("id ASC").
		Limit(limit).
		Find(&transitions).Error
	if err != nil {
		return nil, err
	}
	return transitions, nil
}

// MarkProcessed marks a transition as processed
func (r *transitionRepository) MarkProcessed(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.EventTransition{}).
		Where("id = ?", id).
		Update("processed", true).
		Error
}
