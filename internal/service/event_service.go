package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/backstage/services/events/internal/cache"
	"example.com/backstage/services/events/internal/lifecycle"
	"example.com/backstage/services/events/internal/messaging"
	"example.com/backstage/services/events/internal/metrics"
	"example.com/backstage/services/events/internal/models"
	"example.com/backstage/services/events/internal/repository"
	"example.com/backstage/services/events/internal/search"
	"example.com/backstage/services/events/internal/tracing"
)

// SystemActor identifies automated transitions in the audit log
const SystemActor = "system"

// feedCacheKey is the Redis key holding the published feed
const feedCacheKey = "events:feed:published"

// EventService handles event curation business logic
type EventService struct {
	eventRepo repository.EventRepository
	trRepo    repository.TransitionRepository
	cache     *cache.RedisCache
	elastic   *search.ElasticClient
	bus       messaging.ServiceBusClient
	tracer    tracing.Tracer
	feedTTL   time.Duration
}

// NewEventService creates a new event service
func NewEventService(
	db *gorm.DB,
	redisCache *cache.RedisCache,
	elasticClient *search.ElasticClient,
	bus messaging.ServiceBusClient,
	tracer tracing.Tracer,
	feedTTL time.Duration,
) *EventService {
	return &EventService{
		eventRepo: repository.NewEventRepository(db),
		trRepo:    repository.NewTransitionRepository(db),
		cache:     redisCache,
		elastic:   elasticClient,
		bus:       bus,
		tracer:    tracer,
		feedTTL:   feedTTL,
	}
}

// EventInput carries the content fields of an event for create and update
// operations. Status is never part of it; status only changes via Transition.
type EventInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	VenueID     *string  `json:"venue_id"`
	VenueName   string   `json:"venue_name"`
	VenueCity   string   `json:"venue_city"`
	Artists     []string `json:"artists"`
	ImageURL    string   `json:"image_url"`
	SourceURL   string   `json:"source_url"`
}

// PublishNotification is the message fanned out when an event is published
type PublishNotification struct {
	EventID   string `json:"event_id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	VenueName string `json:"venue_name"`
	VenueCity string `json:"venue_city"`
}

// Transition executes one status change atomically with its audit record.
//
// A request where the expected status equals the target is a no-op and
// returns (nil, nil) without touching storage. A move outside the allowed
// status graph fails with *InvalidTransitionError. The status update is
// conditioned on the expected current status, so a concurrent conflicting
// caller gets ErrStatusConflict instead of silently losing its read.
func (s *EventService) Transition(ctx context.Context, eventID string, expected, target models.EventStatus, actor string, metadata json.RawMessage) (*models.Event, error) {
	txn := s.tracer.StartTransaction("event-transition")
	defer s.tracer.EndTransaction(txn)

	timer := prometheus.NewTimer(metrics.TransitionDuration)
	defer timer.ObserveDuration()

	if actor == "" {
		actor = SystemActor
	}

	if expected == target {
		metrics.TransitionsTotal.WithLabelValues(string(expected), string(target), metrics.OutcomeNoop).Inc()
		return nil, nil
	}

	if !lifecycle.Allowed(expected, target) {
		err := &InvalidTransitionError{From: expected, To: target}
		s.tracer.RecordError(txn, err)
		metrics.TransitionsTotal.WithLabelValues(string(expected), string(target), metrics.OutcomeInvalid).Inc()
		return nil, err
	}

	if len(metadata) == 0 {
		metadata = json.RawMessage("{}")
	}

	seg := s.tracer.StartSegment("transition-write", txn)
	updated, err := s.eventRepo.TransitionStatus(ctx, eventID, expected, target, actor, metadata)
	seg.End()

	if err != nil {
		s.tracer.RecordError(txn, err)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			metrics.TransitionsTotal.WithLabelValues(string(expected), string(target), metrics.OutcomeNotFound).Inc()
			return nil, ErrEventNotFound
		case errors.Is(err, repository.ErrStatusConflict):
			metrics.TransitionsTotal.WithLabelValues(string(expected), string(target), metrics.OutcomeConflict).Inc()
			return nil, ErrStatusConflict
		default:
			metrics.TransitionsTotal.WithLabelValues(string(expected), string(target), metrics.OutcomeError).Inc()
			return nil, &TransientError{Err: err}
		}
	}

	metrics.TransitionsTotal.WithLabelValues(string(expected), string(target), metrics.OutcomeSuccess).Inc()
	log.Info().
		Str("event_id", eventID).
		Str("from", string(expected)).
		Str("to", string(target)).
		Str("actor", actor).
		Msg("Event transitioned")

	// The feed only changes when an event enters or leaves PUBLISHED.
	if expected == models.StatusPublished || target == models.StatusPublished {
		if err := s.cache.Delete(ctx, feedCacheKey); err != nil {
			log.Warn().Err(err).Msg("Failed to invalidate feed cache")
		}
	}

	return updated, nil
}

// IngestScraped creates draft events from a batch of scraped candidates
func (s *EventService) IngestScraped(ctx context.Context, inputs []EventInput) ([]*models.Event, error) {
	events := make([]*models.Event, len(inputs))
	for i, input := range inputs {
		events[i] = newEvent(input, models.StatusDraftScraped)
	}

	if err := s.eventRepo.CreateBatch(ctx, events); err != nil {
		return nil, &TransientError{Err: err}
	}

	metrics.IngestedTotal.Add(float64(len(events)))
	log.Info().Int("count", len(events)).Msg("Scraped events ingested")
	return events, nil
}

// CreateManual creates a draft event entered by an admin
func (s *EventService) CreateManual(ctx context.Context, input EventInput) (*models.Event, error) {
	event := newEvent(input, models.StatusDraftManual)
	created, err := s.eventRepo.Create(ctx, event)
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	log.Info().Str("event_id", created.EventID).Msg("Manual event created")
	return created, nil
}

// GetEvent returns an event by ID
func (s *EventService) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.eventRepo.GetByEventID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, &TransientError{Err: err}
	}
	return event, nil
}

// UpdateDetails replaces an event's content fields. The status is never
// touched here; it only changes through Transition.
func (s *EventService) UpdateDetails(ctx context.Context, eventID string, input EventInput) (*models.Event, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	event.Title = input.Title
	event.Description = input.Description
	event.Date = input.Date
	event.StartTime = input.StartTime
	event.EndTime = input.EndTime
	event.VenueID = input.VenueID
	event.VenueName = input.VenueName
	event.VenueCity = input.VenueCity
	event.Artists = marshalArtists(input.Artists)
	event.ImageURL = input.ImageURL
	event.SourceURL = input.SourceURL

	updated, err := s.eventRepo.Update(ctx, event)
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	// Published events surface edits in the feed.
	if updated.Status == models.StatusPublished {
		if err := s.cache.Delete(ctx, feedCacheKey); err != nil {
			log.Warn().Err(err).Msg("Failed to invalidate feed cache")
		}
	}

	return updated, nil
}

// ListEvents lists events with the given status
func (s *EventService) ListEvents(ctx context.Context, status models.EventStatus, limit, offset int) ([]*models.Event, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	events, err := s.eventRepo.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	return events, nil
}

// History returns the transition log of an event in insertion order
func (s *EventService) History(ctx context.Context, eventID string) ([]*models.EventTransition, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	transitions, err := s.trRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	return transitions, nil
}

// Readiness reports whether an event is complete enough to publish
func (s *EventService) Readiness(ctx context.Context, eventID string) (lifecycle.Readiness, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return lifecycle.Readiness{}, err
	}
	return lifecycle.CheckPublishReadiness(event), nil
}

// PublishedFeed returns the published events, served from cache when possible
func (s *EventService) PublishedFeed(ctx context.Context) ([]*models.Event, error) {
	var cached []*models.Event
	if err := s.cache.Get(ctx, feedCacheKey, &cached); err == nil {
		return cached, nil
	}

	events, err := s.eventRepo.ListPublished(ctx)
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	if err := s.cache.Set(ctx, feedCacheKey, events, s.feedTTL); err != nil {
		log.Warn().Err(err).Msg("Failed to cache published feed")
	}

	return events, nil
}

// SearchFeed searches published events by free text
func (s *EventService) SearchFeed(ctx context.Context, query string, size int) ([]search.EventDoc, error) {
	if s.elastic == nil {
		return []search.EventDoc{}, nil
	}
	if size <= 0 || size > 100 {
		size = 25
	}
	return s.elastic.SearchEvents(ctx, query, size)
}

// ProcessPendingTransitions drains unprocessed transition records and fans
// out their side effects: a publish notification and a search-index write for
// events entering PUBLISHED, an index removal for events leaving it. Records
// whose fan-out fails stay unprocessed and are retried on the next run.
func (s *EventService) ProcessPendingTransitions(ctx context.Context, limit int) error {
	transitions, err := s.trRepo.ListUnprocessed(ctx, limit)
	if err != nil {
		return err
	}

	for _, tr := range transitions {
		if err := s.fanOutTransition(ctx, tr); err != nil {
			log.Error().Err(err).
				Uint("transition_id", tr.ID).
				Str("event_id", tr.EventID).
				Msg("Failed to process transition, will retry")
			metrics.NotificationsTotal.WithLabelValues("error").Inc()
			continue
		}

		if err := s.trRepo.MarkProcessed(ctx, tr.ID); err != nil {
			log.Error().Err(err).Uint("transition_id", tr.ID).Msg("Failed to mark transition as processed")
		}
	}

	return nil
}

func (s *EventService) fanOutTransition(ctx context.Context, tr *models.EventTransition) error {
	switch {
	case tr.ToStatus == models.StatusPublished:
		event, err := s.eventRepo.GetByEventID(ctx, tr.EventID)
		if err != nil {
			return err
		}

		if s.bus != nil {
			notification := PublishNotification{
				EventID:   event.EventID,
				Title:     event.Title,
				Date:      event.Date,
				StartTime: event.StartTime,
				VenueName: event.VenueName,
				VenueCity: event.VenueCity,
			}
			if err := s.bus.SendMessage(ctx, notification); err != nil {
				return err
			}
			metrics.NotificationsTotal.WithLabelValues("sent").Inc()
		}

		if s.elastic != nil {
			if err := s.elastic.IndexEvent(ctx, event); err != nil {
				return err
			}
		}

	case tr.FromStatus == models.StatusPublished:
		if s.elastic != nil {
			if err := s.elastic.RemoveEvent(ctx, tr.EventID); err != nil {
				return err
			}
		}
	}

	return nil
}

func newEvent(input EventInput, status models.EventStatus) *models.Event {
	return &models.Event{
		EventID:     uuid.New().String(),
		Title:       input.Title,
		Description: input.Description,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		VenueID:     input.VenueID,
		VenueName:   input.VenueName,
		VenueCity:   input.VenueCity,
		Artists:     marshalArtists(input.Artists),
		ImageURL:    input.ImageURL,
		SourceURL:   input.SourceURL,
		Status:      status,
	}
}

func marshalArtists(artists []string) []byte {
	if artists == nil {
		artists = []string{}
	}
	data, err := json.Marshal(artists)
	if err != nil {
		return []byte("[]")
	}
	return data
}
