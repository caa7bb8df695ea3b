package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/backstage/services/events/internal/models"
	"example.com/backstage/services/events/internal/repository"
	"example.com/backstage/services/events/internal/tracing"
)

// Mock repositories for testing
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventRepository) CreateBatch(ctx context.Context, events []*models.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockEventRepository) GetByEventID(ctx context.Context, eventID string) (*models.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventRepository) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventRepository) ListByStatus(ctx context.Context, status models.EventStatus, limit, offset int) ([]*models.Event, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *MockEventRepository) ListPublished(ctx context.Context) ([]*models.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *MockEventRepository) TransitionStatus(ctx context.Context, eventID string, from, to models.EventStatus, actor string, metadata []byte) (*models.Event, error) {
	args := m.Called(ctx, eventID, from, to, actor, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

type MockTransitionRepository struct {
	mock.Mock
}

func (m *MockTransitionRepository) ListByEvent(ctx context.Context, eventID string) ([]*models.EventTransition, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.EventTransition), args.Error(1)
}

func (m *MockTransitionRepository) ListUnprocessed(ctx context.Context, limit int) ([]*models.EventTransition, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.EventTransition), args.Error(1)
}

func (m *MockTransitionRepository) MarkProcessed(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestService(eventRepo repository.EventRepository, trRepo repository.TransitionRepository) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		trRepo:    trRepo,
		tracer:    tracing.NewNoopTracer(),
		feedTTL:   time.Minute,
	}
}

func TestTransitionNoop(t *testing.T) {
	mockRepo := new(MockEventRepository)
	svc := newTestService(mockRepo, new(MockTransitionRepository))

	event, err := svc.Transition(context.Background(), "e1",
		models.StatusPendingDetails, models.StatusPendingDetails, "reviewer1", nil)

	require.NoError(t, err)
	require.Nil(t, event, "a no-op transition must return nil")
	mockRepo.AssertNotCalled(t, "TransitionStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionInvalidEdge(t *testing.T) {
	mockRepo := new(MockEventRepository)
	svc := newTestService(mockRepo, new(MockTransitionRepository))

	event, err := svc.Transition(context.Background(), "e1",
		models.StatusPendingDetails, models.StatusPublished, "reviewer1", nil)

	require.Nil(t, event)
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, models.StatusPendingDetails, invalid.From)
	require.Equal(t, models.StatusPublished, invalid.To)
	mockRepo.AssertNotCalled(t, "TransitionStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionSuccess(t *testing.T) {
	mockRepo := new(MockEventRepository)
	svc := newTestService(mockRepo, new(MockTransitionRepository))

	updated := &models.Event{
		EventID: "e1",
		Status:  models.StatusPendingDetails,
	}
	metadata := json.RawMessage(`{"reason":"looks good"}`)

	mockRepo.On("TransitionStatus", mock.Anything, "e1",
		models.StatusDraftScraped, models.StatusPendingDetails, "reviewer1", []byte(metadata)).
		Return(updated, nil)

	event, err := svc.Transition(context.Background(), "e1",
		models.StatusDraftScraped, models.StatusPendingDetails, "reviewer1", metadata)

	require.NoError(t, err)
	require.Equal(t, models.StatusPendingDetails, event.Status)
	mockRepo.AssertExpectations(t)
}

func TestTransitionDefaultsActorAndMetadata(t *testing.T) {
	mockRepo := new(MockEventRepository)
	svc := newTestService(mockRepo, new(MockTransitionRepository))

	updated := &models.Event{EventID: "e1", Status: models.StatusRejected}
	mockRepo.On("TransitionStatus", mock.Anything, "e1",
		models.StatusDraftScraped, models.StatusRejected, SystemActor, []byte("{}")).
		Return(updated, nil)

	event, err := svc.Transition(context.Background(), "e1",
		models.StatusDraftScraped, models.StatusRejected, "", nil)

	require.NoError(t, err)
	require.NotNil(t, event)
	mockRepo.AssertExpectations(t)
}

func TestTransitionNotFound(t *testing.T) {
	mockRepo := new(MockEventRepository)
	svc := newTestService(mockRepo, new(MockTransitionRepository))

	mockRepo.On("TransitionStatus", mock.Anything, "missing",
		models.StatusDraftScraped, models.StatusPendingDetails, "reviewer1", mock.Anything).
		Return(nil, repository.ErrNotFound)

	event, err := svc.Transition(context.Background(), "missing",
		models.StatusDraftScraped, models.StatusPendingDetails, "reviewer1", nil)

	require.Nil(t, event)
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestTransitionStatusConflict(t *testing.T) {
	mockRepo := new(MockEventRepository)
	svc := newTestService(mockRepo, new(MockTransitionRepository))

	mockRepo.On("TransitionStatus", mock.Anything, "e1",
		models.StatusReadyToPublish, models.StatusPublished, "reviewer1", mock.Anything).
		Return(nil, repository.ErrStatusConflict)

	event, err := svc.Transition(context.Background(), "e1",
		models.StatusReadyToPublish, models.StatusPublished, "reviewer1", nil)

	require.Nil(t, event)
	require.ErrorIs(t, err, ErrStatusConflict)
}

func TestTransitionTransientStorageError(t *testing.T) {
	mockRepo := new(MockEventRepository)
	svc := newTestService(mockRepo, new(MockTransitionRepository))

	cause := errors.New("connection reset")
	mockRepo.On("TransitionStatus", mock.Anything, "e1",
		models.StatusDraftScraped, models.StatusPendingDetails, "reviewer1", mock.Anything).
		Return(nil, cause)

	event, err := svc.Transition(context.Background(), "e1",
		models.StatusDraftScraped, models.StatusPendingDetails, "reviewer1", nil)

	require.Nil(t, event)
	var transient *TransientError
	require.ErrorAs(t, err, &transient)
	require.ErrorIs(t, err, cause)
}

func TestTransitionReviewScenario(t *testing.T) {
	mockRepo := new(MockEventRepository)
	svc := newTestService(mockRepo, new(MockTransitionRepository))

	accepted := &models.Event{EventID: "E1", Status: models.StatusPendingDetails}
	mockRepo.On("TransitionStatus", mock.Anything, "E1",
		models.StatusDraftScraped, models.StatusPendingDetails, "reviewer1", mock.Anything).
		Return(accepted, nil).Once()

	event, err := svc.Transition(context.Background(), "E1",
		models.StatusDraftScraped, models.StatusPendingDetails, "reviewer1", json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Equal(t, models.StatusPendingDetails, event.Status)

	// PUBLISHED is not reachable directly from PENDING_DETAILS.
	event, err = svc.Transition(context.Background(), "E1",
		models.StatusPendingDetails, models.StatusPublished, "reviewer1", nil)
	require.Nil(t, event)
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	mockRepo.AssertExpectations(t)
}

func TestIngestScraped(t *testing.T) {
	mockRepo := new(MockEventRepository)
	svc := newTestService(mockRepo, new(MockTransitionRepository))

	mockRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*models.Event")).Return(nil)

	events, err := svc.IngestScraped(context.Background(), []EventInput{
		{Title: "Scraped A", SourceURL: "https://example.com/a"},
		{Title: "Scraped B", SourceURL: "https://example.com/b"},
	})

	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, event := range events {
		require.Equal(t, models.StatusDraftScraped, event.Status)
		require.NotEmpty(t, event.EventID)
	}
	mockRepo.AssertExpectations(t)
}

func TestCreateManual(t *testing.T) {
	mockRepo := new(MockEventRepository)
	svc := newTestService(mockRepo, new(MockTransitionRepository))

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Event")).
		Return(&models.Event{EventID: "m1", Status: models.StatusDraftManual}, nil)

	event, err := svc.CreateManual(context.Background(), EventInput{Title: "Manual"})

	require.NoError(t, err)
	require.Equal(t, models.StatusDraftManual, event.Status)
	mockRepo.AssertExpectations(t)
}

func TestHistoryUnknownEvent(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockTrRepo := new(MockTransitionRepository)
	svc := newTestService(mockRepo, mockTrRepo)

	mockRepo.On("GetByEventID", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

	transitions, err := svc.History(context.Background(), "missing")

	require.Nil(t, transitions)
	require.ErrorIs(t, err, ErrEventNotFound)
	mockTrRepo.AssertNotCalled(t, "ListByEvent", mock.Anything, mock.Anything)
}

func TestHistoryReturnsLogInOrder(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockTrRepo := new(MockTransitionRepository)
	svc := newTestService(mockRepo, mockTrRepo)

	mockRepo.On("GetByEventID", mock.Anything, "e1").
		Return(&models.Event{EventID: "e1", Status: models.StatusPublished}, nil)
	mockTrRepo.On("ListByEvent", mock.Anything, "e1").Return([]*models.EventTransition{
		{ID: 1, EventID: "e1", FromStatus: models.StatusDraftScraped, ToStatus: models.StatusPendingDetails},
		{ID: 2, EventID: "e1", FromStatus: models.StatusPendingDetails, ToStatus: models.StatusReadyToPublish},
		{ID: 3, EventID: "e1", FromStatus: models.StatusReadyToPublish, ToStatus: models.StatusPublished},
	}, nil)

	transitions, err := svc.History(context.Background(), "e1")

	require.NoError(t, err)
	require.Len(t, transitions, 3)
	require.Equal(t, models.StatusDraftScraped, transitions[0].FromStatus)
	require.Equal(t, models.StatusPublished, transitions[2].ToStatus)
}

func TestReadinessReportsMissingFields(t *testing.T) {
	mockRepo := new(MockEventRepository)
	svc := newTestService(mockRepo, new(MockTransitionRepository))

	mockRepo.On("GetByEventID", mock.Anything, "e1").Return(&models.Event{
		EventID: "e1",
		Title:   "Incomplete",
		Status:  models.StatusPendingDetails,
	}, nil)

	readiness, err := svc.Readiness(context.Background(), "e1")

	require.NoError(t, err)
	require.False(t, readiness.Ready)
	require.Equal(t, []string{"date", "start_time", "venue_name", "venue_city"}, readiness.MissingFields)
}

func TestProcessPendingTransitionsMarksProcessed(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockTrRepo := new(MockTransitionRepository)
	svc := newTestService(mockRepo, mockTrRepo)

	// Neither endpoint of this transition is PUBLISHED, so there is no
	// fan-out and the record is simply marked processed.
	mockTrRepo.On("ListUnprocessed", mock.Anything, 10).Return([]*models.EventTransition{
		{ID: 7, EventID: "e1", FromStatus: models.StatusDraftScraped, ToStatus: models.StatusPendingDetails},
	}, nil)
	mockTrRepo.On("MarkProcessed", mock.Anything, uint(7)).Return(nil)

	err := svc.ProcessPendingTransitions(context.Background(), 10)

	require.NoError(t, err)
	mockTrRepo.AssertExpectations(t)
}
