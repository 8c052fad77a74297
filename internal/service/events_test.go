package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository/memory"
)

type captureDispatcher struct {
	events []models.SecurityEvent
}

func (d *captureDispatcher) HandleEvent(_ context.Context, event models.SecurityEvent) {
	d.events = append(d.events, event)
}

func TestRecordStoresAndDispatches(t *testing.T) {
	repo := memory.NewEventRepository()
	dispatcher := &captureDispatcher{}
	svc := NewEventService(repo, dispatcher, zerolog.Nop())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	event, err := svc.Record(context.Background(), RecordEventInput{
		EventType: models.EventFailedLogin,
		Severity:  models.SeverityMedium,
		SubjectID: "user-1",
		IPAddress: "203.0.113.9",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, now, event.CreatedAt)
	assert.False(t, event.Resolved)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, event.ID, dispatcher.events[0].ID)

	stored, err := repo.GetByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventFailedLogin, stored.EventType)
}

func TestResolveIsIdempotent(t *testing.T) {
	repo := memory.NewEventRepository()
	svc := NewEventService(repo, nil, zerolog.Nop())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	event, err := svc.Record(context.Background(), RecordEventInput{
		EventType: models.EventSuspiciousActivity,
		Severity:  models.SeverityHigh,
		SubjectID: "user-1",
	})
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), event.ID, "admin-1")
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
	assert.Equal(t, "admin-1", resolved.ResolvedBy)
	require.NotNil(t, resolved.ResolvedAt)
	firstResolvedAt := *resolved.ResolvedAt

	// A later resolve by somebody else changes nothing.
	svc.now = func() time.Time { return now.Add(time.Hour) }
	again, err := svc.Resolve(context.Background(), event.ID, "admin-2")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", again.ResolvedBy)
	require.NotNil(t, again.ResolvedAt)
	assert.Equal(t, firstResolvedAt, *again.ResolvedAt)
}

func TestResolveUnknownEvent(t *testing.T) {
	svc := NewEventService(memory.NewEventRepository(), nil, zerolog.Nop())

	_, err := svc.Resolve(context.Background(), "missing", "admin-1")
	assert.ErrorIs(t, err, repository.ErrEventNotFound)
}

func TestQueryFiltersAndPaginates(t *testing.T) {
	repo := memory.NewEventRepository()
	svc := NewEventService(repo, nil, zerolog.Nop())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return at }
		_, err := svc.Record(context.Background(), RecordEventInput{
			EventType: models.EventFailedLogin,
			Severity:  models.SeverityMedium,
			SubjectID: "user-1",
		})
		require.NoError(t, err)
	}
	svc.now = func() time.Time { return base.Add(10 * time.Minute) }
	_, err := svc.Record(context.Background(), RecordEventInput{
		EventType: models.EventAdminLogin,
		Severity:  models.SeverityLow,
		SubjectID: "admin-1",
	})
	require.NoError(t, err)

	// Type filter, newest first, page size 2.
	page1, total, err := svc.Query(context.Background(), repository.EventFilter{
		EventType: models.EventFailedLogin,
	}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page1, 2)
	assert.True(t, page1[0].CreatedAt.After(page1[1].CreatedAt))

	page3, _, err := svc.Query(context.Background(), repository.EventFilter{
		EventType: models.EventFailedLogin,
	}, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page3, 1)

	// Subject filter.
	admin, total, err := svc.Query(context.Background(), repository.EventFilter{
		SubjectID: "admin-1",
	}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, admin, 1)
	assert.Equal(t, models.EventAdminLogin, admin[0].EventType)

	// Date window excludes the later admin login.
	end := base.Add(5 * time.Minute)
	windowed, total, err := svc.Query(context.Background(), repository.EventFilter{
		Start: &base,
		End:   &end,
	}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, windowed, 5)
}
