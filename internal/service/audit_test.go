package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository/memory"
)

func TestAuditRecordNeverFailsCaller(t *testing.T) {
	repo := memory.NewAuditRepository()
	repo.FailInserts = true
	svc := NewAuditService(repo, zerolog.Nop())

	// Record has no error return by design; this must simply not panic.
	svc.Record(context.Background(), RecordActionInput{
		ActorID: "admin-1",
		Action:  "session_revoked",
	})

	records, total, err := svc.Query(context.Background(), repository.AuditFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, records)
}

func TestAuditQueryFilters(t *testing.T) {
	repo := memory.NewAuditRepository()
	svc := NewAuditService(repo, zerolog.Nop())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	svc.Record(context.Background(), RecordActionInput{ActorID: "admin-1", Action: "session_revoked"})
	svc.Record(context.Background(), RecordActionInput{ActorID: "admin-2", Action: "event_resolved"})

	byActor, total, err := svc.Query(context.Background(), repository.AuditFilter{ActorID: "admin-1"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, byActor, 1)
	assert.Equal(t, "session_revoked", byActor[0].Action)

	byAction, total, err := svc.Query(context.Background(), repository.AuditFilter{Action: "event_resolved"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "admin-2", byAction[0].ActorID)
}

func TestExportCSV(t *testing.T) {
	repo := memory.NewAuditRepository()
	svc := NewAuditService(repo, zerolog.Nop())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	svc.Record(context.Background(), RecordActionInput{
		ActorID:         "admin-1",
		Action:          "session_revoked",
		TargetSubjectID: "user-9",
		IPAddress:       "203.0.113.9",
	})
	svc.Record(context.Background(), RecordActionInput{
		ActorID: "admin-2",
		Action:  "event_resolved",
		Details: map[string]any{"note": "reviewed, benign"},
	})

	data, err := svc.ExportCSV(context.Background(), repository.AuditFilter{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Timestamp,Action,Actor,Target,IP Address,Details", lines[0])
	assert.Contains(t, lines[1], "2025-06-01T12:00:00Z")
	assert.Contains(t, lines[1], "session_revoked")

	// The details JSON contains a comma, so csv quotes the field.
	assert.Contains(t, lines[2], `"{""note"":""reviewed, benign""}"`)
}

func TestExportCSVEmptyFilter(t *testing.T) {
	svc := NewAuditService(memory.NewAuditRepository(), zerolog.Nop())

	data, err := svc.ExportCSV(context.Background(), repository.AuditFilter{Action: "nothing"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 1) // header only
}
