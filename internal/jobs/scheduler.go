package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/service"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/storage"
)

// Scheduler runs the periodic session sweep and the nightly audit
// archive. Both jobs are idempotent; a missed run is caught up by the
// next one.
type Scheduler struct {
	cron          *cron.Cron
	sessions      *service.SessionService
	audit         *service.AuditService
	archive       *storage.ArchiveStore
	sweepInterval time.Duration
	log           zerolog.Logger
}

func NewScheduler(
	sessions *service.SessionService,
	audit *service.AuditService,
	archive *storage.ArchiveStore,
	sweepInterval time.Duration,
	log zerolog.Logger,
) *Scheduler {
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}
	return &Scheduler{
		cron:          cron.New(cron.WithSeconds()),
		sessions:      sessions,
		audit:         audit,
		archive:       archive,
		sweepInterval: sweepInterval,
		log:           log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.sweepInterval), s.sweepSessions); err != nil {
		return err
	}

	if s.archive != nil {
		// 02:00 server time, after the day's audit rows have settled.
		if _, err := s.cron.AddFunc("0 0 2 * * *", s.archiveAudit); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop waits up to five seconds for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out waiting for jobs")
	}
}

func (s *Scheduler) sweepSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.sessions.Sweep(ctx); err != nil {
		s.log.Error().Err(err).Msg("session sweep failed")
	}
}

// archiveAudit exports the previous UTC day's audit records as CSV and
// uploads them to the archive bucket.
func (s *Scheduler) archiveAudit() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.Add(-24 * time.Hour)

	data, err := s.audit.ExportCSV(ctx, repository.AuditFilter{Start: &start, End: &end})
	if err != nil {
		s.log.Error().Err(err).Msg("audit archive export failed")
		return
	}

	name := fmt.Sprintf("audit/%s.csv", start.Format("2006-01-02"))
	if err := s.archive.PutCSV(ctx, name, data); err != nil {
		s.log.Error().Err(err).Str("object", name).Msg("audit archive upload failed")
		return
	}
	s.log.Info().Str("object", name).Int("bytes", len(data)).Msg("audit archive uploaded")
}
