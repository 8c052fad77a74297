package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/ids"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
)

// AuditService appends privileged-action records. Record never returns
// an error: audit logging is a side effect of somebody else's mutation
// and must not fail it.
type AuditService struct {
	audit repository.AuditRepository
	log   zerolog.Logger
	now   func() time.Time
}

func NewAuditService(audit repository.AuditRepository, log zerolog.Logger) *AuditService {
	return &AuditService{
		audit: audit,
		log:   log,
		now:   time.Now,
	}
}

type RecordActionInput struct {
	ActorID         string
	Action          string
	TargetSubjectID string // optional
	IPAddress       string
	UserAgent       string
	Details         map[string]any
}

func (s *AuditService) Record(ctx context.Context, input RecordActionInput) {
	action := models.AdminAction{
		ID:              ids.New(),
		ActorID:         input.ActorID,
		Action:          input.Action,
		TargetSubjectID: input.TargetSubjectID,
		IPAddress:       input.IPAddress,
		UserAgent:       input.UserAgent,
		Details:         input.Details,
		CreatedAt:       s.now(),
	}

	if err := s.audit.Insert(ctx, action); err != nil {
		s.log.Warn().Err(err).
			Str("actor_id", input.ActorID).
			Str("action", input.Action).
			Msg("audit record write failed")
	}
}

func (s *AuditService) Query(ctx context.Context, filter repository.AuditFilter, page int, limit int) ([]models.AdminAction, int, error) {
	return s.audit.Query(ctx, filter, page, limit)
}

// csvHeader is the fixed export column order.
var csvHeader = []string{"Timestamp", "Action", "Actor", "Target", "IP Address", "Details"}

// ExportCSV writes one header row plus one row per matching record.
// encoding/csv applies standard quoting, so fields containing commas or
// quotes come out double-quoted.
func (s *AuditService) ExportCSV(ctx context.Context, filter repository.AuditFilter) ([]byte, error) {
	actions, err := s.audit.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, action := range actions {
		details := ""
		if len(action.Details) > 0 {
			raw, err := json.Marshal(action.Details)
			if err == nil {
				details = string(raw)
			}
		}
		row := []string{
			action.CreatedAt.UTC().Format(time.RFC3339),
			action.Action,
			action.ActorID,
			action.TargetSubjectID,
			action.IPAddress,
			details,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}
