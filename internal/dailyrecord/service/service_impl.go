package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hydrocore/waterworks/internal/approval"
	auditdomain "github.com/hydrocore/waterworks/internal/audit/domain"
	branchdomain "github.com/hydrocore/waterworks/internal/branch/domain"
	"github.com/hydrocore/waterworks/internal/clock"
	dailydomain "github.com/hydrocore/waterworks/internal/dailyrecord/domain"
	"github.com/hydrocore/waterworks/internal/fields"
	"github.com/hydrocore/waterworks/internal/observability/metrics"
	"github.com/hydrocore/waterworks/internal/period"
	rfdomain "github.com/hydrocore/waterworks/internal/requiredfields/domain"
	sourcedomain "github.com/hydrocore/waterworks/internal/source/domain"
	pkgdb "github.com/hydrocore/waterworks/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Repo           dailydomain.Repository
	BranchRepo     branchdomain.Repository
	SourceNameRepo sourcedomain.NameRepository
	RequiredFields rfdomain.Service
	AuditSvc       auditdomain.Service `optional:"true"`
	Metrics        *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	repo           dailydomain.Repository
	branchRepo     branchdomain.Repository
	sourceNameRepo sourcedomain.NameRepository
	requiredFields rfdomain.Service
	auditSvc       auditdomain.Service
	metrics        *metrics.Metrics
}

func New(p Params) dailydomain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("dailyrecord.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		repo:           p.Repo,
		branchRepo:     p.BranchRepo,
		sourceNameRepo: p.SourceNameRepo,
		requiredFields: p.RequiredFields,
		auditSvc:       p.AuditSvc,
		metrics:        p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req dailydomain.CreateRequest) (*dailydomain.DailyRecord, error) {
	branchID, err := branchdomain.ParseID(strings.TrimSpace(req.BranchID))
	if err != nil {
		return nil, dailydomain.ErrInvalidBranchID
	}

	branch, err := s.branchRepo.FindByID(ctx, s.db, branchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, dailydomain.ErrInvalidBranchID
	}

	sourceNameID, err := sourcedomain.ParseID(strings.TrimSpace(req.SourceNameID))
	if err != nil {
		return nil, dailydomain.ErrInvalidSourceName
	}

	sourceName, err := s.sourceNameRepo.FindByID(ctx, s.db, sourceNameID)
	if err != nil {
		return nil, err
	}
	if sourceName == nil {
		return nil, dailydomain.ErrInvalidSourceName
	}
	if sourceName.BranchID != branchID {
		return nil, dailydomain.ErrSourceBranchMismatch
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, dailydomain.ErrInvalidDate
	}

	// One sheet per source name per calendar day.
	existing, err := s.repo.FindBySourceAndDate(ctx, s.db, sourceNameID, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, dailydomain.ErrDuplicateDate
	}

	now := s.clock.Now().UTC()
	rec := &dailydomain.DailyRecord{
		ID:           s.genID.Generate(),
		BranchID:     branchID,
		SourceTypeID: sourceName.SourceTypeID,
		SourceNameID: sourceNameID,
		Date:         date,
		StatusID:     approval.StatusPending,
		IsActive:     true,
		CreatedBy:    req.ActorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.applyValues(rec, req.Values); err != nil {
		return nil, err
	}

	if err := s.checkRequired(ctx, branchID, rec); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, s.db, rec); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, dailydomain.ErrDuplicateDate
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordDailySubmission(ctx, branchID.String())
	}

	return rec, nil
}

func (s *Service) Update(ctx context.Context, req dailydomain.UpdateRequest) (*dailydomain.DailyRecord, error) {
	id, err := dailydomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, dailydomain.ErrInvalidID
	}

	rec, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.IsActive {
		return nil, dailydomain.ErrNotFound
	}

	if err := s.applyValues(rec, req.Values); err != nil {
		return nil, err
	}

	if err := s.checkRequired(ctx, rec.BranchID, rec); err != nil {
		return nil, err
	}

	// Editing an already-decided record puts it back in front of the
	// approver.
	resubmitted := rec.StatusID != approval.StatusPending
	rec.StatusID = approval.StatusPending
	rec.Comment = ""
	rec.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, s.db, rec); err != nil {
		return nil, err
	}

	if resubmitted {
		s.audit(ctx, rec, "daily_record.resubmitted", nil)
	}

	return rec, nil
}

func (s *Service) Decide(ctx context.Context, req dailydomain.DecisionRequest) (*dailydomain.DailyRecord, error) {
	id, err := dailydomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, dailydomain.ErrInvalidID
	}

	status, ok := approval.ParseDecision(req.Decision)
	if !ok {
		return nil, dailydomain.ErrInvalidDecision
	}

	comment := strings.TrimSpace(req.Comment)
	if status == approval.StatusRejected && comment == "" {
		return nil, dailydomain.ErrCommentRequired
	}
	// Accepting stamps the comment, replacing whatever the client sent.
	if status == approval.StatusAccepted {
		comment = approval.DecisionAccepted
	}

	rec, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.IsActive {
		return nil, dailydomain.ErrNotFound
	}
	if rec.StatusID != approval.StatusPending {
		return nil, dailydomain.ErrNotPending
	}

	rec.StatusID = status
	rec.Comment = comment
	rec.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, s.db, rec); err != nil {
		return nil, err
	}

	decision := strings.ToLower(strings.TrimSpace(req.Decision))
	s.audit(ctx, rec, "daily_record."+decision, &req.ActorID)
	if s.metrics != nil {
		s.metrics.RecordApprovalDecision(ctx, "daily_record", decision)
	}

	return rec, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*dailydomain.DailyRecord, error) {
	recID, err := dailydomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, dailydomain.ErrInvalidID
	}

	rec, err := s.repo.FindByID(ctx, s.db, recID)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.IsActive {
		return nil, dailydomain.ErrNotFound
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, req dailydomain.ListRequest) ([]dailydomain.DailyRecord, error) {
	filter := dailydomain.ListFilter{StatusID: req.StatusID}

	if raw := strings.TrimSpace(req.BranchID); raw != "" {
		id, err := branchdomain.ParseID(raw)
		if err != nil {
			return nil, dailydomain.ErrInvalidBranchID
		}
		filter.BranchID = id
	}
	if raw := strings.TrimSpace(req.SourceTypeID); raw != "" {
		id, err := sourcedomain.ParseID(raw)
		if err != nil {
			return nil, dailydomain.ErrInvalidSourceName
		}
		filter.SourceTypeID = id
	}
	if raw := strings.TrimSpace(req.SourceNameID); raw != "" {
		id, err := sourcedomain.ParseID(raw)
		if err != nil {
			return nil, dailydomain.ErrInvalidSourceName
		}
		filter.SourceNameID = id
	}

	if req.Month != 0 || req.Year != 0 {
		from, to, err := period.Bounds(req.Month, req.Year)
		if err != nil {
			return nil, dailydomain.ErrInvalidPeriod
		}
		filter.FromDate = &from
		filter.ToDate = &to
	}

	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	recID, err := dailydomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return dailydomain.ErrInvalidID
	}

	rec, err := s.repo.FindByID(ctx, s.db, recID)
	if err != nil {
		return err
	}
	if rec == nil || !rec.IsActive {
		return dailydomain.ErrNotFound
	}

	return s.repo.SoftDelete(ctx, s.db, recID, s.clock.Now().UTC())
}

// applyValues copies the submitted measurements onto the record, keyed by
// the daily catalog.
func (s *Service) applyValues(rec *dailydomain.DailyRecord, values map[string]any) error {
	for key, raw := range values {
		def, ok := fields.Lookup(fields.FormDaily, key)
		if !ok {
			return dailydomain.ErrUnknownField
		}

		switch def.Kind {
		case fields.KindText:
			text, ok := raw.(string)
			if !ok && raw != nil {
				return dailydomain.ErrInvalidFieldValue
			}
			rec.SetValue(key, nil, strings.TrimSpace(text))
		default:
			number, err := toNumber(raw)
			if err != nil {
				return dailydomain.ErrInvalidFieldValue
			}
			rec.SetValue(key, number, "")
		}
	}
	return nil
}

func (s *Service) checkRequired(ctx context.Context, branchID snowflake.ID, rec *dailydomain.DailyRecord) error {
	cfg, err := s.requiredFields.Get(ctx, branchID.String())
	if err != nil {
		return err
	}

	for _, key := range cfg.Daily {
		number, text, ok := rec.Value(key)
		if !ok {
			continue
		}
		def, _ := fields.Lookup(fields.FormDaily, key)
		if def.Kind == fields.KindText {
			if strings.TrimSpace(text) == "" {
				return dailydomain.ErrMissingRequired
			}
			continue
		}
		if number == nil {
			return dailydomain.ErrMissingRequired
		}
	}
	return nil
}

func (s *Service) audit(ctx context.Context, rec *dailydomain.DailyRecord, action string, actorID *string) {
	if s.auditSvc == nil {
		return
	}
	branchID := rec.BranchID
	targetID := rec.ID.String()
	actorType := "system"
	if actorID != nil && strings.TrimSpace(*actorID) != "" {
		actorType = "user"
	} else {
		actorID = nil
	}
	if err := s.auditSvc.AuditLog(ctx, &branchID, actorType, actorID, action, "daily_record", &targetID, map[string]any{
		"status":  approval.Label(rec.StatusID),
		"comment": rec.Comment,
		"date":    rec.Date.Format("2006-01-02"),
	}); err != nil {
		s.log.Warn("audit write failed", zap.Error(err))
	}
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, err
	}
	return date.UTC(), nil
}

func toNumber(raw any) (*float64, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		return &v, nil
	case int:
		f := float64(v)
		return &f, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return &f, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		var n json.Number = json.Number(strings.TrimSpace(v))
		f, err := n.Float64()
		if err != nil {
			return nil, err
		}
		return &f, nil
	}
	return nil, dailydomain.ErrInvalidFieldValue
}
