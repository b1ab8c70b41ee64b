package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	aggdomain "github.com/hydrocore/waterworks/internal/aggregation/domain"
	"github.com/hydrocore/waterworks/internal/approval"
	auditdomain "github.com/hydrocore/waterworks/internal/audit/domain"
	branchdomain "github.com/hydrocore/waterworks/internal/branch/domain"
	"github.com/hydrocore/waterworks/internal/clock"
	"github.com/hydrocore/waterworks/internal/config"
	"github.com/hydrocore/waterworks/internal/fields"
	monthlydomain "github.com/hydrocore/waterworks/internal/monthlyrecord/domain"
	"github.com/hydrocore/waterworks/internal/observability/metrics"
	"github.com/hydrocore/waterworks/internal/period"
	rfdomain "github.com/hydrocore/waterworks/internal/requiredfields/domain"
	sourcedomain "github.com/hydrocore/waterworks/internal/source/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bulkSourceTypeCode marks the source type whose monthly form constrains
// the bulkOuttake field to a fixed choice set.
const bulkSourceTypeCode = "bulk"

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Repo           monthlydomain.Repository
	BranchRepo     branchdomain.Repository
	SourceNameRepo sourcedomain.NameRepository
	SourceTypeRepo sourcedomain.TypeRepository
	Aggregator     aggdomain.Service
	RequiredFields rfdomain.Service
	Policy         *config.FormPolicyHolder
	AuditSvc       auditdomain.Service `optional:"true"`
	Metrics        *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	repo           monthlydomain.Repository
	branchRepo     branchdomain.Repository
	sourceNameRepo sourcedomain.NameRepository
	sourceTypeRepo sourcedomain.TypeRepository
	aggregator     aggdomain.Service
	requiredFields rfdomain.Service
	policy         *config.FormPolicyHolder
	auditSvc       auditdomain.Service
	metrics        *metrics.Metrics
}

func New(p Params) monthlydomain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("monthlyrecord.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		repo:           p.Repo,
		branchRepo:     p.BranchRepo,
		sourceNameRepo: p.SourceNameRepo,
		sourceTypeRepo: p.SourceTypeRepo,
		aggregator:     p.Aggregator,
		requiredFields: p.RequiredFields,
		policy:         p.Policy,
		auditSvc:       p.AuditSvc,
		metrics:        p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req monthlydomain.CreateRequest) (*monthlydomain.MonthlyRecord, error) {
	branchID, err := branchdomain.ParseID(strings.TrimSpace(req.BranchID))
	if err != nil {
		return nil, monthlydomain.ErrInvalidBranchID
	}

	branch, err := s.branchRepo.FindByID(ctx, s.db, branchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, monthlydomain.ErrInvalidBranchID
	}

	sourceNameID, err := sourcedomain.ParseID(strings.TrimSpace(req.SourceNameID))
	if err != nil {
		return nil, monthlydomain.ErrInvalidSourceName
	}

	sourceName, err := s.sourceNameRepo.FindByID(ctx, s.db, sourceNameID)
	if err != nil {
		return nil, err
	}
	if sourceName == nil {
		return nil, monthlydomain.ErrInvalidSourceName
	}
	if sourceName.BranchID != branchID {
		return nil, monthlydomain.ErrSourceBranchMismatch
	}

	if _, _, err := period.Bounds(req.Month, req.Year); err != nil {
		return nil, monthlydomain.ErrInvalidPeriod
	}

	existing, err := s.repo.FindByPeriod(ctx, s.db, branchID, sourceNameID, req.Month, req.Year)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, monthlydomain.ErrDuplicatePeriod
	}

	// Monthly submission is gated on full daily coverage, re-checked
	// server-side regardless of what the client already validated.
	validation, err := s.aggregator.ValidateDailyCompletion(ctx, aggdomain.ValidationRequest{
		BranchID:     branchID.String(),
		SourceNameID: sourceNameID.String(),
		Month:        req.Month,
		Year:         req.Year,
	})
	if err != nil {
		return nil, err
	}
	if !validation.IsValid {
		if s.metrics != nil {
			s.metrics.RecordCompletionFailure(ctx, branchID.String())
		}
		return nil, &monthlydomain.CompletionError{Result: validation}
	}

	now := s.clock.Now().UTC()
	rec := &monthlydomain.MonthlyRecord{
		ID:           s.genID.Generate(),
		BranchID:     branchID,
		SourceTypeID: sourceName.SourceTypeID,
		SourceNameID: sourceNameID,
		Month:        req.Month,
		Year:         req.Year,
		StatusID:     approval.StatusPending,
		IsActive:     true,
		CreatedBy:    req.ActorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.applyValues(rec, req.Values); err != nil {
		return nil, err
	}

	// Auto-summed values always come from the aggregator, never from
	// the client.
	sums, err := s.aggregator.ComputeDailySums(ctx, aggdomain.SumsRequest{
		BranchID:     branchID.String(),
		SourceTypeID: sourceName.SourceTypeID.String(),
		Month:        req.Month,
		Year:         req.Year,
	})
	if err != nil {
		return nil, err
	}
	rec.ProductionVolume = sums.ProductionVolume
	rec.OperationHours = sums.OperationHours
	rec.ServiceInterruption = sums.ServiceInterruption
	rec.TotalHoursServiceInterruption = sums.TotalHoursServiceInterruption

	if err := s.checkRequired(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.checkBulkOuttake(ctx, rec); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, s.db, rec); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordMonthlySubmission(ctx, branchID.String())
	}

	return rec, nil
}

func (s *Service) Update(ctx context.Context, req monthlydomain.UpdateRequest) (*monthlydomain.MonthlyRecord, error) {
	id, err := monthlydomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, monthlydomain.ErrInvalidID
	}

	rec, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.IsActive {
		return nil, monthlydomain.ErrNotFound
	}

	if err := s.applyValues(rec, req.Values); err != nil {
		return nil, err
	}

	// Refresh the derived totals so a re-edit picks up daily changes
	// made since the original submission.
	sums, err := s.aggregator.ComputeDailySums(ctx, aggdomain.SumsRequest{
		BranchID:     rec.BranchID.String(),
		SourceTypeID: rec.SourceTypeID.String(),
		Month:        rec.Month,
		Year:         rec.Year,
	})
	if err != nil {
		return nil, err
	}
	rec.ProductionVolume = sums.ProductionVolume
	rec.OperationHours = sums.OperationHours
	rec.ServiceInterruption = sums.ServiceInterruption
	rec.TotalHoursServiceInterruption = sums.TotalHoursServiceInterruption

	if err := s.checkRequired(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.checkBulkOuttake(ctx, rec); err != nil {
		return nil, err
	}

	resubmitted := rec.StatusID != approval.StatusPending
	rec.StatusID = approval.StatusPending
	rec.Comment = ""
	rec.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, s.db, rec); err != nil {
		return nil, err
	}

	if resubmitted {
		s.audit(ctx, rec, "monthly_record.resubmitted", nil)
	}

	return rec, nil
}

func (s *Service) Decide(ctx context.Context, req monthlydomain.DecisionRequest) (*monthlydomain.MonthlyRecord, error) {
	id, err := monthlydomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, monthlydomain.ErrInvalidID
	}

	status, ok := approval.ParseDecision(req.Decision)
	if !ok {
		return nil, monthlydomain.ErrInvalidDecision
	}

	comment := strings.TrimSpace(req.Comment)
	if status == approval.StatusRejected && comment == "" {
		return nil, monthlydomain.ErrCommentRequired
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
		return nil, monthlydomain.ErrNotFound
	}
	if rec.StatusID != approval.StatusPending {
		return nil, monthlydomain.ErrNotPending
	}

	rec.StatusID = status
	rec.Comment = comment
	rec.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, s.db, rec); err != nil {
		return nil, err
	}

	decision := strings.ToLower(strings.TrimSpace(req.Decision))
	s.audit(ctx, rec, "monthly_record."+decision, &req.ActorID)
	if s.metrics != nil {
		s.metrics.RecordApprovalDecision(ctx, "monthly_record", decision)
	}

	return rec, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*monthlydomain.MonthlyRecord, error) {
	recID, err := monthlydomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, monthlydomain.ErrInvalidID
	}

	rec, err := s.repo.FindByID(ctx, s.db, recID)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.IsActive {
		return nil, monthlydomain.ErrNotFound
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, req monthlydomain.ListRequest) ([]monthlydomain.MonthlyRecord, error) {
	filter := monthlydomain.ListFilter{
		Month:    req.Month,
		Year:     req.Year,
		StatusID: req.StatusID,
	}

	if raw := strings.TrimSpace(req.BranchID); raw != "" {
		id, err := branchdomain.ParseID(raw)
		if err != nil {
			return nil, monthlydomain.ErrInvalidBranchID
		}
		filter.BranchID = id
	}
	if raw := strings.TrimSpace(req.SourceTypeID); raw != "" {
		id, err := sourcedomain.ParseID(raw)
		if err != nil {
			return nil, monthlydomain.ErrInvalidSourceName
		}
		filter.SourceTypeID = id
	}

	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	recID, err := monthlydomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return monthlydomain.ErrInvalidID
	}

	rec, err := s.repo.FindByID(ctx, s.db, recID)
	if err != nil {
		return err
	}
	if rec == nil || !rec.IsActive {
		return monthlydomain.ErrNotFound
	}

	return s.repo.SoftDelete(ctx, s.db, recID, s.clock.Now().UTC())
}

func (s *Service) applyValues(rec *monthlydomain.MonthlyRecord, values map[string]any) error {
	for key, raw := range values {
		def, ok := fields.Lookup(fields.FormMonthly, key)
		if !ok {
			return monthlydomain.ErrUnknownField
		}
		if def.Auto {
			return monthlydomain.ErrAutoFieldSubmitted
		}

		switch def.Kind {
		case fields.KindText, fields.KindChoice:
			text, ok := raw.(string)
			if !ok && raw != nil {
				return monthlydomain.ErrInvalidFieldValue
			}
			rec.SetValue(key, nil, strings.TrimSpace(text))
		default:
			number, err := toNumber(raw)
			if err != nil {
				return monthlydomain.ErrInvalidFieldValue
			}
			rec.SetValue(key, number, "")
		}
	}
	return nil
}

func (s *Service) checkRequired(ctx context.Context, rec *monthlydomain.MonthlyRecord) error {
	cfg, err := s.requiredFields.Get(ctx, rec.BranchID.String())
	if err != nil {
		return err
	}

	for _, key := range cfg.Monthly {
		def, ok := fields.Lookup(fields.FormMonthly, key)
		if !ok || def.Auto {
			continue
		}
		number, text, ok := rec.Value(key)
		if !ok {
			continue
		}
		if def.Kind == fields.KindNumber {
			if number == nil {
				return monthlydomain.ErrMissingRequired
			}
			continue
		}
		if strings.TrimSpace(text) == "" {
			return monthlydomain.ErrMissingRequired
		}
	}
	return nil
}

// checkBulkOuttake enforces the constrained choice set on bulk-sourced
// records. Non-bulk records may not carry the field at all.
func (s *Service) checkBulkOuttake(ctx context.Context, rec *monthlydomain.MonthlyRecord) error {
	if rec.BulkOuttake == "" {
		return nil
	}

	sourceType, err := s.sourceTypeRepo.FindByID(ctx, s.db, rec.SourceTypeID)
	if err != nil {
		return err
	}
	if sourceType == nil || !strings.EqualFold(sourceType.Code, bulkSourceTypeCode) {
		return monthlydomain.ErrInvalidBulkOuttake
	}

	for _, option := range s.policy.Get().BulkOuttakeOptions {
		if rec.BulkOuttake == option {
			return nil
		}
	}
	return monthlydomain.ErrInvalidBulkOuttake
}

func (s *Service) audit(ctx context.Context, rec *monthlydomain.MonthlyRecord, action string, actorID *string) {
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
	if err := s.auditSvc.AuditLog(ctx, &branchID, actorType, actorID, action, "monthly_record", &targetID, map[string]any{
		"status":  approval.Label(rec.StatusID),
		"comment": rec.Comment,
		"month":   rec.Month,
		"year":    rec.Year,
	}); err != nil {
		s.log.Warn("audit write failed", zap.Error(err))
	}
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
		f, err := json.Number(strings.TrimSpace(v)).Float64()
		if err != nil {
			return nil, err
		}
		return &f, nil
	}
	return nil, monthlydomain.ErrInvalidFieldValue
}
