package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/hydrocore/waterworks/internal/audit/domain"
	branchdomain "github.com/hydrocore/waterworks/internal/branch/domain"
	"github.com/hydrocore/waterworks/internal/config"
	"github.com/hydrocore/waterworks/internal/fields"
	"github.com/hydrocore/waterworks/internal/observability/obscontext"
	rfdomain "github.com/hydrocore/waterworks/internal/requiredfields/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       rfdomain.Repository
	BranchRepo branchdomain.Repository
	Policy     *config.FormPolicyHolder
	AuditSvc   auditdomain.Service `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       rfdomain.Repository
	branchRepo branchdomain.Repository
	policy     *config.FormPolicyHolder
	auditSvc   auditdomain.Service
	genID      *snowflake.Node
}

func New(p Params) rfdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("requiredfields.service"),
		repo:       p.Repo,
		branchRepo: p.BranchRepo,
		policy:     p.Policy,
		auditSvc:   p.AuditSvc,
		genID:      p.GenID,
	}
}

func (s *Service) Get(ctx context.Context, branchID string) (*rfdomain.ConfigResponse, error) {
	id, err := rfdomain.ParseBranchID(strings.TrimSpace(branchID))
	if err != nil {
		return nil, rfdomain.ErrInvalidBranchID
	}

	branch, err := s.branchRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, rfdomain.ErrBranchNotFound
	}

	configs, err := s.repo.FindByBranch(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	defaults := s.policy.Get().DefaultRequired
	resp := &rfdomain.ConfigResponse{
		BranchID: id.String(),
		Daily:    normalizeSet(defaults.Daily),
		Monthly:  normalizeSet(defaults.Monthly),
	}

	for i := range configs {
		stored, err := decodeFields(configs[i].Fields)
		if err != nil {
			return nil, err
		}
		switch configs[i].FormType {
		case fields.FormDaily:
			resp.Daily = stored
		case fields.FormMonthly:
			resp.Monthly = stored
		}
	}

	return resp, nil
}

func (s *Service) Set(ctx context.Context, req rfdomain.SetRequest) (*rfdomain.ConfigResponse, error) {
	id, err := rfdomain.ParseBranchID(strings.TrimSpace(req.BranchID))
	if err != nil {
		return nil, rfdomain.ErrInvalidBranchID
	}

	formType := strings.TrimSpace(req.FormType)
	if !fields.ValidForm(formType) {
		return nil, rfdomain.ErrInvalidFormType
	}

	branch, err := s.branchRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, rfdomain.ErrBranchNotFound
	}

	set := normalizeSet(req.Fields)
	for _, key := range set {
		if _, ok := fields.Lookup(formType, key); !ok {
			return nil, rfdomain.ErrUnknownField
		}
		if !fields.Configurable(formType, key) {
			return nil, rfdomain.ErrFieldNotAllowed
		}
	}

	encoded, err := json.Marshal(set)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cfg := &rfdomain.Config{
		ID:        s.genID.Generate(),
		BranchID:  id,
		FormType:  formType,
		Fields:    datatypes.JSON(encoded),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Upsert(ctx, s.db, cfg); err != nil {
		return nil, err
	}

	s.auditConfigured(ctx, id, formType, set)

	return s.Get(ctx, id.String())
}

func (s *Service) auditConfigured(ctx context.Context, branchID snowflake.ID, formType string, set []string) {
	if s.auditSvc == nil {
		return
	}
	actorType := "system"
	var actorID *string
	if kind, id := obscontext.ActorFromContext(ctx); id != "" {
		actorType = kind
		actorID = &id
	}
	targetID := branchID.String()
	if err := s.auditSvc.AuditLog(ctx, &branchID, actorType, actorID, "required_fields.configured", "required_fields", &targetID, map[string]any{
		"form_type": formType,
		"fields":    set,
	}); err != nil {
		s.log.Warn("audit write failed", zap.Error(err))
	}
}

// normalizeSet trims, deduplicates, and sorts field keys so that stored
// sets compare equal regardless of input order.
func normalizeSet(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func decodeFields(raw datatypes.JSON) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
