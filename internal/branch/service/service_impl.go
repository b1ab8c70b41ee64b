package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	areadomain "github.com/hydrocore/waterworks/internal/area/domain"
	branchdomain "github.com/hydrocore/waterworks/internal/branch/domain"
	"github.com/hydrocore/waterworks/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     branchdomain.Repository
	AreaRepo areadomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     branchdomain.Repository
	areaRepo areadomain.Repository
	genID    *snowflake.Node
}

func New(p Params) branchdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("branch.service"),
		repo:     p.Repo,
		areaRepo: p.AreaRepo,
		genID:    p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req branchdomain.CreateRequest) (*branchdomain.Response, error) {
	areaID, err := areadomain.ParseID(strings.TrimSpace(req.AreaID))
	if err != nil {
		return nil, branchdomain.ErrInvalidAreaID
	}

	area, err := s.areaRepo.FindByID(ctx, s.db, areaID)
	if err != nil {
		return nil, err
	}
	if area == nil {
		return nil, branchdomain.ErrAreaNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, branchdomain.ErrInvalidName
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, branchdomain.ErrInvalidCode
	}

	now := time.Now().UTC()
	branch := &branchdomain.Branch{
		ID:        s.genID.Generate(),
		AreaID:    areaID,
		Name:      name,
		Code:      code,
		Address:   strings.TrimSpace(req.Address),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, branch); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, branchdomain.ErrDuplicateCode
		}
		return nil, err
	}

	return s.toResponse(branch), nil
}

func (s *Service) List(ctx context.Context, req branchdomain.ListRequest) ([]branchdomain.Response, error) {
	filter := branchdomain.ListFilter{ActiveOnly: req.ActiveOnly}
	if v := strings.TrimSpace(req.AreaID); v != "" {
		areaID, err := areadomain.ParseID(v)
		if err != nil {
			return nil, branchdomain.ErrInvalidAreaID
		}
		filter.AreaID = areaID
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]branchdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *s.toResponse(&items[i]))
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*branchdomain.Response, error) {
	branchID, err := branchdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, branchdomain.ErrInvalidID
	}

	branch, err := s.repo.FindByID(ctx, s.db, branchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, branchdomain.ErrNotFound
	}

	return s.toResponse(branch), nil
}

func (s *Service) Update(ctx context.Context, req branchdomain.UpdateRequest) (*branchdomain.Response, error) {
	branchID, err := branchdomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, branchdomain.ErrInvalidID
	}

	branch, err := s.repo.FindByID(ctx, s.db, branchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, branchdomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, branchdomain.ErrInvalidName
		}
		branch.Name = name
	}

	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if code == "" {
			return nil, branchdomain.ErrInvalidCode
		}
		branch.Code = code
	}

	if req.Address != nil {
		branch.Address = strings.TrimSpace(*req.Address)
	}

	if req.Active != nil {
		branch.Active = *req.Active
	}

	branch.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, branch); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, branchdomain.ErrDuplicateCode
		}
		return nil, err
	}

	return s.toResponse(branch), nil
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	branchID, err := branchdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return branchdomain.ErrInvalidID
	}

	branch, err := s.repo.FindByID(ctx, s.db, branchID)
	if err != nil {
		return err
	}
	if branch == nil {
		return branchdomain.ErrNotFound
	}

	branch.Active = false
	branch.UpdatedAt = time.Now().UTC()

	return s.repo.Update(ctx, s.db, branch)
}

func (s *Service) toResponse(b *branchdomain.Branch) *branchdomain.Response {
	return &branchdomain.Response{
		ID:        b.ID.String(),
		AreaID:    b.AreaID.String(),
		Name:      b.Name,
		Code:      b.Code,
		Address:   b.Address,
		Active:    b.Active,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
