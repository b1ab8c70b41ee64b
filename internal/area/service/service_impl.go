package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	areadomain "github.com/hydrocore/waterworks/internal/area/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  areadomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  areadomain.Repository
	genID *snowflake.Node
}

func New(p Params) areadomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("area.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req areadomain.CreateRequest) (*areadomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, areadomain.ErrInvalidName
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, areadomain.ErrInvalidCode
	}

	now := time.Now().UTC()
	area := &areadomain.Area{
		ID:        s.genID.Generate(),
		Name:      name,
		Code:      code,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, area); err != nil {
		return nil, err
	}

	return s.toResponse(area), nil
}

func (s *Service) List(ctx context.Context, req areadomain.ListRequest) ([]areadomain.Response, error) {
	items, err := s.repo.List(ctx, s.db, req.ActiveOnly)
	if err != nil {
		return nil, err
	}

	resp := make([]areadomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *s.toResponse(&items[i]))
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*areadomain.Response, error) {
	areaID, err := areadomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, areadomain.ErrInvalidID
	}

	area, err := s.repo.FindByID(ctx, s.db, areaID)
	if err != nil {
		return nil, err
	}
	if area == nil {
		return nil, areadomain.ErrNotFound
	}

	return s.toResponse(area), nil
}

func (s *Service) Update(ctx context.Context, req areadomain.UpdateRequest) (*areadomain.Response, error) {
	areaID, err := areadomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, areadomain.ErrInvalidID
	}

	area, err := s.repo.FindByID(ctx, s.db, areaID)
	if err != nil {
		return nil, err
	}
	if area == nil {
		return nil, areadomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, areadomain.ErrInvalidName
		}
		area.Name = name
	}

	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if code == "" {
			return nil, areadomain.ErrInvalidCode
		}
		area.Code = code
	}

	if req.Active != nil {
		area.Active = *req.Active
	}

	area.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, area); err != nil {
		return nil, err
	}

	return s.toResponse(area), nil
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	areaID, err := areadomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return areadomain.ErrInvalidID
	}

	area, err := s.repo.FindByID(ctx, s.db, areaID)
	if err != nil {
		return err
	}
	if area == nil {
		return areadomain.ErrNotFound
	}

	area.Active = false
	area.UpdatedAt = time.Now().UTC()

	return s.repo.Update(ctx, s.db, area)
}

func (s *Service) toResponse(a *areadomain.Area) *areadomain.Response {
	return &areadomain.Response{
		ID:        a.ID.String(),
		Name:      a.Name,
		Code:      a.Code,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
