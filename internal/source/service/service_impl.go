package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	branchdomain "github.com/hydrocore/waterworks/internal/branch/domain"
	sourcedomain "github.com/hydrocore/waterworks/internal/source/domain"
	"github.com/hydrocore/waterworks/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	TypeRepo   sourcedomain.TypeRepository
	NameRepo   sourcedomain.NameRepository
	BranchRepo branchdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	typeRepo   sourcedomain.TypeRepository
	nameRepo   sourcedomain.NameRepository
	branchRepo branchdomain.Repository
	genID      *snowflake.Node
}

func New(p Params) sourcedomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("source.service"),
		typeRepo:   p.TypeRepo,
		nameRepo:   p.NameRepo,
		branchRepo: p.BranchRepo,
		genID:      p.GenID,
	}
}

func (s *Service) CreateType(ctx context.Context, req sourcedomain.CreateTypeRequest) (*sourcedomain.TypeResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, sourcedomain.ErrInvalidName
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, sourcedomain.ErrInvalidCode
	}

	now := time.Now().UTC()
	st := &sourcedomain.SourceType{
		ID:        s.genID.Generate(),
		Name:      name,
		Code:      code,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.typeRepo.Insert(ctx, s.db, st); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, sourcedomain.ErrDuplicateCode
		}
		return nil, err
	}

	return s.toTypeResponse(st), nil
}

func (s *Service) ListTypes(ctx context.Context, activeOnly bool) ([]sourcedomain.TypeResponse, error) {
	items, err := s.typeRepo.List(ctx, s.db, activeOnly)
	if err != nil {
		return nil, err
	}

	resp := make([]sourcedomain.TypeResponse, 0, len(items))
	for i := range items {
		resp = append(resp, *s.toTypeResponse(&items[i]))
	}

	return resp, nil
}

func (s *Service) UpdateType(ctx context.Context, req sourcedomain.UpdateTypeRequest) (*sourcedomain.TypeResponse, error) {
	typeID, err := sourcedomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, sourcedomain.ErrInvalidID
	}

	st, err := s.typeRepo.FindByID(ctx, s.db, typeID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, sourcedomain.ErrTypeNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, sourcedomain.ErrInvalidName
		}
		st.Name = name
	}

	if req.Active != nil {
		st.Active = *req.Active
	}

	st.UpdatedAt = time.Now().UTC()

	if err := s.typeRepo.Update(ctx, s.db, st); err != nil {
		return nil, err
	}

	return s.toTypeResponse(st), nil
}

func (s *Service) CreateName(ctx context.Context, req sourcedomain.CreateNameRequest) (*sourcedomain.NameResponse, error) {
	branchID, err := branchdomain.ParseID(strings.TrimSpace(req.BranchID))
	if err != nil {
		return nil, sourcedomain.ErrInvalidBranchID
	}

	branch, err := s.branchRepo.FindByID(ctx, s.db, branchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, sourcedomain.ErrBranchNotFound
	}

	typeID, err := sourcedomain.ParseID(strings.TrimSpace(req.SourceTypeID))
	if err != nil {
		return nil, sourcedomain.ErrInvalidID
	}

	st, err := s.typeRepo.FindByID(ctx, s.db, typeID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, sourcedomain.ErrTypeNotFound
	}
	if !st.Active {
		return nil, sourcedomain.ErrTypeDeactivated
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, sourcedomain.ErrInvalidName
	}

	now := time.Now().UTC()
	sn := &sourcedomain.SourceName{
		ID:           s.genID.Generate(),
		BranchID:     branchID,
		SourceTypeID: typeID,
		Name:         name,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.nameRepo.Insert(ctx, s.db, sn); err != nil {
		return nil, err
	}

	return s.toNameResponse(sn), nil
}

func (s *Service) ListNames(ctx context.Context, req sourcedomain.ListNamesRequest) ([]sourcedomain.NameResponse, error) {
	branchID, err := branchdomain.ParseID(strings.TrimSpace(req.BranchID))
	if err != nil {
		return nil, sourcedomain.ErrInvalidBranchID
	}

	items, err := s.nameRepo.ListByBranch(ctx, s.db, branchID, req.ActiveOnly)
	if err != nil {
		return nil, err
	}

	resp := make([]sourcedomain.NameResponse, 0, len(items))
	for i := range items {
		resp = append(resp, *s.toNameResponse(&items[i]))
	}

	return resp, nil
}

func (s *Service) GetNameByID(ctx context.Context, id string) (*sourcedomain.NameResponse, error) {
	nameID, err := sourcedomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, sourcedomain.ErrInvalidID
	}

	sn, err := s.nameRepo.FindByID(ctx, s.db, nameID)
	if err != nil {
		return nil, err
	}
	if sn == nil {
		return nil, sourcedomain.ErrNameNotFound
	}

	return s.toNameResponse(sn), nil
}

func (s *Service) UpdateName(ctx context.Context, req sourcedomain.UpdateNameRequest) (*sourcedomain.NameResponse, error) {
	nameID, err := sourcedomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, sourcedomain.ErrInvalidID
	}

	sn, err := s.nameRepo.FindByID(ctx, s.db, nameID)
	if err != nil {
		return nil, err
	}
	if sn == nil {
		return nil, sourcedomain.ErrNameNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, sourcedomain.ErrInvalidName
		}
		sn.Name = name
	}

	if req.Active != nil {
		sn.Active = *req.Active
	}

	sn.UpdatedAt = time.Now().UTC()

	if err := s.nameRepo.Update(ctx, s.db, sn); err != nil {
		return nil, err
	}

	return s.toNameResponse(sn), nil
}

func (s *Service) DeactivateName(ctx context.Context, id string) error {
	nameID, err := sourcedomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return sourcedomain.ErrInvalidID
	}

	sn, err := s.nameRepo.FindByID(ctx, s.db, nameID)
	if err != nil {
		return err
	}
	if sn == nil {
		return sourcedomain.ErrNameNotFound
	}

	sn.Active = false
	sn.UpdatedAt = time.Now().UTC()

	return s.nameRepo.Update(ctx, s.db, sn)
}

func (s *Service) toTypeResponse(st *sourcedomain.SourceType) *sourcedomain.TypeResponse {
	return &sourcedomain.TypeResponse{
		ID:        st.ID.String(),
		Name:      st.Name,
		Code:      st.Code,
		Active:    st.Active,
		CreatedAt: st.CreatedAt,
		UpdatedAt: st.UpdatedAt,
	}
}

func (s *Service) toNameResponse(sn *sourcedomain.SourceName) *sourcedomain.NameResponse {
	return &sourcedomain.NameResponse{
		ID:           sn.ID.String(),
		BranchID:     sn.BranchID.String(),
		SourceTypeID: sn.SourceTypeID.String(),
		Name:         sn.Name,
		Active:       sn.Active,
		CreatedAt:    sn.CreatedAt,
		UpdatedAt:    sn.UpdatedAt,
	}
}
