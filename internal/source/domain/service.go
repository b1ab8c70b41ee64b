package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateType(ctx context.Context, req CreateTypeRequest) (*TypeResponse, error)
	ListTypes(ctx context.Context, activeOnly bool) ([]TypeResponse, error)
	UpdateType(ctx context.Context, req UpdateTypeRequest) (*TypeResponse, error)

	CreateName(ctx context.Context, req CreateNameRequest) (*NameResponse, error)
	ListNames(ctx context.Context, req ListNamesRequest) ([]NameResponse, error)
	GetNameByID(ctx context.Context, id string) (*NameResponse, error)
	UpdateName(ctx context.Context, req UpdateNameRequest) (*NameResponse, error)
	DeactivateName(ctx context.Context, id string) error
}

type CreateTypeRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type UpdateTypeRequest struct {
	ID     string  `json:"id"`
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

type TypeResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateNameRequest struct {
	BranchID     string `json:"branch_id"`
	SourceTypeID string `json:"source_type_id"`
	Name         string `json:"name"`
}

type UpdateNameRequest struct {
	ID     string  `json:"id"`
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

type ListNamesRequest struct {
	BranchID   string `json:"branch_id"`
	ActiveOnly bool   `json:"active_only"`
}

type NameResponse struct {
	ID           string    `json:"id"`
	BranchID     string    `json:"branch_id"`
	SourceTypeID string    `json:"source_type_id"`
	Name         string    `json:"name"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	ErrInvalidName     = errors.New("invalid_source_name")
	ErrInvalidCode     = errors.New("invalid_source_code")
	ErrInvalidID       = errors.New("invalid_source_id")
	ErrInvalidBranchID = errors.New("invalid_branch_id")
	ErrTypeNotFound    = errors.New("source_type_not_found")
	ErrNameNotFound    = errors.New("source_name_not_found")
	ErrDuplicateCode   = errors.New("source_code_exists")
	ErrBranchNotFound  = errors.New("branch_not_found")
	ErrTypeDeactivated = errors.New("source_type_inactive")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
