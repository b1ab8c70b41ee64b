package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Deactivate(ctx context.Context, id string) error
}

type CreateRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type UpdateRequest struct {
	ID     string  `json:"id"`
	Name   *string `json:"name,omitempty"`
	Code   *string `json:"code,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

type ListRequest struct {
	ActiveOnly bool `json:"active_only"`
}

type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrInvalidName = errors.New("invalid_area_name")
	ErrInvalidCode = errors.New("invalid_area_code")
	ErrInvalidID   = errors.New("invalid_area_id")
	ErrNotFound    = errors.New("area_not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
