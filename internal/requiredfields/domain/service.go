package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Get returns the required-field sets for both forms of a branch.
	// Branches without stored configuration fall back to defaults.
	Get(ctx context.Context, branchID string) (*ConfigResponse, error)
	// Set replaces the required-field set of one form for a branch.
	Set(ctx context.Context, req SetRequest) (*ConfigResponse, error)
}

type SetRequest struct {
	BranchID string   `json:"branch_id"`
	FormType string   `json:"type"`
	Fields   []string `json:"fields"`
}

type ConfigResponse struct {
	BranchID string   `json:"branch_id"`
	Daily    []string `json:"daily"`
	Monthly  []string `json:"monthly"`
}

var (
	ErrInvalidBranchID = errors.New("invalid_branch_id")
	ErrBranchNotFound  = errors.New("branch_not_found")
	ErrInvalidFormType = errors.New("invalid_form_type")
	ErrUnknownField    = errors.New("unknown_field")
	ErrFieldNotAllowed = errors.New("field_not_configurable")
)

func ParseBranchID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
