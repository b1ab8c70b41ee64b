package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*DailyRecord, error)
	Update(ctx context.Context, req UpdateRequest) (*DailyRecord, error)
	Decide(ctx context.Context, req DecisionRequest) (*DailyRecord, error)
	GetByID(ctx context.Context, id string) (*DailyRecord, error)
	List(ctx context.Context, req ListRequest) ([]DailyRecord, error)
	Delete(ctx context.Context, id string) error
}

// CreateRequest carries one day's sheet. Values maps catalog field keys
// to the entered value: JSON numbers for measurements, a string for
// remarks.
type CreateRequest struct {
	BranchID     string         `json:"branchId"`
	SourceNameID string         `json:"sourceNameId"`
	Date         string         `json:"date"`
	Values       map[string]any `json:"values"`
	ActorID      snowflake.ID   `json:"-"`
}

type UpdateRequest struct {
	ID     string         `json:"id"`
	Values map[string]any `json:"values"`
}

// DecisionRequest resolves a pending record. Decision is "accepted" or
// "rejected"; rejections must carry a non-blank comment.
type DecisionRequest struct {
	ID       string `json:"id"`
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
	ActorID  string `json:"-"`
}

type ListRequest struct {
	BranchID     string `form:"branchId"`
	SourceTypeID string `form:"sourceTypeId"`
	SourceNameID string `form:"sourceNameId"`
	Month        int    `form:"month"`
	Year         int    `form:"year"`
	StatusID     int    `form:"statusId"`
}

var (
	ErrInvalidID            = errors.New("invalid_daily_record_id")
	ErrInvalidBranchID      = errors.New("invalid_branch_id")
	ErrInvalidSourceName    = errors.New("invalid_source_name")
	ErrInvalidDate          = errors.New("invalid_date")
	ErrDuplicateDate        = errors.New("duplicate_daily_record")
	ErrInvalidPeriod        = errors.New("invalid_period")
	ErrUnknownField         = errors.New("unknown_field")
	ErrInvalidFieldValue    = errors.New("invalid_field_value")
	ErrMissingRequired      = errors.New("missing_required_field")
	ErrNotFound             = errors.New("daily_record_not_found")
	ErrInvalidDecision      = errors.New("invalid_decision")
	ErrCommentRequired      = errors.New("rejection_comment_required")
	ErrNotPending           = errors.New("record_not_pending")
	ErrSourceBranchMismatch = errors.New("source_name_not_in_branch")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
