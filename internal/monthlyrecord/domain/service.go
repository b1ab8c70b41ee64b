package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	aggdomain "github.com/hydrocore/waterworks/internal/aggregation/domain"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*MonthlyRecord, error)
	Update(ctx context.Context, req UpdateRequest) (*MonthlyRecord, error)
	Decide(ctx context.Context, req DecisionRequest) (*MonthlyRecord, error)
	GetByID(ctx context.Context, id string) (*MonthlyRecord, error)
	List(ctx context.Context, req ListRequest) ([]MonthlyRecord, error)
	Delete(ctx context.Context, id string) error
}

// CreateRequest carries a monthly rollup submission. Values maps
// manually entered catalog field keys to the entered value. Auto-summed
// values submitted by clients are ignored; the server recomputes them.
type CreateRequest struct {
	BranchID     string         `json:"branchId"`
	SourceNameID string         `json:"sourceName"`
	Month        int            `json:"month"`
	Year         int            `json:"year"`
	Values       map[string]any `json:"values"`
	ActorID      snowflake.ID   `json:"-"`
}

type UpdateRequest struct {
	ID     string         `json:"id"`
	Values map[string]any `json:"values"`
}

type DecisionRequest struct {
	ID       string `json:"id"`
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
	ActorID  string `json:"-"`
}

type ListRequest struct {
	BranchID     string `form:"branchId"`
	SourceTypeID string `form:"sourceTypeId"`
	Month        int    `form:"month"`
	Year         int    `form:"year"`
	StatusID     int    `form:"statusId"`
}

// CompletionError rejects a submission whose period still has missing
// daily entries. It carries the validation result for the response body.
type CompletionError struct {
	Result aggdomain.ValidationResult
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("daily completion failed: %s", e.Result.ErrorMessage)
}

var (
	ErrInvalidID            = errors.New("invalid_monthly_record_id")
	ErrInvalidBranchID      = errors.New("invalid_branch_id")
	ErrInvalidSourceName    = errors.New("invalid_source_name")
	ErrInvalidPeriod        = errors.New("invalid_period")
	ErrUnknownField         = errors.New("unknown_field")
	ErrAutoFieldSubmitted   = errors.New("auto_summed_field_not_editable")
	ErrInvalidFieldValue    = errors.New("invalid_field_value")
	ErrMissingRequired      = errors.New("missing_required_field")
	ErrInvalidBulkOuttake   = errors.New("invalid_bulk_outtake")
	ErrDuplicatePeriod      = errors.New("monthly_record_exists")
	ErrNotFound             = errors.New("monthly_record_not_found")
	ErrInvalidDecision      = errors.New("invalid_decision")
	ErrCommentRequired      = errors.New("rejection_comment_required")
	ErrNotPending           = errors.New("record_not_pending")
	ErrSourceBranchMismatch = errors.New("source_name_not_in_branch")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
