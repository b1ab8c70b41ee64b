package domain

import (
	"context"
	"errors"
)

// Sums holds the four auto-summed monthly totals derived from daily
// records.
type Sums struct {
	ProductionVolume              float64 `json:"productionVolume"`
	OperationHours                float64 `json:"operationHours"`
	ServiceInterruption           float64 `json:"serviceInterruption"`
	TotalHoursServiceInterruption float64 `json:"totalHoursServiceInterruption"`
}

type SumsRequest struct {
	BranchID     string `json:"branchId" form:"branchId"`
	SourceTypeID string `json:"sourceTypeId" form:"sourceTypeId"`
	Month        int    `json:"month" form:"month"`
	Year         int    `json:"year" form:"year"`
}

type BatchItem struct {
	SumsRequest
	Sums
}

// ValidationRequest identifies one source name's period. Completion is
// checked per source name because each source submits its own sheet
// every day.
type ValidationRequest struct {
	BranchID     string `json:"branchId" form:"branchId"`
	SourceNameID string `json:"sourceName" form:"sourceName"`
	Month        int    `json:"month" form:"month"`
	Year         int    `json:"year" form:"year"`
}

// ValidationResult reports daily-entry coverage for a period. IsValid
// means every calendar day of the month has a counted daily record.
type ValidationResult struct {
	IsValid       bool   `json:"isValid"`
	CompletedDays int    `json:"completedDays"`
	TotalDays     int    `json:"totalDays"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}

type Service interface {
	// ComputeDailySums totals the four tracked fields over all counted
	// daily records in the period. Unknown branches or source types
	// yield zero sums rather than an error.
	ComputeDailySums(ctx context.Context, req SumsRequest) (Sums, error)
	// ComputeDailySumsBatch resolves many periods in one database round
	// trip. Results are returned in request order.
	ComputeDailySumsBatch(ctx context.Context, reqs []SumsRequest) ([]BatchItem, error)
	// ValidateDailyCompletion checks that every calendar day of the
	// month has a counted daily record for the source name.
	ValidateDailyCompletion(ctx context.Context, req ValidationRequest) (ValidationResult, error)
}

var (
	ErrInvalidBranchID   = errors.New("invalid_branch_id")
	ErrInvalidSourceType = errors.New("invalid_source_type_id")
	ErrInvalidSourceName = errors.New("invalid_source_name")
	ErrInvalidPeriod     = errors.New("invalid_period")
	ErrEmptyBatch        = errors.New("empty_batch")
)
