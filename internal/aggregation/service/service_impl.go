package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	aggdomain "github.com/hydrocore/waterworks/internal/aggregation/domain"
	"github.com/hydrocore/waterworks/internal/approval"
	"github.com/hydrocore/waterworks/internal/config"
	"github.com/hydrocore/waterworks/internal/period"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   aggdomain.Repository
	Policy *config.FormPolicyHolder
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   aggdomain.Repository
	policy *config.FormPolicyHolder
}

func New(p Params) aggdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("aggregation.service"),
		repo:   p.Repo,
		policy: p.Policy,
	}
}

func (s *Service) ComputeDailySums(ctx context.Context, req aggdomain.SumsRequest) (aggdomain.Sums, error) {
	items, err := s.ComputeDailySumsBatch(ctx, []aggdomain.SumsRequest{req})
	if err != nil {
		return aggdomain.Sums{}, err
	}
	return items[0].Sums, nil
}

func (s *Service) ComputeDailySumsBatch(ctx context.Context, reqs []aggdomain.SumsRequest) ([]aggdomain.BatchItem, error) {
	if len(reqs) == 0 {
		return nil, aggdomain.ErrEmptyBatch
	}

	queries := make([]aggdomain.Query, 0, len(reqs))
	for _, req := range reqs {
		q, err := s.toQuery(req)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}

	sums, err := s.repo.SumFields(ctx, s.db, queries)
	if err != nil {
		return nil, err
	}

	items := make([]aggdomain.BatchItem, len(reqs))
	for i := range reqs {
		items[i] = aggdomain.BatchItem{SumsRequest: reqs[i], Sums: sums[i]}
	}
	return items, nil
}

func (s *Service) ValidateDailyCompletion(ctx context.Context, req aggdomain.ValidationRequest) (aggdomain.ValidationResult, error) {
	branchID, err := snowflake.ParseString(strings.TrimSpace(req.BranchID))
	if err != nil {
		return aggdomain.ValidationResult{}, aggdomain.ErrInvalidBranchID
	}
	sourceNameID, err := snowflake.ParseString(strings.TrimSpace(req.SourceNameID))
	if err != nil {
		return aggdomain.ValidationResult{}, aggdomain.ErrInvalidSourceName
	}
	from, to, err := period.Bounds(req.Month, req.Year)
	if err != nil {
		return aggdomain.ValidationResult{}, aggdomain.ErrInvalidPeriod
	}
	q := aggdomain.Query{
		BranchID:     branchID,
		SourceNameID: sourceNameID,
		From:         from,
		To:           to,
		Statuses:     s.countedStatuses(),
	}

	totalDays, err := period.Days(req.Month, req.Year)
	if err != nil {
		return aggdomain.ValidationResult{}, aggdomain.ErrInvalidPeriod
	}

	completedDays, err := s.repo.CountDistinctDays(ctx, s.db, q)
	if err != nil {
		return aggdomain.ValidationResult{}, err
	}

	result := aggdomain.ValidationResult{
		CompletedDays: completedDays,
		TotalDays:     totalDays,
		IsValid:       completedDays >= totalDays,
	}
	if !result.IsValid {
		result.ErrorMessage = fmt.Sprintf(
			"%d of %d days completed — missing entries prevent monthly submission.",
			completedDays, totalDays,
		)
	}
	return result, nil
}

// toQuery resolves IDs and period bounds. Parse failures on IDs are
// reported; existence is deliberately not checked so that unknown
// branches degrade to zero sums.
func (s *Service) toQuery(req aggdomain.SumsRequest) (aggdomain.Query, error) {
	branchID, err := snowflake.ParseString(strings.TrimSpace(req.BranchID))
	if err != nil {
		return aggdomain.Query{}, aggdomain.ErrInvalidBranchID
	}
	sourceTypeID, err := snowflake.ParseString(strings.TrimSpace(req.SourceTypeID))
	if err != nil {
		return aggdomain.Query{}, aggdomain.ErrInvalidSourceType
	}
	from, to, err := period.Bounds(req.Month, req.Year)
	if err != nil {
		return aggdomain.Query{}, aggdomain.ErrInvalidPeriod
	}

	return aggdomain.Query{
		BranchID:     branchID,
		SourceTypeID: sourceTypeID,
		From:         from,
		To:           to,
		Statuses:     []int{approval.StatusPending, approval.StatusAccepted},
	}, nil
}

// countedStatuses maps the completion policy to record statuses counted
// as completed days. The default counts submitted records (Pending and
// Accepted); the stricter policy counts Accepted only. Sums are not
// policy-dependent: every non-rejected record is summed.
func (s *Service) countedStatuses() []int {
	if s.policy.Get().CompletionPolicy == config.CompletionPolicyAccepted {
		return []int{approval.StatusAccepted}
	}
	return []int{approval.StatusPending, approval.StatusAccepted}
}
