package repository

import (
	"context"
	"strings"

	aggdomain "github.com/hydrocore/waterworks/internal/aggregation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() aggdomain.Repository {
	return &repo{}
}

const sumSelect = `SELECT
	? AS idx,
	COALESCE(SUM(production_volume), 0) AS production_volume,
	COALESCE(SUM(operation_hours), 0) AS operation_hours,
	COALESCE(SUM(service_interruption), 0) AS service_interruption,
	COALESCE(SUM(total_hours_service_interruption), 0) AS total_hours_service_interruption
FROM daily_records
WHERE branch_id = ?
  AND source_type_id = ?
  AND date >= ?
  AND date < ?
  AND is_active = ?
  AND status_id IN ?`

type sumRow struct {
	Idx                           int     `gorm:"column:idx"`
	ProductionVolume              float64 `gorm:"column:production_volume"`
	OperationHours                float64 `gorm:"column:operation_hours"`
	ServiceInterruption           float64 `gorm:"column:service_interruption"`
	TotalHoursServiceInterruption float64 `gorm:"column:total_hours_service_interruption"`
}

// SumFields computes all requested periods in one statement by chaining
// the per-period aggregates with UNION ALL.
func (r *repo) SumFields(ctx context.Context, db *gorm.DB, queries []aggdomain.Query) ([]aggdomain.Sums, error) {
	if len(queries) == 0 {
		return nil, nil
	}

	parts := make([]string, 0, len(queries))
	args := make([]interface{}, 0, len(queries)*6)
	for i, q := range queries {
		parts = append(parts, sumSelect)
		args = append(args, i, q.BranchID, q.SourceTypeID, q.From, q.To, true, q.Statuses)
	}

	var rows []sumRow
	query := strings.Join(parts, "\nUNION ALL\n")
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]aggdomain.Sums, len(queries))
	for _, row := range rows {
		if row.Idx < 0 || row.Idx >= len(out) {
			continue
		}
		out[row.Idx] = aggdomain.Sums{
			ProductionVolume:              row.ProductionVolume,
			OperationHours:                row.OperationHours,
			ServiceInterruption:           row.ServiceInterruption,
			TotalHoursServiceInterruption: row.TotalHoursServiceInterruption,
		}
	}
	return out, nil
}

func (r *repo) CountDistinctDays(ctx context.Context, db *gorm.DB, q aggdomain.Query) (int, error) {
	var count int
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(DISTINCT date)
		 FROM daily_records
		 WHERE branch_id = ?
		   AND source_name_id = ?
		   AND date >= ?
		   AND date < ?
		   AND is_active = ?
		   AND status_id IN ?`,
		q.BranchID,
		q.SourceNameID,
		q.From,
		q.To,
		true,
		q.Statuses,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
