package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	monthlydomain "github.com/hydrocore/waterworks/internal/monthlyrecord/domain"
	pkgdb "github.com/hydrocore/waterworks/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() monthlydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rec *monthlydomain.MonthlyRecord) error {
	// The unique period index backs up the service-level duplicate check
	// when two submissions race.
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return monthlydomain.ErrDuplicatePeriod
		}
		return err
	}
	return nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rec *monthlydomain.MonthlyRecord) error {
	return db.WithContext(ctx).Save(rec).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*monthlydomain.MonthlyRecord, error) {
	var rec monthlydomain.MonthlyRecord
	err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}

func (r *repo) FindByPeriod(ctx context.Context, db *gorm.DB, branchID, sourceNameID snowflake.ID, month, year int) (*monthlydomain.MonthlyRecord, error) {
	var rec monthlydomain.MonthlyRecord
	err := db.WithContext(ctx).
		Where("branch_id = ? AND source_name_id = ? AND month = ? AND year = ? AND is_active = ?",
			branchID, sourceNameID, month, year, true).
		Limit(1).
		Find(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter monthlydomain.ListFilter) ([]monthlydomain.MonthlyRecord, error) {
	stmt := db.WithContext(ctx).Model(&monthlydomain.MonthlyRecord{})

	if filter.BranchID != 0 {
		stmt = stmt.Where("branch_id = ?", filter.BranchID)
	}
	if filter.SourceTypeID != 0 {
		stmt = stmt.Where("source_type_id = ?", filter.SourceTypeID)
	}
	if filter.Month != 0 {
		stmt = stmt.Where("month = ?", filter.Month)
	}
	if filter.Year != 0 {
		stmt = stmt.Where("year = ?", filter.Year)
	}
	if filter.StatusID != 0 {
		stmt = stmt.Where("status_id = ?", filter.StatusID)
	}
	if !filter.IncludeInactive {
		stmt = stmt.Where("is_active = ?", true)
	}

	var records []monthlydomain.MonthlyRecord
	if err := stmt.Order("year DESC, month DESC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID, deletedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE monthly_records SET is_active = ?, updated_at = ? WHERE id = ?`,
		false,
		deletedAt,
		id,
	).Error
}
