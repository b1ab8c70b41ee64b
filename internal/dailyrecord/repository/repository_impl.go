package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	dailydomain "github.com/hydrocore/waterworks/internal/dailyrecord/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() dailydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rec *dailydomain.DailyRecord) error {
	return db.WithContext(ctx).Create(rec).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rec *dailydomain.DailyRecord) error {
	return db.WithContext(ctx).Save(rec).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*dailydomain.DailyRecord, error) {
	var rec dailydomain.DailyRecord
	err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}

func (r *repo) FindBySourceAndDate(ctx context.Context, db *gorm.DB, sourceNameID snowflake.ID, date time.Time) (*dailydomain.DailyRecord, error) {
	var rec dailydomain.DailyRecord
	err := db.WithContext(ctx).
		Where("source_name_id = ? AND date = ? AND is_active = ?", sourceNameID, date, true).
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

func (r *repo) List(ctx context.Context, db *gorm.DB, filter dailydomain.ListFilter) ([]dailydomain.DailyRecord, error) {
	stmt := db.WithContext(ctx).Model(&dailydomain.DailyRecord{})

	if filter.BranchID != 0 {
		stmt = stmt.Where("branch_id = ?", filter.BranchID)
	}
	if filter.SourceTypeID != 0 {
		stmt = stmt.Where("source_type_id = ?", filter.SourceTypeID)
	}
	if filter.SourceNameID != 0 {
		stmt = stmt.Where("source_name_id = ?", filter.SourceNameID)
	}
	if filter.FromDate != nil {
		stmt = stmt.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		stmt = stmt.Where("date < ?", *filter.ToDate)
	}
	if filter.StatusID != 0 {
		stmt = stmt.Where("status_id = ?", filter.StatusID)
	}
	if !filter.IncludeInactive {
		stmt = stmt.Where("is_active = ?", true)
	}

	var records []dailydomain.DailyRecord
	if err := stmt.Order("date ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID, deletedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE daily_records SET is_active = ?, updated_at = ? WHERE id = ?`,
		false,
		deletedAt,
		id,
	).Error
}
