package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rec *MonthlyRecord) error
	Update(ctx context.Context, db *gorm.DB, rec *MonthlyRecord) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MonthlyRecord, error)
	FindByPeriod(ctx context.Context, db *gorm.DB, branchID, sourceNameID snowflake.ID, month, year int) (*MonthlyRecord, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]MonthlyRecord, error)
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID, deletedAt time.Time) error
}

type ListFilter struct {
	BranchID        snowflake.ID
	SourceTypeID    snowflake.ID
	Month           int
	Year            int
	StatusID        int
	IncludeInactive bool
}
