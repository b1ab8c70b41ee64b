package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rec *DailyRecord) error
	Update(ctx context.Context, db *gorm.DB, rec *DailyRecord) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DailyRecord, error)
	FindBySourceAndDate(ctx context.Context, db *gorm.DB, sourceNameID snowflake.ID, date time.Time) (*DailyRecord, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]DailyRecord, error)
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID, deletedAt time.Time) error
}

// ListFilter narrows daily record queries. FromDate/ToDate are half-open
// calendar bounds: date >= FromDate AND date < ToDate.
type ListFilter struct {
	BranchID        snowflake.ID
	SourceTypeID    snowflake.ID
	SourceNameID    snowflake.ID
	FromDate        *time.Time
	ToDate          *time.Time
	StatusID        int
	IncludeInactive bool
}
