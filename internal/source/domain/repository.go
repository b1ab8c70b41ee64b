package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type TypeRepository interface {
	Insert(ctx context.Context, db *gorm.DB, st *SourceType) error
	Update(ctx context.Context, db *gorm.DB, st *SourceType) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SourceType, error)
	List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]SourceType, error)
}

type NameRepository interface {
	Insert(ctx context.Context, db *gorm.DB, sn *SourceName) error
	Update(ctx context.Context, db *gorm.DB, sn *SourceName) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SourceName, error)
	ListByBranch(ctx context.Context, db *gorm.DB, branchID snowflake.ID, activeOnly bool) ([]SourceName, error)
}
