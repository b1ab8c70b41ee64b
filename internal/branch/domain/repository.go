package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, b *Branch) error
	Update(ctx context.Context, db *gorm.DB, b *Branch) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Branch, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Branch, error)
}

type ListFilter struct {
	AreaID     snowflake.ID
	ActiveOnly bool
}
