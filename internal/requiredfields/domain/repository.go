package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, cfg *Config) error
	FindByBranch(ctx context.Context, db *gorm.DB, branchID snowflake.ID) ([]Config, error)
	FindByBranchForm(ctx context.Context, db *gorm.DB, branchID snowflake.ID, formType string) (*Config, error)
}
