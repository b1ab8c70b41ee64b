package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	rfdomain "github.com/hydrocore/waterworks/internal/requiredfields/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() rfdomain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, cfg *rfdomain.Config) error {
	tx := db.WithContext(ctx).Exec(
		`UPDATE required_fields_configs
		 SET fields = ?, updated_at = ?
		 WHERE branch_id = ? AND form_type = ?`,
		cfg.Fields,
		cfg.UpdatedAt,
		cfg.BranchID,
		cfg.FormType,
	)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected > 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO required_fields_configs (id, branch_id, form_type, fields, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		cfg.ID,
		cfg.BranchID,
		cfg.FormType,
		cfg.Fields,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	).Error
}

func (r *repo) FindByBranch(ctx context.Context, db *gorm.DB, branchID snowflake.ID) ([]rfdomain.Config, error) {
	var configs []rfdomain.Config
	err := db.WithContext(ctx).Raw(
		`SELECT id, branch_id, form_type, fields, created_at, updated_at
		 FROM required_fields_configs WHERE branch_id = ?`,
		branchID,
	).Scan(&configs).Error
	if err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *repo) FindByBranchForm(ctx context.Context, db *gorm.DB, branchID snowflake.ID, formType string) (*rfdomain.Config, error) {
	var cfg rfdomain.Config
	err := db.WithContext(ctx).Raw(
		`SELECT id, branch_id, form_type, fields, created_at, updated_at
		 FROM required_fields_configs WHERE branch_id = ? AND form_type = ?`,
		branchID,
		formType,
	).Scan(&cfg).Error
	if err != nil {
		return nil, err
	}
	if cfg.ID == 0 {
		return nil, nil
	}
	return &cfg, nil
}
