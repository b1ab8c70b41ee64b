package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	branchdomain "github.com/hydrocore/waterworks/internal/branch/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() branchdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, b *branchdomain.Branch) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO branches (id, area_id, name, code, address, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.AreaID,
		b.Name,
		b.Code,
		b.Address,
		b.Active,
		b.CreatedAt,
		b.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, b *branchdomain.Branch) error {
	return db.WithContext(ctx).Exec(
		`UPDATE branches
		 SET name = ?, code = ?, address = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		b.Name,
		b.Code,
		b.Address,
		b.Active,
		b.UpdatedAt,
		b.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*branchdomain.Branch, error) {
	var branch branchdomain.Branch
	err := db.WithContext(ctx).Raw(
		`SELECT id, area_id, name, code, address, active, created_at, updated_at
		 FROM branches WHERE id = ?`,
		id,
	).Scan(&branch).Error
	if err != nil {
		return nil, err
	}
	if branch.ID == 0 {
		return nil, nil
	}
	return &branch, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter branchdomain.ListFilter) ([]branchdomain.Branch, error) {
	query := `SELECT id, area_id, name, code, address, active, created_at, updated_at FROM branches WHERE 1 = 1`
	args := make([]interface{}, 0, 2)
	if filter.AreaID != 0 {
		query += ` AND area_id = ?`
		args = append(args, filter.AreaID)
	}
	if filter.ActiveOnly {
		query += ` AND active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY name ASC`

	var branches []branchdomain.Branch
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}
