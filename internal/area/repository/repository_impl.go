package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	areadomain "github.com/hydrocore/waterworks/internal/area/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() areadomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, a *areadomain.Area) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO areas (id, name, code, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.Name,
		a.Code,
		a.Active,
		a.CreatedAt,
		a.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, a *areadomain.Area) error {
	return db.WithContext(ctx).Exec(
		`UPDATE areas
		 SET name = ?, code = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		a.Name,
		a.Code,
		a.Active,
		a.UpdatedAt,
		a.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*areadomain.Area, error) {
	var area areadomain.Area
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, code, active, created_at, updated_at
		 FROM areas WHERE id = ?`,
		id,
	).Scan(&area).Error
	if err != nil {
		return nil, err
	}
	if area.ID == 0 {
		return nil, nil
	}
	return &area, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]areadomain.Area, error) {
	query := `SELECT id, name, code, active, created_at, updated_at FROM areas`
	if activeOnly {
		query += ` WHERE active = ?`
	}
	query += ` ORDER BY name ASC`

	var areas []areadomain.Area
	var err error
	if activeOnly {
		err = db.WithContext(ctx).Raw(query, true).Scan(&areas).Error
	} else {
		err = db.WithContext(ctx).Raw(query).Scan(&areas).Error
	}
	if err != nil {
		return nil, err
	}
	return areas, nil
}
