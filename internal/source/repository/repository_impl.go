package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	sourcedomain "github.com/hydrocore/waterworks/internal/source/domain"
	"gorm.io/gorm"
)

type typeRepo struct{}

func ProvideTypeRepository() sourcedomain.TypeRepository {
	return &typeRepo{}
}

func (r *typeRepo) Insert(ctx context.Context, db *gorm.DB, st *sourcedomain.SourceType) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO source_types (id, name, code, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		st.ID,
		st.Name,
		st.Code,
		st.Active,
		st.CreatedAt,
		st.UpdatedAt,
	).Error
}

func (r *typeRepo) Update(ctx context.Context, db *gorm.DB, st *sourcedomain.SourceType) error {
	return db.WithContext(ctx).Exec(
		`UPDATE source_types
		 SET name = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		st.Name,
		st.Active,
		st.UpdatedAt,
		st.ID,
	).Error
}

func (r *typeRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*sourcedomain.SourceType, error) {
	var st sourcedomain.SourceType
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, code, active, created_at, updated_at
		 FROM source_types WHERE id = ?`,
		id,
	).Scan(&st).Error
	if err != nil {
		return nil, err
	}
	if st.ID == 0 {
		return nil, nil
	}
	return &st, nil
}

func (r *typeRepo) List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]sourcedomain.SourceType, error) {
	query := `SELECT id, name, code, active, created_at, updated_at FROM source_types`
	args := make([]interface{}, 0, 1)
	if activeOnly {
		query += ` WHERE active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY name ASC`

	var types []sourcedomain.SourceType
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

type nameRepo struct{}

func ProvideNameRepository() sourcedomain.NameRepository {
	return &nameRepo{}
}

func (r *nameRepo) Insert(ctx context.Context, db *gorm.DB, sn *sourcedomain.SourceName) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO source_names (id, branch_id, source_type_id, name, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sn.ID,
		sn.BranchID,
		sn.SourceTypeID,
		sn.Name,
		sn.Active,
		sn.CreatedAt,
		sn.UpdatedAt,
	).Error
}

func (r *nameRepo) Update(ctx context.Context, db *gorm.DB, sn *sourcedomain.SourceName) error {
	return db.WithContext(ctx).Exec(
		`UPDATE source_names
		 SET name = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		sn.Name,
		sn.Active,
		sn.UpdatedAt,
		sn.ID,
	).Error
}

func (r *nameRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*sourcedomain.SourceName, error) {
	var sn sourcedomain.SourceName
	err := db.WithContext(ctx).Raw(
		`SELECT id, branch_id, source_type_id, name, active, created_at, updated_at
		 FROM source_names WHERE id = ?`,
		id,
	).Scan(&sn).Error
	if err != nil {
		return nil, err
	}
	if sn.ID == 0 {
		return nil, nil
	}
	return &sn, nil
}

func (r *nameRepo) ListByBranch(ctx context.Context, db *gorm.DB, branchID snowflake.ID, activeOnly bool) ([]sourcedomain.SourceName, error) {
	query := `SELECT id, branch_id, source_type_id, name, active, created_at, updated_at
		 FROM source_names WHERE branch_id = ?`
	args := []interface{}{branchID}
	if activeOnly {
		query += ` AND active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY name ASC`

	var names []sourcedomain.SourceName
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&names).Error; err != nil {
		return nil, err
	}
	return names, nil
}
