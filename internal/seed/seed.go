package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	areadomain "github.com/hydrocore/waterworks/internal/area/domain"
	authdomain "github.com/hydrocore/waterworks/internal/auth/domain"
	"github.com/hydrocore/waterworks/internal/auth/password"
	branchdomain "github.com/hydrocore/waterworks/internal/branch/domain"
	sourcedomain "github.com/hydrocore/waterworks/internal/source/domain"
)

const (
	defaultAreaName   = "Main"
	defaultAreaCode   = "MAIN"
	defaultBranchName = "Main Branch"
	defaultBranchCode = "MAIN-01"

	defaultAdminDisplay = "System Administrator"
)

var defaultSourceTypes = []struct {
	Name string
	Code string
}{
	{Name: "Deep Well", Code: "deep_well"},
	{Name: "Spring", Code: "spring"},
	{Name: "Surface Water", Code: "surface"},
	{Name: "Bulk Supply", Code: "bulk"},
}

// EnsureDefaults seeds the default area, branch, source types and the
// super admin account so a fresh deployment can be logged into.
func EnsureDefaults(db *gorm.DB, adminEmail, adminPassword string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	adminEmail = strings.ToLower(strings.TrimSpace(adminEmail))
	if adminEmail == "" {
		return errors.New("seed admin email is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		area, err := ensureAreaTx(ctx, tx, node)
		if err != nil {
			return err
		}
		if _, err := ensureBranchTx(ctx, tx, node, area.ID); err != nil {
			return err
		}
		if err := ensureSourceTypesTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureAdminTx(ctx, tx, node, adminEmail, adminPassword)
	})
}

func ensureAreaTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*areadomain.Area, error) {
	var area areadomain.Area
	err := tx.WithContext(ctx).Where("name = ?", defaultAreaName).First(&area).Error
	if err == nil {
		return &area, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	area = areadomain.Area{
		ID:        node.Generate(),
		Name:      defaultAreaName,
		Code:      defaultAreaCode,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&area).Error; err != nil {
		return nil, err
	}
	return &area, nil
}

func ensureBranchTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, areaID snowflake.ID) (*branchdomain.Branch, error) {
	var branch branchdomain.Branch
	err := tx.WithContext(ctx).Where("code = ?", defaultBranchCode).First(&branch).Error
	if err == nil {
		return &branch, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	branch = branchdomain.Branch{
		ID:        node.Generate(),
		AreaID:    areaID,
		Name:      defaultBranchName,
		Code:      defaultBranchCode,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

func ensureSourceTypesTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	for _, st := range defaultSourceTypes {
		var existing sourcedomain.SourceType
		err := tx.WithContext(ctx).Where("code = ?", st.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		record := sourcedomain.SourceType{
			ID:        node.Generate(),
			Name:      st.Name,
			Code:      st.Code,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, email, plaintext string) error {
	var user authdomain.User
	err := tx.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if plaintext == "" {
		return errors.New("seed admin password is required for the first startup")
	}

	hashed, err := password.Hash(plaintext)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user = authdomain.User{
		ID:           node.Generate(),
		Email:        email,
		DisplayName:  defaultAdminDisplay,
		PasswordHash: &hashed,
		RoleID:       authdomain.RoleSuperAdmin,
		Active:       true,
		IsDefault:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return tx.WithContext(ctx).Create(&user).Error
}
