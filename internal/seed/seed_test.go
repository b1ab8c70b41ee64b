package seed

import (
	"testing"

	"gorm.io/gorm"

	areadomain "github.com/hydrocore/waterworks/internal/area/domain"
	authdomain "github.com/hydrocore/waterworks/internal/auth/domain"
	branchdomain "github.com/hydrocore/waterworks/internal/branch/domain"
	sourcedomain "github.com/hydrocore/waterworks/internal/source/domain"
	"github.com/hydrocore/waterworks/pkg/db"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("test db: %v", err)
	}
	if err := conn.AutoMigrate(
		&areadomain.Area{},
		&branchdomain.Branch{},
		&sourcedomain.SourceType{},
		&authdomain.User{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func count(t *testing.T, conn *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	if err := conn.Table(table).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestEnsureDefaults(t *testing.T) {
	conn := setupDB(t)

	if err := EnsureDefaults(conn, "admin@waterworks.test", "bootstrap-password"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if n := count(t, conn, "areas"); n != 1 {
		t.Fatalf("areas = %d, want 1", n)
	}
	if n := count(t, conn, "branches"); n != 1 {
		t.Fatalf("branches = %d, want 1", n)
	}
	if n := count(t, conn, "source_types"); n != 4 {
		t.Fatalf("source types = %d, want 4", n)
	}

	var admin authdomain.User
	if err := conn.Where("email = ?", "admin@waterworks.test").First(&admin).Error; err != nil {
		t.Fatalf("find admin: %v", err)
	}
	if admin.RoleID != authdomain.RoleSuperAdmin {
		t.Fatalf("admin role = %d, want super admin", admin.RoleID)
	}
	if !admin.IsDefault {
		t.Fatal("seeded admin must be flagged as default")
	}
}

func TestEnsureDefaultsIdempotent(t *testing.T) {
	conn := setupDB(t)

	if err := EnsureDefaults(conn, "admin@waterworks.test", "bootstrap-password"); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	// Later startups run without the bootstrap password once the admin
	// exists.
	if err := EnsureDefaults(conn, "admin@waterworks.test", ""); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	if n := count(t, conn, "areas"); n != 1 {
		t.Fatalf("areas = %d after reseed, want 1", n)
	}
	if n := count(t, conn, "source_types"); n != 4 {
		t.Fatalf("source types = %d after reseed, want 4", n)
	}
	if n := count(t, conn, "users"); n != 1 {
		t.Fatalf("users = %d after reseed, want 1", n)
	}
}

func TestEnsureDefaultsRequiresPasswordOnFirstRun(t *testing.T) {
	conn := setupDB(t)

	if err := EnsureDefaults(conn, "admin@waterworks.test", ""); err == nil {
		t.Fatal("expected error when no admin exists and no password is given")
	}
}
