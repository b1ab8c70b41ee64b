package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hydrocore/waterworks/internal/auth/domain"
	"github.com/hydrocore/waterworks/internal/auth/repository"
	branchdomain "github.com/hydrocore/waterworks/internal/branch/domain"
	branchrepo "github.com/hydrocore/waterworks/internal/branch/repository"
	"github.com/hydrocore/waterworks/pkg/db"
)

func setup(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("test db: %v", err)
	}
	if err := conn.AutoMigrate(&domain.User{}, &domain.Session{}, &branchdomain.Branch{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	userRepo, sessionRepo := repository.New(conn)
	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        userRepo,
		SessionRepo: sessionRepo,
		BranchRepo:  branchrepo.Provide(),
	})
	return svc, conn, node
}

func createBranch(t *testing.T, conn *gorm.DB, node *snowflake.Node) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	branch := branchdomain.Branch{
		ID:        node.Generate(),
		AreaID:    node.Generate(),
		Name:      "Central",
		Code:      "CT-01",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := conn.Create(&branch).Error; err != nil {
		t.Fatalf("create branch: %v", err)
	}
	return branch.ID
}

func TestLoginLifecycle(t *testing.T) {
	svc, _, _ := setup(t)

	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:       "admin@waterworks.test",
		Password:    "s3cure-passw0rd",
		DisplayName: "Admin",
		RoleID:      domain.RoleSuperAdmin,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	result, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "admin@waterworks.test",
		Password: "s3cure-passw0rd",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.RawToken == "" {
		t.Fatal("login returned empty token")
	}
	if !result.ExpiresAt.After(time.Now()) {
		t.Fatalf("session already expired: %v", result.ExpiresAt)
	}

	authed, session, err := svc.Authenticate(context.Background(), result.RawToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("authenticated user = %v, want %v", authed.ID, user.ID)
	}
	if session.UserID != user.ID {
		t.Fatalf("session user = %v, want %v", session.UserID, user.ID)
	}

	if err := svc.Logout(context.Background(), result.RawToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, _, err := svc.Authenticate(context.Background(), result.RawToken); err == nil {
		t.Fatal("authenticate must fail after logout")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := setup(t)

	if _, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "user@waterworks.test",
		Password: "correct-password",
		RoleID:   domain.RoleCentralAdmin,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "user@waterworks.test",
		Password: "wrong-password",
	})
	if err != domain.ErrInvalidCredentials {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "nobody@waterworks.test",
		Password: "whatever",
	})
	if err != domain.ErrInvalidCredentials {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestBranchRolesRequireBranch(t *testing.T) {
	svc, conn, node := setup(t)

	_, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "encoder@waterworks.test",
		Password: "password123",
		RoleID:   domain.RoleEncoder,
	})
	if err != domain.ErrBranchRequired {
		t.Fatalf("err = %v, want ErrBranchRequired", err)
	}

	branchID := createBranch(t, conn, node)
	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "encoder@waterworks.test",
		Password: "password123",
		RoleID:   domain.RoleEncoder,
		BranchID: branchID.String(),
	})
	if err != nil {
		t.Fatalf("create user with branch: %v", err)
	}
	if user.BranchID == nil || *user.BranchID != branchID {
		t.Fatalf("user branch = %v, want %v", user.BranchID, branchID)
	}
}

func TestInactiveUserCannotLogin(t *testing.T) {
	svc, _, _ := setup(t)

	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "former@waterworks.test",
		Password: "password123",
		RoleID:   domain.RoleCentralAdmin,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	inactive := false
	if _, err := svc.UpdateUser(context.Background(), domain.UpdateUserRequest{
		ID:     user.ID.String(),
		Active: &inactive,
	}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "former@waterworks.test",
		Password: "password123",
	}); err != domain.ErrUserInactive {
		t.Fatalf("err = %v, want ErrUserInactive", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := setup(t)

	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "rotate@waterworks.test",
		Password: "old-password-1",
		RoleID:   domain.RoleSuperAdmin,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID.String(), "old-password-1", "new-password-2"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if _, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "rotate@waterworks.test",
		Password: "old-password-1",
	}); err != domain.ErrInvalidCredentials {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "rotate@waterworks.test",
		Password: "new-password-2",
	}); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}
