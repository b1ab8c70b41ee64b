package service

import (
	"context"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	branchdomain "github.com/hydrocore/waterworks/internal/branch/domain"
	branchrepo "github.com/hydrocore/waterworks/internal/branch/repository"
	"github.com/hydrocore/waterworks/internal/config"
	rfdomain "github.com/hydrocore/waterworks/internal/requiredfields/domain"
	"github.com/hydrocore/waterworks/internal/requiredfields/repository"
	"github.com/hydrocore/waterworks/pkg/db"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func setupService(t *testing.T) (rfdomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("test db: %v", err)
	}
	if err := conn.AutoMigrate(&branchdomain.Branch{}, &rfdomain.Config{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node := mustNode(t)
	svc := New(Params{
		DB:         conn,
		Log:        zap.NewNop(),
		GenID:      node,
		Repo:       repository.Provide(),
		BranchRepo: branchrepo.Provide(),
		Policy:     config.NewStaticFormPolicyHolder(config.DefaultFormPolicy()),
	})
	return svc, conn, node
}

func createBranch(t *testing.T, conn *gorm.DB, node *snowflake.Node) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	branch := branchdomain.Branch{
		ID:        node.Generate(),
		AreaID:    node.Generate(),
		Name:      "North District",
		Code:      "ND-" + node.Generate().String(),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := conn.Create(&branch).Error; err != nil {
		t.Fatalf("create branch: %v", err)
	}
	return branch.ID
}

func TestGetFallsBackToDefaults(t *testing.T) {
	svc, conn, node := setupService(t)
	branchID := createBranch(t, conn, node)

	resp, err := svc.Get(context.Background(), branchID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	// Responses are normalized to sorted order.
	defaults := config.DefaultFormPolicy().DefaultRequired
	wantDaily := append([]string(nil), defaults.Daily...)
	wantMonthly := append([]string(nil), defaults.Monthly...)
	sort.Strings(wantDaily)
	sort.Strings(wantMonthly)

	if !reflect.DeepEqual(resp.Daily, wantDaily) {
		t.Fatalf("daily = %v, want defaults %v", resp.Daily, wantDaily)
	}
	if !reflect.DeepEqual(resp.Monthly, wantMonthly) {
		t.Fatalf("monthly = %v, want defaults %v", resp.Monthly, wantMonthly)
	}
}

func TestSetIsIdempotentAndOrderIndependent(t *testing.T) {
	svc, conn, node := setupService(t)
	branchID := createBranch(t, conn, node)

	first, err := svc.Set(context.Background(), rfdomain.SetRequest{
		BranchID: branchID.String(),
		FormType: "daily",
		Fields:   []string{"operationHours", "productionVolume", "remarks"},
	})
	if err != nil {
		t.Fatalf("first set: %v", err)
	}

	// Same set, shuffled and with duplicates.
	second, err := svc.Set(context.Background(), rfdomain.SetRequest{
		BranchID: branchID.String(),
		FormType: "daily",
		Fields:   []string{"remarks", "productionVolume", "operationHours", "productionVolume"},
	})
	if err != nil {
		t.Fatalf("second set: %v", err)
	}

	if !reflect.DeepEqual(first.Daily, second.Daily) {
		t.Fatalf("sets differ: %v vs %v", first.Daily, second.Daily)
	}

	var count int64
	if err := conn.Table("required_fields_configs").Where("branch_id = ?", branchID).Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("stored rows = %d, want 1", count)
	}
}

func TestSetReplacesOnlyOneForm(t *testing.T) {
	svc, conn, node := setupService(t)
	branchID := createBranch(t, conn, node)

	if _, err := svc.Set(context.Background(), rfdomain.SetRequest{
		BranchID: branchID.String(),
		FormType: "monthly",
		Fields:   []string{"electricityCost", "laborCost"},
	}); err != nil {
		t.Fatalf("set monthly: %v", err)
	}

	resp, err := svc.Set(context.Background(), rfdomain.SetRequest{
		BranchID: branchID.String(),
		FormType: "daily",
		Fields:   []string{"productionVolume"},
	})
	if err != nil {
		t.Fatalf("set daily: %v", err)
	}

	if !reflect.DeepEqual(resp.Daily, []string{"productionVolume"}) {
		t.Fatalf("daily = %v", resp.Daily)
	}
	if !reflect.DeepEqual(resp.Monthly, []string{"electricityCost", "laborCost"}) {
		t.Fatalf("monthly = %v", resp.Monthly)
	}
}

func TestSetRejectsAutoSummedMonthlyField(t *testing.T) {
	svc, conn, node := setupService(t)
	branchID := createBranch(t, conn, node)

	_, err := svc.Set(context.Background(), rfdomain.SetRequest{
		BranchID: branchID.String(),
		FormType: "monthly",
		Fields:   []string{"productionVolume"},
	})
	if err != rfdomain.ErrFieldNotAllowed {
		t.Fatalf("err = %v, want ErrFieldNotAllowed", err)
	}
}

func TestSetRejectsUnknownField(t *testing.T) {
	svc, conn, node := setupService(t)
	branchID := createBranch(t, conn, node)

	_, err := svc.Set(context.Background(), rfdomain.SetRequest{
		BranchID: branchID.String(),
		FormType: "daily",
		Fields:   []string{"waterColor"},
	})
	if err != rfdomain.ErrUnknownField {
		t.Fatalf("err = %v, want ErrUnknownField", err)
	}
}

func TestSetUnknownBranch(t *testing.T) {
	svc, _, node := setupService(t)

	_, err := svc.Set(context.Background(), rfdomain.SetRequest{
		BranchID: node.Generate().String(),
		FormType: "daily",
		Fields:   []string{"productionVolume"},
	})
	if err != rfdomain.ErrBranchNotFound {
		t.Fatalf("err = %v, want ErrBranchNotFound", err)
	}
}

func TestSetInvalidFormType(t *testing.T) {
	svc, conn, node := setupService(t)
	branchID := createBranch(t, conn, node)

	_, err := svc.Set(context.Background(), rfdomain.SetRequest{
		BranchID: branchID.String(),
		FormType: "weekly",
		Fields:   []string{"productionVolume"},
	})
	if err != rfdomain.ErrInvalidFormType {
		t.Fatalf("err = %v, want ErrInvalidFormType", err)
	}
}
