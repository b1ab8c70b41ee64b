package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	aggdomain "github.com/hydrocore/waterworks/internal/aggregation/domain"
	"github.com/hydrocore/waterworks/internal/aggregation/repository"
	"github.com/hydrocore/waterworks/internal/approval"
	"github.com/hydrocore/waterworks/internal/config"
	dailydomain "github.com/hydrocore/waterworks/internal/dailyrecord/domain"
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

func setupAggService(t *testing.T, policy config.FormPolicy) (aggdomain.Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("test db: %v", err)
	}
	if err := conn.AutoMigrate(&dailydomain.DailyRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := New(Params{
		DB:     conn,
		Log:    zap.NewNop(),
		Repo:   repository.Provide(),
		Policy: config.NewStaticFormPolicyHolder(policy),
	})
	return svc, conn
}

func ptr(v float64) *float64 { return &v }

func insertDaily(t *testing.T, conn *gorm.DB, node *snowflake.Node, branchID, sourceTypeID, sourceNameID snowflake.ID, date time.Time, production float64, statusID int) {
	t.Helper()
	rec := dailydomain.DailyRecord{
		ID:               node.Generate(),
		BranchID:         branchID,
		SourceTypeID:     sourceTypeID,
		SourceNameID:     sourceNameID,
		Date:             date,
		ProductionVolume: ptr(production),
		OperationHours:   ptr(8),
		StatusID:         statusID,
		IsActive:         true,
		CreatedAt:        date,
		UpdatedAt:        date,
	}
	if err := conn.Create(&rec).Error; err != nil {
		t.Fatalf("insert daily record: %v", err)
	}
}

func TestComputeDailySumsLeapFebruary(t *testing.T) {
	node := mustNode(t)
	svc, conn := setupAggService(t, config.DefaultFormPolicy())

	branchID := node.Generate()
	sourceTypeID := node.Generate()
	sourceNameID := node.Generate()

	for day := 1; day <= 29; day++ {
		date := time.Date(2024, time.February, day, 0, 0, 0, 0, time.UTC)
		insertDaily(t, conn, node, branchID, sourceTypeID, sourceNameID, date, 10, approval.StatusAccepted)
	}

	sums, err := svc.ComputeDailySums(context.Background(), aggdomain.SumsRequest{
		BranchID:     branchID.String(),
		SourceTypeID: sourceTypeID.String(),
		Month:        2,
		Year:         2024,
	})
	if err != nil {
		t.Fatalf("compute sums: %v", err)
	}
	if sums.ProductionVolume != 290 {
		t.Fatalf("production volume = %v, want 290", sums.ProductionVolume)
	}
	if sums.OperationHours != 232 {
		t.Fatalf("operation hours = %v, want 232", sums.OperationHours)
	}

	result, err := svc.ValidateDailyCompletion(context.Background(), aggdomain.ValidationRequest{
		BranchID:     branchID.String(),
		SourceNameID: sourceNameID.String(),
		Month:        2,
		Year:         2024,
	})
	if err != nil {
		t.Fatalf("validate completion: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("completion invalid: %+v", result)
	}
	if result.CompletedDays != 29 || result.TotalDays != 29 {
		t.Fatalf("completed/total = %d/%d, want 29/29", result.CompletedDays, result.TotalDays)
	}
}

func TestComputeDailySumsUnknownBranchIsZero(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupAggService(t, config.DefaultFormPolicy())

	sums, err := svc.ComputeDailySums(context.Background(), aggdomain.SumsRequest{
		BranchID:     node.Generate().String(),
		SourceTypeID: node.Generate().String(),
		Month:        1,
		Year:         2025,
	})
	if err != nil {
		t.Fatalf("compute sums: %v", err)
	}
	if sums != (aggdomain.Sums{}) {
		t.Fatalf("sums = %+v, want zeroes", sums)
	}
}

func TestComputeDailySumsExcludesRejected(t *testing.T) {
	node := mustNode(t)
	svc, conn := setupAggService(t, config.DefaultFormPolicy())

	branchID := node.Generate()
	sourceTypeID := node.Generate()
	sourceNameID := node.Generate()

	date := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	insertDaily(t, conn, node, branchID, sourceTypeID, sourceNameID, date, 5, approval.StatusAccepted)
	insertDaily(t, conn, node, branchID, sourceTypeID, sourceNameID, date.AddDate(0, 0, 1), 7, approval.StatusRejected)
	insertDaily(t, conn, node, branchID, sourceTypeID, sourceNameID, date.AddDate(0, 0, 2), 3, approval.StatusPending)

	sums, err := svc.ComputeDailySums(context.Background(), aggdomain.SumsRequest{
		BranchID:     branchID.String(),
		SourceTypeID: sourceTypeID.String(),
		Month:        3,
		Year:         2025,
	})
	if err != nil {
		t.Fatalf("compute sums: %v", err)
	}
	if sums.ProductionVolume != 8 {
		t.Fatalf("production volume = %v, want 8 (accepted + pending)", sums.ProductionVolume)
	}
}

func TestComputeDailySumsBatchMatchesIndividual(t *testing.T) {
	node := mustNode(t)
	svc, conn := setupAggService(t, config.DefaultFormPolicy())

	type scope struct {
		branchID     snowflake.ID
		sourceTypeID snowflake.ID
	}
	scopes := make([]scope, 3)
	reqs := make([]aggdomain.SumsRequest, 3)
	for i := range scopes {
		scopes[i] = scope{branchID: node.Generate(), sourceTypeID: node.Generate()}
		sourceNameID := node.Generate()
		for day := 1; day <= 5; day++ {
			date := time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC)
			insertDaily(t, conn, node, scopes[i].branchID, scopes[i].sourceTypeID, sourceNameID, date, float64((i+1)*day), approval.StatusAccepted)
		}
		reqs[i] = aggdomain.SumsRequest{
			BranchID:     scopes[i].branchID.String(),
			SourceTypeID: scopes[i].sourceTypeID.String(),
			Month:        6,
			Year:         2025,
		}
	}

	items, err := svc.ComputeDailySumsBatch(context.Background(), reqs)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(items) != len(reqs) {
		t.Fatalf("batch items = %d, want %d", len(items), len(reqs))
	}

	for i, item := range items {
		single, err := svc.ComputeDailySums(context.Background(), reqs[i])
		if err != nil {
			t.Fatalf("single %d: %v", i, err)
		}
		if item.Sums != single {
			t.Fatalf("batch[%d] = %+v, individual = %+v", i, item.Sums, single)
		}
		want := float64((i + 1) * 15)
		if item.ProductionVolume != want {
			t.Fatalf("batch[%d] production = %v, want %v", i, item.ProductionVolume, want)
		}
	}
}

func TestComputeDailySumsBatchEmpty(t *testing.T) {
	svc, _ := setupAggService(t, config.DefaultFormPolicy())

	if _, err := svc.ComputeDailySumsBatch(context.Background(), nil); err != aggdomain.ErrEmptyBatch {
		t.Fatalf("err = %v, want ErrEmptyBatch", err)
	}
}

func TestValidateDailyCompletionIncomplete(t *testing.T) {
	node := mustNode(t)
	svc, conn := setupAggService(t, config.DefaultFormPolicy())

	branchID := node.Generate()
	sourceTypeID := node.Generate()
	sourceNameID := node.Generate()

	for day := 1; day <= 23; day++ {
		date := time.Date(2023, time.February, day, 0, 0, 0, 0, time.UTC)
		insertDaily(t, conn, node, branchID, sourceTypeID, sourceNameID, date, 1, approval.StatusAccepted)
	}

	result, err := svc.ValidateDailyCompletion(context.Background(), aggdomain.ValidationRequest{
		BranchID:     branchID.String(),
		SourceNameID: sourceNameID.String(),
		Month:        2,
		Year:         2023,
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.IsValid {
		t.Fatalf("expected invalid result, got %+v", result)
	}
	if result.CompletedDays != 23 || result.TotalDays != 28 {
		t.Fatalf("completed/total = %d/%d, want 23/28", result.CompletedDays, result.TotalDays)
	}
	if result.ErrorMessage == "" {
		t.Fatal("expected an error message on incomplete period")
	}
	wantPrefix := fmt.Sprintf("%d of %d days completed", 23, 28)
	if got := result.ErrorMessage[:len(wantPrefix)]; got != wantPrefix {
		t.Fatalf("message = %q, want prefix %q", result.ErrorMessage, wantPrefix)
	}
}

func TestComputeDailySumsUnaffectedByCompletionPolicy(t *testing.T) {
	node := mustNode(t)
	policy := config.DefaultFormPolicy()
	policy.CompletionPolicy = config.CompletionPolicyAccepted
	svc, conn := setupAggService(t, policy)

	branchID := node.Generate()
	sourceTypeID := node.Generate()
	sourceNameID := node.Generate()

	for day := 1; day <= 10; day++ {
		status := approval.StatusAccepted
		if day > 4 {
			status = approval.StatusPending
		}
		date := time.Date(2025, time.January, day, 0, 0, 0, 0, time.UTC)
		insertDaily(t, conn, node, branchID, sourceTypeID, sourceNameID, date, 3, status)
	}

	sums, err := svc.ComputeDailySums(context.Background(), aggdomain.SumsRequest{
		BranchID:     branchID.String(),
		SourceTypeID: sourceTypeID.String(),
		Month:        1,
		Year:         2025,
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	// The accepted policy narrows completion counting only; pending
	// records still feed the sums.
	if sums.ProductionVolume != 30 {
		t.Fatalf("production volume = %v, want 30", sums.ProductionVolume)
	}
}

func TestValidateDailyCompletionAcceptedOnlyPolicy(t *testing.T) {
	node := mustNode(t)
	policy := config.DefaultFormPolicy()
	policy.CompletionPolicy = config.CompletionPolicyAccepted
	svc, conn := setupAggService(t, policy)

	branchID := node.Generate()
	sourceTypeID := node.Generate()
	sourceNameID := node.Generate()

	for day := 1; day <= 31; day++ {
		status := approval.StatusAccepted
		if day > 20 {
			status = approval.StatusPending
		}
		date := time.Date(2025, time.January, day, 0, 0, 0, 0, time.UTC)
		insertDaily(t, conn, node, branchID, sourceTypeID, sourceNameID, date, 1, status)
	}

	result, err := svc.ValidateDailyCompletion(context.Background(), aggdomain.ValidationRequest{
		BranchID:     branchID.String(),
		SourceNameID: sourceNameID.String(),
		Month:        1,
		Year:         2025,
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.IsValid {
		t.Fatal("pending records must not count under the accepted policy")
	}
	if result.CompletedDays != 20 {
		t.Fatalf("completed days = %d, want 20", result.CompletedDays)
	}
}

func TestValidateDailyCompletionBadPeriod(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupAggService(t, config.DefaultFormPolicy())

	_, err := svc.ValidateDailyCompletion(context.Background(), aggdomain.ValidationRequest{
		BranchID:     node.Generate().String(),
		SourceNameID: node.Generate().String(),
		Month:        13,
		Year:         2025,
	})
	if err != aggdomain.ErrInvalidPeriod {
		t.Fatalf("err = %v, want ErrInvalidPeriod", err)
	}
}
