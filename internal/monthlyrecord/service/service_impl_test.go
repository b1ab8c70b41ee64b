package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	aggservice "github.com/hydrocore/waterworks/internal/aggregation/service"

	aggrepo "github.com/hydrocore/waterworks/internal/aggregation/repository"
	"github.com/hydrocore/waterworks/internal/approval"
	branchdomain "github.com/hydrocore/waterworks/internal/branch/domain"
	branchrepo "github.com/hydrocore/waterworks/internal/branch/repository"
	"github.com/hydrocore/waterworks/internal/clock"
	"github.com/hydrocore/waterworks/internal/config"
	dailydomain "github.com/hydrocore/waterworks/internal/dailyrecord/domain"
	monthlydomain "github.com/hydrocore/waterworks/internal/monthlyrecord/domain"
	"github.com/hydrocore/waterworks/internal/monthlyrecord/repository"
	rfdomain "github.com/hydrocore/waterworks/internal/requiredfields/domain"
	sourcedomain "github.com/hydrocore/waterworks/internal/source/domain"
	sourcerepo "github.com/hydrocore/waterworks/internal/source/repository"
	"github.com/hydrocore/waterworks/pkg/db"
)

type requiredFieldsStub struct {
	monthly []string
}

func (s *requiredFieldsStub) Get(ctx context.Context, branchID string) (*rfdomain.ConfigResponse, error) {
	return &rfdomain.ConfigResponse{BranchID: branchID, Monthly: s.monthly}, nil
}

func (s *requiredFieldsStub) Set(ctx context.Context, req rfdomain.SetRequest) (*rfdomain.ConfigResponse, error) {
	return s.Get(ctx, req.BranchID)
}

type fixture struct {
	svc          monthlydomain.Service
	conn         *gorm.DB
	node         *snowflake.Node
	branchID     snowflake.ID
	sourceTypeID snowflake.ID
	sourceNameID snowflake.ID
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func setup(t *testing.T, required []string, sourceTypeCode string) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("test db: %v", err)
	}
	if err := conn.AutoMigrate(
		&branchdomain.Branch{},
		&sourcedomain.SourceType{},
		&sourcedomain.SourceName{},
		&dailydomain.DailyRecord{},
		&monthlydomain.MonthlyRecord{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node := mustNode(t)
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	policy := config.NewStaticFormPolicyHolder(config.DefaultFormPolicy())

	branch := branchdomain.Branch{
		ID:        node.Generate(),
		AreaID:    node.Generate(),
		Name:      "Riverside",
		Code:      "RS-01",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := conn.Create(&branch).Error; err != nil {
		t.Fatalf("create branch: %v", err)
	}

	sourceType := sourcedomain.SourceType{
		ID:        node.Generate(),
		Name:      "Deep Well",
		Code:      sourceTypeCode,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := conn.Create(&sourceType).Error; err != nil {
		t.Fatalf("create source type: %v", err)
	}

	sourceName := sourcedomain.SourceName{
		ID:           node.Generate(),
		BranchID:     branch.ID,
		SourceTypeID: sourceType.ID,
		Name:         "Well 1",
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := conn.Create(&sourceName).Error; err != nil {
		t.Fatalf("create source name: %v", err)
	}

	aggregator := aggservice.New(aggservice.Params{
		DB:     conn,
		Log:    zap.NewNop(),
		Repo:   aggrepo.Provide(),
		Policy: policy,
	})

	svc := New(Params{
		DB:             conn,
		Log:            zap.NewNop(),
		GenID:          node,
		Clock:          clock.NewFakeClock(now),
		Repo:           repository.Provide(),
		BranchRepo:     branchrepo.Provide(),
		SourceNameRepo: sourcerepo.ProvideNameRepository(),
		SourceTypeRepo: sourcerepo.ProvideTypeRepository(),
		Aggregator:     aggregator,
		RequiredFields: &requiredFieldsStub{monthly: required},
		Policy:         policy,
	})

	return &fixture{
		svc:          svc,
		conn:         conn,
		node:         node,
		branchID:     branch.ID,
		sourceTypeID: sourceType.ID,
		sourceNameID: sourceName.ID,
	}
}

func ptr(v float64) *float64 { return &v }

// fillMonth inserts one accepted daily record per calendar day.
func fillMonth(t *testing.T, f *fixture, month, year, days int, production float64) {
	t.Helper()
	for day := 1; day <= days; day++ {
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		rec := dailydomain.DailyRecord{
			ID:               f.node.Generate(),
			BranchID:         f.branchID,
			SourceTypeID:     f.sourceTypeID,
			SourceNameID:     f.sourceNameID,
			Date:             date,
			ProductionVolume: ptr(production),
			StatusID:         approval.StatusAccepted,
			IsActive:         true,
			CreatedAt:        date,
			UpdatedAt:        date,
		}
		if err := f.conn.Create(&rec).Error; err != nil {
			t.Fatalf("insert daily record: %v", err)
		}
	}
}

func TestCreateGatedOnIncompleteMonth(t *testing.T) {
	f := setup(t, nil, "deep_well")
	fillMonth(t, f, 2, 2024, 20, 10)

	_, err := f.svc.Create(context.Background(), monthlydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Month:        2,
		Year:         2024,
	})

	var completion *monthlydomain.CompletionError
	if !errors.As(err, &completion) {
		t.Fatalf("err = %v, want CompletionError", err)
	}
	if completion.Result.IsValid {
		t.Fatal("completion result must be invalid")
	}
	if completion.Result.CompletedDays != 20 || completion.Result.TotalDays != 29 {
		t.Fatalf("completed/total = %d/%d, want 20/29", completion.Result.CompletedDays, completion.Result.TotalDays)
	}
	if completion.Result.ErrorMessage == "" {
		t.Fatal("expected error message on gated submission")
	}
}

func TestCreateAutoSumsFromDailyRecords(t *testing.T) {
	f := setup(t, nil, "deep_well")
	fillMonth(t, f, 2, 2024, 29, 10)

	rec, err := f.svc.Create(context.Background(), monthlydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Month:        2,
		Year:         2024,
		Values:       map[string]any{"electricityCost": 1500.75},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if rec.ProductionVolume != 290 {
		t.Fatalf("production volume = %v, want 290", rec.ProductionVolume)
	}
	if rec.StatusID != approval.StatusPending {
		t.Fatalf("status = %d, want pending", rec.StatusID)
	}
	if rec.ElectricityCost == nil || *rec.ElectricityCost != 1500.75 {
		t.Fatalf("electricity cost = %v", rec.ElectricityCost)
	}
}

func TestCreateRejectsClientAutoFields(t *testing.T) {
	f := setup(t, nil, "deep_well")
	fillMonth(t, f, 2, 2024, 29, 10)

	_, err := f.svc.Create(context.Background(), monthlydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Month:        2,
		Year:         2024,
		Values:       map[string]any{"productionVolume": 9999},
	})
	if err != monthlydomain.ErrAutoFieldSubmitted {
		t.Fatalf("err = %v, want ErrAutoFieldSubmitted", err)
	}
}

func TestCreateDuplicatePeriod(t *testing.T) {
	f := setup(t, nil, "deep_well")
	fillMonth(t, f, 1, 2024, 31, 5)

	req := monthlydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Month:        1,
		Year:         2024,
	}
	if _, err := f.svc.Create(context.Background(), req); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := f.svc.Create(context.Background(), req); err != monthlydomain.ErrDuplicatePeriod {
		t.Fatalf("err = %v, want ErrDuplicatePeriod", err)
	}
}

func TestCreateMissingRequiredMonthlyField(t *testing.T) {
	f := setup(t, []string{"electricityCost"}, "deep_well")
	fillMonth(t, f, 1, 2024, 31, 5)

	_, err := f.svc.Create(context.Background(), monthlydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Month:        1,
		Year:         2024,
	})
	if err != monthlydomain.ErrMissingRequired {
		t.Fatalf("err = %v, want ErrMissingRequired", err)
	}
}

func TestBulkOuttakeOnlyForBulkSources(t *testing.T) {
	f := setup(t, nil, "deep_well")
	fillMonth(t, f, 1, 2024, 31, 5)

	_, err := f.svc.Create(context.Background(), monthlydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Month:        1,
		Year:         2024,
		Values:       map[string]any{"bulkOuttake": "WTP"},
	})
	if err != monthlydomain.ErrInvalidBulkOuttake {
		t.Fatalf("err = %v, want ErrInvalidBulkOuttake", err)
	}
}

func TestBulkOuttakeChoiceValidation(t *testing.T) {
	f := setup(t, nil, "bulk")
	fillMonth(t, f, 1, 2024, 31, 5)

	_, err := f.svc.Create(context.Background(), monthlydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Month:        1,
		Year:         2024,
		Values:       map[string]any{"bulkOuttake": "Somewhere Else"},
	})
	if err != monthlydomain.ErrInvalidBulkOuttake {
		t.Fatalf("err = %v, want ErrInvalidBulkOuttake", err)
	}

	rec, err := f.svc.Create(context.Background(), monthlydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Month:        1,
		Year:         2024,
		Values:       map[string]any{"bulkOuttake": "WTP"},
	})
	if err != nil {
		t.Fatalf("create with valid choice: %v", err)
	}
	if rec.BulkOuttake != "WTP" {
		t.Fatalf("bulk outtake = %q, want WTP", rec.BulkOuttake)
	}
}

func TestUpdateRefreshesSumsAndResubmits(t *testing.T) {
	f := setup(t, nil, "deep_well")
	fillMonth(t, f, 1, 2024, 31, 5)

	rec, err := f.svc.Create(context.Background(), monthlydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Month:        1,
		Year:         2024,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ProductionVolume != 155 {
		t.Fatalf("production volume = %v, want 155", rec.ProductionVolume)
	}

	if _, err := f.svc.Decide(context.Background(), monthlydomain.DecisionRequest{
		ID:       rec.ID.String(),
		Decision: "rejected",
		Comment:  "electricity cost missing",
	}); err != nil {
		t.Fatalf("decide: %v", err)
	}

	// A daily correction lands before the re-edit.
	extra := dailydomain.DailyRecord{
		ID:               f.node.Generate(),
		BranchID:         f.branchID,
		SourceTypeID:     f.sourceTypeID,
		SourceNameID:     f.sourceNameID,
		Date:             time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		ProductionVolume: ptr(45),
		StatusID:         approval.StatusAccepted,
		IsActive:         true,
	}
	if err := f.conn.Create(&extra).Error; err != nil {
		t.Fatalf("insert correction: %v", err)
	}

	updated, err := f.svc.Update(context.Background(), monthlydomain.UpdateRequest{
		ID:     rec.ID.String(),
		Values: map[string]any{"electricityCost": 900},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.StatusID != approval.StatusPending {
		t.Fatalf("status = %d, want pending after re-edit", updated.StatusID)
	}
	if updated.Comment != "" {
		t.Fatalf("comment = %q, want cleared", updated.Comment)
	}
	if updated.ProductionVolume != 200 {
		t.Fatalf("production volume = %v, want 200 after refresh", updated.ProductionVolume)
	}
}

func TestDecideAcceptStampsComment(t *testing.T) {
	f := setup(t, nil, "deep_well")
	fillMonth(t, f, 1, 2024, 31, 5)

	rec, err := f.svc.Create(context.Background(), monthlydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Month:        1,
		Year:         2024,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	decided, err := f.svc.Decide(context.Background(), monthlydomain.DecisionRequest{
		ID:       rec.ID.String(),
		Decision: "approve",
		Comment:  "looks partial",
	})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.Comment != "Accepted" {
		t.Fatalf("comment = %q, want Accepted", decided.Comment)
	}
}

func TestInsertDuplicatePeriodRace(t *testing.T) {
	f := setup(t, nil, "deep_well")
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	first := monthlydomain.MonthlyRecord{
		ID:           f.node.Generate(),
		BranchID:     f.branchID,
		SourceTypeID: f.sourceTypeID,
		SourceNameID: f.sourceNameID,
		Month:        2,
		Year:         2024,
		StatusID:     approval.StatusPending,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	second := first
	second.ID = f.node.Generate()

	monthlyRepo := repository.Provide()
	if err := monthlyRepo.Insert(context.Background(), f.conn, &first); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	// The unique index catches writers that both passed the period check.
	if err := monthlyRepo.Insert(context.Background(), f.conn, &second); err != monthlydomain.ErrDuplicatePeriod {
		t.Fatalf("err = %v, want ErrDuplicatePeriod", err)
	}
}

func TestDecideRejectRequiresComment(t *testing.T) {
	f := setup(t, nil, "deep_well")
	fillMonth(t, f, 1, 2024, 31, 5)

	rec, err := f.svc.Create(context.Background(), monthlydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Month:        1,
		Year:         2024,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.Decide(context.Background(), monthlydomain.DecisionRequest{
		ID:       rec.ID.String(),
		Decision: "rejected",
	}); err != monthlydomain.ErrCommentRequired {
		t.Fatalf("err = %v, want ErrCommentRequired", err)
	}
}
