package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hydrocore/waterworks/internal/approval"
	branchdomain "github.com/hydrocore/waterworks/internal/branch/domain"
	branchrepo "github.com/hydrocore/waterworks/internal/branch/repository"
	"github.com/hydrocore/waterworks/internal/clock"
	dailydomain "github.com/hydrocore/waterworks/internal/dailyrecord/domain"
	"github.com/hydrocore/waterworks/internal/dailyrecord/repository"
	rfdomain "github.com/hydrocore/waterworks/internal/requiredfields/domain"
	sourcedomain "github.com/hydrocore/waterworks/internal/source/domain"
	sourcerepo "github.com/hydrocore/waterworks/internal/source/repository"
	"github.com/hydrocore/waterworks/pkg/db"
)

// requiredFieldsStub serves a fixed required-field configuration.
type requiredFieldsStub struct {
	daily   []string
	monthly []string
}

func (s *requiredFieldsStub) Get(ctx context.Context, branchID string) (*rfdomain.ConfigResponse, error) {
	return &rfdomain.ConfigResponse{BranchID: branchID, Daily: s.daily, Monthly: s.monthly}, nil
}

func (s *requiredFieldsStub) Set(ctx context.Context, req rfdomain.SetRequest) (*rfdomain.ConfigResponse, error) {
	return s.Get(ctx, req.BranchID)
}

type fixture struct {
	svc          dailydomain.Service
	conn         *gorm.DB
	node         *snowflake.Node
	clock        *clock.FakeClock
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

func setup(t *testing.T, required []string) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("test db: %v", err)
	}
	if err := conn.AutoMigrate(&branchdomain.Branch{}, &sourcedomain.SourceName{}, &dailydomain.DailyRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node := mustNode(t)
	now := time.Date(2024, time.February, 10, 8, 0, 0, 0, time.UTC)
	fake := clock.NewFakeClock(now)

	branch := branchdomain.Branch{
		ID:        node.Generate(),
		AreaID:    node.Generate(),
		Name:      "Hillside",
		Code:      "HS-01",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := conn.Create(&branch).Error; err != nil {
		t.Fatalf("create branch: %v", err)
	}

	sourceTypeID := node.Generate()
	sourceName := sourcedomain.SourceName{
		ID:           node.Generate(),
		BranchID:     branch.ID,
		SourceTypeID: sourceTypeID,
		Name:         "Well 3",
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := conn.Create(&sourceName).Error; err != nil {
		t.Fatalf("create source name: %v", err)
	}

	svc := New(Params{
		DB:             conn,
		Log:            zap.NewNop(),
		GenID:          node,
		Clock:          fake,
		Repo:           repository.Provide(),
		BranchRepo:     branchrepo.Provide(),
		SourceNameRepo: sourcerepo.ProvideNameRepository(),
		RequiredFields: &requiredFieldsStub{daily: required},
	})

	return &fixture{
		svc:          svc,
		conn:         conn,
		node:         node,
		clock:        fake,
		branchID:     branch.ID,
		sourceTypeID: sourceTypeID,
		sourceNameID: sourceName.ID,
	}
}

func TestCreateDailyRecord(t *testing.T) {
	f := setup(t, []string{"productionVolume"})

	rec, err := f.svc.Create(context.Background(), dailydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Date:         "2024-02-10",
		Values: map[string]any{
			"productionVolume": 125.5,
			"operationHours":   16,
			"remarks":          "normal operation",
		},
		ActorID: f.node.Generate(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if rec.StatusID != approval.StatusPending {
		t.Fatalf("status = %d, want pending", rec.StatusID)
	}
	if rec.SourceTypeID != f.sourceTypeID {
		t.Fatalf("source type = %v, want %v", rec.SourceTypeID, f.sourceTypeID)
	}
	if rec.ProductionVolume == nil || *rec.ProductionVolume != 125.5 {
		t.Fatalf("production volume = %v", rec.ProductionVolume)
	}
	if rec.OperationHours == nil || *rec.OperationHours != 16 {
		t.Fatalf("operation hours = %v", rec.OperationHours)
	}
	if rec.Remarks != "normal operation" {
		t.Fatalf("remarks = %q", rec.Remarks)
	}
}

func TestCreateMissingRequiredField(t *testing.T) {
	f := setup(t, []string{"productionVolume", "operationHours"})

	_, err := f.svc.Create(context.Background(), dailydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Date:         "2024-02-10",
		Values:       map[string]any{"productionVolume": 10},
	})
	if err != dailydomain.ErrMissingRequired {
		t.Fatalf("err = %v, want ErrMissingRequired", err)
	}
}

func TestCreateUnknownField(t *testing.T) {
	f := setup(t, nil)

	_, err := f.svc.Create(context.Background(), dailydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Date:         "2024-02-10",
		Values:       map[string]any{"turbidity": 3},
	})
	if err != dailydomain.ErrUnknownField {
		t.Fatalf("err = %v, want ErrUnknownField", err)
	}
}

func TestCreateDuplicateDate(t *testing.T) {
	f := setup(t, nil)
	createPending(t, f)

	_, err := f.svc.Create(context.Background(), dailydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Date:         "2024-02-10",
		Values:       map[string]any{"productionVolume": 99},
	})
	if err != dailydomain.ErrDuplicateDate {
		t.Fatalf("err = %v, want ErrDuplicateDate", err)
	}
}

func TestCreateAfterDeleteSameDate(t *testing.T) {
	f := setup(t, nil)
	rec := createPending(t, f)

	if err := f.svc.Delete(context.Background(), rec.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// A deleted sheet no longer blocks the day.
	if _, err := f.svc.Create(context.Background(), dailydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Date:         "2024-02-10",
		Values:       map[string]any{"productionVolume": 99},
	}); err != nil {
		t.Fatalf("recreate: %v", err)
	}
}

func TestCreateSourceFromOtherBranch(t *testing.T) {
	f := setup(t, nil)

	other := branchdomain.Branch{
		ID:        f.node.Generate(),
		AreaID:    f.node.Generate(),
		Name:      "Lakeside",
		Code:      "LS-01",
		Active:    true,
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	if err := f.conn.Create(&other).Error; err != nil {
		t.Fatalf("create branch: %v", err)
	}

	_, err := f.svc.Create(context.Background(), dailydomain.CreateRequest{
		BranchID:     other.ID.String(),
		SourceNameID: f.sourceNameID.String(),
		Date:         "2024-02-10",
		Values:       map[string]any{"productionVolume": 10},
	})
	if err != dailydomain.ErrSourceBranchMismatch {
		t.Fatalf("err = %v, want ErrSourceBranchMismatch", err)
	}
}

func TestCreateBadDate(t *testing.T) {
	f := setup(t, nil)

	_, err := f.svc.Create(context.Background(), dailydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Date:         "10/02/2024",
		Values:       map[string]any{"productionVolume": 10},
	})
	if err != dailydomain.ErrInvalidDate {
		t.Fatalf("err = %v, want ErrInvalidDate", err)
	}
}

func createPending(t *testing.T, f *fixture) *dailydomain.DailyRecord {
	t.Helper()
	rec, err := f.svc.Create(context.Background(), dailydomain.CreateRequest{
		BranchID:     f.branchID.String(),
		SourceNameID: f.sourceNameID.String(),
		Date:         "2024-02-10",
		Values:       map[string]any{"productionVolume": 42},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return rec
}

func TestDecideRejectRequiresComment(t *testing.T) {
	f := setup(t, nil)
	rec := createPending(t, f)

	_, err := f.svc.Decide(context.Background(), dailydomain.DecisionRequest{
		ID:       rec.ID.String(),
		Decision: "rejected",
		Comment:  "   ",
	})
	if err != dailydomain.ErrCommentRequired {
		t.Fatalf("err = %v, want ErrCommentRequired", err)
	}
}

func TestDecideRejectPersistsComment(t *testing.T) {
	f := setup(t, nil)
	rec := createPending(t, f)

	decided, err := f.svc.Decide(context.Background(), dailydomain.DecisionRequest{
		ID:       rec.ID.String(),
		Decision: "rejected",
		Comment:  "meter reading looks implausible",
	})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.StatusID != approval.StatusRejected {
		t.Fatalf("status = %d, want rejected", decided.StatusID)
	}
	if decided.Comment != "meter reading looks implausible" {
		t.Fatalf("comment = %q", decided.Comment)
	}
}

func TestDecideAcceptStampsComment(t *testing.T) {
	f := setup(t, nil)
	rec := createPending(t, f)

	decided, err := f.svc.Decide(context.Background(), dailydomain.DecisionRequest{
		ID:       rec.ID.String(),
		Decision: "accepted",
	})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.Comment != "Accepted" {
		t.Fatalf("comment = %q, want Accepted", decided.Comment)
	}
}

func TestDecideAcceptedThenDecideAgain(t *testing.T) {
	f := setup(t, nil)
	rec := createPending(t, f)

	if _, err := f.svc.Decide(context.Background(), dailydomain.DecisionRequest{
		ID:       rec.ID.String(),
		Decision: "accepted",
	}); err != nil {
		t.Fatalf("decide: %v", err)
	}

	_, err := f.svc.Decide(context.Background(), dailydomain.DecisionRequest{
		ID:       rec.ID.String(),
		Decision: "rejected",
		Comment:  "changed my mind",
	})
	if err != dailydomain.ErrNotPending {
		t.Fatalf("err = %v, want ErrNotPending", err)
	}
}

func TestUpdateAfterDecisionResubmits(t *testing.T) {
	f := setup(t, nil)
	rec := createPending(t, f)

	if _, err := f.svc.Decide(context.Background(), dailydomain.DecisionRequest{
		ID:       rec.ID.String(),
		Decision: "rejected",
		Comment:  "wrong volume",
	}); err != nil {
		t.Fatalf("decide: %v", err)
	}

	updated, err := f.svc.Update(context.Background(), dailydomain.UpdateRequest{
		ID:     rec.ID.String(),
		Values: map[string]any{"productionVolume": 44},
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
	if updated.ProductionVolume == nil || *updated.ProductionVolume != 44 {
		t.Fatalf("production volume = %v, want 44", updated.ProductionVolume)
	}
}

func TestDeleteHidesRecord(t *testing.T) {
	f := setup(t, nil)
	rec := createPending(t, f)

	if err := f.svc.Delete(context.Background(), rec.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.svc.GetByID(context.Background(), rec.ID.String()); err != dailydomain.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListFiltersByPeriod(t *testing.T) {
	f := setup(t, nil)

	for _, date := range []string{"2024-02-10", "2024-02-11", "2024-03-01"} {
		if _, err := f.svc.Create(context.Background(), dailydomain.CreateRequest{
			BranchID:     f.branchID.String(),
			SourceNameID: f.sourceNameID.String(),
			Date:         date,
			Values:       map[string]any{"productionVolume": 1},
		}); err != nil {
			t.Fatalf("create %s: %v", date, err)
		}
	}

	records, err := f.svc.List(context.Background(), dailydomain.ListRequest{
		BranchID: f.branchID.String(),
		Month:    2,
		Year:     2024,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
}
