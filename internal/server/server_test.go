package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	aggdomain "github.com/hydrocore/waterworks/internal/aggregation/domain"
	authdomain "github.com/hydrocore/waterworks/internal/auth/domain"
	monthlydomain "github.com/hydrocore/waterworks/internal/monthlyrecord/domain"
	rfdomain "github.com/hydrocore/waterworks/internal/requiredfields/domain"
)

type authStub struct {
	user *authdomain.User
}

func (a *authStub) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (*authdomain.User, error) {
	return nil, authdomain.ErrUserNotFound
}

func (a *authStub) ListUsers(ctx context.Context, req authdomain.ListUsersRequest) ([]authdomain.User, error) {
	return nil, nil
}

func (a *authStub) UpdateUser(ctx context.Context, req authdomain.UpdateUserRequest) (*authdomain.User, error) {
	return nil, authdomain.ErrUserNotFound
}

func (a *authStub) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	return nil, authdomain.ErrInvalidCredentials
}

func (a *authStub) Logout(ctx context.Context, rawToken string) error { return nil }

func (a *authStub) Authenticate(ctx context.Context, rawToken string) (*authdomain.User, *authdomain.Session, error) {
	if a.user == nil {
		return nil, nil, authdomain.ErrInvalidSession
	}
	return a.user, &authdomain.Session{}, nil
}

func (a *authStub) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	return nil
}

type authzAllowAll struct{}

func (authzAllowAll) Authorize(ctx context.Context, actor, branchID, object, action string) error {
	return nil
}

type monthlyStub struct {
	createErr error
	created   *monthlydomain.MonthlyRecord
}

func (m *monthlyStub) Create(ctx context.Context, req monthlydomain.CreateRequest) (*monthlydomain.MonthlyRecord, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.created, nil
}

func (m *monthlyStub) Update(ctx context.Context, req monthlydomain.UpdateRequest) (*monthlydomain.MonthlyRecord, error) {
	return nil, monthlydomain.ErrNotFound
}

func (m *monthlyStub) Decide(ctx context.Context, req monthlydomain.DecisionRequest) (*monthlydomain.MonthlyRecord, error) {
	return nil, monthlydomain.ErrNotFound
}

func (m *monthlyStub) GetByID(ctx context.Context, id string) (*monthlydomain.MonthlyRecord, error) {
	return nil, monthlydomain.ErrNotFound
}

func (m *monthlyStub) List(ctx context.Context, req monthlydomain.ListRequest) ([]monthlydomain.MonthlyRecord, error) {
	return nil, nil
}

func (m *monthlyStub) Delete(ctx context.Context, id string) error { return nil }

type aggStub struct {
	sums       aggdomain.Sums
	validation aggdomain.ValidationResult
}

func (a *aggStub) ComputeDailySums(ctx context.Context, req aggdomain.SumsRequest) (aggdomain.Sums, error) {
	return a.sums, nil
}

func (a *aggStub) ComputeDailySumsBatch(ctx context.Context, reqs []aggdomain.SumsRequest) ([]aggdomain.BatchItem, error) {
	items := make([]aggdomain.BatchItem, len(reqs))
	for i, req := range reqs {
		items[i] = aggdomain.BatchItem{SumsRequest: req, Sums: a.sums}
	}
	return items, nil
}

func (a *aggStub) ValidateDailyCompletion(ctx context.Context, req aggdomain.ValidationRequest) (aggdomain.ValidationResult, error) {
	return a.validation, nil
}

type requiredFieldsStub struct {
	daily   []string
	monthly []string
}

func (r *requiredFieldsStub) Get(ctx context.Context, branchID string) (*rfdomain.ConfigResponse, error) {
	return &rfdomain.ConfigResponse{BranchID: branchID, Daily: r.daily, Monthly: r.monthly}, nil
}

func (r *requiredFieldsStub) Set(ctx context.Context, req rfdomain.SetRequest) (*rfdomain.ConfigResponse, error) {
	return r.Get(ctx, req.BranchID)
}

func newTestServer(t *testing.T, monthly monthlydomain.Service, agg aggdomain.Service) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	user := &authdomain.User{
		ID:     node.Generate(),
		Email:  "admin@waterworks.test",
		RoleID: 1,
		Active: true,
	}

	s := &Server{
		engine:     engine,
		authsvc:    &authStub{user: user},
		authzSvc:   authzAllowAll{},
		monthlySvc: monthly,
		aggSvc:     agg,
		requiredFields: &requiredFieldsStub{
			daily:   []string{"operationHours", "productionVolume"},
			monthly: []string{"electricityCost"},
		},
	}
	s.registerAPIRoutes()
	return s
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer test-token")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func TestMonthlyCreateGatedResponseShape(t *testing.T) {
	monthly := &monthlyStub{createErr: &monthlydomain.CompletionError{
		Result: aggdomain.ValidationResult{
			IsValid:       false,
			CompletedDays: 20,
			TotalDays:     29,
			ErrorMessage:  "20 of 29 days completed — missing entries prevent monthly submission.",
		},
	}}
	s := newTestServer(t, monthly, &aggStub{})

	rec := doRequest(s, http.MethodPost, "/api/monthly", `{"branchId":"1","sourceName":"2","month":2,"year":2024}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var body struct {
		Validation struct {
			IsValid       bool   `json:"isValid"`
			CompletedDays int    `json:"completedDays"`
			TotalDays     int    `json:"totalDays"`
			ErrorMessage  string `json:"errorMessage"`
		} `json:"validation"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Validation.IsValid {
		t.Fatal("validation.isValid must be false")
	}
	if body.Validation.CompletedDays != 20 || body.Validation.TotalDays != 29 {
		t.Fatalf("completed/total = %d/%d", body.Validation.CompletedDays, body.Validation.TotalDays)
	}
	if body.Validation.ErrorMessage == "" {
		t.Fatal("validation.errorMessage missing")
	}
}

func TestRequiredFieldsBareShape(t *testing.T) {
	s := newTestServer(t, &monthlyStub{}, &aggStub{})

	rec := doRequest(s, http.MethodGet, "/api/required-fields/42", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("body has %d keys, want daily and monthly only: %v", len(body), body)
	}
	if len(body["daily"]) != 2 || body["daily"][0] != "operationHours" {
		t.Fatalf("daily = %v", body["daily"])
	}
	if len(body["monthly"]) != 1 || body["monthly"][0] != "electricityCost" {
		t.Fatalf("monthly = %v", body["monthly"])
	}
}

func TestDailySumsBareShape(t *testing.T) {
	agg := &aggStub{sums: aggdomain.Sums{
		ProductionVolume:              290,
		OperationHours:                232,
		ServiceInterruption:           3,
		TotalHoursServiceInterruption: 4.5,
	}}
	s := newTestServer(t, &monthlyStub{}, agg)

	rec := doRequest(s, http.MethodGet, "/api/daily-sums?branchId=1&sourceTypeId=2&month=2&year=2024", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := map[string]float64{
		"productionVolume":              290,
		"operationHours":                232,
		"serviceInterruption":           3,
		"totalHoursServiceInterruption": 4.5,
	}
	for key, value := range want {
		if body[key] != value {
			t.Fatalf("%s = %v, want %v", key, body[key], value)
		}
	}
	if len(body) != len(want) {
		t.Fatalf("body has %d keys, want %d: %v", len(body), len(want), body)
	}
}

func TestValidateCompletionUsesMessageKey(t *testing.T) {
	agg := &aggStub{validation: aggdomain.ValidationResult{
		IsValid:       false,
		CompletedDays: 23,
		TotalDays:     30,
		ErrorMessage:  "23 of 30 days completed — missing entries prevent monthly submission.",
	}}
	s := newTestServer(t, &monthlyStub{}, agg)

	rec := doRequest(s, http.MethodPost, "/api/validate-daily-completion", `{"branchId":"1","sourceName":"2","month":6,"year":2024}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, ok := body["message"]; !ok {
		t.Fatalf("message key missing: %v", body)
	}
	if _, ok := body["errorMessage"]; ok {
		t.Fatalf("errorMessage must not leak into the standalone endpoint: %v", body)
	}
}

func TestAPIRequiresAuthentication(t *testing.T) {
	s := newTestServer(t, &monthlyStub{}, &aggStub{})

	req := httptest.NewRequest(http.MethodGet, "/api/daily-sums", nil)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
