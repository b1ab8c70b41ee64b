package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/hydrocore/waterworks/internal/audit/domain"
	authdomain "github.com/hydrocore/waterworks/internal/auth/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectDailyRecord    = "daily_record"
	ObjectMonthlyRecord  = "monthly_record"
	ObjectRequiredFields = "required_fields"
	ObjectReference      = "reference"
	ObjectUser           = "user"
	ObjectReport         = "report"
	ObjectAuditLog       = "audit_log"
)

const (
	ActionDailyRecordView    = "daily_record.view"
	ActionDailyRecordCreate  = "daily_record.create"
	ActionDailyRecordUpdate  = "daily_record.update"
	ActionDailyRecordDelete  = "daily_record.delete"
	ActionDailyRecordApprove = "daily_record.approve"

	ActionMonthlyRecordView    = "monthly_record.view"
	ActionMonthlyRecordCreate  = "monthly_record.create"
	ActionMonthlyRecordUpdate  = "monthly_record.update"
	ActionMonthlyRecordDelete  = "monthly_record.delete"
	ActionMonthlyRecordApprove = "monthly_record.approve"

	ActionRequiredFieldsView      = "required_fields.view"
	ActionRequiredFieldsConfigure = "required_fields.configure"

	ActionReferenceView   = "reference.view"
	ActionReferenceCreate = "reference.create"
	ActionReferenceUpdate = "reference.update"
	ActionReferenceDelete = "reference.delete"

	ActionUserView   = "user.view"
	ActionUserCreate = "user.create"
	ActionUserUpdate = "user.update"

	ActionReportView     = "report.view"
	ActionReportGenerate = "report.generate"

	ActionAuditLogView = "audit_log.view"
)

const (
	roleSuperAdmin   = "role:super_admin"
	roleCentralAdmin = "role:central_admin"
	roleBranchAdmin  = "role:branch_admin"
	roleEncoder      = "role:encoder"
	roleSystem       = "role:system"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, branchID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	branchID = strings.TrimSpace(branchID)
	if branchID == "" {
		return ErrInvalidBranch
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, actorType, actorID, err := s.resolveActor(ctx, actor, branchID)
	if err != nil {
		s.auditDenied(ctx, actorType, actorID, branchID, object, action)
		return err
	}

	domain := fmt.Sprintf("branch:%s", branchID)
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, actorType, actorID, branchID, object, action)
		return ErrForbidden
	}

	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string, branchID string) (string, string, string, *string, error) {
	if actor == "system" {
		return actor, roleSystem, "system", nil, nil
	}
	if strings.HasPrefix(actor, "user:") {
		userIDRaw := strings.TrimPrefix(actor, "user:")
		userID, err := snowflake.ParseString(userIDRaw)
		if err != nil || userID == 0 {
			return "", "", "", nil, ErrInvalidActor
		}
		userIDStr := userID.String()

		user, err := s.userByID(ctx, userID)
		if err != nil {
			return actor, "", "user", &userIDStr, err
		}

		// Branch-bound roles can only act in their own branch domain.
		if authdomain.RoleRequiresBranch(user.RoleID) {
			if user.BranchID == nil || user.BranchID.String() != branchID {
				return actor, "", "user", &userIDStr, ErrForbidden
			}
		}

		return actor, roleNameFor(user.RoleID), "user", &userIDStr, nil
	}
	return "", "", "", nil, ErrInvalidActor
}

func (s *ServiceImpl) userByID(ctx context.Context, userID snowflake.ID) (*authdomain.User, error) {
	var user authdomain.User
	if err := s.db.WithContext(ctx).Raw(
		`SELECT id, role_id, branch_id, active
		 FROM users
		 WHERE id = ?
		 LIMIT 1`,
		userID,
	).Scan(&user).Error; err != nil {
		return nil, err
	}
	if user.ID == 0 || !user.Active {
		return nil, ErrForbidden
	}
	return &user, nil
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, actorType string, actorID *string, branchID string, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	var parsedBranchID *snowflake.ID
	if id, err := snowflake.ParseString(branchID); err == nil && id != 0 {
		parsedBranchID = &id
	}
	targetID := "capability"
	_ = s.auditSvc.AuditLog(ctx, parsedBranchID, actorType, actorID, "authorization.denied", "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
		"actor":  actorType,
	})
}

func roleNameFor(roleID int) string {
	switch roleID {
	case authdomain.RoleSuperAdmin:
		return roleSuperAdmin
	case authdomain.RoleCentralAdmin:
		return roleCentralAdmin
	case authdomain.RoleBranchAdmin:
		return roleBranchAdmin
	case authdomain.RoleEncoder:
		return roleEncoder
	}
	return ""
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Encoders capture records and read reference data.
		{roleEncoder, ObjectDailyRecord, ActionDailyRecordView},
		{roleEncoder, ObjectDailyRecord, ActionDailyRecordCreate},
		{roleEncoder, ObjectDailyRecord, ActionDailyRecordUpdate},
		{roleEncoder, ObjectDailyRecord, ActionDailyRecordDelete},
		{roleEncoder, ObjectMonthlyRecord, ActionMonthlyRecordView},
		{roleEncoder, ObjectMonthlyRecord, ActionMonthlyRecordCreate},
		{roleEncoder, ObjectMonthlyRecord, ActionMonthlyRecordUpdate},
		{roleEncoder, ObjectReference, ActionReferenceView},
		{roleEncoder, ObjectReport, ActionReportView},

		// Branch admins additionally approve and configure their branch.
		{roleBranchAdmin, ObjectDailyRecord, ActionDailyRecordView},
		{roleBranchAdmin, ObjectDailyRecord, ActionDailyRecordCreate},
		{roleBranchAdmin, ObjectDailyRecord, ActionDailyRecordUpdate},
		{roleBranchAdmin, ObjectDailyRecord, ActionDailyRecordDelete},
		{roleBranchAdmin, ObjectDailyRecord, ActionDailyRecordApprove},
		{roleBranchAdmin, ObjectMonthlyRecord, ActionMonthlyRecordView},
		{roleBranchAdmin, ObjectMonthlyRecord, ActionMonthlyRecordCreate},
		{roleBranchAdmin, ObjectMonthlyRecord, ActionMonthlyRecordUpdate},
		{roleBranchAdmin, ObjectMonthlyRecord, ActionMonthlyRecordDelete},
		{roleBranchAdmin, ObjectMonthlyRecord, ActionMonthlyRecordApprove},
		{roleBranchAdmin, ObjectRequiredFields, ActionRequiredFieldsView},
		{roleBranchAdmin, ObjectRequiredFields, ActionRequiredFieldsConfigure},
		{roleBranchAdmin, ObjectReference, ActionReferenceView},
		{roleBranchAdmin, ObjectUser, ActionUserView},
		{roleBranchAdmin, ObjectReport, ActionReportView},
		{roleBranchAdmin, ObjectReport, ActionReportGenerate},
		{roleBranchAdmin, ObjectAuditLog, ActionAuditLogView},

		// Central admins work across branches and own reference data.
		{roleCentralAdmin, ObjectDailyRecord, ActionDailyRecordView},
		{roleCentralAdmin, ObjectDailyRecord, ActionDailyRecordApprove},
		{roleCentralAdmin, ObjectMonthlyRecord, ActionMonthlyRecordView},
		{roleCentralAdmin, ObjectMonthlyRecord, ActionMonthlyRecordApprove},
		{roleCentralAdmin, ObjectRequiredFields, ActionRequiredFieldsView},
		{roleCentralAdmin, ObjectReference, ActionReferenceView},
		{roleCentralAdmin, ObjectReference, ActionReferenceCreate},
		{roleCentralAdmin, ObjectReference, ActionReferenceUpdate},
		{roleCentralAdmin, ObjectReference, ActionReferenceDelete},
		{roleCentralAdmin, ObjectUser, ActionUserView},
		{roleCentralAdmin, ObjectReport, ActionReportView},
		{roleCentralAdmin, ObjectReport, ActionReportGenerate},
		{roleCentralAdmin, ObjectAuditLog, ActionAuditLogView},

		// Super admins hold every permission.
		{roleSuperAdmin, ObjectDailyRecord, ActionDailyRecordView},
		{roleSuperAdmin, ObjectDailyRecord, ActionDailyRecordCreate},
		{roleSuperAdmin, ObjectDailyRecord, ActionDailyRecordUpdate},
		{roleSuperAdmin, ObjectDailyRecord, ActionDailyRecordDelete},
		{roleSuperAdmin, ObjectDailyRecord, ActionDailyRecordApprove},
		{roleSuperAdmin, ObjectMonthlyRecord, ActionMonthlyRecordView},
		{roleSuperAdmin, ObjectMonthlyRecord, ActionMonthlyRecordCreate},
		{roleSuperAdmin, ObjectMonthlyRecord, ActionMonthlyRecordUpdate},
		{roleSuperAdmin, ObjectMonthlyRecord, ActionMonthlyRecordDelete},
		{roleSuperAdmin, ObjectMonthlyRecord, ActionMonthlyRecordApprove},
		{roleSuperAdmin, ObjectRequiredFields, ActionRequiredFieldsView},
		{roleSuperAdmin, ObjectRequiredFields, ActionRequiredFieldsConfigure},
		{roleSuperAdmin, ObjectReference, ActionReferenceView},
		{roleSuperAdmin, ObjectReference, ActionReferenceCreate},
		{roleSuperAdmin, ObjectReference, ActionReferenceUpdate},
		{roleSuperAdmin, ObjectReference, ActionReferenceDelete},
		{roleSuperAdmin, ObjectUser, ActionUserView},
		{roleSuperAdmin, ObjectUser, ActionUserCreate},
		{roleSuperAdmin, ObjectUser, ActionUserUpdate},
		{roleSuperAdmin, ObjectReport, ActionReportView},
		{roleSuperAdmin, ObjectReport, ActionReportGenerate},
		{roleSuperAdmin, ObjectAuditLog, ActionAuditLogView},

		// Internal jobs.
		{roleSystem, ObjectDailyRecord, ActionDailyRecordView},
		{roleSystem, ObjectMonthlyRecord, ActionMonthlyRecordView},
		{roleSystem, ObjectReport, ActionReportGenerate},
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
