package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/hydrocore/waterworks/internal/aggregation"
	aggdomain "github.com/hydrocore/waterworks/internal/aggregation/domain"
	"github.com/hydrocore/waterworks/internal/aggregation/preview"
	"github.com/hydrocore/waterworks/internal/area"
	areadomain "github.com/hydrocore/waterworks/internal/area/domain"
	"github.com/hydrocore/waterworks/internal/audit"
	auditdomain "github.com/hydrocore/waterworks/internal/audit/domain"
	"github.com/hydrocore/waterworks/internal/auth"
	authdomain "github.com/hydrocore/waterworks/internal/auth/domain"
	"github.com/hydrocore/waterworks/internal/authorization"
	"github.com/hydrocore/waterworks/internal/branch"
	branchdomain "github.com/hydrocore/waterworks/internal/branch/domain"
	"github.com/hydrocore/waterworks/internal/config"
	"github.com/hydrocore/waterworks/internal/dailyrecord"
	dailydomain "github.com/hydrocore/waterworks/internal/dailyrecord/domain"
	"github.com/hydrocore/waterworks/internal/monthlyrecord"
	monthlydomain "github.com/hydrocore/waterworks/internal/monthlyrecord/domain"
	"github.com/hydrocore/waterworks/internal/observability"
	obsmiddleware "github.com/hydrocore/waterworks/internal/observability/logger"
	obsmetrics "github.com/hydrocore/waterworks/internal/observability/metrics"
	obstracing "github.com/hydrocore/waterworks/internal/observability/tracing"
	"github.com/hydrocore/waterworks/internal/ratelimit"
	"github.com/hydrocore/waterworks/internal/report"
	"github.com/hydrocore/waterworks/internal/requiredfields"
	rfdomain "github.com/hydrocore/waterworks/internal/requiredfields/domain"
	"github.com/hydrocore/waterworks/internal/source"
	sourcedomain "github.com/hydrocore/waterworks/internal/source/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	auth.Module,
	area.Module,
	branch.Module,
	source.Module,
	requiredfields.Module,
	dailyrecord.Module,
	aggregation.Module,
	monthlyrecord.Module,
	report.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	genID          *snowflake.Node
	authsvc        authdomain.Service
	authzSvc       authorization.Service
	auditSvc       auditdomain.Service
	areaSvc        areadomain.Service
	branchSvc      branchdomain.Service
	sourceSvc      sourcedomain.Service
	requiredFields rfdomain.Service
	dailySvc       dailydomain.Service
	monthlySvc     monthlydomain.Service
	aggSvc         aggdomain.Service
	previewHub     *preview.Hub
	reportSvc      report.Service
	loginLimiter   *ratelimit.LoginLimiter
	obsMetrics     *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	GenID          *snowflake.Node
	Authsvc        authdomain.Service
	AuthzSvc       authorization.Service
	AuditSvc       auditdomain.Service
	AreaSvc        areadomain.Service
	BranchSvc      branchdomain.Service
	SourceSvc      sourcedomain.Service
	RequiredFields rfdomain.Service
	DailySvc       dailydomain.Service
	MonthlySvc     monthlydomain.Service
	AggSvc         aggdomain.Service
	PreviewHub     *preview.Hub
	ReportSvc      report.Service
	LoginLimiter   *ratelimit.LoginLimiter `optional:"true"`
	ObsMetrics     *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		genID:          p.GenID,
		authsvc:        p.Authsvc,
		authzSvc:       p.AuthzSvc,
		auditSvc:       p.AuditSvc,
		areaSvc:        p.AreaSvc,
		branchSvc:      p.BranchSvc,
		sourceSvc:      p.SourceSvc,
		requiredFields: p.RequiredFields,
		dailySvc:       p.DailySvc,
		monthlySvc:     p.MonthlySvc,
		aggSvc:         p.AggSvc,
		previewHub:     p.PreviewHub,
		reportSvc:      p.ReportSvc,
		loginLimiter:   p.LoginLimiter,
		obsMetrics:     p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())

	// -------- Areas --------
	api.GET("/areas", s.authorize(authorization.ObjectReference, authorization.ActionReferenceView), s.ListAreas)
	api.POST("/areas", s.authorize(authorization.ObjectReference, authorization.ActionReferenceCreate), s.CreateArea)
	api.GET("/areas/:id", s.authorize(authorization.ObjectReference, authorization.ActionReferenceView), s.GetAreaByID)
	api.PATCH("/areas/:id", s.authorize(authorization.ObjectReference, authorization.ActionReferenceUpdate), s.UpdateArea)
	api.POST("/areas/:id/deactivate", s.authorize(authorization.ObjectReference, authorization.ActionReferenceDelete), s.DeactivateArea)

	// -------- Branches --------
	api.GET("/branches", s.authorize(authorization.ObjectReference, authorization.ActionReferenceView), s.ListBranches)
	api.POST("/branches", s.authorize(authorization.ObjectReference, authorization.ActionReferenceCreate), s.CreateBranch)
	api.GET("/branches/:id", s.authorize(authorization.ObjectReference, authorization.ActionReferenceView), s.GetBranchByID)
	api.PATCH("/branches/:id", s.authorize(authorization.ObjectReference, authorization.ActionReferenceUpdate), s.UpdateBranch)
	api.POST("/branches/:id/deactivate", s.authorize(authorization.ObjectReference, authorization.ActionReferenceDelete), s.DeactivateBranch)

	// -------- Source types and names --------
	api.GET("/source-types", s.authorize(authorization.ObjectReference, authorization.ActionReferenceView), s.ListSourceTypes)
	api.POST("/source-types", s.authorize(authorization.ObjectReference, authorization.ActionReferenceCreate), s.CreateSourceType)
	api.PATCH("/source-types/:id", s.authorize(authorization.ObjectReference, authorization.ActionReferenceUpdate), s.UpdateSourceType)

	api.GET("/source-names", s.authorize(authorization.ObjectReference, authorization.ActionReferenceView), s.ListSourceNames)
	api.POST("/source-names", s.authorize(authorization.ObjectReference, authorization.ActionReferenceCreate), s.CreateSourceName)
	api.GET("/source-names/:id", s.authorize(authorization.ObjectReference, authorization.ActionReferenceView), s.GetSourceNameByID)
	api.PATCH("/source-names/:id", s.authorize(authorization.ObjectReference, authorization.ActionReferenceUpdate), s.UpdateSourceName)
	api.POST("/source-names/:id/deactivate", s.authorize(authorization.ObjectReference, authorization.ActionReferenceDelete), s.DeactivateSourceName)

	// -------- Users --------
	api.GET("/users", s.authorize(authorization.ObjectUser, authorization.ActionUserView), s.ListUsers)
	api.POST("/users", s.authorize(authorization.ObjectUser, authorization.ActionUserCreate), s.CreateUser)
	api.PATCH("/users/:id", s.authorize(authorization.ObjectUser, authorization.ActionUserUpdate), s.UpdateUser)

	// -------- Required fields --------
	api.GET("/required-fields/:branchId", s.authorize(authorization.ObjectRequiredFields, authorization.ActionRequiredFieldsView), s.GetRequiredFields)
	api.POST("/required-fields/:branchId", s.authorize(authorization.ObjectRequiredFields, authorization.ActionRequiredFieldsConfigure), s.SetRequiredFields)

	// -------- Daily records --------
	api.GET("/daily-records", s.authorize(authorization.ObjectDailyRecord, authorization.ActionDailyRecordView), s.ListDailyRecords)
	api.POST("/daily-records", s.CreateDailyRecord)
	api.GET("/daily-records/:id", s.GetDailyRecordByID)
	api.PUT("/daily-records/:id", s.UpdateDailyRecord)
	api.DELETE("/daily-records/:id", s.DeleteDailyRecord)
	api.PUT("/approval-data/:id", s.DecideDailyRecord)

	// -------- Aggregation --------
	api.GET("/daily-sums", s.authorize(authorization.ObjectDailyRecord, authorization.ActionDailyRecordView), s.GetDailySums)
	api.POST("/daily-sums/batch", s.authorize(authorization.ObjectDailyRecord, authorization.ActionDailyRecordView), s.GetDailySumsBatch)
	api.POST("/validate-daily-completion", s.authorize(authorization.ObjectDailyRecord, authorization.ActionDailyRecordView), s.ValidateDailyCompletion)
	api.GET("/daily-sums/stream", s.authorize(authorization.ObjectDailyRecord, authorization.ActionDailyRecordView), s.StreamDailySums)

	// -------- Monthly records --------
	api.GET("/monthly-records", s.authorize(authorization.ObjectMonthlyRecord, authorization.ActionMonthlyRecordView), s.ListMonthlyRecords)
	api.POST("/monthly", s.CreateMonthlyRecord)
	api.GET("/monthly-records/:id", s.GetMonthlyRecordByID)
	api.PUT("/monthly-records/:id", s.UpdateMonthlyRecord)
	api.DELETE("/monthly-records/:id", s.DeleteMonthlyRecord)
	api.PUT("/monthly-approval-data/:id", s.DecideMonthlyRecord)

	// -------- Reports --------
	api.GET("/reports/monthly", s.authorize(authorization.ObjectReport, authorization.ActionReportGenerate), s.RenderMonthlyDatasheet)

	// -------- Audit logs --------
	api.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}
