package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/hydrocore/waterworks/internal/audit/domain"
	"github.com/hydrocore/waterworks/internal/authorization"
	monthlydomain "github.com/hydrocore/waterworks/internal/monthlyrecord/domain"
)

func (s *Server) CreateMonthlyRecord(c *gin.Context) {
	user := currentUser(c)

	var req monthlydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if err := s.authorizeBranch(c, req.BranchID, authorization.ObjectMonthlyRecord, authorization.ActionMonthlyRecordCreate); err != nil {
		AbortWithError(c, err)
		return
	}
	req.ActorID = user.ID

	record, err := s.monthlySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		actorID := user.ID.String()
		targetID := record.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), &record.BranchID, string(auditdomain.ActorTypeUser), &actorID, "monthly_record.created", "monthly_record", &targetID, map[string]any{
			"month": record.Month,
			"year":  record.Year,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) ListMonthlyRecords(c *gin.Context) {
	var req monthlydomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	records, err := s.monthlySvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (s *Server) GetMonthlyRecordByID(c *gin.Context) {
	record, err := s.monthlySvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.authorizeBranch(c, record.BranchID.String(), authorization.ObjectMonthlyRecord, authorization.ActionMonthlyRecordView); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) UpdateMonthlyRecord(c *gin.Context) {
	user := currentUser(c)
	id := strings.TrimSpace(c.Param("id"))

	record, err := s.monthlySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.authorizeBranch(c, record.BranchID.String(), authorization.ObjectMonthlyRecord, authorization.ActionMonthlyRecordUpdate); err != nil {
		AbortWithError(c, err)
		return
	}

	var req monthlydomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = id

	updated, err := s.monthlySvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		actorID := user.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), &updated.BranchID, string(auditdomain.ActorTypeUser), &actorID, "monthly_record.updated", "monthly_record", &id, nil)
	}
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) DeleteMonthlyRecord(c *gin.Context) {
	user := currentUser(c)
	id := strings.TrimSpace(c.Param("id"))

	record, err := s.monthlySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.authorizeBranch(c, record.BranchID.String(), authorization.ObjectMonthlyRecord, authorization.ActionMonthlyRecordDelete); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.monthlySvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		actorID := user.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), &record.BranchID, string(auditdomain.ActorTypeUser), &actorID, "monthly_record.deleted", "monthly_record", &id, nil)
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "deleted": true}})
}

func (s *Server) DecideMonthlyRecord(c *gin.Context) {
	user := currentUser(c)
	id := strings.TrimSpace(c.Param("id"))

	record, err := s.monthlySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.authorizeBranch(c, record.BranchID.String(), authorization.ObjectMonthlyRecord, authorization.ActionMonthlyRecordApprove); err != nil {
		AbortWithError(c, err)
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	decided, err := s.monthlySvc.Decide(c.Request.Context(), monthlydomain.DecisionRequest{
		ID:       id,
		Decision: req.Status,
		Comment:  req.comment(),
		ActorID:  user.ID.String(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		actorID := user.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), &decided.BranchID, string(auditdomain.ActorTypeUser), &actorID, "monthly_record.decided", "monthly_record", &id, map[string]any{
			"status": decided.StatusID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": decided})
}
