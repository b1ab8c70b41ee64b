package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/hydrocore/waterworks/internal/audit/domain"
	"github.com/hydrocore/waterworks/internal/authorization"
	dailydomain "github.com/hydrocore/waterworks/internal/dailyrecord/domain"
)

// decisionRequest resolves a pending record. Older clients send the
// rejection reason as remarks rather than comment, so both are accepted.
type decisionRequest struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
	Comment string `json:"comment"`
}

func (r decisionRequest) comment() string {
	if c := strings.TrimSpace(r.Comment); c != "" {
		return c
	}
	return strings.TrimSpace(r.Remarks)
}

func (s *Server) CreateDailyRecord(c *gin.Context) {
	user := currentUser(c)

	var req dailydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if err := s.authorizeBranch(c, req.BranchID, authorization.ObjectDailyRecord, authorization.ActionDailyRecordCreate); err != nil {
		AbortWithError(c, err)
		return
	}
	req.ActorID = user.ID

	record, err := s.dailySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		actorID := user.ID.String()
		targetID := record.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), &record.BranchID, string(auditdomain.ActorTypeUser), &actorID, "daily_record.created", "daily_record", &targetID, map[string]any{
			"date": record.Date.Format("2006-01-02"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) ListDailyRecords(c *gin.Context) {
	var req dailydomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	records, err := s.dailySvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (s *Server) GetDailyRecordByID(c *gin.Context) {
	record, err := s.dailySvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.authorizeBranch(c, record.BranchID.String(), authorization.ObjectDailyRecord, authorization.ActionDailyRecordView); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) UpdateDailyRecord(c *gin.Context) {
	user := currentUser(c)
	id := strings.TrimSpace(c.Param("id"))

	record, err := s.dailySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.authorizeBranch(c, record.BranchID.String(), authorization.ObjectDailyRecord, authorization.ActionDailyRecordUpdate); err != nil {
		AbortWithError(c, err)
		return
	}

	var req dailydomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = id

	updated, err := s.dailySvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		actorID := user.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), &updated.BranchID, string(auditdomain.ActorTypeUser), &actorID, "daily_record.updated", "daily_record", &id, nil)
	}
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) DeleteDailyRecord(c *gin.Context) {
	user := currentUser(c)
	id := strings.TrimSpace(c.Param("id"))

	record, err := s.dailySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.authorizeBranch(c, record.BranchID.String(), authorization.ObjectDailyRecord, authorization.ActionDailyRecordDelete); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.dailySvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		actorID := user.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), &record.BranchID, string(auditdomain.ActorTypeUser), &actorID, "daily_record.deleted", "daily_record", &id, nil)
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "deleted": true}})
}

func (s *Server) DecideDailyRecord(c *gin.Context) {
	user := currentUser(c)
	id := strings.TrimSpace(c.Param("id"))

	record, err := s.dailySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.authorizeBranch(c, record.BranchID.String(), authorization.ObjectDailyRecord, authorization.ActionDailyRecordApprove); err != nil {
		AbortWithError(c, err)
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	decided, err := s.dailySvc.Decide(c.Request.Context(), dailydomain.DecisionRequest{
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
		_ = s.auditSvc.AuditLog(c.Request.Context(), &decided.BranchID, string(auditdomain.ActorTypeUser), &actorID, "daily_record.decided", "daily_record", &id, map[string]any{
			"status": decided.StatusID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": decided})
}
