package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/hydrocore/waterworks/internal/audit/domain"
	authdomain "github.com/hydrocore/waterworks/internal/auth/domain"
)

type createUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	RoleID      int    `json:"roleId"`
	BranchID    string `json:"branchId"`
}

type updateUserRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	RoleID      *int    `json:"roleId,omitempty"`
	BranchID    *string `json:"branchId,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

func (s *Server) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.authsvc.CreateUser(c.Request.Context(), authdomain.CreateUserRequest{
		Email:       strings.TrimSpace(req.Email),
		Password:    req.Password,
		DisplayName: strings.TrimSpace(req.DisplayName),
		RoleID:      req.RoleID,
		BranchID:    strings.TrimSpace(req.BranchID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		actor := currentUser(c)
		actorID := actor.ID.String()
		targetID := user.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), user.BranchID, string(auditdomain.ActorTypeUser), &actorID, "user.created", "user", &targetID, map[string]any{
			"email":  user.Email,
			"roleId": user.RoleID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": toUserResponse(user)})
}

func (s *Server) ListUsers(c *gin.Context) {
	var query struct {
		BranchID   string `form:"branchId"`
		RoleID     int    `form:"roleId"`
		ActiveOnly bool   `form:"active_only"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	users, err := s.authsvc.ListUsers(c.Request.Context(), authdomain.ListUsersRequest{
		BranchID:   strings.TrimSpace(query.BranchID),
		RoleID:     query.RoleID,
		ActiveOnly: query.ActiveOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) UpdateUser(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.authsvc.UpdateUser(c.Request.Context(), authdomain.UpdateUserRequest{
		ID:          id,
		DisplayName: trimStringPtr(req.DisplayName),
		RoleID:      req.RoleID,
		BranchID:    trimStringPtr(req.BranchID),
		Active:      req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		actor := currentUser(c)
		actorID := actor.ID.String()
		targetID := user.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), user.BranchID, string(auditdomain.ActorTypeUser), &actorID, "user.updated", "user", &targetID, nil)
	}

	c.JSON(http.StatusOK, gin.H{"data": toUserResponse(user)})
}
