package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	rfdomain "github.com/hydrocore/waterworks/internal/requiredfields/domain"
)

func (s *Server) GetRequiredFields(c *gin.Context) {
	resp, err := s.requiredFields.Get(c.Request.Context(), strings.TrimSpace(c.Param("branchId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	// Bare shape, consumed directly by the form renderers.
	c.JSON(http.StatusOK, gin.H{"daily": resp.Daily, "monthly": resp.Monthly})
}

func (s *Server) SetRequiredFields(c *gin.Context) {
	var req rfdomain.SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.BranchID = strings.TrimSpace(c.Param("branchId"))

	resp, err := s.requiredFields.Set(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
