package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hydrocore/waterworks/internal/report"
)

func (s *Server) RenderMonthlyDatasheet(c *gin.Context) {
	var req report.DatasheetRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	reader, err := s.reportSvc.MonthlyDatasheet(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, ErrInternal)
		return
	}

	filename := fmt.Sprintf("monthly-datasheet-%04d-%02d.pdf", req.Year, req.Month)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
