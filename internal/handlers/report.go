package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pmarkun/editaisparticipativos/internal/services/report"
)

type ReportHandler struct {
	reports *report.Reports
}

func NewReportHandler(reports *report.Reports) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) GetReport(c *gin.Context) {
	r, err := h.reports.ForCall(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}
