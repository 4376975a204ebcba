package app

import (
	"errors"
	"net/http"

	"politicianfinder/internal/service"
	"politicianfinder/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// PurchaseReport handles report purchase; the PDF is generated in the
// background and the buyer is notified when it is ready
// POST /api/v1/reports
func (h *ReportHandler) PurchaseReport(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		PoliticianID string `json:"politician_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	report, err := h.reportService.PurchaseReport(userID.(string), req.PoliticianID)
	if err != nil {
		respondReportError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusAccepted, "Report purchase accepted, generation in progress", gin.H{"report": report})
}

// GetReport handles getting one of the caller's reports
// GET /api/v1/reports/:id
func (h *ReportHandler) GetReport(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	reportID := c.Param("id")
	if reportID == "" {
		util.BadRequest(c, "Report ID is required")
		return
	}

	report, err := h.reportService.GetReport(reportID, userID.(string))
	if err != nil {
		respondReportError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Report retrieved successfully", gin.H{"report": report})
}

// GetMyReports handles listing the caller's reports
// GET /api/v1/reports
func (h *ReportHandler) GetMyReports(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	page, limit := pagination(c)

	reports, total, err := h.reportService.GetMyReports(userID.(string), page, limit)
	if err != nil {
		respondReportError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Reports retrieved successfully", gin.H{
		"reports": reports,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// DownloadReport streams the generated PDF to its owner
// GET /api/v1/reports/:id/download
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	reportID := c.Param("id")
	if reportID == "" {
		util.BadRequest(c, "Report ID is required")
		return
	}

	path, err := h.reportService.ReportPDFPath(reportID, userID.(string))
	if err != nil {
		respondReportError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=report-"+reportID+".pdf")
	c.Header("Content-Type", "application/pdf")
	c.File(path)
}

func respondReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReportNotFound), errors.Is(err, service.ErrPoliticianNotFound):
		util.NotFound(c, err.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		util.ErrorResponse(c, http.StatusServiceUnavailable, "Storage is temporarily unavailable", nil)
	default:
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
	}
}
