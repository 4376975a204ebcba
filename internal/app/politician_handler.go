package app

import (
	"errors"
	"net/http"
	"strconv"

	"politicianfinder/internal/service"
	"politicianfinder/internal/util"

	"github.com/gin-gonic/gin"
)

type PoliticianHandler struct {
	politicianService service.PoliticianService
}

func NewPoliticianHandler(politicianService service.PoliticianService) *PoliticianHandler {
	return &PoliticianHandler{politicianService: politicianService}
}

// CreatePolitician handles politician creation (admin only)
// POST /api/v1/admin/politicians
func (h *PoliticianHandler) CreatePolitician(c *gin.Context) {
	var req service.CreatePoliticianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	politician, err := h.politicianService.CreatePolitician(req)
	if err != nil {
		respondPoliticianError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Politician created successfully", gin.H{"politician": politician})
}

// GetPolitician handles getting a politician by ID
// GET /api/v1/politicians/:id
func (h *PoliticianHandler) GetPolitician(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		util.BadRequest(c, "Politician ID is required")
		return
	}

	politician, err := h.politicianService.GetPolitician(id)
	if err != nil {
		respondPoliticianError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Politician retrieved successfully", gin.H{"politician": politician})
}

// SearchPoliticians handles politician search with filters
// GET /api/v1/politicians
func (h *PoliticianHandler) SearchPoliticians(c *gin.Context) {
	keyword := c.Query("q")
	party := c.Query("party")
	region := c.Query("region")
	page, limit := pagination(c)

	politicians, total, err := h.politicianService.SearchPoliticians(keyword, party, region, page, limit)
	if err != nil {
		respondPoliticianError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Politicians retrieved successfully", gin.H{
		"politicians": politicians,
		"total":       total,
		"page":        page,
		"limit":       limit,
	})
}

// GetRanking handles the politician ranking
// GET /api/v1/politicians/ranking
func (h *PoliticianHandler) GetRanking(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}

	politicians, err := h.politicianService.GetRanking(limit)
	if err != nil {
		respondPoliticianError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Ranking retrieved successfully", gin.H{"politicians": politicians})
}

// UpdatePolitician handles politician update (admin only)
// PUT /api/v1/admin/politicians/:id
func (h *PoliticianHandler) UpdatePolitician(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		util.BadRequest(c, "Politician ID is required")
		return
	}

	var req service.UpdatePoliticianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	politician, err := h.politicianService.UpdatePolitician(id, req)
	if err != nil {
		respondPoliticianError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Politician updated successfully", gin.H{"politician": politician})
}

// DeletePolitician handles politician deletion (admin only)
// DELETE /api/v1/admin/politicians/:id
func (h *PoliticianHandler) DeletePolitician(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		util.BadRequest(c, "Politician ID is required")
		return
	}

	if err := h.politicianService.DeletePolitician(id); err != nil {
		respondPoliticianError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Politician deleted successfully", nil)
}

// UploadPortrait handles portrait upload (admin only)
// POST /api/v1/admin/politicians/:id/portrait
func (h *PoliticianHandler) UploadPortrait(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		util.BadRequest(c, "Politician ID is required")
		return
	}

	fileHeader, err := c.FormFile("portrait")
	if err != nil {
		util.BadRequest(c, "Portrait file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.BadRequest(c, "Failed to open uploaded file")
		return
	}
	defer file.Close()

	politician, err := h.politicianService.UploadPortrait(id, file, fileHeader.Filename)
	if err != nil {
		respondPoliticianError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Portrait uploaded successfully", gin.H{"politician": politician})
}

// AddEvaluation handles adding an AI evaluation (admin only)
// POST /api/v1/admin/politicians/:id/evaluations
func (h *PoliticianHandler) AddEvaluation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		util.BadRequest(c, "Politician ID is required")
		return
	}

	var req service.AddEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}
	req.PoliticianID = id

	evaluation, err := h.politicianService.AddEvaluation(req)
	if err != nil {
		respondPoliticianError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Evaluation added successfully", gin.H{"evaluation": evaluation})
}

// GetEvaluations handles listing a politician's AI evaluations
// GET /api/v1/politicians/:id/evaluations
func (h *PoliticianHandler) GetEvaluations(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		util.BadRequest(c, "Politician ID is required")
		return
	}

	evaluations, err := h.politicianService.GetEvaluations(id)
	if err != nil {
		respondPoliticianError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Evaluations retrieved successfully", gin.H{"evaluations": evaluations})
}

func respondPoliticianError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPoliticianNotFound):
		util.NotFound(c, err.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		util.ErrorResponse(c, http.StatusServiceUnavailable, "Storage is temporarily unavailable", nil)
	default:
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
	}
}
