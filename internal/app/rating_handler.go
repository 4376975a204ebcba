package app

import (
	"errors"
	"net/http"

	"politicianfinder/internal/service"
	"politicianfinder/internal/util"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	ratingService service.RatingService
}

func NewRatingHandler(ratingService service.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// RatePolitician handles creating or replacing the caller's rating
// POST /api/v1/politicians/:id/ratings
func (h *RatingHandler) RatePolitician(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	politicianID := c.Param("id")
	if politicianID == "" {
		util.BadRequest(c, "Politician ID is required")
		return
	}

	var req service.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}
	req.PoliticianID = politicianID

	rating, err := h.ratingService.RateOrUpdate(userID.(string), req)
	if err != nil {
		respondRatingError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Rating saved successfully", gin.H{"rating": rating})
}

// GetRatings handles listing a politician's ratings
// GET /api/v1/politicians/:id/ratings
func (h *RatingHandler) GetRatings(c *gin.Context) {
	politicianID := c.Param("id")
	if politicianID == "" {
		util.BadRequest(c, "Politician ID is required")
		return
	}

	page, limit := pagination(c)

	ratings, total, err := h.ratingService.GetRatings(politicianID, page, limit)
	if err != nil {
		respondRatingError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Ratings retrieved successfully", gin.H{
		"ratings": ratings,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// GetMyRating handles getting the caller's rating of a politician
// GET /api/v1/politicians/:id/ratings/me
func (h *RatingHandler) GetMyRating(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	politicianID := c.Param("id")
	if politicianID == "" {
		util.BadRequest(c, "Politician ID is required")
		return
	}

	rating, err := h.ratingService.GetMyRating(politicianID, userID.(string))
	if err != nil {
		respondRatingError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Rating retrieved successfully", gin.H{"rating": rating})
}

// DeleteRating handles removing the caller's rating
// DELETE /api/v1/politicians/:id/ratings/me
func (h *RatingHandler) DeleteRating(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	politicianID := c.Param("id")
	if politicianID == "" {
		util.BadRequest(c, "Politician ID is required")
		return
	}

	if err := h.ratingService.DeleteRating(politicianID, userID.(string)); err != nil {
		respondRatingError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Rating deleted successfully", nil)
}

func respondRatingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPoliticianNotFound):
		util.NotFound(c, err.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		util.ErrorResponse(c, http.StatusServiceUnavailable, "Storage is temporarily unavailable", nil)
	default:
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
	}
}
