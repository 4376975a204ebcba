package app

import (
	"errors"
	"net/http"
	"strconv"

	"politicianfinder/internal/policy"
	"politicianfinder/internal/service"
	"politicianfinder/internal/util"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// callerID returns the authenticated user ID, or "" for anonymous
// callers. Comment routes use optional authentication so the policy
// layer decides what anonymous callers may do.
func callerID(c *gin.Context) string {
	if v, exists := c.Get("userID"); exists {
		return v.(string)
	}
	return ""
}

// respondCommentError maps service errors onto HTTP statuses. Denials
// carry an authorization reason; everything else is a lookup or storage
// failure.
func respondCommentError(c *gin.Context, err error) {
	var denial *policy.Denial
	if errors.As(err, &denial) {
		switch denial.Reason {
		case policy.ReasonUnauthenticated:
			util.ErrorResponse(c, http.StatusUnauthorized, denial.Error(), gin.H{"reason": denial.Reason})
		case policy.ReasonNotOwner, policy.ReasonImpersonation:
			util.ErrorResponse(c, http.StatusForbidden, denial.Error(), gin.H{"reason": denial.Reason})
		default:
			// IMMUTABLE_FIELD, INVALID_PARENT, INVALID_REQUEST
			util.ErrorResponse(c, http.StatusBadRequest, denial.Error(), gin.H{"reason": denial.Reason})
		}
		return
	}

	switch {
	case errors.Is(err, service.ErrCommentNotFound), errors.Is(err, service.ErrPostNotFound):
		util.NotFound(c, err.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		util.ErrorResponse(c, http.StatusServiceUnavailable, "Storage is temporarily unavailable", nil)
	default:
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
	}
}

// CreateComment handles comment creation
// POST /api/v1/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req service.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.CreateComment(callerID(c), req)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Comment created successfully", gin.H{"comment": comment})
}

// GetComment handles getting a comment by ID
// GET /api/v1/comments/:id
func (h *CommentHandler) GetComment(c *gin.Context) {
	commentID := c.Param("id")
	if commentID == "" {
		util.BadRequest(c, "Comment ID is required")
		return
	}

	comment, err := h.commentService.GetCommentByID(commentID)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment retrieved successfully", gin.H{"comment": comment})
}

// GetCommentsByPost handles getting comments by post ID
// GET /api/v1/posts/:id/comments
func (h *CommentHandler) GetCommentsByPost(c *gin.Context) {
	postID := c.Param("id")
	if postID == "" {
		util.BadRequest(c, "Post ID is required")
		return
	}

	limitStr := c.DefaultQuery("limit", "20")
	offsetStr := c.DefaultQuery("offset", "0")

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	offset, err := strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		offset = 0
	}

	comments, total, err := h.commentService.GetCommentsByPostID(postID, limit, offset)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comments retrieved successfully", gin.H{
		"comments": comments,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetCommentCount handles getting the comment count of a post
// GET /api/v1/posts/:id/comments/count
func (h *CommentHandler) GetCommentCount(c *gin.Context) {
	postID := c.Param("id")
	if postID == "" {
		util.BadRequest(c, "Post ID is required")
		return
	}

	count, err := h.commentService.GetCommentCount(postID)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment count retrieved successfully", gin.H{"count": count})
}

// UpdateComment handles comment update
// PATCH /api/v1/comments/:id
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	commentID := c.Param("id")
	if commentID == "" {
		util.BadRequest(c, "Comment ID is required")
		return
	}

	var req service.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.UpdateComment(callerID(c), commentID, req)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment updated successfully", gin.H{"comment": comment})
}

// DeleteComment handles comment deletion including its reply cascade
// DELETE /api/v1/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	commentID := c.Param("id")
	if commentID == "" {
		util.BadRequest(c, "Comment ID is required")
		return
	}

	if err := h.commentService.DeleteComment(callerID(c), commentID); err != nil {
		respondCommentError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment deleted successfully", nil)
}
