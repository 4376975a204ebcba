package service

import (
	"errors"
	"fmt"
	"log"

	"politicianfinder/internal/model"
	"politicianfinder/internal/policy"
	"politicianfinder/internal/repository"

	"gorm.io/gorm"
)

// CommentService enforces the comment authorization and lifecycle rules.
// Every write goes through the policy package first; this service only
// adds storage plumbing, cascade application and notifications.
type CommentService interface {
	CreateComment(callerID string, req CreateCommentRequest) (*model.Comment, error)
	GetCommentByID(commentID string) (*model.Comment, error)
	GetCommentsByPostID(postID string, limit, offset int) ([]*model.Comment, int64, error)
	UpdateComment(callerID, commentID string, req UpdateCommentRequest) (*model.Comment, error)
	DeleteComment(callerID, commentID string) error
	GetCommentCount(postID string) (int64, error)
}

type commentService struct {
	commentRepo         repository.CommentRepository
	postRepo            repository.PostRepository
	userRepo            repository.UserRepository
	notificationService NotificationService
}

type CreateCommentRequest struct {
	PostID   string  `json:"post_id" binding:"required"`
	ParentID *string `json:"parent_id,omitempty"` // For replies
	Content  string  `json:"content" binding:"required"`
	// AuthorID defaults to the caller. A mismatching value is rejected as
	// impersonation rather than silently overwritten.
	AuthorID string `json:"author_id,omitempty"`
}

// UpdateCommentRequest carries the patch. Structural fields are accepted
// in the payload so that attempts to change them are rejected explicitly
// instead of being dropped on the floor.
type UpdateCommentRequest struct {
	Content  *string `json:"content,omitempty"`
	PostID   *string `json:"post_id,omitempty"`
	ParentID *string `json:"parent_id,omitempty"`
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notificationService NotificationService,
) CommentService {
	return &commentService{
		commentRepo:         commentRepo,
		postRepo:            postRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
	}
}

// CreateComment validates and authorizes the request, then persists the
// comment and fans out notifications.
func (s *commentService) CreateComment(callerID string, req CreateCommentRequest) (*model.Comment, error) {
	caller := policy.Caller{UserID: callerID}

	newComment := policy.NewComment{
		PostID:   req.PostID,
		ParentID: req.ParentID,
		AuthorID: req.AuthorID,
		Content:  req.Content,
	}
	if newComment.AuthorID == "" {
		newComment.AuthorID = callerID
	}

	if d := policy.ValidateNewComment(newComment); !d.Allowed {
		return nil, policy.Denied(d)
	}

	post, err := s.postRepo.FindByID(req.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storeErr(err)
	}

	// Fetch the parent when this is a reply; a missing parent is left
	// nil for the policy to reject.
	var parent *policy.Comment
	var parentRow *model.Comment
	if req.ParentID != nil && *req.ParentID != "" {
		parentRow, err = s.commentRepo.FindByID(*req.ParentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storeErr(err)
		}
		if parentRow != nil {
			p := toPolicyComment(parentRow)
			parent = &p
		}
	}

	if d := policy.CanCreate(caller, newComment, parent); !d.Allowed {
		return nil, policy.Denied(d)
	}

	comment := &model.Comment{
		PostID:   newComment.PostID,
		UserID:   newComment.AuthorID,
		ParentID: newComment.ParentID,
		Content:  newComment.Content,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, storeErr(err)
	}

	s.notifyCreated(comment, post, parentRow)

	return s.commentRepo.FindByID(comment.ID)
}

// GetCommentByID gets a comment by ID. Reads are public.
func (s *commentService) GetCommentByID(commentID string) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, storeErr(err)
	}
	return comment, nil
}

// GetCommentsByPostID gets comments for a post. Reads are public.
func (s *commentService) GetCommentsByPostID(postID string, limit, offset int) ([]*model.Comment, int64, error) {
	if _, err := s.postRepo.FindByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrPostNotFound
		}
		return nil, 0, storeErr(err)
	}

	comments, err := s.commentRepo.FindByPostID(postID, limit, offset)
	if err != nil {
		return nil, 0, storeErr(err)
	}

	total, err := s.commentRepo.CountByPostID(postID)
	if err != nil {
		return nil, 0, storeErr(err)
	}

	return comments, total, nil
}

// UpdateComment applies a content edit after the policy allows it. The
// effective update is restricted to content and timestamps regardless of
// what the payload carried.
func (s *commentService) UpdateComment(callerID, commentID string, req UpdateCommentRequest) (*model.Comment, error) {
	caller := policy.Caller{UserID: callerID}

	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, storeErr(err)
	}

	patch := policy.Patch{
		Content:  req.Content,
		PostID:   req.PostID,
		ParentID: req.ParentID,
	}

	if d := policy.CanUpdate(caller, toPolicyComment(comment), patch); !d.Allowed {
		return nil, policy.Denied(d)
	}
	if d := policy.ValidatePatch(patch); !d.Allowed {
		return nil, policy.Denied(d)
	}
	if patch.Content == nil {
		return nil, policy.Denied(policy.Deny(policy.ReasonInvalidRequest))
	}

	comment.Content = *patch.Content
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, storeErr(err)
	}

	return s.commentRepo.FindByID(comment.ID)
}

// DeleteComment authorizes the delete under the two-tier rule, resolves
// the cascade over the post's comments and removes the whole set in one
// transaction.
func (s *commentService) DeleteComment(callerID, commentID string) error {
	caller := policy.Caller{UserID: callerID}

	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return storeErr(err)
	}

	post, err := s.postRepo.FindByID(comment.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return storeErr(err)
	}

	owningPost := policy.Post{ID: post.ID, AuthorID: post.UserID}
	if d := policy.CanDelete(caller, toPolicyComment(comment), owningPost); !d.Allowed {
		return policy.Denied(d)
	}

	all, err := s.commentRepo.FindAllByPostID(comment.PostID)
	if err != nil {
		return storeErr(err)
	}

	cascade := policy.ResolveCascade(commentID, toPolicyComments(all))
	if cascade.CycleDetected {
		// Write-once parent_id should make this impossible; delete what
		// was proven reachable and leave a trace for investigation.
		log.Printf("%s: comment %s on post %s has a looping parent chain",
			policy.ReasonCascadeCycle, commentID, comment.PostID)
	}

	if err := s.commentRepo.DeleteMany(comment.PostID, cascade.IDs); err != nil {
		return storeErr(err)
	}

	return nil
}

// GetCommentCount gets the comment count for a post.
func (s *commentService) GetCommentCount(postID string) (int64, error) {
	count, err := s.commentRepo.CountByPostID(postID)
	if err != nil {
		return 0, storeErr(err)
	}
	return count, nil
}

// notifyCreated notifies the parent comment author on replies, or the
// post author on top-level comments. Self-notifications are skipped.
func (s *commentService) notifyCreated(comment *model.Comment, post *model.Post, parent *model.Comment) {
	if s.notificationService == nil {
		return
	}

	sender, err := s.userRepo.FindByID(comment.UserID)
	if err != nil {
		return
	}

	if parent != nil {
		if parent.UserID == comment.UserID {
			return
		}
		go func() {
			if err := s.notificationService.SendCommentReplyNotification(
				parent.UserID, comment.UserID, sender.FullName, comment.ID, comment.PostID, comment.Content,
			); err != nil {
				log.Printf("Failed to send comment reply notification: %v", err)
			}
		}()
		return
	}

	if post.UserID == comment.UserID {
		return
	}
	go func() {
		if err := s.notificationService.SendPostCommentNotification(
			post.UserID, comment.UserID, sender.FullName, comment.ID, comment.PostID, comment.Content,
		); err != nil {
			log.Printf("Failed to send post comment notification: %v", err)
		}
	}()
}

func toPolicyComment(c *model.Comment) policy.Comment {
	return policy.Comment{
		ID:       c.ID,
		PostID:   c.PostID,
		ParentID: c.ParentID,
		AuthorID: c.UserID,
	}
}

func toPolicyComments(comments []*model.Comment) []policy.Comment {
	out := make([]policy.Comment, 0, len(comments))
	for _, c := range comments {
		out = append(out, toPolicyComment(c))
	}
	return out
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
