package service

import (
	"errors"
	"log"
	"strings"

	"politicianfinder/internal/model"
	"politicianfinder/internal/repository"

	"gorm.io/gorm"
)

type PostService interface {
	CreatePost(userID string, req CreatePostRequest) (*model.Post, error)
	GetPost(id string) (*model.Post, error)
	ListPosts(politicianID, userID string, page, limit int) ([]*model.Post, int64, error)
	UpdatePost(id, userID string, req UpdatePostRequest) (*model.Post, error)
	DeletePost(id, userID string, isAdmin bool) error
}

type postService struct {
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	politicianRepo repository.PoliticianRepository
}

type CreatePostRequest struct {
	Title        string  `json:"title" binding:"required,max=255"`
	Content      string  `json:"content" binding:"required"`
	PoliticianID *string `json:"politician_id"`
}

type UpdatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	politicianRepo repository.PoliticianRepository,
) PostService {
	return &postService{
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		politicianRepo: politicianRepo,
	}
}

func (s *postService) CreatePost(userID string, req CreatePostRequest) (*model.Post, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return nil, errors.New("title and content are required")
	}

	if req.PoliticianID != nil {
		if _, err := s.politicianRepo.FindByID(*req.PoliticianID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPoliticianNotFound
			}
			return nil, storeErr(err)
		}
	}

	post := &model.Post{
		UserID:       userID,
		PoliticianID: req.PoliticianID,
		Title:        req.Title,
		Content:      req.Content,
	}
	if err := s.postRepo.Create(post); err != nil {
		return nil, storeErr(err)
	}
	return post, nil
}

func (s *postService) GetPost(id string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storeErr(err)
	}

	count, err := s.commentRepo.CountByPostID(post.ID)
	if err == nil {
		post.CommentCount = count
	}
	return post, nil
}

// ListPosts returns a post page, optionally scoped to a politician or an
// author, with comment counts filled in.
func (s *postService) ListPosts(politicianID, userID string, page, limit int) ([]*model.Post, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var (
		posts []*model.Post
		total int64
		err   error
	)
	switch {
	case politicianID != "":
		posts, total, err = s.postRepo.FindByPoliticianID(politicianID, limit, offset)
	case userID != "":
		posts, total, err = s.postRepo.FindByUserID(userID, limit, offset)
	default:
		posts, total, err = s.postRepo.FindAll(limit, offset)
	}
	if err != nil {
		return nil, 0, storeErr(err)
	}

	s.fillCommentCounts(posts)
	return posts, total, nil
}

// UpdatePost lets only the post author edit title and content.
func (s *postService) UpdatePost(id, userID string, req UpdatePostRequest) (*model.Post, error) {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storeErr(err)
	}

	if post.UserID != userID {
		return nil, errors.New("only the post author can edit this post")
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, errors.New("title cannot be empty")
		}
		post.Title = *req.Title
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, errors.New("content cannot be empty")
		}
		post.Content = *req.Content
	}

	if err := s.postRepo.Update(post); err != nil {
		return nil, storeErr(err)
	}
	return post, nil
}

// DeletePost removes a post. Admins can remove any post; everyone else
// only their own.
func (s *postService) DeletePost(id, userID string, isAdmin bool) error {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return storeErr(err)
	}

	if !isAdmin && post.UserID != userID {
		return errors.New("only the post author can delete this post")
	}

	if err := s.postRepo.Delete(id); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *postService) fillCommentCounts(posts []*model.Post) {
	if len(posts) == 0 {
		return
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	counts, err := s.commentRepo.CountByPostIDs(ids)
	if err != nil {
		log.Printf("Failed to load comment counts: %v", err)
		return
	}
	for _, p := range posts {
		p.CommentCount = counts[p.ID]
	}
}
