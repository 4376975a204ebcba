package service

import (
	"errors"

	"politicianfinder/internal/model"
	"politicianfinder/internal/repository"

	"gorm.io/gorm"
)

// UserService covers the admin user-management surface. Admin rights
// here never extend to comment moderation; comment deletion stays with
// the comment author and the post author.
type UserService interface {
	ListUsers(page, limit int) ([]model.User, int64, error)
	GetUser(id string) (*model.User, error)
	SetBanned(id string, banned bool) error
	SetUserType(id, userType string) error
	Stats() (*AdminStats, error)
}

// AdminStats holds the site-wide counts shown on the admin dashboard.
type AdminStats struct {
	UserCount       int64 `json:"user_count"`
	PoliticianCount int64 `json:"politician_count"`
	PostCount       int64 `json:"post_count"`
}

type userService struct {
	userRepo       repository.UserRepository
	politicianRepo repository.PoliticianRepository
	postRepo       repository.PostRepository
}

func NewUserService(userRepo repository.UserRepository, politicianRepo repository.PoliticianRepository, postRepo repository.PostRepository) UserService {
	return &userService{
		userRepo:       userRepo,
		politicianRepo: politicianRepo,
		postRepo:       postRepo,
	}
}

func (s *userService) ListUsers(page, limit int) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	users, total, err := s.userRepo.FindAll(limit, offset)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return users, total, nil
}

func (s *userService) GetUser(id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeErr(err)
	}
	return user, nil
}

func (s *userService) Stats() (*AdminStats, error) {
	users, err := s.userRepo.Count()
	if err != nil {
		return nil, storeErr(err)
	}
	politicians, err := s.politicianRepo.Count()
	if err != nil {
		return nil, storeErr(err)
	}
	posts, err := s.postRepo.Count()
	if err != nil {
		return nil, storeErr(err)
	}
	return &AdminStats{
		UserCount:       users,
		PoliticianCount: politicians,
		PostCount:       posts,
	}, nil
}

func (s *userService) SetBanned(id string, banned bool) error {
	if _, err := s.GetUser(id); err != nil {
		return err
	}
	if err := s.userRepo.SetBanned(id, banned); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *userService) SetUserType(id, userType string) error {
	if userType != model.UserTypeUser && userType != model.UserTypeAdmin {
		return errors.New("invalid user type")
	}
	if _, err := s.GetUser(id); err != nil {
		return err
	}
	if err := s.userRepo.UpdateUserType(id, userType); err != nil {
		return storeErr(err)
	}
	return nil
}
