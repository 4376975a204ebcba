package service

import (
	"errors"
	"log"

	"politicianfinder/internal/model"
	"politicianfinder/internal/repository"

	"gorm.io/gorm"
)

type RatingService interface {
	RateOrUpdate(userID string, req RateRequest) (*model.Rating, error)
	GetRatings(politicianID string, page, limit int) ([]*model.Rating, int64, error)
	GetMyRating(politicianID, userID string) (*model.Rating, error)
	DeleteRating(politicianID, userID string) error
}

type ratingService struct {
	ratingRepo        repository.RatingRepository
	politicianRepo    repository.PoliticianRepository
	politicianService PoliticianService
}

type RateRequest struct {
	// PoliticianID is taken from the URL path by the handler.
	PoliticianID string `json:"politician_id"`
	Score        int    `json:"score" binding:"required,gte=1,lte=5"`
	Review       string `json:"review"`
}

func NewRatingService(
	ratingRepo repository.RatingRepository,
	politicianRepo repository.PoliticianRepository,
	politicianService PoliticianService,
) RatingService {
	return &ratingService{
		ratingRepo:        ratingRepo,
		politicianRepo:    politicianRepo,
		politicianService: politicianService,
	}
}

// RateOrUpdate creates a rating or replaces the user's previous one for
// the same politician, then refreshes the ranking.
func (s *ratingService) RateOrUpdate(userID string, req RateRequest) (*model.Rating, error) {
	if _, err := s.politicianRepo.FindByID(req.PoliticianID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoliticianNotFound
		}
		return nil, storeErr(err)
	}

	rating := &model.Rating{
		PoliticianID: req.PoliticianID,
		UserID:       userID,
		Score:        req.Score,
		Review:       req.Review,
	}
	if err := s.ratingRepo.Upsert(rating); err != nil {
		return nil, storeErr(err)
	}

	if err := s.politicianService.RefreshRanking(req.PoliticianID); err != nil {
		log.Printf("Failed to refresh ranking for politician %s: %v", req.PoliticianID, err)
	}
	return rating, nil
}

func (s *ratingService) GetRatings(politicianID string, page, limit int) ([]*model.Rating, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	ratings, total, err := s.ratingRepo.FindByPoliticianID(politicianID, limit, offset)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return ratings, total, nil
}

func (s *ratingService) GetMyRating(politicianID, userID string) (*model.Rating, error) {
	rating, err := s.ratingRepo.FindByPoliticianAndUser(politicianID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr(err)
	}
	return rating, nil
}

// DeleteRating removes the caller's own rating and refreshes the
// ranking.
func (s *ratingService) DeleteRating(politicianID, userID string) error {
	rating, err := s.ratingRepo.FindByPoliticianAndUser(politicianID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("rating not found")
		}
		return storeErr(err)
	}

	if err := s.ratingRepo.Delete(rating.ID); err != nil {
		return storeErr(err)
	}

	if err := s.politicianService.RefreshRanking(politicianID); err != nil {
		log.Printf("Failed to refresh ranking for politician %s: %v", politicianID, err)
	}
	return nil
}
