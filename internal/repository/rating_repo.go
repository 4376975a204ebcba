package repository

import (
	"politicianfinder/internal/model"

	"gorm.io/gorm"
)

type RatingRepository interface {
	Upsert(rating *model.Rating) error
	FindByPoliticianAndUser(politicianID, userID string) (*model.Rating, error)
	FindByPoliticianID(politicianID string, limit, offset int) ([]*model.Rating, int64, error)
	Delete(id string) error
	AverageByPoliticianID(politicianID string) (float64, int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Upsert creates the rating or, if the user already rated this
// politician, updates score and review in place.
func (r *ratingRepository) Upsert(rating *model.Rating) error {
	var existing model.Rating
	err := r.db.Where("politician_id = ? AND user_id = ?", rating.PoliticianID, rating.UserID).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(rating).Error
	}
	if err != nil {
		return err
	}

	existing.Score = rating.Score
	existing.Review = rating.Review
	if err := r.db.Save(&existing).Error; err != nil {
		return err
	}
	*rating = existing
	return nil
}

func (r *ratingRepository) FindByPoliticianAndUser(politicianID, userID string) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.Where("politician_id = ? AND user_id = ?", politicianID, userID).
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) FindByPoliticianID(politicianID string, limit, offset int) ([]*model.Rating, int64, error) {
	var total int64
	if err := r.db.Model(&model.Rating{}).
		Where("politician_id = ?", politicianID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ratings []*model.Rating
	err := r.db.Preload("User").
		Where("politician_id = ?", politicianID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ratings).Error
	if err != nil {
		return nil, 0, err
	}

	return ratings, total, nil
}

func (r *ratingRepository) Delete(id string) error {
	return r.db.Delete(&model.Rating{}, "id = ?", id).Error
}

// AverageByPoliticianID returns the mean score and rating count for a
// politician. Zero values when no ratings exist.
func (r *ratingRepository) AverageByPoliticianID(politicianID string) (float64, int64, error) {
	var result struct {
		Avg   float64
		Count int64
	}
	err := r.db.Model(&model.Rating{}).
		Select("COALESCE(AVG(score), 0) as avg, COUNT(*) as count").
		Where("politician_id = ?", politicianID).
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	return result.Avg, result.Count, nil
}
