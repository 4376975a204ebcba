package repository

import (
	"encoding/json"
	"time"

	"politicianfinder/internal/model"
	"politicianfinder/internal/util"

	"gorm.io/gorm"
)

type PoliticianRepository interface {
	Create(politician *model.Politician) error
	FindByID(id string) (*model.Politician, error)
	Search(keyword, party, region string, limit, offset int) ([]*model.Politician, int64, error)
	FindByIDs(ids []string) ([]*model.Politician, error)
	Count() (int64, error)
	Update(politician *model.Politician) error
	Delete(id string) error
	CreateEvaluation(evaluation *model.Evaluation) error
	FindEvaluationsByPoliticianID(politicianID string) ([]model.Evaluation, error)
}

type politicianRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	politicianCachePrefix     = "politician:"
	politicianCacheExpiration = 30 * time.Minute
)

func NewPoliticianRepository(db *gorm.DB, redis *util.RedisClient) PoliticianRepository {
	return &politicianRepository{db: db, redis: redis}
}

func (r *politicianRepository) Create(politician *model.Politician) error {
	return r.db.Create(politician).Error
}

// FindByID finds a politician with evaluations, using the cache when
// possible.
func (r *politicianRepository) FindByID(id string) (*model.Politician, error) {
	if r.redis != nil {
		cached, err := r.redis.Get(politicianCachePrefix + id)
		if err == nil {
			var politician model.Politician
			if json.Unmarshal([]byte(cached), &politician) == nil {
				return &politician, nil
			}
		}
	}

	var politician model.Politician
	err := r.db.Preload("Evaluations").Where("id = ?", id).First(&politician).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(&politician); err == nil {
			r.redis.Set(politicianCachePrefix+politician.ID, string(data), politicianCacheExpiration)
		}
	}

	return &politician, nil
}

// Search filters politicians by keyword (name), party and region, all
// optional, with pagination.
func (r *politicianRepository) Search(keyword, party, region string, limit, offset int) ([]*model.Politician, int64, error) {
	query := r.db.Model(&model.Politician{})
	if keyword != "" {
		query = query.Where("name ILIKE ?", "%"+keyword+"%")
	}
	if party != "" {
		query = query.Where("party = ?", party)
	}
	if region != "" {
		query = query.Where("region = ?", region)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var politicians []*model.Politician
	err := query.Order("name ASC").Limit(limit).Offset(offset).Find(&politicians).Error
	if err != nil {
		return nil, 0, err
	}

	return politicians, total, nil
}

func (r *politicianRepository) FindByIDs(ids []string) ([]*model.Politician, error) {
	if len(ids) == 0 {
		return []*model.Politician{}, nil
	}
	var politicians []*model.Politician
	err := r.db.Where("id IN ?", ids).Find(&politicians).Error
	return politicians, err
}

func (r *politicianRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Politician{}).Count(&count).Error
	return count, err
}

func (r *politicianRepository) Update(politician *model.Politician) error {
	if err := r.db.Save(politician).Error; err != nil {
		return err
	}
	r.invalidateCache(politician.ID)
	return nil
}

func (r *politicianRepository) Delete(id string) error {
	if err := r.db.Delete(&model.Politician{}, "id = ?", id).Error; err != nil {
		return err
	}
	r.invalidateCache(id)
	return nil
}

func (r *politicianRepository) CreateEvaluation(evaluation *model.Evaluation) error {
	if err := r.db.Create(evaluation).Error; err != nil {
		return err
	}
	r.invalidateCache(evaluation.PoliticianID)
	return nil
}

func (r *politicianRepository) FindEvaluationsByPoliticianID(politicianID string) ([]model.Evaluation, error) {
	var evaluations []model.Evaluation
	err := r.db.Where("politician_id = ?", politicianID).
		Order("created_at DESC").
		Find(&evaluations).Error
	return evaluations, err
}

func (r *politicianRepository) invalidateCache(id string) {
	if r.redis == nil {
		return
	}
	r.redis.Delete(politicianCachePrefix + id)
}
