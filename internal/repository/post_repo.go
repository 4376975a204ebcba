package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"politicianfinder/internal/model"
	"politicianfinder/internal/util"

	"gorm.io/gorm"
)

type PostRepository interface {
	Create(post *model.Post) error
	FindByID(id string) (*model.Post, error)
	FindAll(limit, offset int) ([]*model.Post, int64, error)
	FindByPoliticianID(politicianID string, limit, offset int) ([]*model.Post, int64, error)
	FindByUserID(userID string, limit, offset int) ([]*model.Post, int64, error)
	Count() (int64, error)
	Update(post *model.Post) error
	Delete(id string) error
}

type postRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	postCachePrefix     = "post:"
	postListCachePrefix = "post:list:"
	postCacheExpiration = 10 * time.Minute
)

func NewPostRepository(db *gorm.DB, redis *util.RedisClient) PostRepository {
	return &postRepository{db: db, redis: redis}
}

func (r *postRepository) Create(post *model.Post) error {
	if err := r.db.Create(post).Error; err != nil {
		return err
	}
	r.invalidateListCache()
	return nil
}

func (r *postRepository) FindByID(id string) (*model.Post, error) {
	if r.redis != nil {
		cached, err := r.redis.Get(postCachePrefix + id)
		if err == nil {
			var post model.Post
			if json.Unmarshal([]byte(cached), &post) == nil {
				return &post, nil
			}
		}
	}

	var post model.Post
	err := r.db.Preload("User").Preload("Politician").
		Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(&post); err == nil {
			r.redis.Set(postCachePrefix+post.ID, string(data), postCacheExpiration)
		}
	}

	return &post, nil
}

func (r *postRepository) FindAll(limit, offset int) ([]*model.Post, int64, error) {
	cacheKey := fmt.Sprintf("%sall:%d:%d", postListCachePrefix, limit, offset)
	if r.redis != nil {
		cached, err := r.redis.Get(cacheKey)
		if err == nil {
			var posts []*model.Post
			if json.Unmarshal([]byte(cached), &posts) == nil {
				total, err := r.Count()
				if err == nil {
					return posts, total, nil
				}
			}
		}
	}

	var posts []*model.Post
	err := r.db.Preload("User").Preload("Politician").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	total, err := r.Count()
	if err != nil {
		return nil, 0, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(posts); err == nil {
			r.redis.Set(cacheKey, string(data), postCacheExpiration)
		}
	}

	return posts, total, nil
}

func (r *postRepository) FindByPoliticianID(politicianID string, limit, offset int) ([]*model.Post, int64, error) {
	var total int64
	if err := r.db.Model(&model.Post{}).
		Where("politician_id = ?", politicianID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*model.Post
	err := r.db.Preload("User").
		Where("politician_id = ?", politicianID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postRepository) FindByUserID(userID string, limit, offset int) ([]*model.Post, int64, error) {
	var total int64
	if err := r.db.Model(&model.Post{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*model.Post
	err := r.db.Preload("Politician").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postRepository) Update(post *model.Post) error {
	if err := r.db.Save(post).Error; err != nil {
		return err
	}
	r.invalidateCache(post.ID)
	return nil
}

func (r *postRepository) Delete(id string) error {
	if err := r.db.Delete(&model.Post{}, "id = ?", id).Error; err != nil {
		return err
	}
	r.invalidateCache(id)
	return nil
}

func (r *postRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Post{}).Count(&count).Error
	return count, err
}

func (r *postRepository) invalidateCache(id string) {
	if r.redis == nil {
		return
	}
	r.redis.Delete(postCachePrefix + id)
	r.invalidateListCache()
}

func (r *postRepository) invalidateListCache() {
	if r.redis == nil {
		return
	}
	r.redis.DeletePattern(postListCachePrefix + "*")
}
