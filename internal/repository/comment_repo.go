package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"politicianfinder/internal/model"
	"politicianfinder/internal/util"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(comment *model.Comment) error
	FindByID(id string) (*model.Comment, error)
	FindByPostID(postID string, limit, offset int) ([]*model.Comment, error)
	// FindAllByPostID returns every comment of a post as a flat list,
	// without preloads. Used for cascade resolution.
	FindAllByPostID(postID string) ([]*model.Comment, error)
	Update(comment *model.Comment) error
	// DeleteMany removes a set of comments in a single transaction so a
	// cascade either lands fully or not at all.
	DeleteMany(postID string, ids []string) error
	CountByPostID(postID string) (int64, error)
	CountByPostIDs(postIDs []string) (map[string]int64, error)
}

type commentRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	commentCachePrefix       = "comment:"
	commentByPostCachePrefix = "comment:post:"
	commentCountCachePrefix  = "comment:count:"
	commentCacheExpiration   = 15 * time.Minute
)

func NewCommentRepository(db *gorm.DB, redis *util.RedisClient) CommentRepository {
	return &commentRepository{db: db, redis: redis}
}

// Create creates a new comment and invalidates related caches.
func (r *commentRepository) Create(comment *model.Comment) error {
	if err := r.db.Create(comment).Error; err != nil {
		return err
	}
	r.invalidatePostCache(comment.PostID)
	return nil
}

// FindByID finds a comment by ID.
func (r *commentRepository) FindByID(id string) (*model.Comment, error) {
	if r.redis != nil {
		cached, err := r.redis.Get(commentCachePrefix + id)
		if err == nil {
			var comment model.Comment
			if json.Unmarshal([]byte(cached), &comment) == nil {
				return &comment, nil
			}
		}
	}

	var comment model.Comment
	err := r.db.Preload("User").Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(&comment); err == nil {
			r.redis.Set(commentCachePrefix+comment.ID, string(data), commentCacheExpiration)
		}
	}

	return &comment, nil
}

// FindByPostID finds top-level comments of a post with nested replies.
func (r *commentRepository) FindByPostID(postID string, limit, offset int) ([]*model.Comment, error) {
	cacheKey := fmt.Sprintf("%s%s:%d:%d", commentByPostCachePrefix, postID, limit, offset)
	if r.redis != nil {
		cached, err := r.redis.Get(cacheKey)
		if err == nil {
			var comments []*model.Comment
			if json.Unmarshal([]byte(cached), &comments) == nil {
				return comments, nil
			}
		}
	}

	var comments []*model.Comment
	err := r.db.Preload("User").
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	for i := range comments {
		r.loadRepliesRecursive(comments[i])
	}

	if r.redis != nil {
		if data, err := json.Marshal(comments); err == nil {
			r.redis.Set(cacheKey, string(data), commentCacheExpiration)
		}
	}

	return comments, nil
}

// loadRepliesRecursive loads all nested replies for a comment.
func (r *commentRepository) loadRepliesRecursive(comment *model.Comment) {
	var replies []model.Comment
	err := r.db.Preload("User").
		Where("parent_id = ?", comment.ID).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil || len(replies) == 0 {
		return
	}

	for i := range replies {
		r.loadRepliesRecursive(&replies[i])
	}

	comment.Replies = replies
}

func (r *commentRepository) FindAllByPostID(postID string) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Where("post_id = ?", postID).Find(&comments).Error
	return comments, err
}

// Update updates a comment and invalidates cache.
func (r *commentRepository) Update(comment *model.Comment) error {
	if err := r.db.Save(comment).Error; err != nil {
		return err
	}
	r.invalidateCommentCache(comment.ID)
	r.invalidatePostCache(comment.PostID)
	return nil
}

// DeleteMany soft-deletes the given comments inside one transaction.
// Concurrent readers either see the whole cascade applied or none of it.
func (r *commentRepository) DeleteMany(postID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Where("id IN ?", ids).Delete(&model.Comment{}).Error
	})
	if err != nil {
		return err
	}

	for _, id := range ids {
		r.invalidateCommentCache(id)
	}
	r.invalidatePostCache(postID)
	return nil
}

// CountByPostID counts comments on a post.
func (r *commentRepository) CountByPostID(postID string) (int64, error) {
	cacheKey := commentCountCachePrefix + postID
	if r.redis != nil {
		cached, err := r.redis.Get(cacheKey)
		if err == nil {
			var count int64
			if _, err := fmt.Sscanf(cached, "%d", &count); err == nil {
				return count, nil
			}
		}
	}

	var count int64
	err := r.db.Model(&model.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	if r.redis != nil {
		r.redis.Set(cacheKey, fmt.Sprintf("%d", count), commentCacheExpiration)
	}

	return count, nil
}

// CountByPostIDs counts comments for multiple posts in one query.
func (r *commentRepository) CountByPostIDs(postIDs []string) (map[string]int64, error) {
	if len(postIDs) == 0 {
		return map[string]int64{}, nil
	}

	var results []struct {
		PostID string
		Count  int64
	}
	err := r.db.Model(&model.Comment{}).
		Select("post_id, count(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	m := make(map[string]int64)
	for _, row := range results {
		m[row.PostID] = row.Count
	}
	for _, id := range postIDs {
		if _, ok := m[id]; !ok {
			m[id] = 0
		}
	}
	return m, nil
}

func (r *commentRepository) invalidateCommentCache(id string) {
	if r.redis == nil {
		return
	}
	r.redis.Delete(commentCachePrefix + id)
}

func (r *commentRepository) invalidatePostCache(postID string) {
	if r.redis == nil {
		return
	}
	r.redis.DeletePattern(commentByPostCachePrefix + postID + ":*")
	r.redis.Delete(commentCountCachePrefix + postID)
}
