package repository

import (
	"time"

	"politicianfinder/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	FindAll(limit, offset int) ([]model.User, int64, error)
	Count() (int64, error)
	Update(user *model.User) error
	UpdateOTP(email string, otpCode string, expiresAt time.Time) error
	ClearOTP(userID string) error
	UpdateLastLogin(userID string) error
	SetBanned(userID string, banned bool) error
	UpdateUserType(userID string, userType string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll returns users with pagination, newest first.
func (r *userRepository) FindAll(limit, offset int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	if err := r.db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Count(&count).Error
	return count, err
}

func (r *userRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) UpdateOTP(email string, otpCode string, expiresAt time.Time) error {
	return r.db.Model(&model.User{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"otp_code":       otpCode,
			"otp_expires_at": expiresAt,
		}).Error
}

func (r *userRepository) ClearOTP(userID string) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"otp_code":       nil,
			"otp_expires_at": nil,
			"is_verified":    true,
		}).Error
}

func (r *userRepository) UpdateLastLogin(userID string) error {
	now := time.Now()
	return r.db.Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_login_at", now).Error
}

func (r *userRepository) SetBanned(userID string, banned bool) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", userID).
		Update("is_banned", banned).Error
}

func (r *userRepository) UpdateUserType(userID string, userType string) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", userID).
		Update("user_type", userType).Error
}
