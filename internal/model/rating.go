package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rating is one user's 1-5 star rating of a politician. A user holds at
// most one rating per politician; re-rating updates the existing row.
type Rating struct {
	ID           string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PoliticianID string         `gorm:"type:uuid;not null;index:idx_rating_politician_user,unique;references:politicians(id)" json:"politician_id"`
	UserID       string         `gorm:"type:uuid;not null;index:idx_rating_politician_user,unique;references:users(id)" json:"user_id"`
	Score        int            `gorm:"not null" json:"score"` // 1-5
	Review       string         `gorm:"type:text" json:"review"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Politician Politician `gorm:"foreignKey:PoliticianID;references:ID" json:"-"`
	User       User       `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *Rating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Rating) TableName() string {
	return "ratings"
}
