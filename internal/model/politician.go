package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Politician struct {
	ID        string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null;index" json:"name"`
	Party     string         `gorm:"type:varchar(100);index" json:"party"`
	Region    string         `gorm:"type:varchar(100);index" json:"region"`
	Position  string         `gorm:"type:varchar(100)" json:"position"`
	Bio       string         `gorm:"type:text" json:"bio"`
	PhotoURL  *string        `gorm:"type:text" json:"photo_url,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Evaluations []Evaluation `gorm:"foreignKey:PoliticianID;references:ID" json:"evaluations,omitempty"`

	// Virtual fields, calculated by the service layer
	AIScore     float64 `gorm:"-" json:"ai_score"`
	AvgRating   float64 `gorm:"-" json:"avg_rating"`
	RatingCount int64   `gorm:"-" json:"rating_count"`
}

// BeforeCreate hook to generate UUID
func (p *Politician) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Politician) TableName() string {
	return "politicians"
}

// Evaluation is one AI-generated score for a politician in a single
// category (integrity, competence, communication, ...).
type Evaluation struct {
	ID           string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PoliticianID string    `gorm:"type:uuid;not null;index;references:politicians(id)" json:"politician_id"`
	Category     string    `gorm:"type:varchar(50);not null" json:"category"`
	Score        float64   `gorm:"type:float;not null" json:"score"` // 0-100
	Summary      string    `gorm:"type:text" json:"summary"`
	ModelName    string    `gorm:"type:varchar(100)" json:"model_name"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Politician Politician `gorm:"foreignKey:PoliticianID;references:ID" json:"-"`
}

// BeforeCreate hook to generate UUID
func (e *Evaluation) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Evaluation) TableName() string {
	return "evaluations"
}
