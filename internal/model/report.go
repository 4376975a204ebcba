package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report is a purchased evaluation report for a politician. After
// purchase the report worker renders the PDF and emails it to the buyer.
type Report struct {
	ID           string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID       string         `gorm:"type:uuid;not null;index;references:users(id)" json:"user_id"`
	PoliticianID string         `gorm:"type:uuid;not null;index;references:politicians(id)" json:"politician_id"`
	Status       string         `gorm:"type:varchar(20);default:'pending'" json:"status"` // pending, generated, failed
	PDFPath      *string        `gorm:"type:text" json:"pdf_path,omitempty"`
	GeneratedAt  *time.Time     `gorm:"type:timestamp" json:"generated_at,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User       User       `gorm:"foreignKey:UserID;references:ID" json:"-"`
	Politician Politician `gorm:"foreignKey:PoliticianID;references:ID" json:"politician,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Report) TableName() string {
	return "reports"
}

// Report status constants
const (
	ReportStatusPending   = "pending"
	ReportStatusGenerated = "generated"
	ReportStatusFailed    = "failed"
)
