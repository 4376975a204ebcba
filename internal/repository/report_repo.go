package repository

import (
	"time"

	"politicianfinder/internal/model"

	"gorm.io/gorm"
)

type ReportRepository interface {
	Create(report *model.Report) error
	FindByID(id string) (*model.Report, error)
	FindByUserID(userID string, limit, offset int) ([]*model.Report, int64, error)
	MarkGenerated(id string, pdfPath string) error
	MarkFailed(id string) error
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(report *model.Report) error {
	return r.db.Create(report).Error
}

func (r *reportRepository) FindByID(id string) (*model.Report, error) {
	var report model.Report
	err := r.db.Preload("Politician").Where("id = ?", id).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) FindByUserID(userID string, limit, offset int) ([]*model.Report, int64, error) {
	var total int64
	if err := r.db.Model(&model.Report{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []*model.Report
	err := r.db.Preload("Politician").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

func (r *reportRepository) MarkGenerated(id string, pdfPath string) error {
	now := time.Now()
	return r.db.Model(&model.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.ReportStatusGenerated,
			"pdf_path":     pdfPath,
			"generated_at": now,
		}).Error
}

func (r *reportRepository) MarkFailed(id string) error {
	return r.db.Model(&model.Report{}).
		Where("id = ?", id).
		Update("status", model.ReportStatusFailed).Error
}
