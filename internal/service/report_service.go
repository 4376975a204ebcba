package service

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"politicianfinder/internal/model"
	"politicianfinder/internal/repository"

	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"
)

type ReportService interface {
	PurchaseReport(userID, politicianID string) (*model.Report, error)
	GetReport(id, userID string) (*model.Report, error)
	GetMyReports(userID string, page, limit int) ([]*model.Report, int64, error)
	// ReportPDFPath returns the filesystem path of a generated report,
	// checking ownership first.
	ReportPDFPath(id, userID string) (string, error)
}

type reportService struct {
	reportRepo     repository.ReportRepository
	politicianRepo repository.PoliticianRepository
	ratingRepo     repository.RatingRepository
	userRepo       repository.UserRepository
	notifService   NotificationService
	emailService   *EmailService
	outputDir      string
}

func NewReportService(
	reportRepo repository.ReportRepository,
	politicianRepo repository.PoliticianRepository,
	ratingRepo repository.RatingRepository,
	userRepo repository.UserRepository,
	notifService NotificationService,
	emailService *EmailService,
	outputDir string,
) ReportService {
	if outputDir == "" {
		outputDir = filepath.Join(os.TempDir(), "politicianfinder-reports")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		log.Printf("Failed to create report output directory %s: %v", outputDir, err)
	}
	return &reportService{
		reportRepo:     reportRepo,
		politicianRepo: politicianRepo,
		ratingRepo:     ratingRepo,
		userRepo:       userRepo,
		notifService:   notifService,
		emailService:   emailService,
		outputDir:      outputDir,
	}
}

// PurchaseReport records the purchase and kicks off PDF generation in
// the background. The returned report is in pending status.
func (s *reportService) PurchaseReport(userID, politicianID string) (*model.Report, error) {
	politician, err := s.politicianRepo.FindByID(politicianID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoliticianNotFound
		}
		return nil, storeErr(err)
	}

	report := &model.Report{
		UserID:       userID,
		PoliticianID: politicianID,
		Status:       model.ReportStatusPending,
	}
	if err := s.reportRepo.Create(report); err != nil {
		return nil, storeErr(err)
	}

	go s.generateReport(report.ID, userID, politician)

	return report, nil
}

func (s *reportService) GetReport(id, userID string) (*model.Report, error) {
	report, err := s.reportRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, storeErr(err)
	}
	if report.UserID != userID {
		return nil, ErrReportNotFound
	}
	return report, nil
}

func (s *reportService) GetMyReports(userID string, page, limit int) ([]*model.Report, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	reports, total, err := s.reportRepo.FindByUserID(userID, limit, offset)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return reports, total, nil
}

func (s *reportService) ReportPDFPath(id, userID string) (string, error) {
	report, err := s.GetReport(id, userID)
	if err != nil {
		return "", err
	}
	if report.Status != model.ReportStatusGenerated || report.PDFPath == nil {
		return "", errors.New("report is not ready yet")
	}
	return *report.PDFPath, nil
}

// generateReport renders the PDF, marks the report generated and
// notifies the buyer. Runs in its own goroutine; failures mark the
// report failed.
func (s *reportService) generateReport(reportID, userID string, politician *model.Politician) {
	pdfPath, err := s.renderPDF(reportID, politician)
	if err != nil {
		log.Printf("Failed to generate report %s: %v", reportID, err)
		if err := s.reportRepo.MarkFailed(reportID); err != nil {
			log.Printf("Failed to mark report %s as failed: %v", reportID, err)
		}
		return
	}

	if err := s.reportRepo.MarkGenerated(reportID, pdfPath); err != nil {
		log.Printf("Failed to mark report %s as generated: %v", reportID, err)
		return
	}

	if s.notifService != nil {
		if err := s.notifService.SendReportReadyNotification(userID, reportID, politician.Name); err != nil {
			log.Printf("Failed to send report-ready notification: %v", err)
		}
	}

	if s.emailService != nil {
		user, err := s.userRepo.FindByID(userID)
		if err != nil {
			log.Printf("Failed to load user %s for report email: %v", userID, err)
			return
		}
		if err := s.emailService.SendReportReadyEmail(user.Email, user.FullName, politician.Name, reportID); err != nil {
			log.Printf("Failed to send report-ready email: %v", err)
		}
	}
}

// renderPDF writes the evaluation report PDF and returns its path.
func (s *reportService) renderPDF(reportID string, politician *model.Politician) (string, error) {
	evaluations, err := s.politicianRepo.FindEvaluationsByPoliticianID(politician.ID)
	if err != nil {
		return "", err
	}
	avgRating, ratingCount, err := s.ratingRepo.AverageByPoliticianID(politician.ID)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Evaluation Report - %s", politician.Name), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Politician Evaluation Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, politician.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Party: %s", orDash(politician.Party)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Region: %s", orDash(politician.Region)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Position: %s", orDash(politician.Position)), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "AI Evaluations", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	if len(evaluations) == 0 {
		pdf.CellFormat(0, 6, "No AI evaluations available.", "", 1, "L", false, 0, "")
	}
	var sum float64
	for _, e := range evaluations {
		sum += e.Score
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: %.1f / 100", e.Category, e.Score), "", 1, "L", false, 0, "")
		if e.Summary != "" {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.MultiCell(0, 5, e.Summary, "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
		}
	}
	if len(evaluations) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, fmt.Sprintf("Overall AI score: %.1f / 100", sum/float64(len(evaluations))), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Community Rating", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	if ratingCount == 0 {
		pdf.CellFormat(0, 6, "No community ratings yet.", "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, fmt.Sprintf("%.2f / 5 from %d ratings", avgRating, ratingCount), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04 MST")), "", 1, "L", false, 0, "")

	path := filepath.Join(s.outputDir, fmt.Sprintf("report-%s.pdf", reportID))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write PDF: %w", err)
	}
	return path, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
