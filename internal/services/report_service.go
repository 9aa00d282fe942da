package services

import (
	"bytes"
	"fmt"

	"sensus_chatbot_go_backend/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// ReportService renders the admin transaction statement as a PDF. This is
// the export path that may include transactions against inactive packages;
// each line shows the snapshotted amount, not the current catalog price.
type ReportService struct{}

func NewReportService() *ReportService {
	return &ReportService{}
}

func (s *ReportService) TransactionStatementPDF(transactions []models.Transaction) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Transaction Statement", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Sensus Chatbot - Transaction Statement")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(40, 7, "Date", "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 7, "User", "1", 0, "L", false, 0, "")
	pdf.CellFormat(55, 7, "Package", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Amount", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, "Status", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	var total float64
	for _, t := range transactions {
		username := t.UserID.String()[:8]
		if t.User != nil {
			username = t.User.Username
		}
		packageName := t.PackageID.String()[:8]
		if t.Package != nil {
			packageName = t.Package.Name
		}
		pdf.CellFormat(40, 6, t.CreatedAt.Format("2006-01-02 15:04"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, username, "1", 0, "L", false, 0, "")
		pdf.CellFormat(55, 6, packageName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", t.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, t.Status, "1", 1, "L", false, 0, "")
		if t.Status == models.TransactionCompleted {
			total += t.Amount
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Total settled revenue: %.2f", total))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
