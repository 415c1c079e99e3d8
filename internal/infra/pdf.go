package infra

// pdf.go — PDF receipt generation using go-pdf/fpdf.
// Renders thermal receipt-style tickets with a header, item table, bold
// total, payment method line, and a points-earned footer when the sale was
// attributed to a loyalty customer.

import (
	"fmt"
	"os"
	"path/filepath"

	"smartpos/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateReceiptPDF renders a PDF receipt for a finalized bill.
// storagePath is the directory where the PDF will be written (created if
// needed). Returns the absolute path to the generated file.
func GenerateReceiptPDF(bill *model.Bill, storagePath, storeName string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%s.pdf", bill.ID)
	filePath := filepath.Join(storagePath, fileName)

	// 74mm × 105mm — close to thermal receipt paper
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // total margins = 8mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, storeName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sales Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Bill info ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Bill %s", shortID(bill.ID.String())), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	when := bill.CreatedAt
	if bill.PayDate != nil {
		when = *bill.PayDate
	}
	pdf.CellFormat(contentW, 4, when.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// ── Separator ────────────────────────────────────────────────────────────
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items header ──────────────────────────────────────────────────────────
	col1 := contentW * 0.52 // product name
	col2 := contentW * 0.16 // qty
	col3 := contentW * 0.32 // subtotal

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	// ── Item rows ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	totalPoints := 0
	for _, item := range bill.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		if len(name) > 22 {
			name = name[:21] + "…"
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Qty), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+item.TotalPrice.StringFixed(2), "", 1, "R", false, 0, "")
		totalPoints += item.PointsEarned
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Total ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+bill.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Payment method ────────────────────────────────────────────────────────
	if bill.PaymentMethod != nil {
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(contentW, 4, "Paid by: "+*bill.PaymentMethod, "", 1, "L", false, 0, "")
	}

	// ── Loyalty footer ────────────────────────────────────────────────────────
	if totalPoints > 0 {
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(contentW, 4, fmt.Sprintf("Points earned: %d", totalPoints), "", 1, "L", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
