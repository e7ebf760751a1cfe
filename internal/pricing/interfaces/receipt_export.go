package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"staybook/internal/pricing/application"
)

// BuildQuoteReceiptPDF renders a minimal PDF receipt for a quote.
func BuildQuoteReceiptPDF(quote application.QuoteResult) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Booking Quote Receipt")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Currency: %s", quote.Currency))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Nights: %d", quote.Nights))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Pricing Version: %s", quote.PricingVersion))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 6, "Line", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, "Amount (minor)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)

	lines := []struct {
		label  string
		amount int64
	}{
		{"Host net per night", quote.HostNetNightlyMinor},
		{"Guest price per night", quote.GuestUnitPriceMinor},
		{"Guest total", quote.GuestTotalMinor},
		{"Platform fee (est)", quote.PlatformFeeEstMinor},
		{"Processor fee (est)", quote.StripeFeeEstMinor},
		{"Platform margin (est)", quote.PlatformMarginEstMinor},
	}
	for _, line := range lines {
		pdf.CellFormat(80, 6, line.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%d", line.amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	if quote.PlatformFeeCapped {
		pdf.Ln(2)
		pdf.Cell(0, 6, "Platform fee capped for this booking.")
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
