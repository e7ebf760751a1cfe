package interfaces

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	availability "staybook/internal/availability/domain"
)

// BuildCalendarXLSX renders a listing's resolved calendar as a spreadsheet,
// one row per day with the occupancy breakdown.
func BuildCalendarXLSX(listingID string, resolutions []availability.DayResolution) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "calendar"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "Listing")
	_ = f.SetCellValue(sheet, "B1", listingID)

	_ = f.SetCellValue(sheet, "A3", "Day")
	_ = f.SetCellValue(sheet, "B3", "State")
	_ = f.SetCellValue(sheet, "C3", "Direct Confirmed")
	_ = f.SetCellValue(sheet, "D3", "Direct Pending")
	_ = f.SetCellValue(sheet, "E3", "Blocked")
	_ = f.SetCellValue(sheet, "F3", "External")

	for i, resolution := range resolutions {
		row := i + 4
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), resolution.Day.Format("2006-01-02"))
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), string(resolution.State))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), resolution.Occupancy.DirectConfirmed)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), resolution.Occupancy.DirectPending)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), resolution.Occupancy.Blocked)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), resolution.Occupancy.External)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
