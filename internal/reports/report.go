package reports

import (
	"fmt"
	"time"

	"cmcs-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const sheetName = "Claims"

var headerRow = []string{
	"Claim ID", "Lecturer", "Email", "Claim Month", "Total Hours",
	"Rate Per Hour", "Total Amount", "Status", "Submitted Date", "Documents",
}

// BuildMonthlyClaimsReport renders every claim for the given month into a
// workbook: one row per claim plus an hours/amount totals row.
func BuildMonthlyClaimsReport(db *gorm.DB, year, month int) (*excelize.File, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0)

	var list []models.Claim
	err := db.Preload("SupportingDocuments").
		Where("claim_month >= ? AND claim_month < ?", from, to).
		Order("submitted_date desc").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("load claims for %d-%02d: %w", year, month, err)
	}

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), sheetName)

	for col, title := range headerRow {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheetName, cell, title)
	}

	totalHours := decimal.Zero
	totalAmount := decimal.Zero

	for i := range list {
		claim := &list[i]
		row := i + 2

		values := []interface{}{
			claim.ID,
			claim.LecturerName,
			claim.LecturerEmail,
			claim.ClaimMonth.Format("2006-01"),
			claim.TotalHours.String(),
			claim.RatePerHour.String(),
			claim.TotalAmount().String(),
			string(claim.Status),
			claim.SubmittedDate.Format("2006-01-02 15:04:05"),
			len(claim.SupportingDocuments),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheetName, cell, v)
		}

		totalHours = totalHours.Add(claim.TotalHours)
		totalAmount = totalAmount.Add(claim.TotalAmount())
	}

	totalsRow := len(list) + 2
	cell, _ := excelize.CoordinatesToCellName(1, totalsRow)
	f.SetCellValue(sheetName, cell, "TOTAL")
	cell, _ = excelize.CoordinatesToCellName(5, totalsRow)
	f.SetCellValue(sheetName, cell, totalHours.String())
	cell, _ = excelize.CoordinatesToCellName(7, totalsRow)
	f.SetCellValue(sheetName, cell, totalAmount.String())

	return f, nil
}
