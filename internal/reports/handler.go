package reports

import (
	"fmt"
	"time"

	"cmcs-backend/internal/database"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// GET /api/admin/reports/claims?year=2025&month=6
func MonthlyClaimsReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		year := c.QueryInt("year", now.Year())
		month := c.QueryInt("month", int(now.Month()))

		if month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "month must be between 1 and 12")
		}
		if year < 2000 {
			return fiber.NewError(fiber.StatusBadRequest, "year is invalid")
		}

		f, err := BuildMonthlyClaimsReport(database.DB, year, month)
		if err != nil {
			log.Errorf("monthly claims report failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "could not build report")
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not render report")
		}

		fileName := fmt.Sprintf("claims-%d-%02d.xlsx", year, month)
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
		return c.Send(buf.Bytes())
	}
}
